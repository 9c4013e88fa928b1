package types

// SaveTranscriptRequest represents a transcript save request
type SaveTranscriptRequest struct {
	Content  string `json:"content" binding:"required" example:"meeting notes from standup"`
	Title    string `json:"title,omitempty" example:"Standup notes"`
	Language string `json:"language,omitempty" example:"en-US"`
}

// UpdateTranscriptRequest represents an edit that appends a new revision
type UpdateTranscriptRequest struct {
	Content string `json:"content" binding:"required" example:"corrected meeting notes"`
}

// BatchRequest carries the transcript ids for a batch trash operation
type BatchRequest struct {
	IDs []string `json:"ids" binding:"required" example:"b3c1a9e2-1f7d-4a52-9d7e-2f0f6c9f1a11"`
}
