package types

import "time"

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`            // One of the Status constants above
	Message string `json:"message,omitempty"` // Human-readable message
}

// Transcript is the wire shape of a transcript
type Transcript struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Language  string     `json:"language"`
	Content   string     `json:"content,omitempty"` // Populated on single fetches
	WordCount int        `json:"wordCount,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Set while in the trash
}

// SaveResponse reports where a save landed. SavedLocally tells the client
// the record did not reach the remote store.
type SaveResponse struct {
	BaseResponse
	TranscriptID string `json:"transcriptId"`
	SavedLocally bool   `json:"savedLocally"`
}

// TranscriptsResponse for transcript listings
type TranscriptsResponse struct {
	BaseResponse
	Transcripts []Transcript `json:"transcripts"`
	Count       int          `json:"count"`
}

// SingleTranscriptResponse for getting a single transcript
type SingleTranscriptResponse struct {
	BaseResponse
	Transcript *Transcript `json:"transcript"`
}

// BatchResponse reports the aggregate outcome of a batch lifecycle
// operation; batches are not atomic
type BatchResponse struct {
	BaseResponse
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// HealthResponse for health check endpoint
type HealthResponse struct {
	BaseResponse
	Version  string                 `json:"version,omitempty"`
	Services map[string]interface{} `json:"services,omitempty"`
}
