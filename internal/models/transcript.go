package models

import (
	"strings"
	"time"
)

// DefaultLanguage is the recognition locale assumed when a client does not
// report one.
const DefaultLanguage = "en-US"

// titleWords is how many leading words of the content are used when deriving
// a title for an untitled transcript.
const titleWords = 5

// Transcript represents one saved speech-to-text note. DeletedAt doubles as
// the trash marker: nil means active, non-nil records when the transcript
// entered the trash.
type Transcript struct {
	ID        string     `gorm:"primarykey" json:"id"`
	Title     string     `json:"title"`
	Owner     string     `gorm:"index" json:"owner"`
	Language  string     `json:"language"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	IsDeleted bool       `gorm:"default:false" json:"is_deleted"`

	// Content is the current revision's text, populated on reads. It is not
	// a column; revisions are the source of truth.
	Content string `gorm:"-" json:"content,omitempty"`

	Revisions []TranscriptRevision `gorm:"foreignKey:TranscriptID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Transcript
func (Transcript) TableName() string {
	return "transcripts"
}

// Trashed reports whether the transcript is in the trash.
func (t *Transcript) Trashed() bool {
	return t.DeletedAt != nil
}

// WordCount returns the whitespace-delimited token count of the current
// content. It is always recomputed, never read from storage.
func (t *Transcript) WordCount() int {
	return len(strings.Fields(t.Content))
}

// TranscriptRevision is one historical version of a transcript's text.
// Revisions are append-only; the current content is the most recently
// created revision.
type TranscriptRevision struct {
	ID           string    `gorm:"primarykey" json:"id"`
	TranscriptID string    `gorm:"index;not null" json:"transcript_id"`
	Content      string    `gorm:"type:text" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for TranscriptRevision
func (TranscriptRevision) TableName() string {
	return "transcript_revisions"
}

// DeriveTitle builds a display title from the first few words of content.
func DeriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	return strings.Join(words, " ")
}
