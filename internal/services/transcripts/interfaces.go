package transcripts

import (
	"context"
	"time"

	"github.com/voxnote/transcript-api/internal/models"
)

// Store defines the capability contract shared by the remote store and the
// local fallback store. Every operation is scoped to an owner; the empty
// owner identifies anonymous local-only records. InsertRevision bumps the
// parent transcript's UpdatedAt as part of the append.
type Store interface {
	// Write operations
	Insert(ctx context.Context, transcript *models.Transcript) error
	InsertRevision(ctx context.Context, revision *models.TranscriptRevision) error
	Upsert(ctx context.Context, transcript *models.Transcript, content string) error

	// Read operations
	GetByID(ctx context.Context, owner, id string) (*models.Transcript, error)
	List(ctx context.Context, owner string, trashed bool) ([]models.Transcript, error)
	ListExpired(ctx context.Context, owner string, cutoff time.Time) ([]string, error)

	// Lifecycle operations
	SetDeleted(ctx context.Context, owner, id string, at *time.Time) error
	Purge(ctx context.Context, owner, id string) error
}

// SaveRequest carries one transcript save from the UI layer.
type SaveRequest struct {
	Content  string
	Title    string
	Language string
	Owner    string
}

// SaveResult reports where a save landed. SavedLocally is true whenever the
// record did NOT reach the remote store, so the caller can tell the user
// about data-location divergence instead of hiding it.
type SaveResult struct {
	TranscriptID string
	SavedLocally bool
}

// Router decides where each save is written and reconciles failures.
type Router interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
	Update(ctx context.Context, owner, id, content string) error
}

// Service governs the transcript lifecycle: Active -> Trashed -> Purged.
type Service interface {
	Get(ctx context.Context, owner, id string) (*models.Transcript, error)
	ListActive(ctx context.Context, owner string) ([]models.Transcript, error)
	ListTrash(ctx context.Context, owner string) ([]models.Transcript, error)

	SoftDelete(ctx context.Context, owner, id string) error
	Restore(ctx context.Context, owner, id string) error
	PermanentDelete(ctx context.Context, owner, id string) error

	RestoreMany(ctx context.Context, owner string, ids []string) (BatchResult, error)
	PermanentDeleteMany(ctx context.Context, owner string, ids []string) (BatchResult, error)
	EmptyTrash(ctx context.Context, owner string) (BatchResult, error)

	SweepExpired(ctx context.Context, owner string) (int, error)
}
