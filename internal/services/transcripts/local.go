package transcripts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voxnote/transcript-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalStore is the fallback store backed by the embedded database. It
// holds anonymous local-only records and mirrors of every remote save, so
// reads keep working when the remote store is unreachable.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore creates a local store on top of an open database handle
func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// NewLocalID generates a time-based identifier for local-only records.
func NewLocalID(now time.Time) string {
	return fmt.Sprintf("local-%d", now.UnixNano())
}

// Insert creates a new transcript row
func (s *LocalStore) Insert(ctx context.Context, transcript *models.Transcript) error {
	if err := s.db.WithContext(ctx).Create(transcript).Error; err != nil {
		return fmt.Errorf("creating transcript: %w", err)
	}
	return nil
}

// InsertRevision appends a content revision and bumps the parent
// transcript's UpdatedAt
func (s *LocalStore) InsertRevision(ctx context.Context, revision *models.TranscriptRevision) error {
	if err := s.db.WithContext(ctx).Create(revision).Error; err != nil {
		return fmt.Errorf("creating revision: %w", err)
	}
	err := s.db.WithContext(ctx).Model(&models.Transcript{}).
		Where("id = ?", revision.TranscriptID).
		Update("updated_at", revision.CreatedAt).Error
	if err != nil {
		return fmt.Errorf("touching transcript: %w", err)
	}
	return nil
}

// Upsert mirrors a transcript row and appends its content as a fresh
// revision. Used after successful remote saves so the local store stays a
// superset cache of everything this client has seen.
func (s *LocalStore) Upsert(ctx context.Context, transcript *models.Transcript, content string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(transcript).Error
	if err != nil {
		return fmt.Errorf("upserting transcript: %w", err)
	}

	revision := &models.TranscriptRevision{
		ID:           uuid.New().String(),
		TranscriptID: transcript.ID,
		Content:      content,
		CreatedAt:    transcript.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(revision).Error; err != nil {
		return fmt.Errorf("mirroring revision: %w", err)
	}
	return nil
}

// GetByID retrieves a transcript with its current content
func (s *LocalStore) GetByID(ctx context.Context, owner, id string) (*models.Transcript, error) {
	var transcript models.Transcript
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner = ?", id, owner).
		First(&transcript).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(id)
		}
		return nil, fmt.Errorf("getting transcript: %w", err)
	}

	var revision models.TranscriptRevision
	err = s.db.WithContext(ctx).
		Where("transcript_id = ?", id).
		Order("created_at DESC").
		First(&revision).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("getting current revision: %w", err)
	}
	transcript.Content = revision.Content

	return &transcript, nil
}

// List returns a transcript listing for one owner, either active records or
// the trash, most recently updated first
func (s *LocalStore) List(ctx context.Context, owner string, trashed bool) ([]models.Transcript, error) {
	query := s.db.WithContext(ctx).Where("owner = ?", owner)
	if trashed {
		query = query.Where("deleted_at IS NOT NULL")
	} else {
		query = query.Where("deleted_at IS NULL")
	}

	var results []models.Transcript
	if err := query.Order("updated_at DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("listing transcripts: %w", err)
	}
	return results, nil
}

// ListExpired returns ids of trashed transcripts whose deletion timestamp is
// older than the cutoff. An empty owner scans all owners (sweep job).
func (s *LocalStore) ListExpired(ctx context.Context, owner string, cutoff time.Time) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&models.Transcript{}).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff)
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing expired transcripts: %w", err)
	}
	return ids, nil
}

// SetDeleted sets or clears the trash marker
func (s *LocalStore) SetDeleted(ctx context.Context, owner, id string, at *time.Time) error {
	updates := map[string]interface{}{
		"deleted_at": at,
		"is_deleted": at != nil,
		"updated_at": time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).Model(&models.Transcript{}).
		Where("id = ? AND owner = ?", id, owner).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("updating trash state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError(id)
	}
	return nil
}

// Purge removes a transcript and all its revisions irreversibly. An empty
// owner skips the owner scope; only the sweep job calls it that way.
func (s *LocalStore) Purge(ctx context.Context, owner, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", id)
		if owner != "" {
			query = query.Where("owner = ?", owner)
		}
		result := query.Delete(&models.Transcript{})
		if result.Error != nil {
			return fmt.Errorf("deleting transcript: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError(id)
		}
		if err := tx.Where("transcript_id = ?", id).Delete(&models.TranscriptRevision{}).Error; err != nil {
			return fmt.Errorf("deleting revisions: %w", err)
		}
		return nil
	})
}
