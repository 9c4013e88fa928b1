package transcripts

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voxnote/transcript-api/internal/models"
)

// DefaultRetentionWindow is how long a trashed transcript stays
// restorable before the sweep purges it.
const DefaultRetentionWindow = 30 * 24 * time.Hour

// LifecycleService governs transcript state transitions:
// Active -> Trashed (soft delete), Trashed -> Active (restore), and
// {Active,Trashed} -> Purged (permanent delete or retention sweep).
type LifecycleService struct {
	remote    Store
	local     Store
	cache     *Cache
	retention time.Duration
	now       func() time.Time
}

// ServiceOption configures the lifecycle service
type ServiceOption func(*LifecycleService)

// WithRetentionWindow overrides the trash retention window
func WithRetentionWindow(window time.Duration) ServiceOption {
	return func(s *LifecycleService) {
		if window > 0 {
			s.retention = window
		}
	}
}

// WithServiceClock injects a clock for deterministic tests
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *LifecycleService) {
		s.now = now
	}
}

// NewService creates a lifecycle service. remote may be nil when no remote
// store is configured.
func NewService(remote, local Store, cache *Cache, opts ...ServiceOption) *LifecycleService {
	service := &LifecycleService{
		remote:    remote,
		local:     local,
		cache:     cache,
		retention: DefaultRetentionWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// storeFor picks the store holding a record, mirroring the router's
// routing rule.
func (s *LifecycleService) storeFor(owner, id string) Store {
	if owner == "" || s.remote == nil || strings.HasPrefix(id, "local-") {
		return s.local
	}
	return s.remote
}

// expired reports whether a trashed transcript has outlived the retention
// window.
func (s *LifecycleService) expired(t *models.Transcript) bool {
	return t.Trashed() && s.now().Sub(*t.DeletedAt) > s.retention
}

// Get retrieves one transcript with its current content through the
// read-through cache. A transcript past its retention window is purged on
// sight and reported as not found.
func (s *LifecycleService) Get(ctx context.Context, owner, id string) (*models.Transcript, error) {
	if cached, ok := s.cache.Get(id); ok {
		if cached.Owner != owner {
			return nil, NewNotFoundError(id)
		}
		if !s.expired(cached) {
			return cached, nil
		}
	}

	store := s.storeFor(owner, id)
	transcript, err := store.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if s.expired(transcript) {
		s.purgeQuietly(ctx, store, owner, id)
		return nil, NewNotFoundError(id)
	}

	s.cache.Set(id, transcript)
	return transcript, nil
}

// ListActive returns the owner's active transcripts
func (s *LifecycleService) ListActive(ctx context.Context, owner string) ([]models.Transcript, error) {
	return s.storeFor(owner, "").List(ctx, owner, false)
}

// ListTrash returns the owner's trash. Expired entries are swept first so
// no listing ever shows a transcript older than the retention window as
// restorable.
func (s *LifecycleService) ListTrash(ctx context.Context, owner string) ([]models.Transcript, error) {
	if _, err := s.SweepExpired(ctx, owner); err != nil {
		logrus.WithError(err).Warn("lazy retention sweep failed before trash listing")
	}
	return s.storeFor(owner, "").List(ctx, owner, true)
}

// SoftDelete moves an active transcript into the trash. Calling it on an
// already trashed transcript is a no-op; the original deletion timestamp
// is never refreshed.
func (s *LifecycleService) SoftDelete(ctx context.Context, owner, id string) error {
	store := s.storeFor(owner, id)
	transcript, err := store.GetByID(ctx, owner, id)
	if err != nil {
		return err
	}
	if transcript.Trashed() {
		return nil
	}

	now := s.now().UTC()
	if err := store.SetDeleted(ctx, owner, id, &now); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

// Restore moves a trashed transcript back to the active state. Restoring
// an active transcript is a no-op; restoring an expired one fails as not
// found after the record is purged.
func (s *LifecycleService) Restore(ctx context.Context, owner, id string) error {
	store := s.storeFor(owner, id)
	transcript, err := store.GetByID(ctx, owner, id)
	if err != nil {
		return err
	}
	if !transcript.Trashed() {
		return nil
	}
	if s.expired(transcript) {
		s.purgeQuietly(ctx, store, owner, id)
		return NewNotFoundError(id)
	}

	if err := store.SetDeleted(ctx, owner, id, nil); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

// PermanentDelete purges a transcript and its revision history. The
// transition is permitted from both the active and the trashed state; the
// UI exposes direct permanent deletion.
func (s *LifecycleService) PermanentDelete(ctx context.Context, owner, id string) error {
	store := s.storeFor(owner, id)
	if err := store.Purge(ctx, owner, id); err != nil {
		return err
	}
	s.cache.Invalidate(id)
	return nil
}

// RestoreMany restores a set of transcripts. Each id is processed
// independently; failures are counted, never aborting the batch.
func (s *LifecycleService) RestoreMany(ctx context.Context, owner string, ids []string) (BatchResult, error) {
	var result BatchResult
	for _, id := range ids {
		if err := s.Restore(ctx, owner, id); err != nil {
			logrus.WithError(err).WithField("transcript_id", id).Debug("batch restore item failed")
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result, nil
}

// PermanentDeleteMany purges a set of transcripts with per-item
// independence, reporting one aggregate count.
func (s *LifecycleService) PermanentDeleteMany(ctx context.Context, owner string, ids []string) (BatchResult, error) {
	var result BatchResult
	for _, id := range ids {
		if err := s.PermanentDelete(ctx, owner, id); err != nil {
			logrus.WithError(err).WithField("transcript_id", id).Debug("batch delete item failed")
			result.Failed++
			continue
		}
		result.Processed++
	}
	return result, nil
}

// EmptyTrash purges everything currently in the owner's trash
func (s *LifecycleService) EmptyTrash(ctx context.Context, owner string) (BatchResult, error) {
	trashed, err := s.storeFor(owner, "").List(ctx, owner, true)
	if err != nil {
		return BatchResult{}, err
	}

	ids := make([]string, 0, len(trashed))
	for _, t := range trashed {
		ids = append(ids, t.ID)
	}
	return s.PermanentDeleteMany(ctx, owner, ids)
}

// SweepExpired purges every trashed transcript whose deletion timestamp is
// older than the retention window and returns how many were purged. An
// empty owner sweeps all owners across both stores.
func (s *LifecycleService) SweepExpired(ctx context.Context, owner string) (int, error) {
	cutoff := s.now().UTC().Add(-s.retention)

	if owner != "" {
		return s.sweepStore(ctx, s.storeFor(owner, ""), owner, cutoff)
	}

	purged, err := s.sweepStore(ctx, s.local, "", cutoff)
	if err != nil {
		return purged, err
	}
	if s.remote != nil {
		remotePurged, err := s.sweepStore(ctx, s.remote, "", cutoff)
		purged += remotePurged
		if err != nil {
			return purged, err
		}
	}
	return purged, nil
}

func (s *LifecycleService) sweepStore(ctx context.Context, store Store, owner string, cutoff time.Time) (int, error) {
	ids, err := store.ListExpired(ctx, owner, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, id := range ids {
		if err := store.Purge(ctx, owner, id); err != nil {
			logrus.WithError(err).WithField("transcript_id", id).Warn("failed to purge expired transcript")
			continue
		}
		s.cache.Invalidate(id)
		purged++
	}
	return purged, nil
}

// purgeQuietly removes an expired record found during a read; failures are
// logged, the read path still reports not found.
func (s *LifecycleService) purgeQuietly(ctx context.Context, store Store, owner, id string) {
	if err := store.Purge(ctx, owner, id); err != nil {
		logrus.WithError(err).WithField("transcript_id", id).Warn("failed to purge expired transcript on read")
	}
	s.cache.Invalidate(id)
}
