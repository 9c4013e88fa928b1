package transcripts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/voxnote/transcript-api/internal/models"
	"github.com/voxnote/transcript-api/pkg/retry"
)

// Default retry policy for remote writes: two extra attempts with a fixed
// one second backoff, then fall back to local persistence.
const (
	DefaultRetryAttempts = 2
	DefaultRetryBackoff  = 1 * time.Second
)

// PersistenceRouter places each save in exactly one authoritative store.
// Authenticated saves go remote with a local mirror; anonymous saves and
// remote failures land in the local store, always flagged as such.
type PersistenceRouter struct {
	remote  Store
	local   Store
	cache   *Cache
	retries int
	backoff time.Duration
	now     func() time.Time
}

// RouterOption configures the router
type RouterOption func(*PersistenceRouter)

// WithRetryAttempts sets how many extra attempts a transient remote
// failure gets before the save falls back to local storage
func WithRetryAttempts(attempts int) RouterOption {
	return func(r *PersistenceRouter) {
		if attempts >= 0 {
			r.retries = attempts
		}
	}
}

// WithRetryBackoff sets the fixed delay between retry attempts
func WithRetryBackoff(backoff time.Duration) RouterOption {
	return func(r *PersistenceRouter) {
		if backoff > 0 {
			r.backoff = backoff
		}
	}
}

// WithRouterClock injects a clock for deterministic tests
func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *PersistenceRouter) {
		r.now = now
	}
}

// NewRouter creates a persistence router. remote may be nil when no remote
// store is configured; every authenticated save then degrades to a flagged
// local save.
func NewRouter(remote, local Store, cache *Cache, opts ...RouterOption) *PersistenceRouter {
	router := &PersistenceRouter{
		remote:  remote,
		local:   local,
		cache:   cache,
		retries: DefaultRetryAttempts,
		backoff: DefaultRetryBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// Save validates and routes one transcript save request
func (r *PersistenceRouter) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, NewValidationError("content", "must not be empty")
	}
	if req.Language == "" {
		req.Language = models.DefaultLanguage
	}
	if req.Title == "" {
		req.Title = models.DeriveTitle(content)
	}

	// Anonymous use: local only, flagged so the UI can say "not synced".
	if req.Owner == "" {
		id, err := r.saveLocal(ctx, req, content)
		if err != nil {
			return nil, err
		}
		return &SaveResult{TranscriptID: id, SavedLocally: true}, nil
	}

	if r.remote == nil {
		logrus.Warn("remote store not configured, saving transcript locally")
		id, err := r.saveLocal(ctx, req, content)
		if err != nil {
			return nil, err
		}
		return &SaveResult{TranscriptID: id, SavedLocally: true}, nil
	}

	transcript, err := r.saveRemote(ctx, req, content)
	if err != nil {
		// Auth failures are surfaced, never papered over with a silent
		// local write the user would not know about.
		if IsAuth(err) {
			return nil, err
		}

		logrus.WithError(err).WithField("owner", req.Owner).
			Warn("remote save failed after retries, falling back to local store")
		id, localErr := r.saveLocal(ctx, req, content)
		if localErr != nil {
			return nil, localErr
		}
		return &SaveResult{TranscriptID: id, SavedLocally: true}, nil
	}

	// Mirror into the local store so offline reads keep working. A mirror
	// failure does not fail the save.
	if err := r.local.Upsert(ctx, transcript, content); err != nil {
		logrus.WithError(err).WithField("transcript_id", transcript.ID).
			Warn("failed to mirror transcript into local store")
	}

	return &SaveResult{TranscriptID: transcript.ID}, nil
}

// saveLocal writes a transcript and its initial revision to the local
// store. Local writes are treated as infallible in the design; errors here
// still propagate but are unexpected.
func (r *PersistenceRouter) saveLocal(ctx context.Context, req SaveRequest, content string) (string, error) {
	now := r.now().UTC()
	transcript := &models.Transcript{
		ID:        NewLocalID(now),
		Title:     req.Title,
		Owner:     req.Owner,
		Language:  req.Language,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.local.Insert(ctx, transcript); err != nil {
		return "", err
	}

	revision := &models.TranscriptRevision{
		ID:           uuid.New().String(),
		TranscriptID: transcript.ID,
		Content:      content,
		CreatedAt:    now,
	}
	if err := r.local.InsertRevision(ctx, revision); err != nil {
		return "", err
	}
	return transcript.ID, nil
}

// saveRemote performs the two-phase remote write under the retry policy.
// The transcript row must be acknowledged before the revision write is
// attempted; a failed revision write is compensated by purging the row.
func (r *PersistenceRouter) saveRemote(ctx context.Context, req SaveRequest, content string) (*models.Transcript, error) {
	var saved *models.Transcript

	err := retry.Do(ctx, r.retries, r.backoff, Classify, func(ctx context.Context) error {
		now := r.now().UTC()
		transcript := &models.Transcript{
			ID:        uuid.New().String(),
			Title:     req.Title,
			Owner:     req.Owner,
			Language:  req.Language,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.remote.Insert(ctx, transcript); err != nil {
			return err
		}

		revision := &models.TranscriptRevision{
			ID:           uuid.New().String(),
			TranscriptID: transcript.ID,
			Content:      content,
			CreatedAt:    now,
		}
		if err := r.remote.InsertRevision(ctx, revision); err != nil {
			r.compensate(ctx, req.Owner, transcript.ID)
			return err
		}

		saved = transcript
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// compensate removes a transcript row whose revision write failed, so no
// orphaned empty transcript survives a partial save.
func (r *PersistenceRouter) compensate(ctx context.Context, owner, id string) {
	if err := r.remote.Purge(ctx, owner, id); err != nil {
		compErr := CompensationError{TranscriptID: id, Cause: err}
		logrus.WithError(compErr).WithField("transcript_id", id).
			Error("two-phase save compensation failed, orphaned transcript row may remain")
	}
}

// Update appends a new content revision and bumps the transcript's
// UpdatedAt. History is append-only; prior revisions are retained.
func (r *PersistenceRouter) Update(ctx context.Context, owner, id, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return NewValidationError("content", "must not be empty")
	}

	store := r.storeFor(owner, id)
	if _, err := store.GetByID(ctx, owner, id); err != nil {
		return err
	}

	revision := &models.TranscriptRevision{
		ID:           uuid.New().String(),
		TranscriptID: id,
		Content:      content,
		CreatedAt:    r.now().UTC(),
	}

	err := retry.Do(ctx, r.retries, r.backoff, Classify, func(ctx context.Context) error {
		return store.InsertRevision(ctx, revision)
	})
	if err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Invalidate(id)
	}
	return nil
}

// storeFor picks the store that owns a record. Anonymous records and
// fallback saves (recognizable by their time-based "local-" ids) live in
// the local store; everything else is remote when configured.
func (r *PersistenceRouter) storeFor(owner, id string) Store {
	if owner == "" || r.remote == nil || strings.HasPrefix(id, "local-") {
		return r.local
	}
	return r.remote
}
