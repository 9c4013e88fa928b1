package transcripts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"github.com/voxnote/transcript-api/internal/models"
)

const (
	transcriptsTable = "transcripts"
	revisionsTable   = "transcript_revisions"
)

// RemoteStore is the authoritative store backed by a hosted Postgres
// exposed through PostgREST. The service holds a service-role client, so
// owner scoping is enforced here on every query rather than by row-level
// policies.
type RemoteStore struct {
	client  *supabase.Client
	timeout time.Duration
}

// NewRemoteStore creates a remote store client. The timeout bounds every
// individual remote call; an expired deadline is reported as a transient
// failure so it feeds the same retry/fallback path as network faults.
func NewRemoteStore(url, serviceKey, schema string, timeout time.Duration) (*RemoteStore, error) {
	if url == "" || serviceKey == "" {
		return nil, fmt.Errorf("supabase url and service key are required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{Schema: schema})
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}

	return &RemoteStore{client: client, timeout: timeout}, nil
}

// remoteTranscript is the wire row for the transcripts table
type remoteTranscript struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Owner     string     `json:"owner"`
	Language  string     `json:"language"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
	IsDeleted bool       `json:"is_deleted"`
}

// remoteRevision is the wire row for the transcript_revisions table
type remoteRevision struct {
	ID           string    `json:"id"`
	TranscriptID string    `json:"transcript_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRemoteRow(t *models.Transcript) remoteTranscript {
	return remoteTranscript{
		ID:        t.ID,
		Title:     t.Title,
		Owner:     t.Owner,
		Language:  t.Language,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		DeletedAt: t.DeletedAt,
		IsDeleted: t.IsDeleted,
	}
}

func fromRemoteRow(r remoteTranscript) models.Transcript {
	return models.Transcript{
		ID:        r.ID,
		Title:     r.Title,
		Owner:     r.Owner,
		Language:  r.Language,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt,
		IsDeleted: r.IsDeleted,
	}
}

// do runs one PostgREST call under the store timeout. The underlying client
// does not accept a context, so the call is raced against the deadline.
func (s *RemoteStore) do(ctx context.Context, op string, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case <-ctx.Done():
		return NewTransientError(op, ctx.Err())
	case err := <-done:
		if err != nil {
			return classifyRemoteError(op, err)
		}
		return nil
	}
}

// classifyRemoteError converts raw PostgREST errors into the service error
// taxonomy so backend-specific shapes never leak past this boundary.
func classifyRemoteError(op string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "jwt"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "403"):
		return NewAuthError(err.Error())
	default:
		return NewTransientError(op, err)
	}
}

// Insert creates a new transcript row
func (s *RemoteStore) Insert(ctx context.Context, transcript *models.Transcript) error {
	row := toRemoteRow(transcript)
	return s.do(ctx, "insert transcript", func() error {
		_, _, err := s.client.From(transcriptsTable).
			Insert(row, false, "", "minimal", "").
			Execute()
		return err
	})
}

// InsertRevision appends a content revision and bumps the parent
// transcript's UpdatedAt
func (s *RemoteStore) InsertRevision(ctx context.Context, revision *models.TranscriptRevision) error {
	row := remoteRevision{
		ID:           revision.ID,
		TranscriptID: revision.TranscriptID,
		Content:      revision.Content,
		CreatedAt:    revision.CreatedAt,
	}
	err := s.do(ctx, "insert revision", func() error {
		_, _, err := s.client.From(revisionsTable).
			Insert(row, false, "", "minimal", "").
			Execute()
		return err
	})
	if err != nil {
		return err
	}

	// The revision is durably written at this point. A failed timestamp
	// touch must not fail the append: a retry would collide with the
	// already inserted revision id.
	err = s.do(ctx, "touch transcript", func() error {
		_, _, err := s.client.From(transcriptsTable).
			Update(map[string]interface{}{"updated_at": revision.CreatedAt}, "minimal", "").
			Eq("id", revision.TranscriptID).
			Execute()
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("transcript_id", revision.TranscriptID).
			Warn("failed to bump transcript timestamp after revision insert")
	}
	return nil
}

// Upsert writes a transcript row and appends its content as a revision
func (s *RemoteStore) Upsert(ctx context.Context, transcript *models.Transcript, content string) error {
	row := toRemoteRow(transcript)
	err := s.do(ctx, "upsert transcript", func() error {
		_, _, err := s.client.From(transcriptsTable).
			Insert(row, true, "id", "minimal", "").
			Execute()
		return err
	})
	if err != nil {
		return err
	}

	revision := &models.TranscriptRevision{
		ID:           uuid.New().String(),
		TranscriptID: transcript.ID,
		Content:      content,
		CreatedAt:    transcript.UpdatedAt,
	}
	return s.InsertRevision(ctx, revision)
}

// GetByID retrieves a transcript with its current content
func (s *RemoteStore) GetByID(ctx context.Context, owner, id string) (*models.Transcript, error) {
	var rows []remoteTranscript
	err := s.do(ctx, "get transcript", func() error {
		_, err := s.client.From(transcriptsTable).
			Select("*", "", false).
			Eq("id", id).
			Eq("owner", owner).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, NewNotFoundError(id)
	}

	transcript := fromRemoteRow(rows[0])

	var revisions []remoteRevision
	err = s.do(ctx, "get current revision", func() error {
		_, err := s.client.From(revisionsTable).
			Select("*", "", false).
			Eq("transcript_id", id).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			Limit(1, "").
			ExecuteTo(&revisions)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(revisions) > 0 {
		transcript.Content = revisions[0].Content
	}

	return &transcript, nil
}

// List returns a transcript listing for one owner, most recently updated
// first
func (s *RemoteStore) List(ctx context.Context, owner string, trashed bool) ([]models.Transcript, error) {
	var rows []remoteTranscript
	err := s.do(ctx, "list transcripts", func() error {
		query := s.client.From(transcriptsTable).
			Select("*", "", false).
			Eq("owner", owner)
		if trashed {
			query = query.Not("deleted_at", "is", "null")
		} else {
			query = query.Is("deleted_at", "null")
		}
		_, err := query.
			Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	results := make([]models.Transcript, 0, len(rows))
	for _, row := range rows {
		results = append(results, fromRemoteRow(row))
	}
	return results, nil
}

// ListExpired returns ids of trashed transcripts older than the cutoff.
// An empty owner scans all owners (sweep job runs with service role).
func (s *RemoteStore) ListExpired(ctx context.Context, owner string, cutoff time.Time) ([]string, error) {
	var rows []remoteTranscript
	err := s.do(ctx, "list expired transcripts", func() error {
		query := s.client.From(transcriptsTable).
			Select("id,deleted_at", "", false).
			Not("deleted_at", "is", "null").
			Lt("deleted_at", cutoff.UTC().Format(time.RFC3339))
		if owner != "" {
			query = query.Eq("owner", owner)
		}
		_, err := query.ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// SetDeleted sets or clears the trash marker
func (s *RemoteStore) SetDeleted(ctx context.Context, owner, id string, at *time.Time) error {
	updates := map[string]interface{}{
		"deleted_at": at,
		"is_deleted": at != nil,
		"updated_at": time.Now().UTC(),
	}

	var rows []remoteTranscript
	err := s.do(ctx, "update trash state", func() error {
		_, err := s.client.From(transcriptsTable).
			Update(updates, "representation", "").
			Eq("id", id).
			Eq("owner", owner).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return NewNotFoundError(id)
	}
	return nil
}

// Purge removes a transcript and all its revisions irreversibly. The
// owner-scoped transcript delete runs first; revisions are only touched
// once that delete actually removed a row, so a non-owned id never
// reaches another user's revision history.
func (s *RemoteStore) Purge(ctx context.Context, owner, id string) error {
	var rows []remoteTranscript
	err := s.do(ctx, "delete transcript", func() error {
		query := s.client.From(transcriptsTable).
			Delete("representation", "").
			Eq("id", id)
		if owner != "" {
			query = query.Eq("owner", owner)
		}
		_, err := query.ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return NewNotFoundError(id)
	}

	return s.do(ctx, "delete revisions", func() error {
		_, _, err := s.client.From(revisionsTable).
			Delete("minimal", "").
			Eq("transcript_id", id).
			Execute()
		return err
	})
}
