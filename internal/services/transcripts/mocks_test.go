package transcripts

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/voxnote/transcript-api/internal/models"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, transcript *models.Transcript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

func (m *MockStore) InsertRevision(ctx context.Context, revision *models.TranscriptRevision) error {
	args := m.Called(ctx, revision)
	return args.Error(0)
}

func (m *MockStore) Upsert(ctx context.Context, transcript *models.Transcript, content string) error {
	args := m.Called(ctx, transcript, content)
	return args.Error(0)
}

func (m *MockStore) GetByID(ctx context.Context, owner, id string) (*models.Transcript, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, owner string, trashed bool) ([]models.Transcript, error) {
	args := m.Called(ctx, owner, trashed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transcript), args.Error(1)
}

func (m *MockStore) ListExpired(ctx context.Context, owner string, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, owner, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) SetDeleted(ctx context.Context, owner, id string, at *time.Time) error {
	args := m.Called(ctx, owner, id, at)
	return args.Error(0)
}

func (m *MockStore) Purge(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}
