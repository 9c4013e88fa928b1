package transcripts

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apiauth "github.com/voxnote/transcript-api/api/auth"
	"github.com/voxnote/transcript-api/api/types"
	"github.com/voxnote/transcript-api/internal/models"
	authsvc "github.com/voxnote/transcript-api/internal/services/auth"
	svc "github.com/voxnote/transcript-api/internal/services/transcripts"
)

// MockRouter is a mock implementation of the persistence router
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Save(ctx context.Context, req svc.SaveRequest) (*svc.SaveResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*svc.SaveResult), args.Error(1)
}

func (m *MockRouter) Update(ctx context.Context, owner, id, content string) error {
	args := m.Called(ctx, owner, id, content)
	return args.Error(0)
}

// MockService is a mock implementation of the lifecycle service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, owner, id string) (*models.Transcript, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transcript), args.Error(1)
}

func (m *MockService) ListActive(ctx context.Context, owner string) ([]models.Transcript, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transcript), args.Error(1)
}

func (m *MockService) ListTrash(ctx context.Context, owner string) ([]models.Transcript, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transcript), args.Error(1)
}

func (m *MockService) SoftDelete(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockService) Restore(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockService) PermanentDelete(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockService) RestoreMany(ctx context.Context, owner string, ids []string) (svc.BatchResult, error) {
	args := m.Called(ctx, owner, ids)
	return args.Get(0).(svc.BatchResult), args.Error(1)
}

func (m *MockService) PermanentDeleteMany(ctx context.Context, owner string, ids []string) (svc.BatchResult, error) {
	args := m.Called(ctx, owner, ids)
	return args.Get(0).(svc.BatchResult), args.Error(1)
}

func (m *MockService) EmptyTrash(ctx context.Context, owner string) (svc.BatchResult, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(svc.BatchResult), args.Error(1)
}

func (m *MockService) SweepExpired(ctx context.Context, owner string) (int, error) {
	args := m.Called(ctx, owner)
	return args.Int(0), args.Error(1)
}

// fakeAuth injects a fixed user id, standing in for the JWT middleware
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func setupTestEngine(deps *types.Dependencies, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/api/v1/transcripts")
	RegisterRoutes(group, deps, fakeAuth(userID), fakeAuth(userID))
	return engine
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestSave(t *testing.T) {
	t.Run("remote save", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Save", mock.Anything, svc.SaveRequest{Content: "hello world", Owner: "user-1"}).
			Return(&svc.SaveResult{TranscriptID: "t1"}, nil)

		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")
		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"content": "hello world"})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response types.SaveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "t1", response.TranscriptID)
		assert.False(t, response.SavedLocally)
		router.AssertExpectations(t)
	})

	t.Run("fallback save is flagged", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Save", mock.Anything, mock.Anything).
			Return(&svc.SaveResult{TranscriptID: "local-42", SavedLocally: true}, nil)

		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")
		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"content": "offline note"})

		assert.Equal(t, http.StatusCreated, w.Code)

		var response types.SaveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.SavedLocally)
		assert.Contains(t, response.Message, "locally")
	})

	t.Run("missing content is rejected", func(t *testing.T) {
		router := new(MockRouter)
		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")

		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"title": "empty"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		router.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("whitespace content is rejected by the router", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Save", mock.Anything, mock.Anything).
			Return(nil, svc.NewValidationError("content", "must not be empty"))

		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")
		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"content": "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejected session surfaces as 401", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Save", mock.Anything, mock.Anything).
			Return(nil, svc.NewAuthError("jwt expired"))

		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")
		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"content": "secret"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("anonymous save passes empty owner", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Save", mock.Anything, mock.MatchedBy(func(req svc.SaveRequest) bool {
			return req.Owner == ""
		})).Return(&svc.SaveResult{TranscriptID: "local-1", SavedLocally: true}, nil)

		engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "")
		w := postJSON(t, engine, "/api/v1/transcripts", gin.H{"content": "anonymous note"})

		assert.Equal(t, http.StatusCreated, w.Code)
		router.AssertExpectations(t)
	})
}

// TestSave_ExpiredSessionSavesNothing wires the real JWT middleware over the
// save route. A caller presenting an expired token gets a 401 instead of the
// note silently landing as an unowned record.
func TestSave_ExpiredSessionSavesNothing(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	x := privateKey.PublicKey.X.Bytes()
	y := privateKey.PublicKey.Y.Bytes()
	if len(x) < 32 {
		x = append(make([]byte, 32-len(x)), x...)
	}
	if len(y) < 32 {
		y = append(make([]byte, 32-len(y)), y...)
	}
	jwks := authsvc.JWKS{Keys: []authsvc.JWK{{
		Kty: "EC",
		Kid: "test-key-1",
		Use: "sig",
		Alg: "ES256",
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(x),
		Y:   base64.RawURLEncoding.EncodeToString(y),
	}}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	service, err := authsvc.NewService(server.URL)
	require.NoError(t, err)
	authHandler := apiauth.NewHandler(service)

	router := new(MockRouter)
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/api/v1/transcripts")
	RegisterRoutes(group, &types.Dependencies{Router: router, TranscriptService: new(MockService)},
		authHandler.AuthMiddleware(), authHandler.OptionalAuthMiddleware())

	claims := &authsvc.Claims{
		Sub: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = "test-key-1"
	signed, err := token.SignedString(privateKey)
	require.NoError(t, err)

	payload, err := json.Marshal(gin.H{"content": "note from a stale tab"})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcripts", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signed)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	router.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := new(MockService)
		service.On("Get", mock.Anything, "user-1", "t1").
			Return(&models.Transcript{ID: "t1", Title: "Notes", Content: "hello world"}, nil)

		engine := setupTestEngine(&types.Dependencies{Router: new(MockRouter), TranscriptService: service}, "user-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/transcripts/t1", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response types.SingleTranscriptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "hello world", response.Transcript.Content)
		assert.Equal(t, 2, response.Transcript.WordCount)
	})

	t.Run("not owned reads as not found", func(t *testing.T) {
		service := new(MockService)
		service.On("Get", mock.Anything, "user-1", "someone-elses").
			Return(nil, svc.NewNotFoundError("someone-elses"))

		engine := setupTestEngine(&types.Dependencies{Router: new(MockRouter), TranscriptService: service}, "user-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/transcripts/someone-elses", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLifecycleEndpoints(t *testing.T) {
	t.Run("soft delete", func(t *testing.T) {
		service := new(MockService)
		service.On("SoftDelete", mock.Anything, "user-1", "t1").Return(nil)

		engine := setupTestEngine(&types.Dependencies{Router: new(MockRouter), TranscriptService: service}, "user-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/transcripts/t1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("restore expired returns 404", func(t *testing.T) {
		service := new(MockService)
		service.On("Restore", mock.Anything, "user-1", "old").
			Return(svc.NewNotFoundError("old"))

		engine := setupTestEngine(&types.Dependencies{Router: new(MockRouter), TranscriptService: service}, "user-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/transcripts/old/restore", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("permanent delete", func(t *testing.T) {
		service := new(MockService)
		service.On("PermanentDelete", mock.Anything, "user-1", "t1").Return(nil)

		engine := setupTestEngine(&types.Dependencies{Router: new(MockRouter), TranscriptService: service}, "user-1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/transcripts/t1/permanent", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})
}

func TestUpdate(t *testing.T) {
	router := new(MockRouter)
	router.On("Update", mock.Anything, "user-1", "t1", "revised words").Return(nil)

	engine := setupTestEngine(&types.Dependencies{Router: router, TranscriptService: new(MockService)}, "user-1")
	w := httptest.NewRecorder()
	payload := bytes.NewReader([]byte(`{"content":"revised words"}`))
	req := httptest.NewRequest(http.MethodPut, "/api/v1/transcripts/t1", payload)
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	router.AssertExpectations(t)
}
