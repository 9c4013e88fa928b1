package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxnote/transcript-api/internal/services/auth"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	// A JWKS endpoint with no usable keys is enough for middleware tests;
	// token validation goes through the dev path.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	t.Cleanup(server.Close)

	service, err := auth.NewService(server.URL)
	require.NoError(t, err)
	return NewHandler(service)
}

func setupEngine(handler *Handler, middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", middleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return engine
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing header rejected", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.AuthMiddleware())

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.AuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "NotBearer token")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("dev token accepted", func(t *testing.T) {
		handler := newTestHandler(t)
		handler.SetDevAuth(true, "dev-secret")
		engine := setupEngine(handler, handler.AuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer dev-secret")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "dev-user-001", response["user_id"])
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.AuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	t.Run("anonymous request passes with no identity", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.OptionalAuthMiddleware())

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response["user_id"])
	})

	t.Run("valid dev token sets identity", func(t *testing.T) {
		handler := newTestHandler(t)
		handler.SetDevAuth(true, "dev-secret")
		engine := setupEngine(handler, handler.OptionalAuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer dev-secret")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "dev-user-001", response["user_id"])
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.OptionalAuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		handler := newTestHandler(t)
		engine := setupEngine(handler, handler.OptionalAuthMiddleware())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "NotBearer token")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMe(t *testing.T) {
	handler := newTestHandler(t)
	handler.SetDevAuth(true, "dev-secret")

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", handler.AuthMiddleware(), handler.Me)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer dev-secret")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var info auth.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "dev-user-001", info.ID)
	assert.Equal(t, "dev@voxnote.local", info.Email)
}
