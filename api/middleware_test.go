package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("sets CORS headers", func(t *testing.T) {
		engine := gin.New()
		engine.Use(CORS())
		engine.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("answers preflight without hitting handlers", func(t *testing.T) {
		engine := gin.New()
		engine.Use(CORS())
		handlerCalled := false
		engine.OPTIONS("/test", func(c *gin.Context) {
			handlerCalled = true
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, handlerCalled)
	})
}

func TestRequestSizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestSizeLimitWithSize(64))
	engine.POST("/test", func(c *gin.Context) {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("small"))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("oversized body is cut off", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 256)))
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("GET requests are not wrapped", func(t *testing.T) {
		engine := gin.New()
		engine.Use(RequestSizeLimitWithSize(1))
		engine.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPerClientRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newLimitedEngine := func(rps, burst int) *gin.Engine {
		rateLimiters := &sync.Map{}
		cleanupStop := make(chan struct{})
		var cleanupInitialized sync.Once

		engine := gin.New()
		engine.Use(PerClientRateLimit(rateLimiters, cleanupStop, &cleanupInitialized, rps, burst))
		engine.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return engine
	}

	t.Run("allows requests within burst", func(t *testing.T) {
		engine := newLimitedEngine(1, 3)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("rejects requests beyond burst", func(t *testing.T) {
		engine := newLimitedEngine(1, 2)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("limits are per client", func(t *testing.T) {
		engine := newLimitedEngine(1, 1)

		first := httptest.NewRequest(http.MethodGet, "/test", nil)
		first.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, first)
		assert.Equal(t, http.StatusOK, w.Code)

		// Same client is over its limit
		again := httptest.NewRequest(http.MethodGet, "/test", nil)
		again.RemoteAddr = "10.0.0.1:1234"
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, again)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		// A different client still gets through
		other := httptest.NewRequest(http.MethodGet, "/test", nil)
		other.RemoteAddr = "10.0.0.2:1234"
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
