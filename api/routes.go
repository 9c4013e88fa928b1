package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	apiauth "github.com/voxnote/transcript-api/api/auth"
	"github.com/voxnote/transcript-api/api/health"
	"github.com/voxnote/transcript-api/api/transcripts"
	"github.com/voxnote/transcript-api/api/trash"
	"github.com/voxnote/transcript-api/api/types"
	"github.com/voxnote/transcript-api/api/version"
	_ "github.com/voxnote/transcript-api/docs/swagger"
	authService "github.com/voxnote/transcript-api/internal/services/auth"
	transcriptsService "github.com/voxnote/transcript-api/internal/services/transcripts"
	"github.com/voxnote/transcript-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Initialize transcript services if not already set
	if deps.Router == nil || deps.TranscriptService == nil {
		if err := initializeTranscriptServices(deps, cfg); err != nil {
			return err
		}
	}

	requireAuth, optionalAuth, authHandler, err := buildAuthMiddleware(cfg)
	if err != nil {
		return err
	}

	// API v1 routes with general rate limiting (10 req/s, burst of 20)
	v1 := engine.Group("/api/v1")

	if authHandler != nil {
		v1.GET("/me", requireAuth, authHandler.Me)
	}

	transcriptGroup := v1.Group("/transcripts")
	transcriptGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
	transcripts.RegisterRoutes(transcriptGroup, deps, requireAuth, optionalAuth)

	// Batch trash operations are heavier, so they get a tighter limit
	// (5 req/s, burst of 10)
	trashGroup := v1.Group("/trash")
	trashGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 5, 10))
	trashGroup.Use(requireAuth)
	trash.RegisterRoutes(trashGroup, deps)

	return nil
}

// initializeTranscriptServices wires the stores, cache, persistence router
// and lifecycle service from config
func initializeTranscriptServices(deps *types.Dependencies, cfg *config.Config) error {
	if deps.DB == nil || deps.DB.DB == nil {
		return fmt.Errorf("database is required for transcript services")
	}

	local := transcriptsService.NewLocalStore(deps.DB.DB)

	var remote transcriptsService.Store
	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceKey != "" {
		remoteStore, err := transcriptsService.NewRemoteStore(
			cfg.Supabase.URL,
			cfg.Supabase.ServiceKey,
			cfg.Supabase.Schema,
			cfg.Supabase.Timeout,
		)
		if err != nil {
			return fmt.Errorf("failed to create remote store: %w", err)
		}
		remote = remoteStore
	} else {
		logrus.Warn("Supabase not configured, all saves will be local-only")
	}

	cache := transcriptsService.NewCache(cfg.Cache.TranscriptTTL)

	deps.Router = transcriptsService.NewRouter(remote, local, cache,
		transcriptsService.WithRetryAttempts(cfg.Save.RetryAttempts),
		transcriptsService.WithRetryBackoff(cfg.Save.RetryBackoff),
	)
	deps.TranscriptService = transcriptsService.NewService(remote, local, cache,
		transcriptsService.WithRetentionWindow(cfg.Retention.Window),
	)

	return nil
}

// buildAuthMiddleware creates the required and optional auth middleware.
// Without a JWKS URL the server runs in anonymous local-only mode: every
// request is unauthenticated and all records live in the local store.
func buildAuthMiddleware(cfg *config.Config) (requireAuth, optionalAuth gin.HandlerFunc, handler *apiauth.Handler, err error) {
	if cfg.Auth.JWKSURL == "" {
		logrus.Warn("JWKS URL not configured, running in anonymous local-only mode")
		passthrough := func(c *gin.Context) { c.Next() }
		return passthrough, passthrough, nil, nil
	}

	service, err := authService.NewService(cfg.Auth.JWKSURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	handler = apiauth.NewHandler(service)
	if cfg.Auth.DevAuthEnabled {
		logrus.Warn("Development auth bypass is enabled")
		handler.SetDevAuth(true, cfg.Auth.DevAuthToken)
	}

	return handler.AuthMiddleware(), handler.OptionalAuthMiddleware(), handler, nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
