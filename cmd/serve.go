package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/voxnote/transcript-api/api"
	"github.com/voxnote/transcript-api/internal/database"
	"github.com/voxnote/transcript-api/internal/models"
	"github.com/voxnote/transcript-api/internal/services/cleanup"
	"github.com/voxnote/transcript-api/pkg/config"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Transcript API server with the configured settings.

The server exposes transcript save, list, edit, trash, restore, and
permanent delete endpoints, and runs the retention sweep in the
background.

Example:
  transcript-api serve
  transcript-api serve --port 9090
  transcript-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Transcript{}, &models.TranscriptRevision{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDatabase(db)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Background retention sweep over trashed transcripts
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	var sweeper *cleanup.Service
	if deps := server.Dependencies(); deps != nil && deps.TranscriptService != nil {
		sweeper = cleanup.NewService(deps.TranscriptService, cfg.Retention.SweepInterval)
		sweeper.Start(sweepCtx)
	}

	logrus.WithFields(logrus.Fields{
		"host": serverHost,
		"port": serverPort,
	}).Info("Starting Transcript API server")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-stop:
		logrus.Info("Shutting down server")
	case err := <-serverErr:
		logrus.WithError(err).Error("Server failed")
	}

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logrus.Info("Server gracefully stopped")
	return nil
}
