package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/voxnote/transcript-api/internal/database"
	"github.com/voxnote/transcript-api/internal/models"
	"github.com/voxnote/transcript-api/internal/services/transcripts"
	"github.com/voxnote/transcript-api/pkg/config"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge expired trash once and exit",
	Long: `Run a single retention sweep over trashed transcripts.

Trashed transcripts past the retention window are permanently deleted
from the local store, and from the remote store when Supabase is
configured. The running server performs this sweep periodically; this
command exists for cron jobs and manual cleanup.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Transcript{}, &models.TranscriptRevision{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	local := transcripts.NewLocalStore(db.DB)

	var remote transcripts.Store
	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceKey != "" {
		remoteStore, err := transcripts.NewRemoteStore(
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
		logrus.Info("Supabase not configured, sweeping local store only")
	}

	service := transcripts.NewService(remote, local, transcripts.NewCache(cfg.Cache.TranscriptTTL),
		transcripts.WithRetentionWindow(cfg.Retention.Window),
	)

	purged, err := service.SweepExpired(context.Background(), "")
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired transcripts\n", purged)
	return nil
}
