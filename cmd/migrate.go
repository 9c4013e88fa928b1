package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxnote/transcript-api/internal/database"
	"github.com/voxnote/transcript-api/internal/models"
	"github.com/voxnote/transcript-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the local SQLite schema for the Transcript API.

Migrations are driven by GORM AutoMigrate against the transcript and
revision models.

Available subcommands:
  up      - Apply the current schema
  status  - Show which tables exist`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the current schema",
	Long: `Create or update the transcript tables in the local database.

AutoMigrate only adds missing tables, columns, and indexes; it never
drops existing data.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows schema status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema status",
	Long:  `Display which transcript tables currently exist in the local database.`,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func openMigrationDB() (*database.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openMigrationDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Transcript{}, &models.TranscriptRevision{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openMigrationDB()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	migrator := db.DB.Migrator()
	tables := []struct {
		name  string
		model any
	}{
		{models.Transcript{}.TableName(), &models.Transcript{}},
		{models.TranscriptRevision{}.TableName(), &models.TranscriptRevision{}},
	}
	for _, table := range tables {
		state := "missing"
		if migrator.HasTable(table.model) {
			state = "present"
		}
		fmt.Fprintf(out, "%-24s %s\n", table.name, state)
	}
	return nil
}
