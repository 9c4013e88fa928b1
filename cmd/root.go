package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/voxnote/transcript-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcript-api",
	Short: "Transcript lifecycle API server",
	Long: `Transcript API - the persistence backend for a browser speech-to-text
note-taking client.

The browser captures audio and runs speech recognition; this service owns
everything that happens to a transcript afterwards:

  • Saving with remote-first persistence and a flagged local fallback
  • Append-only revision history for edits
  • Trash with a retention window, restore, and permanent delete
  • Periodic retention sweep of expired trash`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// loadConfig loads the configuration when a command needs it
func loadConfig() {
	// Version and help never need config
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	configureLogging()
}

// configureLogging applies log settings from config and flags
func configureLogging() {
	level := config.GetString("logging.level")
	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if parsed, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(parsed)
	}

	format := config.GetString("logging.format")
	jsonLogs, _ := rootCmd.PersistentFlags().GetBool("json-logs")
	if format == "json" || jsonLogs {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
