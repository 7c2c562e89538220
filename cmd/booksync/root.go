package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/booksync/internal/books"
	"github.com/jackzampolin/booksync/internal/cli"
	"github.com/jackzampolin/booksync/internal/config"
	"github.com/jackzampolin/booksync/internal/notion"
	"github.com/jackzampolin/booksync/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "booksync",
	Short: "Keep a Notion book-tracking database in sync with bibliographic lookups",
	Long: `Booksync maintains a personal book-tracking database hosted in Notion
using the Google Books volume API for bibliographic metadata.

Workflows:
  - Import books by ISBN from a flag, a file, or a spreadsheet export
  - Normalize page icons from the reading-status field
  - Backfill missing page counts

Each workflow is a single sequential, rate-limited pass over the database.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.booksync/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "summary format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVar(
		&verbose, "verbose", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and validates configuration for a command run.
func loadConfig() (*config.Manager, *config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	cfg := cm.Get()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cm, cfg, nil
}

// newNotionClient builds the document database client from config.
func newNotionClient(cfg *config.Config) *notion.Client {
	return notion.NewClient(notion.Config{
		Token:      config.ResolveEnvVars(cfg.Notion.Token),
		DatabaseID: cfg.Notion.DatabaseID,
		BaseURL:    cfg.Notion.BaseURL,
		Version:    cfg.Notion.Version,
		Timeout:    time.Duration(cfg.Notion.TimeoutSeconds) * time.Second,
	})
}

// newBooksClient builds the bibliographic lookup client from config.
func newBooksClient(cfg *config.Config) *books.Client {
	return books.NewClient(books.Config{
		BaseURL:    cfg.GoogleBooks.BaseURL,
		Timeout:    time.Duration(cfg.GoogleBooks.TimeoutSeconds) * time.Second,
		Attempts:   cfg.GoogleBooks.MaxRetries,
		RetryDelay: time.Duration(cfg.GoogleBooks.RetryDelayMS) * time.Millisecond,
	})
}

// runLogger tags all log lines from one invocation with a run ID so progress
// output can be correlated with an emitted failure log.
func runLogger() *slog.Logger {
	return slog.Default().With("run", uuid.NewString())
}
