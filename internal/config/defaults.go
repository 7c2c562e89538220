package config

import (
	"errors"
	"time"
)

// Config holds booksync configuration.
// Stored at: ./config.yaml or ~/.booksync/config.yaml
type Config struct {
	Notion        NotionCfg `mapstructure:"notion" yaml:"notion"`
	GoogleBooks   BooksCfg  `mapstructure:"google_books" yaml:"google_books"`
	Pacing        PacingCfg `mapstructure:"pacing" yaml:"pacing"`
	FailureLogDir string    `mapstructure:"failure_log_dir" yaml:"failure_log_dir"`
}

// NotionCfg configures the document database collaborator.
type NotionCfg struct {
	Token          string        `mapstructure:"token" yaml:"token"` // API token (supports ${ENV_VAR} syntax)
	DatabaseID     string        `mapstructure:"database_id" yaml:"database_id"`
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	Version        string        `mapstructure:"version" yaml:"version"` // Notion-Version header
	TimeoutSeconds int           `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Properties     PropertiesCfg `mapstructure:"properties" yaml:"properties"`
}

// PropertiesCfg names the database properties the sync workflows touch.
type PropertiesCfg struct {
	Title  string `mapstructure:"title" yaml:"title"`
	ISBN   string `mapstructure:"isbn" yaml:"isbn"`
	Status string `mapstructure:"status" yaml:"status"`
	Pages  string `mapstructure:"pages" yaml:"pages"`
}

// BooksCfg configures the bibliographic lookup collaborator.
type BooksCfg struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     uint   `mapstructure:"max_retries" yaml:"max_retries"`       // attempts per lookup, including the first
	RetryDelayMS   int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"` // fixed delay between attempts
}

// PacingCfg sets the fixed per-record pacing intervals, in milliseconds.
type PacingCfg struct {
	IconMS   int `mapstructure:"icon_ms" yaml:"icon_ms"`
	PagesMS  int `mapstructure:"pages_ms" yaml:"pages_ms"`
	ImportMS int `mapstructure:"import_ms" yaml:"import_ms"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Notion: NotionCfg{
			Token:          "${NOTION_TOKEN}",
			Version:        "2022-06-28",
			TimeoutSeconds: 30,
			Properties: PropertiesCfg{
				Title:  "Title",
				ISBN:   "ISBN",
				Status: "Status",
				Pages:  "Pages",
			},
		},
		GoogleBooks: BooksCfg{
			TimeoutSeconds: 30,
			MaxRetries:     3,
			RetryDelayMS:   2000,
		},
		Pacing: PacingCfg{
			IconMS:   250,
			PagesMS:  500,
			ImportMS: 1000,
		},
	}
}

// Validate checks that the fields every command needs are present.
func (c *Config) Validate() error {
	if c.Notion.DatabaseID == "" {
		return errors.New("notion.database_id is required")
	}
	if ResolveEnvVars(c.Notion.Token) == "" {
		return errors.New("notion.token is required (set NOTION_TOKEN or notion.token)")
	}
	return nil
}

// IconInterval returns the icon-sync pacing interval.
func (c *Config) IconInterval() time.Duration {
	return time.Duration(c.Pacing.IconMS) * time.Millisecond
}

// PagesInterval returns the page-backfill pacing interval.
func (c *Config) PagesInterval() time.Duration {
	return time.Duration(c.Pacing.PagesMS) * time.Millisecond
}

// ImportInterval returns the import pacing interval.
func (c *Config) ImportInterval() time.Duration {
	return time.Duration(c.Pacing.ImportMS) * time.Millisecond
}
