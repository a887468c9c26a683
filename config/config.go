package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"securecam-site/models"
)

// Site store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds the process configuration read from the environment
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	Env        string `env:"ENV" envDefault:"development"`
	BaseURL    string `env:"BASE_URL"`
	AdminToken string `env:"ADMIN_TOKEN"`

	SiteStore    string `env:"SITE_STORE" envDefault:"sqlite"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"site_data.db"`
	SiteDataFile string `env:"SITE_DATA_FILE" envDefault:"site_data.local.json"`

	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubOwner  string `env:"GITHUB_OWNER"`
	GitHubRepo   string `env:"GITHUB_REPO"`
	GitHubBranch string `env:"GITHUB_BRANCH" envDefault:"main"`
	GitHubAPIURL string `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	SiteDataPath string `env:"SITE_DATA_PATH" envDefault:"site_data.json"`

	UploadMaxBytes     int64  `env:"UPLOAD_MAX_BYTES" envDefault:"4194304"`
	UploadMaxDimension int    `env:"UPLOAD_MAX_DIMENSION" envDefault:"2400"`
	PublicBaseURL      string `env:"PUBLIC_BASE_URL"`

	AIAPIKey string `env:"AI_API_KEY"`
	AIAPIURL string `env:"AI_API_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	AIModel  string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`

	RecommenderRulesPath string `env:"RECOMMENDER_RULES_PATH"`
	ChromePath           string `env:"CHROME_PATH"`

	GoogleCredentials   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	DriveBackupFolderID string `env:"DRIVE_BACKUP_FOLDER_ID"`
}

// Load parses the environment into a Config and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SiteStore {
	case StoreSQLite, StoreFile:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SITE_STORE=postgres")
		}
	default:
		return fmt.Errorf("SITE_STORE must be sqlite, postgres or file, got %q", c.SiteStore)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr is the listen address; 0.0.0.0 accepts connections on all interfaces
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// RenderBaseURL is the URL headless Chrome uses to reach this server
func (c *Config) RenderBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

// GitHubSettings returns the repository settings from the environment
func (c *Config) GitHubSettings() models.GitHubSettings {
	return models.GitHubSettings{
		Token:  c.GitHubToken,
		Owner:  c.GitHubOwner,
		Repo:   c.GitHubRepo,
		Branch: c.GitHubBranch,
	}
}
