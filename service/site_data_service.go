package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"securecam-site/models"
	"securecam-site/sitedata"
)

const siteDataCommitMessage = "Update site data"

// SiteDataServiceInterface defines the contract for committing and fetching the site document
type SiteDataServiceInterface interface {
	Save(ctx context.Context, raw []byte) (*WriteResult, error)
	FetchRemote(ctx context.Context, settings models.GitHubSettings) ([]byte, error)
}

// SiteDataService commits the site document to the configured repository
type SiteDataService struct {
	settings   models.GitHubSettings
	path       string
	apiBaseURL string
	httpClient *http.Client
	backup     BackupServiceInterface
}

// NewSiteDataService creates a new SiteDataService. settings come from the
// environment; path is the repository file (site_data.json).
func NewSiteDataService(settings models.GitHubSettings, path, apiBaseURL string, httpClient *http.Client) *SiteDataService {
	if path == "" {
		path = "site_data.json"
	}
	return &SiteDataService{
		settings:   settings,
		path:       path,
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
	}
}

// WithBackup mirrors every successful commit to backup
func (s *SiteDataService) WithBackup(backup BackupServiceInterface) *SiteDataService {
	s.backup = backup
	return s
}

// Ensure SiteDataService implements SiteDataServiceInterface
var _ SiteDataServiceInterface = (*SiteDataService)(nil)

// Ensure SiteDataService can hydrate the store
var _ sitedata.RemoteFetcher = (*SiteDataService)(nil)

// Save validates raw, normalizes it to the canonical pretty-printed shape with
// the GitHub token removed, and commits it. Keys the models do not declare are
// committed as posted.
func (s *SiteDataService) Save(ctx context.Context, raw []byte) (*WriteResult, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, models.NewValidationError("Missing request body")
	}
	if missing := missingGitHubSettings(s.settings); len(missing) > 0 {
		return nil, &models.ConfigError{Missing: missing}
	}
	if !json.Valid(raw) {
		return nil, models.NewValidationError("Request body must be valid JSON")
	}
	if !sitedata.LooksValid(raw) {
		return nil, models.NewValidationError("Site data must be a JSON object with a branding section")
	}

	encoded, err := sitedata.Canonical(raw)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return nil, err
		}
		return nil, models.NewValidationError("Invalid site data: %v", err)
	}

	client := NewGitHubClient(s.settings, s.apiBaseURL, s.httpClient)
	result, err := client.WriteFile(ctx, s.path, encoded, siteDataCommitMessage)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ SaveSiteData: committed %s to %s/%s (%s)", result.Path, s.settings.Owner, s.settings.Repo, result.CommitSHA)

	if s.backup != nil {
		go s.mirror(ctx, encoded)
	}
	return result, nil
}

// mirror copies a committed document to the backup store; failures are only logged
func (s *SiteDataService) mirror(ctx context.Context, encoded []byte) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	name := fmt.Sprintf("site_data-%s.json", time.Now().UTC().Format("20060102-150405"))
	if err := s.backup.Backup(ctx, name, encoded); err != nil {
		log.Printf("⚠️  SaveSiteData: backup of %s failed: %v", name, err)
	}
}

// FetchRemote reads the committed document from the repository in settings
func (s *SiteDataService) FetchRemote(ctx context.Context, settings models.GitHubSettings) ([]byte, error) {
	client := NewGitHubClient(settings, s.apiBaseURL, s.httpClient)
	file, err := client.GetFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if !file.Found {
		return nil, fmt.Errorf("%s not found in %s/%s", s.path, settings.Owner, settings.Repo)
	}
	return file.Content, nil
}

// missingGitHubSettings names the environment variables the write path still needs
func missingGitHubSettings(s models.GitHubSettings) []string {
	var missing []string
	if s.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if s.Owner == "" {
		missing = append(missing, "GITHUB_OWNER")
	}
	if s.Repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	return missing
}
