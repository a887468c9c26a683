package sitedata

import (
	"context"
	"errors"
	"fmt"
	"log"

	"securecam-site/models"
)

// ErrRemoteNotConfigured means neither the document nor the environment names a repository
var ErrRemoteNotConfigured = errors.New("remote site data is not configured")

// RemoteFetcher reads the committed site document from a repository
type RemoteFetcher interface {
	FetchRemote(ctx context.Context, settings models.GitHubSettings) ([]byte, error)
}

// ResolveGitHubSettings picks each repository field from the document first
// and falls back to the environment value when the document leaves it empty
func ResolveGitHubSettings(doc, env models.GitHubSettings) models.GitHubSettings {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	settings := models.GitHubSettings{
		Token:  pick(doc.Token, env.Token),
		Owner:  pick(doc.Owner, env.Owner),
		Repo:   pick(doc.Repo, env.Repo),
		Branch: pick(doc.Branch, env.Branch),
	}
	if settings.Branch == "" {
		settings.Branch = "main"
	}
	return settings
}

// RefreshRemote fetches the committed document once and, when it looks like
// a site document, replaces the live and stored copies with it. The local
// token survives because committed documents never carry one.
func (s *Store) RefreshRemote(ctx context.Context, fetcher RemoteFetcher, env models.GitHubSettings) (string, error) {
	current, _ := s.Snapshot()
	settings := ResolveGitHubSettings(current.GitHubSettings, env)
	if fetcher == nil || !settings.Configured() {
		return "", ErrRemoteNotConfigured
	}

	raw, err := fetcher.FetchRemote(ctx, settings)
	if err != nil {
		return "", fmt.Errorf("fetch remote site data: %w", err)
	}
	if !LooksValid(raw) {
		return "", fmt.Errorf("remote site data has no branding section")
	}
	normalized, doc, err := decodeNormalized(raw)
	if err != nil {
		return "", err
	}
	if doc.GitHubSettings.Token == "" {
		doc.GitHubSettings.Token = current.GitHubSettings.Token
	}

	rev, err := s.applyJSON(ctx, normalized, doc, SourceRemote)
	if err != nil {
		return "", err
	}
	log.Printf("✅ RefreshRemote: applied site data from %s/%s@%s", settings.Owner, settings.Repo, settings.Branch)
	return rev, nil
}

// Hydrate runs the startup refresh. It never fails: any problem keeps the
// local state and is only logged.
func (s *Store) Hydrate(ctx context.Context, fetcher RemoteFetcher, env models.GitHubSettings) bool {
	if _, err := s.RefreshRemote(ctx, fetcher, env); err != nil {
		if errors.Is(err, ErrRemoteNotConfigured) {
			log.Printf("📄 Hydrate: no GitHub settings, keeping local site data")
		} else {
			log.Printf("⚠️  Hydrate: keeping local site data: %v", err)
		}
		return false
	}
	return true
}
