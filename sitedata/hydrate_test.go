package sitedata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
)

type fetcherFunc func(ctx context.Context, settings models.GitHubSettings) ([]byte, error)

func (f fetcherFunc) FetchRemote(ctx context.Context, settings models.GitHubSettings) ([]byte, error) {
	return f(ctx, settings)
}

func TestResolveGitHubSettings(t *testing.T) {
	doc := models.GitHubSettings{Owner: "doc-owner", Token: ""}
	env := models.GitHubSettings{Token: "env-token", Owner: "env-owner", Repo: "env-repo"}

	got := ResolveGitHubSettings(doc, env)
	assert.Equal(t, models.GitHubSettings{Token: "env-token", Owner: "doc-owner", Repo: "env-repo", Branch: "main"}, got)
}

func TestHydrate_AppliesValidRemote(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	local := Defaults()
	local.GitHubSettings = models.GitHubSettings{Token: "local-token", Owner: "acme", Repo: "site", Branch: "main"}
	store := NewStore(repo, local)

	remote := Defaults()
	remote.Branding.SiteName = "Remoto"
	remote.GitHubSettings = models.GitHubSettings{Owner: "acme", Repo: "site", Branch: "main"}
	raw, err := Encode(remote)
	require.NoError(t, err)

	var gotSettings models.GitHubSettings
	fetcher := fetcherFunc(func(_ context.Context, s models.GitHubSettings) ([]byte, error) {
		gotSettings = s
		return raw, nil
	})

	assert.True(t, store.Hydrate(ctx, fetcher, models.GitHubSettings{}))
	assert.Equal(t, "local-token", gotSettings.Token)

	doc, _ := store.Snapshot()
	assert.Equal(t, "Remoto", doc.Branding.SiteName)
	assert.Equal(t, "local-token", doc.GitHubSettings.Token, "local token survives a redacted remote")
	assert.Equal(t, 1, repo.saves, "remote document replaces the local copy")
}

func TestHydrate_KeepsLocalOnFailure(t *testing.T) {
	ctx := context.Background()
	configured := Defaults()
	configured.GitHubSettings = models.GitHubSettings{Owner: "acme", Repo: "site"}

	tests := []struct {
		name    string
		local   models.SiteData
		fetcher RemoteFetcher
	}{
		{
			name:    "not configured",
			local:   Defaults(),
			fetcher: fetcherFunc(func(context.Context, models.GitHubSettings) ([]byte, error) { return nil, errors.New("unreachable") }),
		},
		{
			name:    "network error",
			local:   configured,
			fetcher: fetcherFunc(func(context.Context, models.GitHubSettings) ([]byte, error) { return nil, errors.New("timeout") }),
		},
		{
			name:    "no branding",
			local:   configured,
			fetcher: fetcherFunc(func(context.Context, models.GitHubSettings) ([]byte, error) { return []byte(`{"home":{}}`), nil }),
		},
		{
			name:    "not json",
			local:   configured,
			fetcher: fetcherFunc(func(context.Context, models.GitHubSettings) ([]byte, error) { return []byte(`<!doctype html>`), nil }),
		},
		{
			name:  "nil fetcher",
			local: configured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryRepo{}
			store := NewStore(repo, tt.local)
			before := store.Revision()

			assert.False(t, store.Hydrate(ctx, tt.fetcher, models.GitHubSettings{}))

			doc, rev := store.Snapshot()
			assert.Equal(t, tt.local, doc)
			assert.Equal(t, before, rev)
			assert.Zero(t, repo.saves)
		})
	}
}

func TestRefreshRemote_UsesEnvironmentFallback(t *testing.T) {
	store := NewStore(&memoryRepo{}, Defaults())
	raw, err := Encode(Defaults())
	require.NoError(t, err)

	var got models.GitHubSettings
	_, err = store.RefreshRemote(context.Background(), fetcherFunc(func(_ context.Context, s models.GitHubSettings) ([]byte, error) {
		got = s
		return raw, nil
	}), models.GitHubSettings{Token: "env", Owner: "env-owner", Repo: "env-repo", Branch: "prod"})
	require.NoError(t, err)

	// Defaults carry branch "main", which wins over the environment
	assert.Equal(t, models.GitHubSettings{Token: "env", Owner: "env-owner", Repo: "env-repo", Branch: "main"}, got)
}
