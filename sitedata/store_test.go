package sitedata

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
	"securecam-site/repository"
)

type memoryRepo struct {
	raw     []byte
	saves   int
	saveErr error
	loadErr error
}

func (m *memoryRepo) Load(context.Context) ([]byte, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	return m.raw, m.raw != nil, nil
}

func (m *memoryRepo) Save(_ context.Context, raw []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.raw = append([]byte(nil), raw...)
	return nil
}

func TestOpen_FallsBackToDefaults(t *testing.T) {
	ctx := context.Background()

	store := Open(ctx, &memoryRepo{})
	doc, _ := store.Snapshot()
	assert.Equal(t, Defaults(), doc)

	store = Open(ctx, &memoryRepo{loadErr: errors.New("disk on fire")})
	doc, _ = store.Snapshot()
	assert.Equal(t, "SecureCam", doc.Branding.SiteName)

	store = Open(ctx, &memoryRepo{raw: []byte("{broken")})
	doc, _ = store.Snapshot()
	assert.Equal(t, "SecureCam", doc.Branding.SiteName)
}

func TestOpen_LoadsStoredDocument(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.NewFileSiteDataRepository(filepath.Join(t.TempDir(), "site.json"))
	require.NoError(t, err)

	first := Open(ctx, repo)
	_, err = first.UpdateBranding(ctx, models.Branding{SiteName: "Vigilancia Sur"})
	require.NoError(t, err)

	second := Open(ctx, repo)
	doc, _ := second.Snapshot()
	assert.Equal(t, "Vigilancia Sur", doc.Branding.SiteName)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(&memoryRepo{}, Defaults())
	doc, _ := store.Snapshot()
	doc.Catalog.Products[0].Name = "changed"
	doc.Branding.SiteName = "changed"

	again, _ := store.Snapshot()
	assert.NotEqual(t, "changed", again.Catalog.Products[0].Name)
	assert.NotEqual(t, "changed", again.Branding.SiteName)
}

func TestStore_EditsPersistAndBumpRevision(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	store := NewStore(repo, Defaults())
	before := store.Revision()

	rev, err := store.UpsertProduct(ctx, models.Product{ID: "ups-1", Name: "UPS 1kVA", PriceNet: 320000, Tags: []string{"ups"}, Active: true})
	require.NoError(t, err)
	assert.NotEqual(t, before, rev)
	assert.Equal(t, rev, store.Revision())
	assert.Equal(t, 1, repo.saves)

	stored, err := Decode(repo.raw)
	require.NoError(t, err)
	_, ok := stored.Catalog.ProductByID("ups-1")
	assert.True(t, ok, "edit should be persisted synchronously")

	// upsert replaces in place
	_, err = store.UpsertProduct(ctx, models.Product{ID: "ups-1", Name: "UPS 2kVA"})
	require.NoError(t, err)
	doc, _ := store.Snapshot()
	p, _ := doc.Catalog.ProductByID("ups-1")
	assert.Equal(t, "UPS 2kVA", p.Name)
	assert.Len(t, doc.Catalog.Products, len(Defaults().Catalog.Products)+1)
}

func TestStore_FailedSaveKeepsState(t *testing.T) {
	repo := &memoryRepo{saveErr: errors.New("read-only")}
	store := NewStore(repo, Defaults())
	before := store.Revision()

	_, err := store.UpdateBranding(context.Background(), models.Branding{SiteName: "Nope"})
	require.Error(t, err)

	doc, rev := store.Snapshot()
	assert.Equal(t, "SecureCam", doc.Branding.SiteName)
	assert.Equal(t, before, rev)
}

func TestStore_ProductValidation(t *testing.T) {
	store := NewStore(&memoryRepo{}, Defaults())

	_, err := store.UpsertProduct(context.Background(), models.Product{Name: "no id"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = store.UpsertProduct(context.Background(), models.Product{ID: "x", PriceNet: -1})
	require.ErrorAs(t, err, &verr)
}

func TestStore_DeleteProductAndCategory(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&memoryRepo{}, Defaults())

	found, err := store.DeleteProduct(ctx, "nvr-8")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.DeleteProduct(ctx, "nvr-8")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = store.DeleteCategory(ctx, "recorders")
	require.NoError(t, err)
	assert.True(t, found)

	doc, _ := store.Snapshot()
	p, ok := doc.Catalog.ProductByID("dvr-8")
	require.True(t, ok, "products of a deleted category stay")
	assert.Equal(t, "recorders", p.CategoryID)
	assert.Equal(t, "", doc.Catalog.CategoryName(p.CategoryID))

	_, err = store.UpsertCategory(ctx, models.Category{ID: "recorders", Name: "Grabadores"})
	require.NoError(t, err)
	doc, _ = store.Snapshot()
	assert.Equal(t, "Grabadores", doc.Catalog.CategoryName("recorders"))
}

func TestStore_MergeSection(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&memoryRepo{}, Defaults())

	_, err := store.MergeSection(ctx, "contact", json.RawMessage(`{"phone":"+57 300 000 0000","email":"ventas@example.com"}`))
	require.NoError(t, err)

	doc, _ := store.Snapshot()
	assert.Equal(t, "+57 300 000 0000", doc.Contact.Phone)
	assert.Equal(t, "Contáctanos", doc.Contact.Title, "untouched keys survive the merge")
	assert.Equal(t, Defaults().Branding, doc.Branding, "other sections are untouched")

	_, err = store.MergeSection(ctx, "unknown", json.RawMessage(`{}`))
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = store.MergeSection(ctx, "contact", json.RawMessage(`[1]`))
	require.ErrorAs(t, err, &verr)

	_, err = store.MergeSection(ctx, "contact", json.RawMessage(`{"phone": 5}`))
	require.ErrorAs(t, err, &verr)
}

func TestStore_TokenIsKeptWhenEditsOmitIt(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&memoryRepo{}, Defaults())

	_, err := store.UpdateGitHubSettings(ctx, models.GitHubSettings{Token: "secret", Owner: "acme", Repo: "site", Branch: "main"})
	require.NoError(t, err)

	served, _ := store.Snapshot()
	served = served.Redacted()
	served.Branding.SiteName = "Nuevo"
	_, err = store.Replace(ctx, served)
	require.NoError(t, err)

	_, err = store.MergeSection(ctx, "githubSettings", json.RawMessage(`{"branch":"content"}`))
	require.NoError(t, err)

	doc, _ := store.Snapshot()
	assert.Equal(t, "Nuevo", doc.Branding.SiteName)
	assert.Equal(t, "secret", doc.GitHubSettings.Token)
	assert.Equal(t, "content", doc.GitHubSettings.Branch)
}

func TestStore_SubscribeAndApplyExternal(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&memoryRepo{}, Defaults())

	events, cancel := store.Subscribe()
	defer cancel()

	external := Defaults()
	external.Branding.SiteName = "Otra pestaña"
	rev, err := store.ApplyExternal(ctx, external)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, rev, ev.Revision)
		assert.Equal(t, SourceExternal, ev.Source)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}

	doc, _ := store.Snapshot()
	assert.Equal(t, external, doc)

	cancel()
	_, ok := <-events
	assert.False(t, ok, "cancel closes the channel")
	cancel()
}

func TestStore_RejectsNegativePricesOnEveryCatalogEdit(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	store := NewStore(repo, Defaults())
	before := store.Revision()

	bad := Defaults()
	bad.Catalog.Products[0].PriceNet = -1

	_, err := store.Replace(ctx, bad)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = store.ApplyExternal(ctx, bad)
	assert.ErrorAs(t, err, &verr)

	_, err = store.ReplaceJSON(ctx, []byte(`{"schemaVersion":2,"branding":{},"catalog":{"products":[{"id":"x","priceNet":-5}]}}`))
	assert.ErrorAs(t, err, &verr)

	_, err = store.MergeSection(ctx, "catalog", json.RawMessage(`{"products":[{"id":"x","priceNet":-5}]}`))
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, before, store.Revision())
	assert.Zero(t, repo.saves, "rejected edits are never persisted")
}

func TestStore_KeepsUnknownKeysAcrossEditsAndReopen(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	store := NewStore(repo, Defaults())

	_, err := store.ReplaceJSON(ctx, []byte(`{
		"schemaVersion": 2,
		"branding": {"siteName": "S", "tagline": "keep me"},
		"servicesPage": {"title": "Servicios"},
		"catalog": {"products": [{"id": "p1", "name": "Cam", "priceNet": 10, "warranty": "2 años"}]}
	}`))
	require.NoError(t, err)

	_, err = store.UpdateBranding(ctx, models.Branding{SiteName: "Otra"})
	require.NoError(t, err)
	_, err = store.UpsertProduct(ctx, models.Product{ID: "p1", Name: "Cam 2", PriceNet: 12})
	require.NoError(t, err)

	reopened := Open(ctx, repo)
	raw, _, err := reopened.SnapshotJSON()
	require.NoError(t, err)

	var served struct {
		Branding     map[string]any `json:"branding"`
		ServicesPage map[string]any `json:"servicesPage"`
		Catalog      struct {
			Products []map[string]any `json:"products"`
		} `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(raw, &served))
	assert.Equal(t, "Otra", served.Branding["siteName"])
	assert.Equal(t, "keep me", served.Branding["tagline"])
	assert.Equal(t, "Servicios", served.ServicesPage["title"])
	require.Len(t, served.Catalog.Products, 1)
	assert.Equal(t, "Cam 2", served.Catalog.Products[0]["name"])
	assert.Equal(t, "2 años", served.Catalog.Products[0]["warranty"], "per-product extras follow the product id")
}
