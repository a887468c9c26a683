package sitedata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
)

func TestOverlay_EmptyBaseIsEncode(t *testing.T) {
	want, err := Encode(Defaults())
	require.NoError(t, err)

	got, err := Overlay(nil, Defaults())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOverlay_TypedValuesWinExtrasSurvive(t *testing.T) {
	base := []byte(`{
		"branding": {"siteName": "Old", "tagline": "t"},
		"extra": [1, 2.50, {"deep": true}],
		"catalog": {"products": [
			{"id": "gone", "note": "dropped with the product"},
			{"id": "kept", "note": "n", "priceNet": 1}
		]}
	}`)
	doc := Defaults()
	doc.Branding.SiteName = "New"
	doc.Catalog.Products = []models.Product{{ID: "kept", PriceNet: 7}, {ID: "new"}}

	raw, err := Overlay(base, doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2.50", "numbers are written as stored")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	branding := out["branding"].(map[string]any)
	assert.Equal(t, "New", branding["siteName"])
	assert.Equal(t, "t", branding["tagline"])
	assert.Len(t, out["extra"], 3)

	products := out["catalog"].(map[string]any)["products"].([]any)
	require.Len(t, products, 2)
	kept := products[0].(map[string]any)
	assert.Equal(t, "n", kept["note"])
	assert.Equal(t, float64(7), kept["priceNet"])
	assert.NotContains(t, string(raw), "dropped with the product")
}

func TestCanonical(t *testing.T) {
	raw, err := Canonical([]byte(`{"branding":{"siteName":"S","tagline":"x"},"home":{"title":"Legacy"},"githubSettings":{"token":"secret","owner":"o"}}`))
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "secret")
	assert.Contains(t, body, `"tagline": "x"`)
	assert.Contains(t, body, `"owner": "o"`)

	doc, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", doc.Home.Hero.Title, "legacy names are migrated")
	assert.Equal(t, models.CurrentSchemaVersion, doc.SchemaVersion)

	_, err = Canonical([]byte(`{"branding":{},"catalog":{"products":[{"id":"p","priceNet":-1}]}}`))
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
