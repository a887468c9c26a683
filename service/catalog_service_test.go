package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
)

func sheetDoc() models.SiteData {
	return models.SiteData{
		Branding:  models.Branding{SiteName: "SecureCam", PrimaryColor: "#0a3d62"},
		Equipment: models.EquipmentContent{Title: "Equipos"},
		Catalog: models.Catalog{
			Categories: []models.Category{
				{ID: "cameras", Name: "Cámaras"},
				{ID: "recorders", Name: "Grabadores"},
			},
			Products: []models.Product{
				{ID: "dvr-4", Name: "DVR 4 canales", CategoryID: "recorders", PriceNet: 185000, Active: true},
				{ID: "cam-bullet", Name: "Cámara Bullet", CategoryID: "cameras", PriceNet: 65000, Active: true},
				{ID: "cam-old", Name: "Cámara Descontinuada", CategoryID: "cameras", PriceNet: 10000, Active: false},
				{ID: "cable", Name: "Cable UTP", CategoryID: "deleted", PriceNet: 30000, Active: true},
			},
		},
	}
}

func TestGroupByCategory(t *testing.T) {
	doc := sheetDoc()
	groups := GroupByCategory(doc.Catalog, doc.Catalog.ActiveProducts())

	require.Len(t, groups, 3)
	assert.Equal(t, "Cámaras", groups[0].Name)
	assert.Equal(t, "Grabadores", groups[1].Name)
	assert.Equal(t, "Otros", groups[2].Name)
	assert.Equal(t, "cable", groups[2].Products[0].ID)
	assert.Len(t, groups[0].Products, 1)
}

func TestGroupByCategory_SkipsEmptyCategories(t *testing.T) {
	catalog := models.Catalog{Categories: []models.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
	groups := GroupByCategory(catalog, []models.Product{{ID: "x", CategoryID: "b"}})

	require.Len(t, groups, 1)
	assert.Equal(t, "B", groups[0].Name)
}

func TestRenderCatalogHTML(t *testing.T) {
	svc, err := NewCatalogService("http://localhost:8080/", "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", svc.baseURL)

	html, err := svc.RenderCatalogHTML(sheetDoc(), false)
	require.NoError(t, err)
	assert.Contains(t, html, "SecureCam")
	assert.Contains(t, html, "Cámara Bullet")
	assert.Contains(t, html, "$65.000")
	assert.NotContains(t, html, "Cámara Descontinuada")

	html, err = svc.RenderCatalogHTML(sheetDoc(), true)
	require.NoError(t, err)
	assert.Contains(t, html, "Cámara Descontinuada")
	assert.True(t, strings.Index(html, "Grabadores") < strings.Index(html, "Otros"))
}

func TestRenderQuoteHTML(t *testing.T) {
	svc, err := NewCatalogService("http://localhost:8080", "")
	require.NoError(t, err)

	cart := models.Cart{"cam-bullet": 4, "dvr-4": 1, "gone": 3}
	html, err := svc.RenderQuoteHTML(sheetDoc(), cart, "Ana", models.SystemAnalog)
	require.NoError(t, err)

	assert.Contains(t, html, "para Ana")
	assert.Contains(t, html, "$260.000")
	assert.Contains(t, html, "$445.000")
}
