package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"securecam-site/models"
	"securecam-site/service"
	"securecam-site/sitedata"
)

// catalogRenderPath is the page headless Chrome prints for the catalog PDF
const catalogRenderPath = "/api/catalog/render"

// CatalogController handles catalog reads, edits and printable sheets
type CatalogController struct {
	store          *sitedata.Store
	catalogService service.CatalogServiceInterface
	adminToken     string
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(store *sitedata.Store, catalogService service.CatalogServiceInterface, adminToken string) *CatalogController {
	return &CatalogController{
		store:          store,
		catalogService: catalogService,
		adminToken:     adminToken,
	}
}

// CatalogResponse is the body of GET /api/catalog
type CatalogResponse struct {
	OK         bool              `json:"ok"`
	Revision   string            `json:"revision"`
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
}

// QuoteRequest is the body of POST /api/quote/render
type QuoteRequest struct {
	Cart     models.Cart       `json:"cart"`
	Customer string            `json:"customer"`
	System   models.SystemType `json:"system"`
}

// isAdmin reports whether r carries the admin token; with no token configured everyone is admin
func (c *CatalogController) isAdmin(r *http.Request) bool {
	if c.adminToken == "" {
		return true
	}
	return hasAdminToken(r, c.adminToken)
}

// GetCatalog handles GET /api/catalog?all=1
// Inactive products are only listed for admins asking for all=1
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	doc, revision := c.store.Snapshot()

	products := doc.Catalog.ActiveProducts()
	if r.URL.Query().Get("all") == "1" {
		if !c.isAdmin(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		products = doc.Catalog.Products
	}
	if products == nil {
		products = []models.Product{}
	}
	categories := doc.Catalog.Categories
	if categories == nil {
		categories = []models.Category{}
	}

	writeJSON(w, http.StatusOK, CatalogResponse{OK: true, Revision: revision, Categories: categories, Products: products})
}

// UpsertProduct handles PUT /api/catalog/products/{id}
func (c *CatalogController) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var product models.Product
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&product); err != nil {
		log.Printf("❌ UpsertProduct: Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), nil)
		return
	}
	if product.ID != "" && product.ID != id {
		writeError(w, http.StatusBadRequest, "product id does not match the URL", nil)
		return
	}
	product.ID = id

	revision, err := c.store.UpsertProduct(r.Context(), product)
	if err != nil {
		writeServiceError(w, "UpsertProduct", err)
		return
	}
	log.Printf("✅ UpsertProduct: %s saved", id)
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: revision})
}

// DeleteProduct handles DELETE /api/catalog/products/{id}
func (c *CatalogController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := c.store.DeleteProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, "DeleteProduct", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("product %s not found", id), nil)
		return
	}
	log.Printf("🗑️  DeleteProduct: %s removed", id)
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: c.store.Revision()})
}

// UpsertCategory handles PUT /api/catalog/categories/{id}
func (c *CatalogController) UpsertCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var category models.Category
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&category); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), nil)
		return
	}
	category.ID = id

	revision, err := c.store.UpsertCategory(r.Context(), category)
	if err != nil {
		writeServiceError(w, "UpsertCategory", err)
		return
	}
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: revision})
}

// DeleteCategory handles DELETE /api/catalog/categories/{id}
// Products of the category are kept and listed under "Otros"
func (c *CatalogController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := c.store.DeleteCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, "DeleteCategory", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("category %s not found", id), nil)
		return
	}
	writeJSON(w, http.StatusOK, RevisionResponse{OK: true, Revision: c.store.Revision()})
}

// RenderCatalog handles GET /api/catalog/render
// Returns the catalog sheet HTML (also loaded by headless Chrome for the PDF)
func (c *CatalogController) RenderCatalog(w http.ResponseWriter, r *http.Request) {
	doc, _ := c.store.Snapshot()

	htmlContent, err := c.catalogService.RenderCatalogHTML(doc, false)
	if err != nil {
		log.Printf("❌ RenderCatalog: Error rendering HTML: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render catalog: %v", err), nil)
		return
	}
	writeHTML(w, "RenderCatalog", htmlContent)
}

// DownloadCatalogPDF handles GET /api/catalog.pdf
func (c *CatalogController) DownloadCatalogPDF(w http.ResponseWriter, r *http.Request) {
	pdfData, err := c.catalogService.GeneratePDF(r.Context(), catalogRenderPath)
	if err != nil {
		log.Printf("❌ DownloadCatalogPDF: Error generating PDF: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err), nil)
		return
	}

	filename := fmt.Sprintf("catalogo_%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfData); err != nil {
		log.Printf("❌ DownloadCatalogPDF: Error writing PDF response: %v", err)
	}
}

// RenderQuote handles POST /api/quote/render
// Returns the quote sheet HTML for a cart; unknown product ids are skipped
func (c *CatalogController) RenderQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err), nil)
		return
	}
	if len(req.Cart) == 0 {
		writeError(w, http.StatusBadRequest, "cart must not be empty", nil)
		return
	}

	doc, _ := c.store.Snapshot()
	htmlContent, err := c.catalogService.RenderQuoteHTML(doc, req.Cart, strings.TrimSpace(req.Customer), req.System)
	if err != nil {
		log.Printf("❌ RenderQuote: Error rendering HTML: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render quote: %v", err), nil)
		return
	}
	writeHTML(w, "RenderQuote", htmlContent)
}

func writeHTML(w http.ResponseWriter, op, htmlContent string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ %s: Error writing HTML response: %v", op, err)
	}
}
