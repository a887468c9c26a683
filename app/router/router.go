package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"securecam-site/app/controller"
)

type Controllers struct {
	SiteData   *controller.SiteDataController
	Upload     *controller.UploadController
	AI         *controller.AIController
	Recommend  *controller.RecommendController
	Catalog    *controller.CatalogController
	AdminToken string
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not found"}`))
}

// SetupRoutes builds the HTTP handler for every endpoint
func SetupRoutes(controllers *Controllers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(controller.MethodNotAllowed)

	// Ping endpoint
	r.Get("/ping", pingHandler)

	// Assistant; answers 405 to anything but POST, like save and upload below
	r.Post("/api/ai", controllers.AI.Chat)

	// Project builder
	r.Post("/api/recommend", controllers.Recommend.Recommend)
	r.Post("/api/quote/render", controllers.Catalog.RenderQuote)

	// Public reads
	r.Get("/api/site-data", controllers.SiteData.GetSiteData)
	r.Get("/api/site-data/events", controllers.SiteData.Events)
	r.Get("/api/catalog", controllers.Catalog.GetCatalog)
	r.Get("/api/catalog/render", controllers.Catalog.RenderCatalog)
	r.Get("/api/catalog.pdf", controllers.Catalog.DownloadCatalogPDF)

	// Admin edits
	r.Group(func(r chi.Router) {
		r.Use(controller.RequireAdmin(controllers.AdminToken))

		// Both write the live document or the GitHub repository
		r.Post("/api/save-site-data", controllers.SiteData.SaveSiteData)
		r.Post("/api/upload-image", controllers.Upload.UploadImage)

		r.Put("/api/site-data", controllers.SiteData.ReplaceSiteData)
		r.Post("/api/site-data/refresh", controllers.SiteData.RefreshSiteData)
		r.Patch("/api/site-data/{section}", controllers.SiteData.PatchSection)

		r.Put("/api/catalog/products/{id}", controllers.Catalog.UpsertProduct)
		r.Delete("/api/catalog/products/{id}", controllers.Catalog.DeleteProduct)
		r.Put("/api/catalog/categories/{id}", controllers.Catalog.UpsertCategory)
		r.Delete("/api/catalog/categories/{id}", controllers.Catalog.DeleteCategory)
	})

	return r
}
