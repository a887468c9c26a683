package controller

import (
	"encoding/json"
	"log"
	"net/http"

	"securecam-site/models"
	"securecam-site/recommender"
	"securecam-site/sitedata"
)

// RecommendController runs the questionnaire recommender against the live catalog
type RecommendController struct {
	store  *sitedata.Store
	engine *recommender.Engine
}

// NewRecommendController creates a new RecommendController
func NewRecommendController(store *sitedata.Store, engine *recommender.Engine) *RecommendController {
	return &RecommendController{
		store:  store,
		engine: engine,
	}
}

// Recommend handles POST /api/recommend
// Counts the cameras already in the cart, suggests the rest of the system and returns the merged cart
func (c *RecommendController) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		log.Printf("❌ Recommend: Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	doc, _ := c.store.Snapshot()
	resp := c.engine.Plan(doc.Catalog.ActiveProducts(), req)

	log.Printf("🧮 Recommend: system=%s cameras=%d suggestions=%d", resp.System, resp.CamerasCount, len(resp.Suggestions))
	writeJSON(w, http.StatusOK, resp)
}
