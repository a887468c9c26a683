package controller

import (
	"encoding/json"
	"log"
	"net/http"

	"securecam-site/models"
	"securecam-site/service"
)

// AIController handles the project builder assistant
type AIController struct {
	service service.ChatServiceInterface
}

// NewAIController creates a new AIController
func NewAIController(svc service.ChatServiceInterface) *AIController {
	return &AIController{service: svc}
}

// Chat handles POST /api/ai
// Upstream failures still answer 200 with a generic reply
func (c *AIController) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w, r)
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		log.Printf("❌ Chat: Failed to decode request body: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	reply, err := c.service.Reply(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Chat", err)
		return
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
