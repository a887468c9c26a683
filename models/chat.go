package models

// ChatMessage is one turn of the project builder conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request body for POST /api/ai
type ChatRequest struct {
	Messages     []ChatMessage `json:"messages"`
	ProductsText string        `json:"productsText,omitempty"`
	ProjectsText string        `json:"projectsText,omitempty"`
}

// ChatResponse represents the response body for POST /api/ai
type ChatResponse struct {
	Reply string `json:"reply"`
}
