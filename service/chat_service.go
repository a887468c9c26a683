package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"securecam-site/models"
)

// Chat limits and defaults
const (
	MaxChatMessages     = 20
	defaultChatModel    = "gpt-4o-mini"
	defaultChatURL      = "https://api.openai.com/v1/chat/completions"
	defaultSystemPrompt = "Eres un asesor de seguridad electrónica. Responde en español y recomienda solo productos del catálogo."
)

// FallbackReply is returned when the chat backend cannot answer
const FallbackReply = "Lo siento, en este momento no puedo responder. Por favor intenta de nuevo en unos minutos o escríbenos por WhatsApp."

// ChatServiceInterface defines the contract for the project builder assistant
type ChatServiceInterface interface {
	Reply(ctx context.Context, req models.ChatRequest) (string, error)
}

// ChatService calls an OpenAI-compatible chat completions endpoint
type ChatService struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	settings   func() models.AISettings
}

// NewChatService creates a new ChatService. settings supplies the current
// assistant configuration of the site document; it may be nil.
func NewChatService(apiKey, apiURL, model string, httpClient *http.Client, settings func() models.AISettings) *ChatService {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultChatURL
	}
	if strings.TrimSpace(model) == "" {
		model = defaultChatModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatService{apiKey: apiKey, apiURL: apiURL, model: model, httpClient: httpClient, settings: settings}
}

// Ensure ChatService implements ChatServiceInterface
var _ ChatServiceInterface = (*ChatService)(nil)

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message models.ChatMessage `json:"message"`
	} `json:"choices"`
}

// ValidateMessages checks the conversation sent by the browser
func ValidateMessages(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return models.NewValidationError("messages must be a non-empty array")
	}
	for i, m := range messages {
		if m.Role != "user" && m.Role != "assistant" {
			return models.NewValidationError("messages[%d].role must be user or assistant", i)
		}
		if strings.TrimSpace(m.Content) == "" {
			return models.NewValidationError("messages[%d].content must not be empty", i)
		}
	}
	return nil
}

// BuildSystemPrompt combines the configured prompt with the catalog and project summaries
func BuildSystemPrompt(settings models.AISettings, productsText, projectsText string) string {
	prompt := strings.TrimSpace(settings.SystemPrompt)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	var b strings.Builder
	b.WriteString(prompt)
	if t := strings.TrimSpace(productsText); t != "" {
		b.WriteString("\n\nCatálogo disponible:\n")
		b.WriteString(t)
	}
	if t := strings.TrimSpace(projectsText); t != "" {
		b.WriteString("\n\nProyectos realizados:\n")
		b.WriteString(t)
	}
	return b.String()
}

// Reply answers the conversation. Missing configuration and bad input are
// errors; any upstream failure yields FallbackReply with a nil error.
func (s *ChatService) Reply(ctx context.Context, req models.ChatRequest) (string, error) {
	if s.apiKey == "" {
		return "", &models.ConfigError{Missing: []string{"AI_API_KEY"}}
	}
	if err := ValidateMessages(req.Messages); err != nil {
		return "", err
	}

	history := req.Messages
	if len(history) > MaxChatMessages {
		history = history[len(history)-MaxChatMessages:]
	}

	var settings models.AISettings
	if s.settings != nil {
		settings = s.settings()
	}
	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, models.ChatMessage{Role: "system", Content: BuildSystemPrompt(settings, req.ProductsText, req.ProjectsText)})
	messages = append(messages, history...)

	reply, err := s.complete(ctx, messages)
	if err != nil {
		log.Printf("❌ ChatReply: upstream failed, sending fallback: %v", err)
		return FallbackReply, nil
	}
	return reply, nil
}

func (s *ChatService) complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{Model: s.model, Messages: messages, Temperature: 0.4})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", upstreamError("chat", "completion", res)
	}

	var payload chatCompletionResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(payload.Choices) == 0 || strings.TrimSpace(payload.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat response has no content")
	}
	return payload.Choices[0].Message.Content, nil
}
