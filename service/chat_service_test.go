package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securecam-site/models"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func conversation(n int) []models.ChatMessage {
	messages := make([]models.ChatMessage, n)
	for i := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages[i] = models.ChatMessage{Role: role, Content: fmt.Sprintf("message %d", i)}
	}
	return messages
}

func TestReply_MissingKey(t *testing.T) {
	svc := NewChatService("", "", "", noNetworkClient(t), nil)
	_, err := svc.Reply(context.Background(), models.ChatRequest{Messages: conversation(1)})

	var cerr *models.ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"AI_API_KEY"}, cerr.Missing)
}

func TestValidateMessages(t *testing.T) {
	assert.NoError(t, ValidateMessages(conversation(3)))
	assert.Error(t, ValidateMessages(nil))
	assert.EqualError(t, ValidateMessages([]models.ChatMessage{{Role: "system", Content: "x"}}), "messages[0].role must be user or assistant")
	assert.EqualError(t, ValidateMessages([]models.ChatMessage{{Role: "user", Content: "ok"}, {Role: "assistant", Content: " "}}), "messages[1].content must not be empty")
}

func TestReply_SendsTrimmedHistoryWithSystemPrompt(t *testing.T) {
	var sent chatCompletionRequest
	var auth string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Te recomiendo un kit de 4 cámaras."}}]}`), nil
	})}

	settings := func() models.AISettings { return models.AISettings{SystemPrompt: "Eres Sofía."} }
	svc := NewChatService("sk-test", "https://ai.invalid/v1/chat/completions", "test-model", client, settings)

	reply, err := svc.Reply(context.Background(), models.ChatRequest{
		Messages:     conversation(25),
		ProductsText: "- Cámara Domo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Te recomiendo un kit de 4 cámaras.", reply)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", sent.Model)
	require.Len(t, sent.Messages, MaxChatMessages+1)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Contains(t, sent.Messages[0].Content, "Eres Sofía.")
	assert.Contains(t, sent.Messages[0].Content, "- Cámara Domo")
	assert.Equal(t, "message 5", sent.Messages[1].Content, "oldest messages are dropped")
	assert.Equal(t, "message 24", sent.Messages[MaxChatMessages].Content)
}

func TestReply_UpstreamFailureFallsBack(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"error":"overloaded"}`), nil
	})}
	svc := NewChatService("sk-test", "", "", client, nil)

	reply, err := svc.Reply(context.Background(), models.ChatRequest{Messages: conversation(1)})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(models.AISettings{}, "", "  ")
	assert.Equal(t, defaultSystemPrompt, prompt)

	prompt = BuildSystemPrompt(models.AISettings{SystemPrompt: "Hola"}, "p1", "proyecto A")
	assert.Equal(t, "Hola\n\nCatálogo disponible:\np1\n\nProyectos realizados:\nproyecto A", prompt)
}
