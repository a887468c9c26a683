package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"securecam-site/models"
)

// ErrorResponse is the failure body of every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ writeJSON: Error encoding response: %v", err)
	}
}

// writeError writes {error, details?}
func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// MethodNotAllowed answers 405 in the uniform error shape
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	log.Printf("❌ %s: Method not allowed: %s", r.URL.Path, r.Method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// writeServiceError maps a service error to its status code:
// validation 400 (or its own status), configuration 500, upstream 500 with the upstream body as details
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var validation *models.ValidationError
	var config *models.ConfigError
	var upstream *models.UpstreamError

	switch {
	case errors.As(err, &validation):
		status := http.StatusBadRequest
		if validation.Status != 0 {
			status = validation.Status
		}
		log.Printf("❌ %s: %s", op, validation.Message)
		writeError(w, status, validation.Message, nil)
	case errors.As(err, &config):
		log.Printf("❌ %s: missing configuration %s", op, strings.Join(config.Missing, ", "))
		writeError(w, http.StatusInternalServerError, "Server is missing configuration: "+strings.Join(config.Missing, ", "),
			map[string]any{"missing": config.Missing})
	case errors.As(err, &upstream):
		log.Printf("❌ %s: %v", op, upstream)
		writeError(w, http.StatusInternalServerError, upstream.Error(), upstreamDetails(upstream))
	default:
		log.Printf("❌ %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
	}
}

// upstreamDetails passes a JSON upstream body through as-is, anything else as a string
func upstreamDetails(e *models.UpstreamError) any {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return map[string]any{"status": e.StatusCode}
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}
