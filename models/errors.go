package models

import "fmt"

// ValidationError reports bad caller input. It maps to 400 unless Status overrides it.
type ValidationError struct {
	Message string
	Status  int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError reports a non-2xx answer from GitHub or the chat backend.
// Body is the upstream response body, unmodified.
type UpstreamError struct {
	Service    string
	Stage      string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d", e.Service, e.Stage, e.StatusCode)
}

// ConfigError reports missing server configuration such as credentials
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %v", e.Missing)
}
