package client

import (
	"fmt"
	"net/http"
)

// DefaultErrorMessage is shown when the server gives no usable message.
const DefaultErrorMessage = "Something went wrong"

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	// Fields carries per-field validation messages, when the server sent them.
	Fields map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Unauthorized reports whether the server rejected the token.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}
