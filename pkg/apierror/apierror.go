package apierror

import (
	"fmt"
	"net/http"
)

// APIError is an error produced by the gateway itself, as opposed to one
// relayed from the backend. Message is safe to show to the client.
type APIError struct {
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Field != "" {
		return fmt.Sprintf("%d %s (%s)", e.HTTPStatus, e.Message, e.Field)
	}

	return fmt.Sprintf("%d %s", e.HTTPStatus, e.Message)
}

func New(message string, field string, status int) *APIError {
	return &APIError{Message: message, Field: field, HTTPStatus: status}
}

func BadRequest(message string) *APIError {
	return New(message, "", http.StatusBadRequest)
}

func Unauthorized(message string) *APIError {
	return New(message, "", http.StatusUnauthorized)
}
