package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ResponseError is a non-2xx backend reply. The gateway relays it as-is
// rather than reinterpreting it.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("backend responded %d", e.StatusCode)
}

func (e *ResponseError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// JSON returns the body when it is valid JSON.
func (e *ResponseError) JSON() (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(string(e.Body))
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

// Message pulls a human readable message out of the usual DRF error shapes:
// detail, error, message, then non_field_errors.
func (e *ResponseError) Message(fallback string) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return fallback
	}

	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		if msg := firstString(raw); msg != "" {
			return msg
		}
	}

	return fallback
}

func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}

	return ""
}

// AsResponseError unwraps err into a *ResponseError.
func AsResponseError(err error) (*ResponseError, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr, true
	}
	return nil, false
}
