package model

import "encoding/json"

// AuthResponse is the envelope of every /api/auth route.
type AuthResponse struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DetailResponse is the envelope of gateway-generated dashboard errors; it
// mirrors the backend's own {"detail": ...} shape.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Page is one page of a paginated backend listing.
type Page struct {
	Count    int                          `json:"count"`
	Next     *string                      `json:"next"`
	Previous *string                      `json:"previous"`
	Results  *[]map[string]json.RawMessage `json:"results"`
}

func (p Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

func (p Page) Rows() []map[string]json.RawMessage {
	if p.Results == nil {
		return nil
	}
	return *p.Results
}
