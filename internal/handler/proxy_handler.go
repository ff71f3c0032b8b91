package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/pkg/apierror"
)

const maxProxyBodyBytes = 10 << 20

// ProxyHandler forwards dashboard API calls to the backend with the access
// cookie as bearer token. Backend responses are relayed, never reshaped.
type ProxyHandler struct {
	backend *backend.Client
}

func NewProxyHandler(client *backend.Client) *ProxyHandler {
	return &ProxyHandler{backend: client}
}

func (h *ProxyHandler) Collection(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceFromRequest(w, r)
	if !ok {
		return
	}
	h.forward(w, r, res.CollectionPath())
}

func (h *ProxyHandler) Item(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceFromRequest(w, r)
	if !ok {
		return
	}
	h.forward(w, r, res.ItemPath(chi.URLParam(r, "id")))
}

func (h *ProxyHandler) History(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceFromRequest(w, r)
	if !ok {
		return
	}
	h.forward(w, r, res.HistoryPath(chi.URLParam(r, "id")))
}

func (h *ProxyHandler) forward(w http.ResponseWriter, r *http.Request, path string) {
	token, ok := middleware.AccessTokenFromContext(r.Context())
	if !ok {
		writeDetailError(w, model.ErrMissingAccessToken)
		return
	}

	req := backend.Request{
		Method: r.Method,
		Path:   path,
		Query:  backend.RewriteQuery(r.URL.Query()),
		Token:  token,
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		req.NoCache = true
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProxyBodyBytes))
		if err != nil {
			writeDetailError(w, apierror.New("Request body too large.", "", http.StatusRequestEntityTooLarge))
			return
		}
		if len(body) == 0 && r.Method == http.MethodDelete {
			break
		}
		req.Body = bytes.NewReader(body)
		req.ContentType = r.Header.Get("Content-Type")
		if req.ContentType == "" {
			req.ContentType = "application/json"
		}
	}

	resp, err := h.backend.Do(r.Context(), req)
	if err != nil {
		writeDetailError(w, err)
		return
	}

	if !resp.OK() {
		writeDetailError(w, &backend.ResponseError{StatusCode: resp.StatusCode, Body: resp.Body})
		return
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0 {
		w.WriteHeader(resp.StatusCode)
		return
	}

	if !json.Valid(resp.Body) {
		slog.Error("backend returned non-JSON success body", "method", r.Method, "path", path, "status", resp.StatusCode)
		writeDetailError(w, fmt.Errorf("%w: non-JSON body from %s", model.ErrContractViolation, path))
		return
	}

	writeRawJSON(w, resp.StatusCode, resp.Body)
}

func resourceFromRequest(w http.ResponseWriter, r *http.Request) (backend.Resource, bool) {
	name := strings.ToLower(chi.URLParam(r, "resource"))
	res, ok := backend.LookupResource(name)
	if !ok {
		writeDetailError(w, apierror.New("Not found.", "resource", http.StatusNotFound))
		return backend.Resource{}, false
	}
	return res, true
}
