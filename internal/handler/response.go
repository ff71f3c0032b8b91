package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/pkg/apierror"
)

const internalErrorMessage = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeAuthSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, model.AuthResponse{Success: true})
}

// writeAuthError renders errors on the /api/auth routes as {"error": ...}.
// Backend rejections keep their status; the message falls back when the
// backend body carries none.
func writeAuthError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, model.AuthResponse{Error: apiErr.Message})
		return
	}

	if respErr, ok := backend.AsResponseError(err); ok {
		writeJSON(w, respErr.StatusCode, model.AuthResponse{Error: respErr.Message(fallback)})
		return
	}

	slog.Error("auth request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, model.AuthResponse{Error: internalErrorMessage})
}

// writeDetailError renders errors on the dashboard routes as {"detail": ...}.
// A JSON backend error body is relayed untouched with its status.
func writeDetailError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, apiErr.HTTPStatus, model.DetailResponse{Detail: apiErr.Message})
		return
	case errors.Is(err, model.ErrMissingAccessToken):
		writeJSON(w, http.StatusUnauthorized, model.DetailResponse{Detail: "Unauthorized"})
		return
	}

	if respErr, ok := backend.AsResponseError(err); ok {
		if body, isJSON := respErr.JSON(); isJSON {
			writeRawJSON(w, respErr.StatusCode, body)
			return
		}
		writeJSON(w, respErr.StatusCode, model.DetailResponse{Detail: "Request failed"})
		return
	}

	slog.Error("dashboard request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, model.DetailResponse{Detail: internalErrorMessage})
}
