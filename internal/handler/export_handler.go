package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/service"
	"gtrac-gateway/pkg/apierror"
)

type ExportHandler struct {
	exports *service.ExportService
	now     func() time.Time
}

func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports, now: time.Now}
}

func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, ok := resourceFromRequest(w, r)
	if !ok {
		return
	}

	token, ok := middleware.AccessTokenFromContext(r.Context())
	if !ok {
		writeDetailError(w, model.ErrMissingAccessToken)
		return
	}

	export, err := h.exports.Collect(r.Context(), token, res, r.URL.Query())
	if err != nil {
		writeExportError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, export.Rows); err != nil {
		writeDetailError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-export-%s.csv", res.Name, h.now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if export.Truncated {
		w.Header().Set("X-Export-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeExportError relays a failing page's status with a detail message.
func writeExportError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrExportNotSupported) {
		writeDetailError(w, apierror.New("Export is not available for this resource.", "resource", http.StatusNotFound))
		return
	}

	if respErr, ok := backend.AsResponseError(err); ok {
		writeJSON(w, respErr.StatusCode, model.DetailResponse{Detail: respErr.Message("Export failed")})
		return
	}

	writeDetailError(w, err)
}
