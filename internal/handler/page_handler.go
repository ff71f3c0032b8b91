package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/middleware"
	"gtrac-gateway/internal/model"
	"gtrac-gateway/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login", "dashboard", "list", "detail", "not_found", "error"}

type pageData struct {
	Nav      []backend.Resource
	User     model.DashboardUser
	Resource backend.Resource
	ID       string
	Search   string
	Count    int
	Page     int
	PrevPage int
	NextPage int
	Columns  []string
	Rows     []tableRow
	Fields   []field
	Message  string
}

type tableRow struct {
	ID    string
	Cells []string
}

type field struct {
	Name  string
	Value string
}

// PageHandler renders the server side pages. Every page except login sits
// behind the session gate, so a token is always present in the context.
type PageHandler struct {
	users   *service.UserService
	backend *backend.Client
	pages   map[string]*template.Template
}

func NewPageHandler(users *service.UserService, client *backend.Client) (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{users: users, backend: client, pages: pages}, nil
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", pageData{})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.AccessTokenFromContext(r.Context())

	user, err := h.users.Current(r.Context(), token)
	if err != nil {
		h.renderBackendError(w, r, err, pageData{})
		return
	}

	h.render(w, http.StatusOK, "dashboard", pageData{User: user})
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	res, ok := backend.LookupResource(strings.ToLower(chi.URLParam(r, "resource")))
	if !ok {
		h.render(w, http.StatusNotFound, "not_found", pageData{})
		return
	}

	token, _ := middleware.AccessTokenFromContext(r.Context())
	pageNumber := 1
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 1 {
		pageNumber = n
	}

	query := backend.RewriteQuery(r.URL.Query())
	query.Set("page", strconv.Itoa(pageNumber))

	var page model.Page
	if err := h.backend.GetJSON(r.Context(), res.CollectionPath(), query, token, &page); err != nil {
		h.renderBackendError(w, r, err, pageData{Resource: res})
		return
	}

	records := page.Rows()
	rows := make([]service.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, service.Row(record))
	}
	columns := service.Columns(rows)

	data := pageData{
		Resource: res,
		Search:   r.URL.Query().Get("q"),
		Count:    page.Count,
		Page:     pageNumber,
		Columns:  columns,
		Rows:     make([]tableRow, 0, len(rows)),
	}
	if page.Previous != nil && pageNumber > 1 {
		data.PrevPage = pageNumber - 1
	}
	if page.HasNext() {
		data.NextPage = pageNumber + 1
	}

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = service.FormatCell(row[col])
		}
		data.Rows = append(data.Rows, tableRow{ID: service.FormatCell(row["id"]), Cells: cells})
	}

	h.render(w, http.StatusOK, "list", data)
}

// Detail renders one record. A backend 404 becomes a not-found page rather
// than an error.
func (h *PageHandler) Detail(w http.ResponseWriter, r *http.Request) {
	res, ok := backend.LookupResource(strings.ToLower(chi.URLParam(r, "resource")))
	if !ok {
		h.render(w, http.StatusNotFound, "not_found", pageData{})
		return
	}

	id := chi.URLParam(r, "id")
	token, _ := middleware.AccessTokenFromContext(r.Context())

	var record map[string]json.RawMessage
	if err := h.backend.GetJSON(r.Context(), res.ItemPath(id), nil, token, &record); err != nil {
		h.renderBackendError(w, r, err, pageData{Resource: res, ID: id})
		return
	}

	data := pageData{Resource: res, ID: id}
	for _, name := range service.Columns([]service.Row{record}) {
		data.Fields = append(data.Fields, field{Name: name, Value: service.FormatCell(record[name])})
	}

	h.render(w, http.StatusOK, "detail", data)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "not_found", pageData{})
}

func (h *PageHandler) renderBackendError(w http.ResponseWriter, r *http.Request, err error, data pageData) {
	respErr, ok := backend.AsResponseError(err)
	switch {
	case ok && respErr.StatusCode == http.StatusUnauthorized:
		http.Redirect(w, r, middleware.LoginPath, http.StatusTemporaryRedirect)
	case ok && respErr.IsNotFound():
		h.render(w, http.StatusNotFound, "not_found", data)
	case ok:
		data.Message = respErr.Message("Request failed")
		h.render(w, respErr.StatusCode, "error", data)
	default:
		slog.Error("page backend call failed", "path", r.URL.Path, "error", err)
		data.Message = internalErrorMessage
		h.render(w, http.StatusInternalServerError, "error", data)
	}
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	if name != "login" {
		data.Nav = backend.Resources
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := h.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("render page", "page", name, "error", err)
	}
}
