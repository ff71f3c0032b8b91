package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"gtrac-gateway/internal/backend"
	"gtrac-gateway/internal/model"
)

type Row = map[string]json.RawMessage

// Export is the accumulated result of walking a paginated listing.
type Export struct {
	Rows      []Row
	Pages     int
	Truncated bool
}

// ExportService walks backend pages sequentially. Any failing page aborts
// the whole export; there is no partial result.
type ExportService struct {
	backend  *backend.Client
	pageSize int
	maxPages int
}

func NewExportService(client *backend.Client, pageSize int, maxPages int) *ExportService {
	if pageSize <= 0 {
		pageSize = 500
	}
	if maxPages <= 0 {
		maxPages = 200
	}
	return &ExportService{backend: client, pageSize: pageSize, maxPages: maxPages}
}

func (s *ExportService) Collect(ctx context.Context, accessToken string, res backend.Resource, filters url.Values) (Export, error) {
	if !res.Exportable {
		return Export{}, fmt.Errorf("%w: %s", model.ErrExportNotSupported, res.Name)
	}

	query := backend.RewriteQuery(filters)
	query.Del("page")
	query.Set("page_size", strconv.Itoa(s.pageSize))

	var out Export
	for page := 1; page <= s.maxPages; page++ {
		query.Set("page", strconv.Itoa(page))

		var p model.Page
		if err := s.backend.GetJSON(ctx, res.CollectionPath(), query, accessToken, &p); err != nil {
			return Export{}, fmt.Errorf("export %s page %d: %w", res.Name, page, err)
		}
		if p.Results == nil {
			return Export{}, fmt.Errorf("export %s page %d: %w: results missing", res.Name, page, model.ErrContractViolation)
		}

		out.Rows = append(out.Rows, p.Rows()...)
		out.Pages++

		if !p.HasNext() {
			return out, nil
		}
	}

	out.Truncated = true
	slog.Warn("export stopped at page ceiling", "resource", res.Name, "pages", out.Pages, "rows", len(out.Rows))
	return out, nil
}

// Columns is "id" (when present) followed by the sorted union of all keys.
func Columns(rows []Row) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for key := range row {
			seen[key] = struct{}{}
		}
	}

	_, hasID := seen["id"]
	delete(seen, "id")

	cols := make([]string, 0, len(seen)+1)
	for key := range seen {
		cols = append(cols, key)
	}
	sort.Strings(cols)

	if hasID {
		cols = append([]string{"id"}, cols...)
	}
	return cols
}

// WriteCSV writes a header row and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cols := Columns(rows)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			record[i] = FormatCell(row[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatCell renders one JSON value as flat text: null is empty, scalar
// arrays are joined with "; " and objects stay compact JSON.
func FormatCell(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				item = bytes.TrimSpace(item)
				if len(item) > 0 && (item[0] == '{' || item[0] == '[') {
					return compact(trimmed)
				}
				parts = append(parts, FormatCell(item))
			}
			return strings.Join(parts, "; ")
		}
	case '{':
		return compact(trimmed)
	}

	return string(trimmed)
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
