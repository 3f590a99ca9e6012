package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scorebook/internal/adapters/export"
)

// ReportsHandler serves the statistics pivot and the CSV exports.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandlePivot handles GET /matches/{matchID}/pivot. With ?format=text the
// pivot is rendered as an aligned table.
func (h *ReportsHandler) HandlePivot(w http.ResponseWriter, r *http.Request) {
	const op = "api.pivot"
	p, err := h.deps.StatsPivot(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, p)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, export.PivotText(p)+"\n")
	default:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("unknown format %q", format)))
	}
}

// HandleExportEvents handles GET /matches/{matchID}/export/events.csv.
func (h *ReportsHandler) HandleExportEvents(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	h.writeCSV(w, "api.export_events", fmt.Sprintf("%s-%s.csv", matchID, export.KindEventLog),
		func(buf io.Writer) error { return h.deps.ExportEventLog(r.Context(), matchID, buf) })
}

// HandleExportPivot handles GET /matches/{matchID}/export/pivot.csv.
func (h *ReportsHandler) HandleExportPivot(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	h.writeCSV(w, "api.export_pivot", fmt.Sprintf("%s-%s.csv", matchID, export.KindPivot),
		func(buf io.Writer) error { return h.deps.ExportPivot(r.Context(), matchID, buf) })
}

// writeCSV renders fully before writing so a failure still yields a JSON error.
func (h *ReportsHandler) writeCSV(w http.ResponseWriter, op, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
