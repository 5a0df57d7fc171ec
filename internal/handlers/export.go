package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/export"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

// HandleExport routes /api/export/{kind}/{format} where kind is card|book and
// format is csv|sheets|parquet.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/export/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		h.writeError(w, "Invalid export path, expected /api/export/{kind}/{format}", http.StatusBadRequest)
		return
	}

	kind := models.RecordKind(parts[0])
	if kind != models.KindCard && kind != models.KindBook {
		h.writeError(w, "Unknown record kind: "+parts[0], http.StatusBadRequest)
		return
	}

	schema := export.SchemaForKind(kind)

	switch parts[1] {
	case "csv":
		h.exportCSV(w, r, kind, schema)
	case "sheets":
		h.exportSheets(w, r, kind, schema)
	case "parquet":
		h.exportParquet(w, kind)
	default:
		h.writeError(w, "Unknown export format: "+parts[1], http.StatusBadRequest)
	}
}

type exportRequest struct {
	ID string `json:"id"`
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request, kind models.RecordKind, schema export.Schema) {
	record, ok := h.exportTarget(w, r, kind)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, record, schema); err != nil {
		h.writeError(w, "Failed to build CSV: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.store.SetStatus(record.ID, models.StatusExported); err != nil {
		h.writeError(w, "Failed to update record status", http.StatusInternalServerError)
		return
	}

	filename := export.SKU(record) + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.writeError(w, "Failed to write CSV response", http.StatusInternalServerError)
	}
}

func (h *Handler) exportSheets(w http.ResponseWriter, r *http.Request, kind models.RecordKind, schema export.Schema) {
	if h.sheets == nil {
		h.writeError(w, "Google Sheets export is not configured", http.StatusServiceUnavailable)
		return
	}

	record, ok := h.exportTarget(w, r, kind)
	if !ok {
		return
	}

	spreadsheetID := h.cfg.Sheets.CardSpreadsheetID
	sheetName := h.cfg.Sheets.CardSheetName
	if kind == models.KindBook {
		spreadsheetID = h.cfg.Sheets.BookSpreadsheetID
		sheetName = h.cfg.Sheets.BookSheetName
	}
	if spreadsheetID == "" {
		h.writeError(w, "No spreadsheet configured for "+string(kind)+" exports", http.StatusServiceUnavailable)
		return
	}

	row, err := h.sheets.Export(r.Context(), record, schema, spreadsheetID, sheetName)
	if err != nil {
		h.writeError(w, "Google Sheets export failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	if err := h.store.SetStatus(record.ID, models.StatusExported); err != nil {
		h.writeError(w, "Failed to update record status", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"success":       true,
		"row":           row,
		"spreadsheetId": spreadsheetID,
		"sheetName":     sheetName,
	})
}

func (h *Handler) exportParquet(w http.ResponseWriter, kind models.RecordKind) {
	records := h.store.List(kind)

	var buf bytes.Buffer
	if err := export.WriteParquet(&buf, records); err != nil {
		h.writeError(w, "Failed to build parquet archive: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s-archive-%s.parquet", kind, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.apache.parquet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.writeError(w, "Failed to write parquet response", http.StatusInternalServerError)
	}
}

func (h *Handler) exportTarget(w http.ResponseWriter, r *http.Request, kind models.RecordKind) (models.Record, bool) {
	var request exportRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return models.Record{}, false
	}
	if request.ID == "" {
		h.writeError(w, "id is required", http.StatusBadRequest)
		return models.Record{}, false
	}
	return h.getRecordOrError(w, request.ID, kind)
}
