package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ai"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/config"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/export"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ocr"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/storage"
)

type Handler struct {
	cfg       *config.Config
	store     *storage.RecordStore
	extractor ocr.TextExtractor
	aiService *ai.Service

	// sheets is nil when no Sheets credentials are configured; the sheets
	// export endpoint reports that instead of failing at startup.
	sheets *export.SheetsWriter
}

func New(cfg *config.Config, store *storage.RecordStore, extractor ocr.TextExtractor, aiService *ai.Service, sheets *export.SheetsWriter) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		aiService: aiService,
		sheets:    sheets,
	}
}

// errorResponse is the error body shape for all API endpoints. Step tags the
// pipeline stage that failed so the frontend can tell an OCR problem from a
// normalization one.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Step    string `json:"step,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

func (h *Handler) writeStepError(w http.ResponseWriter, errLabel, message, step string, code int) {
	slog.Error(errLabel, "step", step, "detail", message)
	if !h.cfg.Development() {
		// Upstream error detail can leak model/provider internals.
		message = ""
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errLabel, Message: message, Step: step}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

// aiErrorStatus maps a normalization or generation failure to the status code
// and label the API reports.
func aiErrorStatus(err error) (int, string) {
	switch providers.KindOf(err) {
	case providers.KindTransient:
		return http.StatusServiceUnavailable, "AI service temporarily unavailable"
	case providers.KindAccessDenied:
		message := err.Error()
		if strings.Contains(message, "401") || strings.Contains(message, "API_KEY") || strings.Contains(strings.ToLower(message), "unauthenticated") {
			return http.StatusUnauthorized, "AI service authentication failed"
		}
		return http.StatusForbidden, "AI service access denied"
	default:
		return http.StatusInternalServerError, "AI processing failed"
	}
}

func (h *Handler) getRecordOrError(w http.ResponseWriter, id string, kind models.RecordKind) (models.Record, bool) {
	record, err := h.store.Get(id)
	if err != nil || record.Kind != kind {
		h.writeError(w, "Record not found", http.StatusNotFound)
		return models.Record{}, false
	}
	return record, true
}

// File operation helpers
func (h *Handler) ensureUploadsDir() error {
	return os.MkdirAll(h.cfg.Upload.Dir, 0755)
}
