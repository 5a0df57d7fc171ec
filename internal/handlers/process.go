package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ai"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/repair"
)

// backgroundListingTimeout bounds the detached title/description generation,
// which otherwise has no request context to cancel it.
const backgroundListingTimeout = 2 * time.Minute

type processRequest struct {
	Filename      string `json:"filename"`
	SourceImageID string `json:"sourceImageId"`
	URL           string `json:"url"`
}

// HandleProcessCard runs the full card pipeline: OCR the uploaded image,
// normalize the text into the card schema, store the record, and kick off
// listing generation in the background. The response carries the record with
// AutoTitle/AutoDescription still empty.
func (h *Handler) HandleProcessCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record, _, ok := h.runPipeline(w, r, models.KindCard)
	if !ok {
		return
	}

	h.writeJSON(w, map[string]any{
		"cardId": record.ID,
		"card":   record,
	})
}

// HandleProcessBook is the book variant: the 23-field schema with tier-3
// defaults applied, and per-stage timings in the response.
func (h *Handler) HandleProcessBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	record, timings, ok := h.runPipeline(w, r, models.KindBook)
	if !ok {
		return
	}
	timings["total"] = time.Since(start).Milliseconds()

	h.writeJSON(w, map[string]any{
		"bookId":  record.ID,
		"book":    record,
		"timings": timings,
	})
}

func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request, kind models.RecordKind) (models.Record, map[string]int64, bool) {
	var request processRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return models.Record{}, nil, false
	}
	if request.Filename == "" {
		h.writeError(w, "filename is required", http.StatusBadRequest)
		return models.Record{}, nil, false
	}

	if h.extractor == nil {
		h.writeStepError(w, "OCR is not configured", "", "ocr", http.StatusServiceUnavailable)
		return models.Record{}, nil, false
	}
	if h.aiService == nil {
		h.writeStepError(w, "AI service is not configured", "", "normalization", http.StatusServiceUnavailable)
		return models.Record{}, nil, false
	}

	// Base strips any path component a client might sneak into the filename.
	imagePath := filepath.Join(h.cfg.Upload.Dir, filepath.Base(request.Filename))
	timings := make(map[string]int64)

	ocrStart := time.Now()
	ocrResult, err := h.extractor.ExtractTextFromImage(r.Context(), imagePath)
	if err != nil {
		h.writeStepError(w, "OCR processing failed", err.Error(), "ocr", http.StatusInternalServerError)
		return models.Record{}, nil, false
	}
	timings["ocr"] = time.Since(ocrStart).Milliseconds()

	if strings.TrimSpace(ocrResult.RawText) == "" {
		h.writeStepError(w, "No text found in image", "the image contains no readable text", "ocr", http.StatusBadRequest)
		return models.Record{}, nil, false
	}

	normStart := time.Now()
	normalized, ok := h.normalizeForKind(r.Context(), w, ocrResult.RawText, kind)
	if !ok {
		return models.Record{}, nil, false
	}
	timings["normalization"] = time.Since(normStart).Milliseconds()

	fields := normalized.Fields
	if kind == models.KindBook {
		models.ApplyBookDefaults(fields)
	}

	record := &models.Record{
		ID:   uuid.NewString(),
		Kind: kind,
		SourceImage: models.SourceImage{
			ID:       request.SourceImageID,
			URL:      request.URL,
			Filename: filepath.Base(request.Filename),
		},
		RawOCRText:        ocrResult.RawText,
		OCRBlocks:         ocrResult.Blocks,
		Fields:            fields,
		ConfidenceByField: normalized.ConfidenceByField,
		ProcessingStatus:  models.StatusReadyForReview,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	h.store.Create(record)

	// The listing is filled in by a detached goroutine; the record is already
	// visible with empty AutoTitle/AutoDescription.
	go h.completeListing(record.ID, kind, copyFields(fields))

	stored, err := h.store.Get(record.ID)
	if err != nil {
		h.writeError(w, "Failed to load stored record", http.StatusInternalServerError)
		return models.Record{}, nil, false
	}
	return stored, timings, true
}

func (h *Handler) normalizeForKind(ctx context.Context, w http.ResponseWriter, rawText string, kind models.RecordKind) (*ai.NormalizeResult, bool) {
	var (
		result *ai.NormalizeResult
		err    error
	)
	if kind == models.KindBook {
		result, err = h.aiService.NormalizeBookText(ctx, rawText)
	} else {
		result, err = h.aiService.NormalizeCardText(ctx, rawText)
	}
	if err != nil {
		code, label := aiErrorStatus(err)
		h.writeStepError(w, label, err.Error(), "normalization", code)
		return nil, false
	}
	return result, true
}

// completeListing runs outside any request. Failures are logged on the record's
// error log; the caller that triggered processing never sees them and the
// listing fields simply stay empty.
func (h *Handler) completeListing(id string, kind models.RecordKind, fields map[string]string) {
	if h.aiService == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), backgroundListingTimeout)
	defer cancel()

	var (
		listing repair.ListingResponse
		err     error
	)
	if kind == models.KindBook {
		isbn := fields["printISBN"]
		if isbn == "" {
			isbn = fields["eISBN"]
		}
		listing, err = h.aiService.GenerateBookListing(ctx, fields, isbn)
	} else {
		listing, err = h.aiService.GenerateCardListing(ctx, fields)
	}
	if err != nil {
		slog.Error("Background listing generation failed", "record_id", id, "err", err)
		if storeErr := h.store.AppendError(id, "title_generation", err.Error()); storeErr != nil {
			slog.Error("Failed to record listing error", "record_id", id, "err", storeErr)
		}
		return
	}

	if _, err := h.store.ApplyEnrichment(id, listing.AutoTitle, listing.AutoDescription, listing.RetailPrice); err != nil {
		slog.Error("Failed to apply listing enrichment", "record_id", id, "err", err)
		return
	}
	slog.Info("Background listing completed", "record_id", id, "title_length", len(listing.AutoTitle))
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
