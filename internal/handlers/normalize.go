package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/ai"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/repair"
)

// HandleNormalize is the direct normalizer endpoint: raw text in, structured
// fields plus confidence out, no record created.
func (h *Handler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Text string            `json:"text"`
		Kind models.RecordKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Kind == "" {
		request.Kind = models.KindCard
	}
	if h.aiService == nil {
		h.writeStepError(w, "AI service is not configured", "", "normalization", http.StatusServiceUnavailable)
		return
	}

	var (
		result *ai.NormalizeResult
		err    error
	)
	if request.Kind == models.KindBook {
		result, err = h.aiService.NormalizeBookText(r.Context(), request.Text)
	} else {
		result, err = h.aiService.NormalizeCardText(r.Context(), request.Text)
	}
	if err != nil {
		if errors.Is(err, ai.ErrEmptyOCRText) {
			h.writeStepError(w, "No text to normalize", err.Error(), "normalization", http.StatusBadRequest)
			return
		}
		code, label := aiErrorStatus(err)
		h.writeStepError(w, label, err.Error(), "normalization", code)
		return
	}

	h.writeJSON(w, result)
}

// HandleNormalizeTitleDescription generates a listing title and description
// from an already-normalized field set.
func (h *Handler) HandleNormalizeTitleDescription(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Fields map[string]string `json:"normalized"`
		Kind   models.RecordKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(request.Fields) == 0 {
		h.writeError(w, "normalized fields are required", http.StatusBadRequest)
		return
	}
	if request.Kind == "" {
		request.Kind = models.KindCard
	}
	if h.aiService == nil {
		h.writeStepError(w, "AI service is not configured", "", "title_generation", http.StatusServiceUnavailable)
		return
	}

	var err error
	var listing repair.ListingResponse
	if request.Kind == models.KindBook {
		isbn := request.Fields["printISBN"]
		if isbn == "" {
			isbn = request.Fields["eISBN"]
		}
		listing, err = h.aiService.GenerateBookListing(r.Context(), request.Fields, isbn)
	} else {
		listing, err = h.aiService.GenerateCardListing(r.Context(), request.Fields)
	}
	if err != nil {
		code, label := aiErrorStatus(err)
		h.writeStepError(w, label, err.Error(), "title_generation", code)
		return
	}

	h.writeJSON(w, listing)
}
