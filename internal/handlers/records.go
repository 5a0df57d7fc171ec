package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/storage"
)

// HandleCards serves the card collection: GET lists all card records, POST
// creates one manually from already-normalized fields.
func (h *Handler) HandleCards(w http.ResponseWriter, r *http.Request) {
	h.handleCollection(w, r, models.KindCard)
}

// HandleCardDetail serves one card record: GET fetches, PUT applies a partial
// edit.
func (h *Handler) HandleCardDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/cards/")
	h.handleDetail(w, r, id, models.KindCard)
}

func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	h.handleCollection(w, r, models.KindBook)
}

func (h *Handler) HandleBookDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/books/")
	h.handleDetail(w, r, id, models.KindBook)
}

type createRecordRequest struct {
	Fields          map[string]string  `json:"normalized"`
	RawOCRText      string             `json:"rawOcrText"`
	SourceImage     models.SourceImage `json:"sourceImage"`
	AutoTitle       string             `json:"autoTitle"`
	AutoDescription string             `json:"autoDescription"`
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request, kind models.RecordKind) {
	switch r.Method {
	case "GET":
		records := h.store.List(kind)
		if records == nil {
			records = []models.Record{}
		}
		h.writeJSON(w, records)
	case "POST":
		var request createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		fields := request.Fields
		if fields == nil {
			fields = make(map[string]string)
		}
		if kind == models.KindBook {
			models.ApplyBookDefaults(fields)
		}

		record := &models.Record{
			ID:                uuid.NewString(),
			Kind:              kind,
			SourceImage:       request.SourceImage,
			RawOCRText:        request.RawOCRText,
			Fields:            fields,
			ConfidenceByField: make(map[string]float64),
			AutoTitle:         request.AutoTitle,
			AutoDescription:   request.AutoDescription,
			ProcessingStatus:  models.StatusReadyForReview,
			CreatedAt:         time.Now(),
			UpdatedAt:         time.Now(),
		}
		h.store.Create(record)

		// Manually created records get the same background listing treatment
		// as pipeline ones, unless the caller already supplied a title.
		if record.AutoTitle == "" && len(fields) > 0 {
			go h.completeListing(record.ID, kind, copyFields(fields))
		}

		stored, err := h.store.Get(record.ID)
		if err != nil {
			h.writeError(w, "Failed to load stored record", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, stored)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request, id string, kind models.RecordKind) {
	record, ok := h.getRecordOrError(w, id, kind)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, record)
	case "PUT":
		var update storage.RecordUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		updated, err := h.store.Update(id, update)
		if err != nil {
			h.writeError(w, "Record not found", http.StatusNotFound)
			return
		}
		h.writeJSON(w, updated)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
