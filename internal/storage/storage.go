package storage

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

// ErrNotFound is returned for lookups against record IDs the store has never
// seen (or that belong to a different kind).
var ErrNotFound = errors.New("record not found")

// RecordStore is the process-wide in-memory record map. Records live until
// the process exits; there is no eviction and no persistence.
//
// Every mutation goes through the store under its lock and bumps the record's
// Version, so the background listing generator can merge its result without
// overwriting a user edit that landed in the meantime.
type RecordStore struct {
	records map[string]*models.Record
	mu      sync.RWMutex
}

func New() *RecordStore {
	return &RecordStore{
		records: make(map[string]*models.Record),
	}
}

// Create inserts a record. The record is visible to Get the moment this
// returns, even though AutoTitle/AutoDescription may still be empty.
func (s *RecordStore) Create(record *models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Version = 1
	s.records[record.ID] = record
}

// Get returns a copy of the record so callers can read it without holding the
// store lock.
func (s *RecordStore) Get(id string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}
	return copyRecord(record), nil
}

// List returns copies of all records of the given kind, unordered.
func (s *RecordStore) List(kind models.RecordKind) []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Record
	for _, record := range s.records {
		if record.Kind == kind {
			out = append(out, copyRecord(record))
		}
	}
	return out
}

// RecordUpdate carries a user-submitted partial edit.
type RecordUpdate struct {
	Fields          map[string]string `json:"normalized"`
	AutoTitle       *string           `json:"autoTitle"`
	AutoDescription *string           `json:"autoDescription"`
}

// Update merges a partial edit into the record and returns the merged copy.
// Field edits do not touch ConfidenceByField: confidence describes extraction
// certainty, not the edited value.
func (s *RecordStore) Update(id string, update RecordUpdate) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}

	for name, value := range update.Fields {
		record.Fields[name] = value
	}
	if update.AutoTitle != nil {
		record.AutoTitle = *update.AutoTitle
	}
	if update.AutoDescription != nil {
		record.AutoDescription = *update.AutoDescription
	}
	s.touch(record)
	return copyRecord(record), nil
}

// ApplyEnrichment merges the background generator's result into the record,
// writing only the fields the background task owns: the listing title and
// description, and (for books) an estimated retail price. The merge happens
// under the store lock against the current record state, so a user edit that
// raced the generation is preserved.
//
// The price is applied only when the record has an ISBN and no price is
// already present.
func (s *RecordStore) ApplyEnrichment(id, title, description, retailPrice string) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return models.Record{}, ErrNotFound
	}

	record.AutoTitle = title
	record.AutoDescription = description

	if retailPrice = strings.TrimSpace(retailPrice); retailPrice != "" {
		hasISBN := record.Fields["printISBN"] != "" || record.Fields["eISBN"] != ""
		if hasISBN && strings.TrimSpace(record.Fields["retailPrice"]) == "" {
			record.Fields["retailPrice"] = retailPrice
			if record.ConfidenceByField == nil {
				record.ConfidenceByField = make(map[string]float64)
			}
			if _, ok := record.ConfidenceByField["retailPrice"]; !ok {
				record.ConfidenceByField["retailPrice"] = 0.8
			}
		}
	}

	s.touch(record)
	return copyRecord(record), nil
}

// SetStatus transitions a record's processing status.
func (s *RecordStore) SetStatus(id string, status models.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	record.ProcessingStatus = status
	s.touch(record)
	return nil
}

// AppendError adds an entry to the record's append-only error log.
func (s *RecordStore) AppendError(id, step, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	record.Errors = append(record.Errors, models.ProcessingError{
		Step:      step,
		Message:   message,
		Timestamp: time.Now(),
	})
	s.touch(record)
	return nil
}

func (s *RecordStore) touch(record *models.Record) {
	record.UpdatedAt = time.Now()
	record.Version++
}

func copyRecord(record *models.Record) models.Record {
	out := *record
	out.Fields = make(map[string]string, len(record.Fields))
	for k, v := range record.Fields {
		out.Fields[k] = v
	}
	out.ConfidenceByField = make(map[string]float64, len(record.ConfidenceByField))
	for k, v := range record.ConfidenceByField {
		out.ConfidenceByField[k] = v
	}
	out.OCRBlocks = append([]models.OCRBlock(nil), record.OCRBlocks...)
	out.Errors = append([]models.ProcessingError(nil), record.Errors...)
	return out
}
