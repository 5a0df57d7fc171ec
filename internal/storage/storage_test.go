package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

func newCardRecord(id string) *models.Record {
	return &models.Record{
		ID:   id,
		Kind: models.KindCard,
		Fields: map[string]string{
			"year": "1972",
			"set":  "Topps",
		},
		ConfidenceByField: map[string]float64{"year": 0.95, "set": 0.9},
		ProcessingStatus:  models.StatusReadyForReview,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

func TestCreateAndGet(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))

	record, err := store.Get("c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Version != 1 {
		t.Errorf("version = %d, want 1", record.Version)
	}
	if record.AutoTitle != "" || record.AutoDescription != "" {
		t.Error("new record must have empty listing fields")
	}
	if record.ProcessingStatus != models.StatusReadyForReview {
		t.Errorf("status = %s", record.ProcessingStatus)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))

	record, _ := store.Get("c1")
	record.Fields["year"] = "mutated"

	again, _ := store.Get("c1")
	if again.Fields["year"] != "1972" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestUpdateMergesFieldsAndBumpsVersion(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))

	title := "edited title"
	updated, err := store.Update("c1", RecordUpdate{
		Fields:    map[string]string{"year": "1973", "grade": "NM-MT 8"},
		AutoTitle: &title,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Fields["year"] != "1973" {
		t.Errorf("year = %q", updated.Fields["year"])
	}
	if updated.Fields["set"] != "Topps" {
		t.Error("unrelated field lost in merge")
	}
	if updated.Fields["grade"] != "NM-MT 8" {
		t.Error("new field not added")
	}
	if updated.AutoTitle != "edited title" {
		t.Errorf("autoTitle = %q", updated.AutoTitle)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
	// Editing a value says nothing about extraction certainty.
	if updated.ConfidenceByField["year"] != 0.95 {
		t.Errorf("confidence changed on edit: %v", updated.ConfidenceByField)
	}
}

func TestApplyEnrichment(t *testing.T) {
	tests := []struct {
		name          string
		fields        map[string]string
		retailPrice   string
		wantPrice     string
		wantPriceConf float64
	}{
		{
			name:          "price applied with ISBN and no existing price",
			fields:        map[string]string{"title": "Dune", "printISBN": "9780441013593"},
			retailPrice:   "24.99",
			wantPrice:     "24.99",
			wantPriceConf: 0.8,
		},
		{
			name:        "price rejected without ISBN",
			fields:      map[string]string{"title": "Dune"},
			retailPrice: "24.99",
			wantPrice:   "",
		},
		{
			name:        "existing price preserved",
			fields:      map[string]string{"title": "Dune", "printISBN": "9780441013593", "retailPrice": "9.99"},
			retailPrice: "24.99",
			wantPrice:   "9.99",
		},
		{
			name:          "eISBN counts as ISBN",
			fields:        map[string]string{"title": "Dune", "eISBN": "9780441013593"},
			retailPrice:   "18.00",
			wantPrice:     "18.00",
			wantPriceConf: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New()
			store.Create(&models.Record{
				ID:                "b1",
				Kind:              models.KindBook,
				Fields:            tt.fields,
				ConfidenceByField: map[string]float64{},
				CreatedAt:         time.Now(),
				UpdatedAt:         time.Now(),
			})

			record, err := store.ApplyEnrichment("b1", "generated title", "generated description", tt.retailPrice)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if record.AutoTitle != "generated title" || record.AutoDescription != "generated description" {
				t.Errorf("listing fields = %q / %q", record.AutoTitle, record.AutoDescription)
			}
			if got := record.Fields["retailPrice"]; got != tt.wantPrice {
				t.Errorf("retailPrice = %q, want %q", got, tt.wantPrice)
			}
			if tt.wantPriceConf > 0 && record.Fields["retailPrice"] == tt.retailPrice {
				if got := record.ConfidenceByField["retailPrice"]; got != tt.wantPriceConf {
					t.Errorf("retailPrice confidence = %v, want %v", got, tt.wantPriceConf)
				}
			}
		})
	}
}

func TestApplyEnrichmentPreservesUserEdit(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))

	// A user edit lands while the background generation is in flight.
	if _, err := store.Update("c1", RecordUpdate{Fields: map[string]string{"year": "1973"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, _ := store.Get("c1")
	record, err := store.ApplyEnrichment("c1", "generated title", "generated description", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Fields["year"] != "1973" {
		t.Error("enrichment clobbered concurrent user edit")
	}
	if record.AutoTitle != "generated title" {
		t.Errorf("autoTitle = %q", record.AutoTitle)
	}
	if !record.UpdatedAt.After(before.CreatedAt) {
		t.Error("UpdatedAt did not advance")
	}
	if record.Version != before.Version+1 {
		t.Errorf("version = %d, want %d", record.Version, before.Version+1)
	}
}

func TestSetStatusAndAppendError(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))

	if err := store.SetStatus("c1", models.StatusExported); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, _ := store.Get("c1")
	if record.ProcessingStatus != models.StatusExported {
		t.Errorf("status = %s", record.ProcessingStatus)
	}

	if err := store.AppendError("c1", "title_generation", "model unavailable"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, _ = store.Get("c1")
	if len(record.Errors) != 1 || record.Errors[0].Step != "title_generation" {
		t.Errorf("errors = %+v", record.Errors)
	}

	if err := store.SetStatus("missing", models.StatusExported); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByKind(t *testing.T) {
	store := New()
	store.Create(newCardRecord("c1"))
	store.Create(newCardRecord("c2"))
	store.Create(&models.Record{ID: "b1", Kind: models.KindBook, Fields: map[string]string{}})

	if got := len(store.List(models.KindCard)); got != 2 {
		t.Errorf("card count = %d, want 2", got)
	}
	if got := len(store.List(models.KindBook)); got != 1 {
		t.Errorf("book count = %d, want 1", got)
	}
}
