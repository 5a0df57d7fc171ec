package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
)

func TestNormalizeEmptyTextShortCircuits(t *testing.T) {
	f := &fakeProvider{
		generate: func(call int, req providers.GenerateRequest) (string, error) {
			t.Error("provider must not be invoked for empty input")
			return "", nil
		},
	}
	svc := NewService(f)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.NormalizeCardText(context.Background(), text); !errors.Is(err, ErrEmptyOCRText) {
			t.Errorf("NormalizeCardText(%q) error = %v, want ErrEmptyOCRText", text, err)
		}
		if _, err := svc.NormalizeBookText(context.Background(), text); !errors.Is(err, ErrEmptyOCRText) {
			t.Errorf("NormalizeBookText(%q) error = %v, want ErrEmptyOCRText", text, err)
		}
	}
	if f.callCount() != 0 {
		t.Errorf("provider called %d times", f.callCount())
	}
	if f.listCalls != 0 {
		t.Errorf("model discovery ran %d times for empty input", f.listCalls)
	}
}

func TestNormalizeClampsToSchema(t *testing.T) {
	f := &fakeProvider{
		listErr: errors.New("listing unavailable"),
		generate: func(call int, req providers.GenerateRequest) (string, error) {
			return `{
				"normalized": {"year": "1972", "set": "Topps", "bogusField": "x"},
				"confidenceByField": {"year": 0.95, "bogusField": 0.9, "cardNumber": 0.8}
			}`, nil
		},
	}
	svc := NewService(f)

	result, err := svc.NormalizeCardText(context.Background(), "1972 TOPPS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := result.Fields["bogusField"]; ok {
		t.Error("field outside the schema survived")
	}
	if result.Fields["year"] != "1972" || result.Fields["set"] != "Topps" {
		t.Errorf("schema fields lost: %v", result.Fields)
	}
	// cardNumber has confidence but no extracted value; the orphan entry
	// must be dropped so confidence keys stay a subset of field keys.
	for name := range result.ConfidenceByField {
		if _, ok := result.Fields[name]; !ok {
			t.Errorf("confidence entry %q has no matching field", name)
		}
	}
}

func TestNormalizeTruncatedResponseRepaired(t *testing.T) {
	f := &fakeProvider{
		listErr: errors.New("listing unavailable"),
		generate: func(call int, req providers.GenerateRequest) (string, error) {
			return `{"normalized":{"year":"1972","set":"Topps"},"confidenceByField":{"year":0.9,"set":`, nil
		},
	}
	svc := NewService(f)

	result, err := svc.NormalizeCardText(context.Background(), "1972 TOPPS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["year"] != "1972" {
		t.Errorf("fields = %v", result.Fields)
	}
	if result.ConfidenceByField["year"] != 0.9 {
		t.Errorf("confidence = %v", result.ConfidenceByField)
	}
}

func TestGenerateCardListingFallsBackOnGarbage(t *testing.T) {
	f := &fakeProvider{
		listErr: errors.New("listing unavailable"),
		generate: func(call int, req providers.GenerateRequest) (string, error) {
			return "I am unable to produce JSON today", nil
		},
	}
	svc := NewService(f)

	fields := map[string]string{
		"year": "1972", "set": "Topps",
		"playerFirstName": "Nolan", "playerLastName": "Ryan",
		"cardNumber": "#595", "gradingCompany": "PSA", "grade": "NM-MT 8",
	}
	listing, err := svc.GenerateCardListing(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(listing.AutoTitle, "Nolan") || !strings.Contains(listing.AutoTitle, "1972") {
		t.Errorf("fallback title missing field context: %q", listing.AutoTitle)
	}
	if strings.TrimSpace(listing.AutoDescription) == "" {
		t.Error("description must never be empty")
	}
}

func TestGenerateBookListingClearsPriceWithoutISBN(t *testing.T) {
	f := &fakeProvider{
		listErr: errors.New("listing unavailable"),
		generate: func(call int, req providers.GenerateRequest) (string, error) {
			return `{"autoTitle":"T","autoDescription":"D","retailPrice":"24.99"}`, nil
		},
	}
	svc := NewService(f)

	listing, err := svc.GenerateBookListing(context.Background(), map[string]string{"title": "T"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.RetailPrice != "" {
		t.Errorf("retail price = %q, want empty without an ISBN anchor", listing.RetailPrice)
	}

	listing, err = svc.GenerateBookListing(context.Background(), map[string]string{"title": "T"}, "9780743273565")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.RetailPrice != "24.99" {
		t.Errorf("retail price = %q, want model estimate kept with ISBN", listing.RetailPrice)
	}
}
