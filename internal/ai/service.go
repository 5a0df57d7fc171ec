package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/repair"
)

// ErrEmptyOCRText is returned when normalization is asked to work on text
// with no extractable characters. The provider is never invoked in that case.
var ErrEmptyOCRText = errors.New("no text to normalize")

const (
	normalizeMaxTokens = 2000
	listingMaxTokens   = 1000
	defaultTemperature = 0.2
)

// Service is the AI pipeline front door: it owns the model selector and the
// attempt runner, and exposes the two normalizers and the two listing
// generators.
type Service struct {
	runner *Runner
}

func NewService(provider providers.Provider) *Service {
	selector := NewSelector(provider)
	return &Service{runner: NewRunner(provider, selector)}
}

// NormalizeResult is a structured field set plus per-field extraction
// confidence, as reported by the model.
type NormalizeResult struct {
	Fields            map[string]string  `json:"normalized"`
	ConfidenceByField map[string]float64 `json:"confidenceByField"`
}

// NormalizeCardText turns raw OCR text into the 10-field card schema.
func (s *Service) NormalizeCardText(ctx context.Context, rawOCRText string) (*NormalizeResult, error) {
	return s.normalize(ctx, rawOCRText, models.KindCard)
}

// NormalizeBookText turns raw OCR text into the 23-field book schema.
func (s *Service) NormalizeBookText(ctx context.Context, rawOCRText string) (*NormalizeResult, error) {
	return s.normalize(ctx, rawOCRText, models.KindBook)
}

func (s *Service) normalize(ctx context.Context, rawOCRText string, kind models.RecordKind) (*NormalizeResult, error) {
	if strings.TrimSpace(rawOCRText) == "" {
		return nil, ErrEmptyOCRText
	}

	slog.Info("Starting AI normalization", "kind", kind, "ocr_length", len(rawOCRText))

	prompt := buildCardNormalizationPrompt(rawOCRText)
	if kind == models.KindBook {
		prompt = buildBookNormalizationPrompt(rawOCRText)
	}

	content, err := s.runner.Generate(ctx, prompt, GenerationConfig{
		Temperature:     defaultTemperature,
		MaxOutputTokens: normalizeMaxTokens,
		JSONOutput:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("AI normalization failed: %w", err)
	}

	var result NormalizeResult
	if err := repair.ParseInto(content, &result); err != nil {
		return nil, fmt.Errorf("AI normalization returned malformed output: %w", err)
	}

	clampToSchema(&result, kind)
	slog.Info("AI normalization completed", "kind", kind, "fields", len(result.Fields))
	return &result, nil
}

// GenerateCardListing produces the listing title/description for a card.
// On malformed output a degraded listing is synthesized from the field set
// rather than failing.
func (s *Service) GenerateCardListing(ctx context.Context, fields map[string]string) (repair.ListingResponse, error) {
	content, err := s.runner.Generate(ctx, buildCardListingPrompt(fields), GenerationConfig{
		Temperature:     defaultTemperature,
		MaxOutputTokens: listingMaxTokens,
		JSONOutput:      true,
	})
	if err != nil {
		return repair.ListingResponse{}, fmt.Errorf("title/description generation failed: %w", err)
	}

	return repair.ParseListing(content, cardFallbackTitle(fields), cardFallbackDescription(fields)), nil
}

// GenerateBookListing produces the listing title/description for a book,
// plus an estimated retail price when an ISBN is available to anchor it.
func (s *Service) GenerateBookListing(ctx context.Context, fields map[string]string, isbn string) (repair.ListingResponse, error) {
	content, err := s.runner.Generate(ctx, buildBookListingPrompt(fields, isbn), GenerationConfig{
		Temperature:     defaultTemperature,
		MaxOutputTokens: listingMaxTokens,
		JSONOutput:      true,
	})
	if err != nil {
		return repair.ListingResponse{}, fmt.Errorf("title/description generation failed: %w", err)
	}

	listing := repair.ParseListing(content, bookFallbackTitle(fields), bookFallbackDescription(fields))
	if isbn == "" {
		// No ISBN means no price anchor; never report a fabricated estimate.
		listing.RetailPrice = ""
	}
	return listing, nil
}

// clampToSchema drops fields the schema does not name and removes confidence
// entries with no corresponding field, preserving the invariant that
// confidence keys are a subset of field keys.
func clampToSchema(result *NormalizeResult, kind models.RecordKind) {
	known := make(map[string]bool)
	for _, name := range models.FieldsForKind(kind) {
		known[name] = true
	}

	fields := make(map[string]string, len(known))
	for name, value := range result.Fields {
		if known[name] {
			fields[name] = value
		}
	}

	confidence := make(map[string]float64, len(result.ConfidenceByField))
	for name, score := range result.ConfidenceByField {
		if _, ok := fields[name]; ok {
			confidence[name] = score
		}
	}

	result.Fields = fields
	result.ConfidenceByField = confidence
}

func cardFallbackTitle(fields map[string]string) string {
	parts := []string{
		fields["year"], fields["set"],
		fields["playerFirstName"], fields["playerLastName"],
		fields["cardNumber"], fields["gradingCompany"], fields["grade"],
	}
	return joinNonEmpty(parts, " ")
}

func cardFallbackDescription(fields map[string]string) string {
	player := joinNonEmpty([]string{fields["playerFirstName"], fields["playerLastName"]}, " ")
	parts := []string{player}
	if fields["gradingCompany"] != "" && fields["grade"] != "" {
		parts = append(parts, fmt.Sprintf("Professionally graded %s by %s", fields["grade"], fields["gradingCompany"]))
	}
	parts = append(parts, "Card details extracted from the graded slab label.")
	return joinNonEmpty(parts, ". ")
}

func bookFallbackTitle(fields map[string]string) string {
	title := fields["title"]
	if title == "" {
		return "Untitled Book"
	}
	return title
}

func bookFallbackDescription(fields map[string]string) string {
	var parts []string
	if fields["author"] != "" {
		parts = append(parts, "by "+fields["author"])
	}
	if fields["publisherName"] != "" {
		parts = append(parts, "Published by "+fields["publisherName"])
	}
	if fields["yearPublished"] != "" {
		parts = append(parts, "("+fields["yearPublished"]+")")
	}
	fallback := fields["description"]
	if fallback == "" {
		fallback = "Bibliographic information extracted from title page."
	}
	parts = append(parts, fallback)
	return joinNonEmpty(parts, ". ")
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
