package export

import (
	"log/slog"
	"strings"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

// Swap-detection thresholds: a stored title this long next to a description
// this short means the two fields were produced reversed, either by the model
// or by an earlier defect upstream.
const (
	swapTitleThreshold       = 200
	swapDescriptionThreshold = 100
)

// BuildRow maps a record onto the schema's column order. The swap heuristic
// runs against the listing fields first, so a reversed title/description pair
// is corrected in the exported row without mutating the stored record.
func BuildRow(record models.Record, schema Schema) []string {
	record.AutoTitle, record.AutoDescription = applySwapHeuristic(record.AutoTitle, record.AutoDescription)

	row := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		row[i] = resolve(record, col)
	}
	return row
}

// applySwapHeuristic swaps an implausibly long title with an implausibly
// short description. Once corrected, the pair no longer matches the
// condition, so repeated exports of the same record are stable.
func applySwapHeuristic(title, description string) (string, string) {
	if len(title) > swapTitleThreshold && len(description) < swapDescriptionThreshold {
		slog.Warn("Swapping reversed title/description at export",
			"title_length", len(title), "description_length", len(description))
		return swapListing(title, description)
	}
	return title, description
}

// swapListing exchanges the two listing fields. It is its own inverse.
func swapListing(title, description string) (string, string) {
	return description, title
}

func resolve(record models.Record, col Column) string {
	value := lookup(record, col.Path)
	if value == "" {
		value = lookup(record, col.Fallback)
	}
	if value == "" {
		value = col.Default
	}
	return value
}

func lookup(record models.Record, path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "fields."):
		return record.Fields[strings.TrimPrefix(path, "fields.")]
	case path == "auto.title":
		return record.AutoTitle
	case path == "auto.description":
		return record.AutoDescription
	case path == "image.url":
		return record.SourceImage.URL
	case path == "sku":
		return SKU(record)
	}
	slog.Warn("Unknown column path in export schema", "path", path)
	return ""
}

// SKU derives the short listing identifier from the record id.
func SKU(record models.Record) string {
	id := record.ID
	if len(id) > 8 {
		id = id[:8]
	}
	prefix := "sc"
	if record.Kind == models.KindBook {
		prefix = "bk"
	}
	return prefix + "-" + id
}
