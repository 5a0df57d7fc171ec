// Package export maps records onto tabular sinks: CSV downloads, Google
// Sheets rows, and Parquet archives. Column layouts are a versioned
// positional contract with the receiving spreadsheets, so the schemas are
// declared as data and never reordered in code.
package export

import (
	_ "embed"
	"fmt"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed schemas.yaml
var schemasYAML []byte

// Column maps one output column to a record value. Path and Fallback use a
// small dotted syntax: "fields.<name>", "auto.title", "auto.description",
// "image.url", "sku", or "" for an always-blank column.
type Column struct {
	Header   string `yaml:"header"`
	Path     string `yaml:"path"`
	Fallback string `yaml:"fallback"`
	Default  string `yaml:"default"`
}

// Schema is the ordered column layout for one record kind.
type Schema struct {
	Columns []Column `yaml:"columns"`
}

// Headers returns the header row in column order.
func (s Schema) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		headers[i] = col.Header
	}
	return headers
}

var schemas map[string]Schema

func init() {
	if err := yaml.Unmarshal(schemasYAML, &schemas); err != nil {
		panic(fmt.Sprintf("export: invalid embedded schemas.yaml: %v", err))
	}
}

// SchemaForKind returns the column layout for a record kind.
func SchemaForKind(kind models.RecordKind) Schema {
	return schemas[string(kind)]
}
