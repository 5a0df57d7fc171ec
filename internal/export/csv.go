package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

// WriteCSV serializes one record as a header row plus one data row, the same
// field set the Sheets path writes.
func WriteCSV(w io.Writer, record models.Record, schema Schema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Headers()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.Write(BuildRow(record, schema)); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
