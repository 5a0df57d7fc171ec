package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
)

// ArchiveRow is the flattened Parquet representation of a record. Structured
// fields are carried as JSON strings so the file stays a single flat schema
// for both cards and books.
type ArchiveRow struct {
	ID              string `parquet:"id"`
	Kind            string `parquet:"kind"`
	Filename        string `parquet:"filename"`
	ImageURL        string `parquet:"image_url"`
	RawOCRText      string `parquet:"raw_ocr_text"`
	FieldsJSON      string `parquet:"fields_json"`
	ConfidenceJSON  string `parquet:"confidence_json"`
	AutoTitle       string `parquet:"auto_title"`
	AutoDescription string `parquet:"auto_description"`
	Status          string `parquet:"status"`
	Version         int64  `parquet:"version"`
	CreatedAt       int64  `parquet:"created_at,timestamp(millisecond)"`
	UpdatedAt       int64  `parquet:"updated_at,timestamp(millisecond)"`
}

// WriteParquet writes the records as a Parquet archive.
func WriteParquet(w io.Writer, records []models.Record) error {
	pw := parquet.NewGenericWriter[ArchiveRow](w)

	for _, record := range records {
		row, err := archiveRow(record)
		if err != nil {
			return fmt.Errorf("failed to flatten record %s: %w", record.ID, err)
		}
		if _, err := pw.Write([]ArchiveRow{row}); err != nil {
			return fmt.Errorf("failed to write parquet row for record %s: %w", record.ID, err)
		}
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func archiveRow(record models.Record) (ArchiveRow, error) {
	fields, err := json.Marshal(record.Fields)
	if err != nil {
		return ArchiveRow{}, err
	}
	confidence, err := json.Marshal(record.ConfidenceByField)
	if err != nil {
		return ArchiveRow{}, err
	}

	return ArchiveRow{
		ID:              record.ID,
		Kind:            string(record.Kind),
		Filename:        record.SourceImage.Filename,
		ImageURL:        record.SourceImage.URL,
		RawOCRText:      record.RawOCRText,
		FieldsJSON:      string(fields),
		ConfidenceJSON:  string(confidence),
		AutoTitle:       record.AutoTitle,
		AutoDescription: record.AutoDescription,
		Status:          string(record.ProcessingStatus),
		Version:         int64(record.Version),
		CreatedAt:       record.CreatedAt.UnixMilli(),
		UpdatedAt:       record.UpdatedAt.UnixMilli(),
	}, nil
}
