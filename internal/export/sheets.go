package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetsWriter appends export rows to a Google Sheet. The sheet is a dumb
// tabular sink with no schema negotiation: the writer creates the named sheet
// when absent and rewrites the header row whenever it does not exactly match
// the expected schema by column count and per-column name.
type SheetsWriter struct {
	svc *sheets.Service
}

// NewSheetsWriter builds the writer from service-account credentials:
// credentialsJSON (raw key JSON) takes priority over credentialsFile.
func NewSheetsWriter(ctx context.Context, credentialsFile, credentialsJSON string) (*SheetsWriter, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, fmt.Errorf("google sheets service account credentials not configured")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsWriter{svc: svc}, nil
}

// Export writes the record's row to the next unused row of the named sheet
// and returns that row index (1-based).
func (w *SheetsWriter) Export(ctx context.Context, record models.Record, schema Schema, spreadsheetID, sheetName string) (int, error) {
	spreadsheet, err := w.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}

	if !sheetExists(spreadsheet, sheetName) {
		_, err = w.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: sheetName},
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
		}
		slog.Info("Created sheet", "sheet", sheetName, "spreadsheet_id", spreadsheetID)
	}

	// Blank rows left by manual spreadsheet edits would break the next-row
	// detection below, so clear them first.
	if removed, err := w.RemoveBlankRows(ctx, spreadsheetID, sheetName); err != nil {
		slog.Warn("Could not remove blank rows before export", "sheet", sheetName, "err", err)
	} else if removed > 0 {
		slog.Info("Removed blank rows", "sheet", sheetName, "rows", removed)
	}

	lastCol := columnLetter(len(schema.Columns))
	existing, err := w.svc.Spreadsheets.Values.Get(spreadsheetID, fmt.Sprintf("%s!A:%s", sheetName, lastCol)).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read existing sheet data: %w", err)
	}

	headers := schema.Headers()
	nextRow := len(existing.Values) + 1

	var existingHeader []interface{}
	if len(existing.Values) > 0 {
		existingHeader = existing.Values[0]
	}
	if nextRow == 1 || HeaderNeedsRewrite(existingHeader, headers) {
		headerRange := fmt.Sprintf("%s!A1:%s1", sheetName, lastCol)
		if err := w.update(ctx, spreadsheetID, headerRange, toInterfaces(headers)); err != nil {
			return 0, fmt.Errorf("failed to write header row: %w", err)
		}
		slog.Info("Header row written", "sheet", sheetName, "columns", len(headers))
		if nextRow == 1 {
			nextRow = 2
		}
	}

	row := BuildRow(record, schema)
	rowRange := fmt.Sprintf("%s!A%d:%s%d", sheetName, nextRow, lastCol, nextRow)
	if err := w.update(ctx, spreadsheetID, rowRange, toInterfaces(row)); err != nil {
		return 0, fmt.Errorf("failed to write data row: %w", err)
	}

	slog.Info("Exported record to Google Sheets", "record_id", record.ID, "sheet", sheetName, "row", nextRow)
	return nextRow, nil
}

// RemoveBlankRows deletes fully blank rows from the named sheet and returns
// how many were removed.
func (w *SheetsWriter) RemoveBlankRows(ctx context.Context, spreadsheetID, sheetName string) (int, error) {
	spreadsheet, err := w.svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}

	sheetID := int64(-1)
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			sheetID = sheet.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return 0, fmt.Errorf("sheet %q not found", sheetName)
	}

	existing, err := w.svc.Spreadsheets.Values.Get(spreadsheetID, sheetName).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet data: %w", err)
	}

	// Deletions shift row indexes, so issue them bottom-up.
	var requests []*sheets.Request
	for i := len(existing.Values) - 1; i >= 0; i-- {
		if !rowIsBlank(existing.Values[i]) {
			continue
		}
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(i),
					EndIndex:   int64(i + 1),
				},
			},
		})
	}
	if len(requests) == 0 {
		return 0, nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to delete blank rows: %w", err)
	}
	return len(requests), nil
}

func (w *SheetsWriter) update(ctx context.Context, spreadsheetID, rangeStr string, row []interface{}) error {
	_, err := w.svc.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// HeaderNeedsRewrite reports whether the sheet's existing header row differs
// from the expected schema, by column count or by any per-column name.
func HeaderNeedsRewrite(existing []interface{}, expected []string) bool {
	if len(existing) == 0 {
		return false // empty sheet, header handled by the first-row path
	}
	if len(existing) != len(expected) {
		return true
	}
	for i, cell := range existing {
		name, ok := cell.(string)
		if !ok || name != expected[i] {
			return true
		}
	}
	return false
}

func sheetExists(spreadsheet *sheets.Spreadsheet, sheetName string) bool {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return true
		}
	}
	return false
}

func rowIsBlank(row []interface{}) bool {
	for _, cell := range row {
		if s, ok := cell.(string); ok && s != "" {
			return false
		}
	}
	return true
}

// columnLetter converts a 1-based column count to its A1-notation letter
// (1 → A, 26 → Z, 30 → AD).
func columnLetter(n int) string {
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
