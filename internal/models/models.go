package models

import "time"

// RecordKind distinguishes the two item types the service processes.
type RecordKind string

const (
	KindCard RecordKind = "card"
	KindBook RecordKind = "book"
)

// ProcessingStatus tracks where a record is in the pipeline.
type ProcessingStatus string

const (
	StatusUploaded       ProcessingStatus = "uploaded"
	StatusOCRComplete    ProcessingStatus = "ocr_complete"
	StatusAINormalized   ProcessingStatus = "ai_normalized"
	StatusReadyForReview ProcessingStatus = "ready_for_review"
	StatusExported       ProcessingStatus = "exported"
	StatusError          ProcessingStatus = "error"
)

// Record represents one physical item's extracted metadata. Cards and books
// share the same shape; Kind selects the field schema and export layout.
type Record struct {
	ID          string      `json:"id"`
	Kind        RecordKind  `json:"kind"`
	SourceImage SourceImage `json:"sourceImage"`

	RawOCRText string     `json:"rawOcrText"`
	OCRBlocks  []OCRBlock `json:"ocrBlocks"`

	// Fields maps field name to normalized string value. Card records carry
	// the 10-field card schema, book records the 23-field book schema.
	Fields            map[string]string  `json:"normalized"`
	ConfidenceByField map[string]float64 `json:"confidenceByField"`

	// AutoTitle and AutoDescription start empty and are filled by the
	// background listing generator after the record is already visible.
	AutoTitle       string `json:"autoTitle"`
	AutoDescription string `json:"autoDescription"`

	ProcessingStatus ProcessingStatus  `json:"processingStatus"`
	Errors           []ProcessingError `json:"errors"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version increments on every mutation so the background enrichment can
	// detect a concurrent user edit instead of clobbering it.
	Version uint64 `json:"version"`
}

// SourceImage references the externally stored upload. The record does not
// own the file's lifecycle.
type SourceImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// OCRBlock is one detected text region. BBox holds the top-left and
// bottom-right pixel corners.
type OCRBlock struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// ProcessingError is one entry in a record's append-only error log.
type ProcessingError struct {
	Step      string    `json:"step"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
