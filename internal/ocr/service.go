package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/models"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Result is the output of one text-detection call. An empty RawText with no
// error is a valid outcome: the image simply contained no readable text.
type Result struct {
	RawText string
	Blocks  []models.OCRBlock
}

// TextExtractor is the OCR collaborator interface the pipeline consumes.
type TextExtractor interface {
	ExtractTextFromImage(ctx context.Context, imagePath string) (*Result, error)
}

// Service extracts text from images with the Google Vision API.
type Service struct {
	vision *vision.Service
}

// NewService creates the Vision-backed OCR service. credentialsFile may be
// empty, in which case application default credentials are used.
func NewService(ctx context.Context, credentialsFile string) (*Service, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &Service{vision: svc}, nil
}

// ExtractTextFromImage runs TEXT_DETECTION on the image at imagePath and
// returns the full text blob plus the per-block detections.
func (s *Service) ExtractTextFromImage(ctx context.Context, imagePath string) (*Result, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image for OCR: %w", err)
	}

	slog.Info("Starting OCR extraction", "path", imagePath, "bytes", len(data))

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(data)},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}

	resp, err := s.vision.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("OCR processing failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("OCR processing failed: empty batch response")
	}
	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, fmt.Errorf("OCR processing failed: %s", annotation.Error.Message)
	}

	detections := annotation.TextAnnotations
	if len(detections) == 0 {
		slog.Warn("OCR found no text", "path", imagePath)
		return &Result{}, nil
	}

	// The first annotation is the entire detected text; the rest are the
	// individual blocks.
	result := &Result{RawText: detections[0].Description}
	for _, detection := range detections[1:] {
		result.Blocks = append(result.Blocks, models.OCRBlock{
			Text: detection.Description,
			// Vision does not report per-block confidence for TEXT_DETECTION.
			Confidence: 1.0,
			BBox:       bboxFromPoly(detection.BoundingPoly),
		})
	}

	slog.Info("OCR extraction completed", "characters", len(result.RawText), "blocks", len(result.Blocks))
	return result, nil
}

// bboxFromPoly collapses the four-corner polygon into top-left and
// bottom-right pixel coordinates.
func bboxFromPoly(poly *vision.BoundingPoly) [4]int {
	var bbox [4]int
	if poly == nil || len(poly.Vertices) < 3 {
		return bbox
	}
	bbox[0] = int(poly.Vertices[0].X)
	bbox[1] = int(poly.Vertices[0].Y)
	bbox[2] = int(poly.Vertices[2].X)
	bbox[3] = int(poly.Vertices[2].Y)
	return bbox
}

// CheckConnection verifies the Vision client is usable. A nil service means
// credentials were never configured.
func (s *Service) CheckConnection(ctx context.Context) bool {
	return s != nil && s.vision != nil
}
