package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Gemini is a provider adapter for the Google Gemini API. It owns the genai
// client for the life of the process and classifies every failure into a
// providers.ErrorKind at this boundary.
type Gemini struct {
	client *genai.Client
}

// New creates the Gemini provider. A bad key does not fail here; key problems
// surface on the first call.
func New(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured; get a key from https://aistudio.google.com/app/apikey")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{client: client}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate runs one generation call against one model and returns the raw
// response text. Failures come back as classified *providers.Error values.
func (g *Gemini) Generate(ctx context.Context, req providers.GenerateRequest) (string, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if req.JSONOutput {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classify(req.Model, err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", providers.NewError(providers.KindFatal, req.Model, err)
	}
	return text, nil
}

// ListModels queries the live model listing. On any failure it returns an
// empty slice alongside the error so callers can fall back to the hardcoded
// candidate list; "no models discovered" is degraded, not fatal.
func (g *Gemini) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	it := g.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			slog.Warn("Could not list Gemini models", "err", err)
			return nil, classify("", err)
		}
		name := strings.TrimPrefix(info.Name, "models/")
		if strings.Contains(name, "gemini") {
			names = append(names, name)
		}
	}
	return names, nil
}

// extractText pulls the response text out of the first candidate. The
// candidates path doubles as the fallback for responses where the convenience
// shape is absent.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return sb.String(), nil
}
