package providers

import (
	"context"
)

// GenerateRequest is one generation call against one model.
type GenerateRequest struct {
	Model           string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	// JSONOutput asks the provider for a strict JSON response body.
	JSONOutput bool
}

// Provider defines the interface for a generative-model provider. Errors
// returned from Generate are classified at the adapter boundary: callers can
// rely on KindOf rather than inspecting error text.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// ListModels returns the identifiers of currently available models.
	// Discovery failure is a degraded mode, not a fault: implementations
	// return an empty slice alongside the error.
	ListModels(ctx context.Context) ([]string, error)
}
