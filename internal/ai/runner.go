package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
)

const (
	maxAttemptsPerModel = 3
	baseRetryDelay      = 500 * time.Millisecond
)

// GenerationConfig carries the per-request generation parameters shared by
// every candidate attempt.
type GenerationConfig struct {
	Temperature     float32
	MaxOutputTokens int32
	JSONOutput      bool
}

// Runner walks the candidate model list for one generation request. Each
// candidate gets bounded exponential-backoff retries on transient failures; a
// missing model advances to the next candidate with no delay; an access
// failure aborts the whole request, since permission problems are
// account-wide rather than model-specific.
type Runner struct {
	provider providers.Provider
	selector *Selector

	// retryDelay is the backoff base; tests shrink it.
	retryDelay time.Duration
}

func NewRunner(provider providers.Provider, selector *Selector) *Runner {
	return &Runner{
		provider:   provider,
		selector:   selector,
		retryDelay: baseRetryDelay,
	}
}

// Generate runs the prompt against candidates until one succeeds. The
// succeeding model is recorded as the working model for future requests.
func (r *Runner) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	candidates := r.selector.Candidates(ctx)

	var lastErr error
	for _, model := range candidates {
		content, err := r.attempt(ctx, model, prompt, cfg)
		if err == nil {
			r.selector.RecordSuccess(model)
			return content, nil
		}
		lastErr = err

		switch providers.KindOf(err) {
		case providers.KindModelMissing:
			slog.Warn("Model not found, trying next candidate", "model", model)
			continue
		case providers.KindTransient:
			slog.Warn("Model overloaded, trying alternative", "model", model)
			continue
		case providers.KindAccessDenied:
			return "", fmt.Errorf("access denied by provider: %w", err)
		default:
			return "", fmt.Errorf("generation failed: %w", err)
		}
	}

	return "", fmt.Errorf("all candidate models failed: %w", lastErr)
}

// attempt runs one candidate with backoff retries. Only transient-classified
// failures are retried; everything else propagates after the first call.
func (r *Runner) attempt(ctx context.Context, model, prompt string, cfg GenerationConfig) (string, error) {
	return retry.DoWithData(
		func() (string, error) {
			return r.provider.Generate(ctx, providers.GenerateRequest{
				Model:           model,
				Prompt:          prompt,
				Temperature:     cfg.Temperature,
				MaxOutputTokens: cfg.MaxOutputTokens,
				JSONOutput:      cfg.JSONOutput,
			})
		},
		retry.Context(ctx),
		retry.Attempts(maxAttemptsPerModel),
		retry.Delay(r.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(providers.IsTransient),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Generation attempt failed, backing off", "model", model, "attempt", n+1, "err", err)
		}),
	)
}
