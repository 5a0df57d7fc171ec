package ai

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/quarterdeck-io/sports-card-text-extraction/internal/providers"
)

// fallbackModels is the safety net when live discovery yields nothing usable,
// ordered fastest first.
var fallbackModels = []string{
	"gemini-1.5-flash",
	"gemini-flash-latest",
	"gemini-2.5-flash",
	"gemini-1.5-pro",
}

// excludedTags mark unstable or slow model variants that are never worth a
// listing-path attempt.
var excludedTags = []string{"preview", "exp", "thinking", "reasoning"}

// Selector produces the ordered sequence of models to attempt for one
// generation request. It owns the "last known good model" cache and the
// once-per-lifetime discovery flag; a stale cached model costs one extra
// failed attempt before the fallback list kicks in, nothing more.
type Selector struct {
	provider providers.Provider

	mu            sync.Mutex
	working       string
	discoveryDone bool
}

func NewSelector(provider providers.Provider) *Selector {
	return &Selector{
		provider: provider,
		working:  fallbackModels[0],
	}
}

// Candidates returns the models to try, cached working model first,
// duplicates removed. Live discovery runs until it succeeds once; after that
// requests skip the listing round-trip and rely on the cache plus the fixed
// fallback list.
func (s *Selector) Candidates(ctx context.Context) []string {
	s.mu.Lock()
	working := s.working
	discover := !s.discoveryDone
	s.mu.Unlock()

	candidates := []string{working}

	if discover {
		discovered, err := s.provider.ListModels(ctx)
		if err != nil {
			slog.Warn("Model discovery failed, using fallback candidates", "err", err)
		}
		ranked := rankModels(discovered)
		if len(ranked) > 0 {
			slog.Info("Discovered models", "count", len(ranked), "first", ranked[0])
			candidates = append(candidates, ranked...)
			s.mu.Lock()
			s.discoveryDone = true
			s.mu.Unlock()
		}
	}

	candidates = append(candidates, fallbackModels...)
	return dedupe(candidates)
}

// RecordSuccess caches the model that just served a request so the next
// request leads with it.
func (s *Selector) RecordSuccess(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.working != model {
		slog.Info("Switched working model", "model", model)
		s.working = model
	}
}

// rankModels orders discovered models flash variants first and drops
// unstable-tagged names entirely.
func rankModels(discovered []string) []string {
	var flash, rest []string
	for _, m := range discovered {
		if hasExcludedTag(m) {
			continue
		}
		if strings.Contains(m, "flash") {
			flash = append(flash, m)
		} else {
			rest = append(rest, m)
		}
	}
	return append(flash, rest...)
}

func hasExcludedTag(model string) bool {
	for _, tag := range excludedTags {
		if strings.Contains(model, tag) {
			return true
		}
	}
	return false
}

func dedupe(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := models[:0:0]
	for _, m := range models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
