package ai

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRankModels(t *testing.T) {
	tests := []struct {
		name       string
		discovered []string
		want       []string
	}{
		{
			name:       "flash variants first",
			discovered: []string{"gemini-1.5-pro", "gemini-2.5-flash", "gemini-1.5-flash"},
			want:       []string{"gemini-2.5-flash", "gemini-1.5-flash", "gemini-1.5-pro"},
		},
		{
			name:       "unstable tags dropped",
			discovered: []string{"gemini-2.5-flash-preview", "gemini-exp-1121", "gemini-2.0-flash-thinking", "gemini-2.5-pro-reasoning", "gemini-2.5-flash"},
			want:       []string{"gemini-2.5-flash"},
		},
		{
			name:       "empty discovery",
			discovered: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rankModels(tt.discovered)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rankModels(%v) = %v, want %v", tt.discovered, got, tt.want)
			}
		})
	}
}

func TestCandidatesOrderAndDedup(t *testing.T) {
	f := &fakeProvider{models: []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-flash"}}
	s := NewSelector(f)

	got := s.Candidates(context.Background())
	want := []string{
		"gemini-1.5-flash", // cached working model leads
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-flash-latest",
		"gemini-1.5-pro",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestDiscoveryRunsOnce(t *testing.T) {
	f := &fakeProvider{models: []string{"gemini-2.5-flash"}}
	s := NewSelector(f)

	s.Candidates(context.Background())
	s.Candidates(context.Background())

	if f.listCalls != 1 {
		t.Errorf("list calls = %d, want discovery to run once", f.listCalls)
	}
}

func TestDiscoveryRetriedAfterFailure(t *testing.T) {
	f := &fakeProvider{listErr: errors.New("listing unavailable")}
	s := NewSelector(f)

	got := s.Candidates(context.Background())
	if !reflect.DeepEqual(got, fallbackModels) {
		t.Errorf("Candidates() = %v, want fallback list only", got)
	}

	// A failed discovery is not cached; the next request tries again.
	f.mu.Lock()
	f.listErr = nil
	f.models = []string{"gemini-2.5-flash"}
	f.mu.Unlock()

	s.Candidates(context.Background())
	if f.listCalls != 2 {
		t.Errorf("list calls = %d, want 2", f.listCalls)
	}
}

func TestRecordSuccessMovesWorkingModel(t *testing.T) {
	f := &fakeProvider{listErr: errors.New("listing unavailable")}
	s := NewSelector(f)

	s.RecordSuccess("gemini-1.5-pro")
	got := s.Candidates(context.Background())
	if got[0] != "gemini-1.5-pro" {
		t.Errorf("candidates lead with %q, want the recorded model", got[0])
	}
}
