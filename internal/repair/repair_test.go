package repair

import (
	"strings"
	"testing"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "truncated after complete string value",
			raw:    `{"title":"The Great Gatsby","author":"F. Scott Fitz`,
			want:   `{"title":"The Great Gatsby"}`,
			wantOK: true,
		},
		{
			name:   "truncated mid key",
			raw:    `{"title":"The Great Gatsby","auth`,
			want:   `{"title":"The Great Gatsby"}`,
			wantOK: true,
		},
		{
			name:   "truncated after colon",
			raw:    `{"title":"The Great Gatsby","author":`,
			want:   `{"title":"The Great Gatsby"}`,
			wantOK: true,
		},
		{
			name:   "nested object truncated",
			raw:    `{"normalized":{"year":"1972","set":"Topps"},"confidenceByField":{"year":0.9,"set":`,
			want:   `{"normalized":{"year":"1972","set":"Topps"},"confidenceByField":{"year":0.9}}`,
			wantOK: true,
		},
		{
			name:   "unclosed nested object",
			raw:    `{"normalized":{"year":"1972","set":"To`,
			want:   `{"normalized":{"year":"1972"}}`,
			wantOK: true,
		},
		{
			name:   "array truncated mid element",
			raw:    `["one","two","thr`,
			want:   `["one","two"]`,
			wantOK: true,
		},
		{
			name:   "escaped quote inside value survives",
			raw:    `{"title":"A \"quoted\" word","author":"unfinish`,
			want:   `{"title":"A \"quoted\" word"}`,
			wantOK: true,
		},
		{
			name:   "trailing number literal kept when followed by separator",
			raw:    `{"a":1,"b":2,"c":`,
			want:   `{"a":1,"b":2}`,
			wantOK: true,
		},
		{
			name:   "not json at all",
			raw:    `Sorry, I cannot help with that.`,
			wantOK: false,
		},
		{
			name:   "empty input",
			raw:    ``,
			wantOK: false,
		},
		{
			name:   "mismatched closer",
			raw:    `{"a":[1,2}`,
			wantOK: false,
		},
		{
			name:   "no complete value",
			raw:    `{"titl`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Repair(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("Repair(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseInto(t *testing.T) {
	type payload struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}

	t.Run("strict parse passes through", func(t *testing.T) {
		var p payload
		if err := ParseInto(`{"title":"Dune","author":"Herbert"}`, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "Dune" || p.Author != "Herbert" {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		var p payload
		raw := "```json\n{\"title\":\"Dune\",\"author\":\"Herbert\"}\n```"
		if err := ParseInto(raw, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "Dune" {
			t.Errorf("got title %q", p.Title)
		}
	})

	t.Run("truncated response repaired", func(t *testing.T) {
		var p payload
		if err := ParseInto(`{"title":"Dune","author":"Herb`, &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Title != "Dune" {
			t.Errorf("got title %q", p.Title)
		}
		if p.Author != "" {
			t.Errorf("incomplete author should be dropped, got %q", p.Author)
		}
	})

	t.Run("unrepairable input returns error", func(t *testing.T) {
		var p payload
		if err := ParseInto(`not json`, &p); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseListingTruncatedTitlePreserved(t *testing.T) {
	// The response hit the token limit mid-description. The complete title
	// must come through exactly, and the description must never be empty.
	raw := `{"autoTitle":"1972 Topps Nolan Ryan #595 PSA NM-MT 8","autoDescription":"This 1972 Topps card fea`

	listing := ParseListing(raw, "fallback title", "Card details extracted from the graded slab label.")

	if listing.AutoTitle != "1972 Topps Nolan Ryan #595 PSA NM-MT 8" {
		t.Errorf("title = %q, want exact pre-truncation title", listing.AutoTitle)
	}
	if strings.TrimSpace(listing.AutoDescription) == "" {
		t.Error("description must never be empty")
	}
}

func TestParseListing(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantDesc  string
	}{
		{
			name:      "valid response passes through",
			raw:       `{"autoTitle":"1989 Upper Deck Ken Griffey Jr. #1 PSA GEM MT 10","autoDescription":"Iconic rookie card."}`,
			wantTitle: "1989 Upper Deck Ken Griffey Jr. #1 PSA GEM MT 10",
			wantDesc:  "Iconic rookie card.",
		},
		{
			name:      "garbage falls back entirely",
			raw:       `the model said something unhelpful`,
			wantTitle: "fallback title",
			wantDesc:  "fallback title. fallback description",
		},
		{
			name:      "retail price field tolerated",
			raw:       `{"autoTitle":"T","autoDescription":"D","retailPrice":"24.99"}`,
			wantTitle: "T",
			wantDesc:  "D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := ParseListing(tt.raw, "fallback title", "fallback description")
			if listing.AutoTitle != tt.wantTitle {
				t.Errorf("title = %q, want %q", listing.AutoTitle, tt.wantTitle)
			}
			if listing.AutoDescription != tt.wantDesc {
				t.Errorf("description = %q, want %q", listing.AutoDescription, tt.wantDesc)
			}
		})
	}
}

func TestExtractListingUnterminatedTitle(t *testing.T) {
	raw := `{"autoTitle":"1972 Topps Nolan Ryan #595 PSA NM-MT 8`
	listing := extractListing(raw)
	if listing.AutoTitle != "1972 Topps Nolan Ryan #595 PSA NM-MT 8" {
		t.Errorf("title = %q", listing.AutoTitle)
	}
}

func TestRecoverConcatenated(t *testing.T) {
	longTitle := "1972 Topps Nolan Ryan #595 PSA NM-MT 8 California Angels, " +
		strings.Repeat("a vintage card from the flagship Topps set in excellent condition ", 3)

	tests := []struct {
		name        string
		title       string
		description string
		wantSplit   bool
	}{
		{name: "overlong title with empty description splits", title: longTitle, description: "", wantSplit: true},
		{name: "short title untouched", title: "1972 Topps Nolan Ryan", description: "", wantSplit: false},
		{name: "existing description untouched", title: longTitle, description: "already set", wantSplit: false},
		{name: "no comma to split on", title: strings.Repeat("x", 200), description: "", wantSplit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, description := RecoverConcatenated(tt.title, tt.description)
			if tt.wantSplit {
				if title == tt.title || description == "" {
					t.Errorf("expected split, got title=%q description=%q", title, description)
				}
			} else {
				if title != tt.title || description != tt.description {
					t.Errorf("expected untouched, got title=%q description=%q", title, description)
				}
			}
		})
	}
}
