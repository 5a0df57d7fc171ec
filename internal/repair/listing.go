package repair

import (
	"log/slog"
	"regexp"
	"strings"
)

// ListingResponse is the shape every title/description generation call is
// expected to return. RetailPrice is only requested for books with an ISBN.
type ListingResponse struct {
	AutoTitle       string `json:"autoTitle"`
	AutoDescription string `json:"autoDescription"`
	RetailPrice     string `json:"retailPrice,omitempty"`
}

var (
	titlePattern = regexp.MustCompile(`"autoTitle"\s*:\s*"((?:[^"\\]|\\.)*)"?`)
	descPattern  = regexp.MustCompile(`"autoDescription"\s*:\s*"((?:[^"\\]|\\.)*)"?`)
)

// ParseListing recovers a listing from raw model output. It never returns an
// empty description: downstream consumers (review UI, export rows) depend on
// the field being populated, so a degraded-but-present value beats a hard
// failure. fallbackDescription is the caller's synthesized stand-in built
// from whatever field context is available.
func ParseListing(raw, fallbackTitle, fallbackDescription string) ListingResponse {
	var listing ListingResponse
	if err := ParseInto(raw, &listing); err != nil {
		slog.Warn("Listing response unparseable after repair, extracting by pattern", "err", err)
		listing = extractListing(raw)
	}

	listing.AutoTitle, listing.AutoDescription = RecoverConcatenated(listing.AutoTitle, listing.AutoDescription)

	if strings.TrimSpace(listing.AutoTitle) == "" {
		listing.AutoTitle = fallbackTitle
	}
	if strings.TrimSpace(listing.AutoDescription) == "" {
		desc := fallbackDescription
		if strings.TrimSpace(listing.AutoTitle) != "" {
			desc = listing.AutoTitle + ". " + fallbackDescription
		}
		listing.AutoDescription = desc
	}
	return listing
}

// extractListing is the last-resort path: pull the title (including a
// truncated one) straight out of the text by pattern.
func extractListing(raw string) ListingResponse {
	var listing ListingResponse
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		listing.AutoTitle = unescape(m[1])
	}
	if m := descPattern.FindStringSubmatch(raw); m != nil {
		listing.AutoDescription = unescape(m[1])
	}
	return listing
}

// RecoverConcatenated corrects a known model failure mode where title and
// description come back concatenated into the title field. An implausibly
// long title with an empty description is split at a comma boundary into a
// plausible title/description pair.
func RecoverConcatenated(title, description string) (string, string) {
	if len(title) <= 150 || strings.TrimSpace(description) != "" {
		return title, description
	}
	idx := strings.Index(title, ",")
	if idx <= 0 || idx == len(title)-1 {
		return title, description
	}
	slog.Warn("Splitting overlong title into title/description", "title_length", len(title))
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+1:])
}

func unescape(s string) string {
	r := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}
