package export

import (
	"testing"
)

func TestHeaderNeedsRewrite(t *testing.T) {
	expected := []string{
		"Year", "Set", "Card Number", "Title", "Player First Name",
		"Player Last Name", "Grading Company", "Grade", "Cert", "Caption",
		"Auto Title", "Auto Description",
	}

	tests := []struct {
		name     string
		existing []interface{}
		want     bool
	}{
		{
			name: "matching header untouched",
			existing: []interface{}{
				"Year", "Set", "Card Number", "Title", "Player First Name",
				"Player Last Name", "Grading Company", "Grade", "Cert", "Caption",
				"Auto Title", "Auto Description",
			},
			want: false,
		},
		{
			name: "eleven columns against twelve expected forces rewrite",
			existing: []interface{}{
				"Year", "Set", "Card Number", "Title", "Player First Name",
				"Player Last Name", "Grading Company", "Grade", "Cert", "Caption",
				"Auto Title",
			},
			want: true,
		},
		{
			name: "same count but one renamed column forces rewrite",
			existing: []interface{}{
				"Year", "Set", "Card No.", "Title", "Player First Name",
				"Player Last Name", "Grading Company", "Grade", "Cert", "Caption",
				"Auto Title", "Auto Description",
			},
			want: true,
		},
		{
			name: "non-string cell forces rewrite",
			existing: []interface{}{
				1972.0, "Set", "Card Number", "Title", "Player First Name",
				"Player Last Name", "Grading Company", "Grade", "Cert", "Caption",
				"Auto Title", "Auto Description",
			},
			want: true,
		},
		{
			name:     "empty sheet handled by first-row path",
			existing: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeaderNeedsRewrite(tt.existing, expected); got != tt.want {
				t.Errorf("HeaderNeedsRewrite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{13, "M"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{30, "AD"},
		{52, "AZ"},
		{53, "BA"},
	}

	for _, tt := range tests {
		if got := columnLetter(tt.n); got != tt.want {
			t.Errorf("columnLetter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRowIsBlank(t *testing.T) {
	if !rowIsBlank([]interface{}{"", "", ""}) {
		t.Error("all-empty row should be blank")
	}
	if !rowIsBlank(nil) {
		t.Error("zero-length row should be blank")
	}
	if rowIsBlank([]interface{}{"", "x", ""}) {
		t.Error("row with content should not be blank")
	}
}
