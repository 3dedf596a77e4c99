package search

import (
	"strings"
	"testing"
)

func join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestHighlightPassThrough(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
	}{
		{"empty term", "Linear equations", ""},
		{"empty text", "", "linear"},
		{"no match", "Linear equations", "quadratic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.term)
			if len(got) != 1 || got[0].Emphasized || got[0].Text != tt.text {
				t.Errorf("expected single plain segment %q, got %+v", tt.text, got)
			}
		})
	}
}

func TestHighlightSegments(t *testing.T) {
	got := Highlight("Algebra and more algebra", "ALGEBRA")

	want := []Segment{
		{Text: ""},
		{Text: "Algebra", Emphasized: true},
		{Text: " and more "},
		{Text: "algebra", Emphasized: true},
		{Text: ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestHighlightAdjacentMatches(t *testing.T) {
	got := Highlight("abab", "ab")

	emphasized := 0
	for _, s := range got {
		if s.Emphasized {
			emphasized++
			if s.Text != "ab" {
				t.Errorf("unexpected emphasized text %q", s.Text)
			}
		}
	}
	if emphasized != 2 {
		t.Errorf("expected 2 emphasized segments, got %d", emphasized)
	}
	if got[2].Text != "" || got[2].Emphasized {
		t.Errorf("expected empty plain segment between adjacent matches, got %+v", got[2])
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	tests := []struct {
		text string
		term string
	}{
		{"What is 2+2?", "2+2"},
		{"a+b equals b+a", "a+b"},
		{"Cost is $5.00 (approx)", "$5.00 (approx)"},
		{"[brackets] and {braces}", "[brackets]"},
		{"back\\slash and pipe|", "\\slash and pipe|"},
		{"^start and end$", "^start"},
		{"Unicode: Ça va, ÇA VA", "ça va"},
		{"nothing here", ".*"},
		{"repeated aaaa", "aa"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := Highlight(tt.text, tt.term)
			if join(got) != tt.text {
				t.Errorf("segments do not reconstruct %q: %+v", tt.text, got)
			}
		})
	}
}

func TestHighlightEscapesMetacharacters(t *testing.T) {
	got := Highlight("a+b and aab", "a+b")

	var emphasized []string
	for _, s := range got {
		if s.Emphasized {
			emphasized = append(emphasized, s.Text)
		}
	}
	// "a+b" must match literally, never "aab"
	if len(emphasized) != 1 || emphasized[0] != "a+b" {
		t.Errorf("expected only literal a+b emphasized, got %v", emphasized)
	}

	if got := Highlight("nothing here", ".*"); len(got) != 1 || got[0].Emphasized {
		t.Errorf("expected .* to match nothing literally, got %+v", got)
	}
}
