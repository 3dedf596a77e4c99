package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
	"github.com/rs/zerolog"
)

func newTestEngine() *Engine {
	return NewEngine(zerolog.Nop(), nil)
}

func question(text, explanation, passage string, options ...string) catalog.Question {
	q := catalog.Question{
		Question:    text,
		Explanation: explanation,
		Passage:     passage,
		Options:     []catalog.Option{},
	}
	for _, o := range options {
		q.Options = append(q.Options, catalog.Option{Content: o})
	}
	return q
}

func sampleTests() []catalog.TestDocument {
	return []catalog.TestDocument{
		{
			ID:          "t1",
			Title:       "SAT Practice 1",
			Description: "Full length Algebra and Reading test",
			Sections: []catalog.Section{
				{
					Name: "Math",
					Questions: []catalog.Question{
						question("Solve the Algebra equation", "Isolate x first", "", "x = 2", "x = 4"),
						question("What is 2+2?", "Basic addition", "", "3", "4"),
					},
				},
				{
					Name: "Reading",
					Questions: []catalog.Question{
						question("What is the main idea?", "See paragraph one",
							"The history of ALGEBRA begins in Babylon.", "Babylon", "Rome"),
					},
				},
			},
		},
		{
			ID:          "t2",
			Title:       "Geometry Drill",
			Description: "Angles and shapes",
			Sections: []catalog.Section{
				{
					Name: "Geometry",
					Questions: []catalog.Question{
						question("Sum of triangle angles?", "Always 180", "", "180", "360"),
					},
				},
			},
		},
	}
}

func TestFiltersEnabled(t *testing.T) {
	f := DefaultFilters()
	for _, ft := range FieldTypes {
		if !f.Enabled(ft) {
			t.Errorf("expected %s enabled by default", ft)
		}
	}

	f[FieldPassage] = false
	if f.Enabled(FieldPassage) {
		t.Error("expected passage disabled")
	}

	var empty Filters
	if !empty.Enabled(FieldTitle) {
		t.Error("missing key should count as enabled")
	}
}

func TestFiltersFrom(t *testing.T) {
	f := FiltersFrom(map[string]bool{"passage": false, "bogus": false})

	if f.Enabled(FieldPassage) {
		t.Error("expected passage disabled")
	}
	if !f.Enabled(FieldTitle) {
		t.Error("expected title enabled")
	}
	if _, ok := f["bogus"]; ok {
		t.Error("unknown field names should be ignored")
	}
}

func TestBuildIndexIsomorphism(t *testing.T) {
	engine := newTestEngine()
	tests := sampleTests()
	index := engine.BuildIndex(tests)

	if len(index) != len(tests) {
		t.Fatalf("expected %d entries, got %d", len(tests), len(index))
	}

	for i, it := range index {
		if it.Entry == nil {
			t.Fatalf("entry %d unexpectedly nil", i)
		}
		if it.Test.ID != tests[i].ID {
			t.Errorf("entry %d: expected test %s, got %s", i, tests[i].ID, it.Test.ID)
		}
		if len(it.Entry.Sections) != len(tests[i].Sections) {
			t.Fatalf("entry %d: section count mismatch", i)
		}
		for si, s := range tests[i].Sections {
			se := it.Entry.Sections[si]
			if se.Name != strings.ToLower(s.Name) {
				t.Errorf("section name not lowercased: %q", se.Name)
			}
			if len(se.Questions) != len(s.Questions) {
				t.Fatalf("entry %d section %d: question count mismatch", i, si)
			}
			for qi, q := range s.Questions {
				if len(se.Questions[qi].Options) != len(q.Options) {
					t.Errorf("entry %d section %d question %d: option count mismatch", i, si, qi)
				}
			}
		}
	}
}

func TestBuildIndexLowercases(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	entry := index[0].Entry
	if entry.Title != "sat practice 1" {
		t.Errorf("expected lowercased title, got %q", entry.Title)
	}
	if entry.Sections[1].Questions[0].Passage != "the history of algebra begins in babylon." {
		t.Errorf("expected lowercased passage, got %q", entry.Sections[1].Questions[0].Passage)
	}
	if entry.Sections[0].Questions[0].Passage != "" {
		t.Errorf("expected empty passage, got %q", entry.Sections[0].Questions[0].Passage)
	}
}

func TestBuildIndexIdempotent(t *testing.T) {
	engine := newTestEngine()
	tests := sampleTests()

	first := engine.BuildIndex(tests)
	second := engine.BuildIndex(tests)

	if !reflect.DeepEqual(first, second) {
		t.Error("rebuilding from the same input should produce an equivalent index")
	}
}

func TestBuildIndexKeepsMalformedTests(t *testing.T) {
	engine := newTestEngine()
	tests := sampleTests()
	tests = append(tests, catalog.TestDocument{
		ID:       "broken",
		Title:    "Broken Algebra Test",
		Sections: []catalog.Section{},
		Invalid:  "document 2: sections is not a list",
	})

	index := engine.BuildIndex(tests)
	if len(index) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(index))
	}
	if index[2].Entry != nil {
		t.Error("expected malformed test to be indexless")
	}
	if index[2].Test.ID != "broken" {
		t.Errorf("expected raw test to be retained, got %s", index[2].Test.ID)
	}
	if Indexless(index) != 1 {
		t.Errorf("expected 1 indexless entry, got %d", Indexless(index))
	}

	// Indexless tests are skipped, not fatal
	groups := engine.Search("algebra", index, DefaultFilters())
	for _, g := range groups {
		if g.Test.ID == "broken" {
			t.Error("indexless test should not produce results")
		}
	}
	if len(groups) != 1 {
		t.Errorf("expected 1 group, got %d", len(groups))
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	for _, term := range []string{"", "   ", "\t\n"} {
		if groups := engine.Search(term, index, DefaultFilters()); len(groups) != 0 {
			t.Errorf("term %q: expected no results, got %d", term, len(groups))
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	lower := engine.Search("algebra", index, DefaultFilters())
	title := engine.Search("Algebra", index, DefaultFilters())
	upper := engine.Search("ALGEBRA", index, DefaultFilters())

	if len(lower) == 0 {
		t.Fatal("expected matches for algebra")
	}
	if !reflect.DeepEqual(lower, title) || !reflect.DeepEqual(lower, upper) {
		t.Error("expected identical results regardless of term case")
	}
}

func TestSearchScanOrder(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	groups := engine.Search("algebra", index, DefaultFilters())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	got := make([]FieldType, 0, len(groups[0].Matches))
	for _, m := range groups[0].Matches {
		got = append(got, m.Type)
	}
	want := []FieldType{FieldDescription, FieldQuestion, FieldPassage}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected scan order %v, got %v", want, got)
	}

	passage := groups[0].Matches[2]
	if passage.Content != "The history of ALGEBRA begins in Babylon." {
		t.Errorf("expected original-case content, got %q", passage.Content)
	}
	if passage.Section != 2 || passage.Question != 1 || passage.Option != 0 {
		t.Errorf("unexpected position section=%d question=%d option=%d",
			passage.Section, passage.Question, passage.Option)
	}
}

func TestSearchOptionPositions(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	groups := engine.Search("babylon", index, DefaultFilters())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	last := groups[0].Matches[len(groups[0].Matches)-1]
	if last.Type != FieldOption {
		t.Fatalf("expected last match to be an option, got %s", last.Type)
	}
	if last.Option != 1 || last.Content != "Babylon" {
		t.Errorf("expected option 1 Babylon, got %d %q", last.Option, last.Content)
	}
	if last.TestID != "t1" || last.TestTitle != "SAT Practice 1" {
		t.Errorf("unexpected back-reference %s/%s", last.TestID, last.TestTitle)
	}
}

func TestSearchFilterGating(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	all := engine.Search("algebra", index, DefaultFilters())

	for _, ft := range FieldTypes {
		t.Run(string(ft), func(t *testing.T) {
			filters := DefaultFilters()
			filters[ft] = false
			gated := engine.Search("algebra", index, filters)

			var want []MatchRecord
			for _, g := range all {
				for _, m := range g.Matches {
					if m.Type != ft {
						want = append(want, m)
					}
				}
			}
			var got []MatchRecord
			for _, g := range gated {
				got = append(got, g.Matches...)
			}
			if !reflect.DeepEqual(want, got) {
				t.Errorf("disabling %s should only remove its matches", ft)
			}
		})
	}
}

func TestSearchDeterministic(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	first := engine.Search("a", index, DefaultFilters())
	second := engine.Search("a", index, DefaultFilters())
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical inputs")
	}
	if len(first) != 2 || first[0].Test.ID != "t1" || first[1].Test.ID != "t2" {
		t.Error("expected groups in index order before ranking")
	}
}

func TestSearchSkipsMismatchedEntry(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	// An entry that no longer mirrors its source must not abort the scan
	index[0].Test.Sections = nil

	groups := engine.Search("a", index, DefaultFilters())
	if len(groups) != 1 || groups[0].Test.ID != "t2" {
		t.Errorf("expected only t2 to match, got %d groups", len(groups))
	}
}

func TestScenarioExactMatch(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex([]catalog.TestDocument{
		{
			ID:    "sat1",
			Title: "SAT Practice 1",
			Sections: []catalog.Section{
				{Name: "Math", Questions: []catalog.Question{question("What is 2+2?", "", "")}},
			},
		},
	})

	groups := engine.Search("2+2", index, DefaultFilters())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if len(groups[0].Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(groups[0].Matches))
	}
	if groups[0].Matches[0].Type != FieldQuestion {
		t.Errorf("expected question match, got %s", groups[0].Matches[0].Type)
	}
}

func TestScenarioMultiFieldMatch(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex([]catalog.TestDocument{
		{
			ID:    "vec",
			Title: "Vector Basics",
			Sections: []catalog.Section{
				{Name: "Math", Questions: []catalog.Question{
					question("Add the arrows", "Each arrow is a vector", ""),
				}},
			},
		},
	})

	groups := engine.Search("vector", index, DefaultFilters())
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	matches := groups[0].Matches
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Type != FieldTitle || matches[1].Type != FieldExplanation {
		t.Errorf("expected [title explanation], got [%s %s]", matches[0].Type, matches[1].Type)
	}
}

func TestScenarioDisabledFilter(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex([]catalog.TestDocument{
		{
			ID:    "p",
			Title: "Reading Test",
			Sections: []catalog.Section{
				{Name: "Reading", Questions: []catalog.Question{
					question("Main idea?", "", "Photosynthesis converts light"),
				}},
			},
		},
	})

	filters := DefaultFilters()
	if groups := engine.Search("photosynthesis", index, filters); len(groups) != 1 {
		t.Fatalf("expected passage match with all filters on, got %d groups", len(groups))
	}

	filters[FieldPassage] = false
	if groups := engine.Search("photosynthesis", index, filters); len(groups) != 0 {
		t.Errorf("expected no results with passage disabled, got %d", len(groups))
	}
}

func TestMatchCount(t *testing.T) {
	engine := newTestEngine()
	index := engine.BuildIndex(sampleTests())

	groups := engine.Search("algebra", index, DefaultFilters())
	if MatchCount(groups) != 3 {
		t.Errorf("expected 3 matches, got %d", MatchCount(groups))
	}
}
