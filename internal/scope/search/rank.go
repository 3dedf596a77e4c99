package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects how result groups are ordered
type SortMode string

// Sort modes
const (
	SortRelevance  SortMode = "relevance"
	SortTestName   SortMode = "testName"
	SortMatchCount SortMode = "matchCount"
)

// ParseSortMode maps a wire name to a SortMode; unknown names mean relevance
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortTestName:
		return SortTestName
	case SortMatchCount:
		return SortMatchCount
	default:
		return SortRelevance
	}
}

// titleCollation is the locale used to alphabetize test titles
var titleCollation = language.English

// Rank returns a stably sorted copy of groups.
//
// relevance: more matches first, then title.
// testName: title ascending.
// matchCount: more matches first, ties keep their order.
func Rank(groups []ResultGroup, mode SortMode) []ResultGroup {
	ranked := make([]ResultGroup, len(groups))
	copy(ranked, groups)
	if len(ranked) < 2 {
		return ranked
	}

	// A Collator keeps scratch buffers, so each call gets its own.
	c := collate.New(titleCollation)
	byTitle := func(i, j int) bool {
		return c.CompareString(ranked[i].Test.Title, ranked[j].Test.Title) < 0
	}

	switch mode {
	case SortTestName:
		sort.SliceStable(ranked, byTitle)
	case SortMatchCount:
		sort.SliceStable(ranked, func(i, j int) bool {
			return len(ranked[i].Matches) > len(ranked[j].Matches)
		})
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			ni, nj := len(ranked[i].Matches), len(ranked[j].Matches)
			if ni != nj {
				return ni > nj
			}
			return byTitle(i, j)
		})
	}

	return ranked
}
