package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dsjohal14/prepsearch/internal/scope/search"
)

// printGroups writes one block per matching test followed by its matches
func printGroups(w io.Writer, groups []search.ResultGroup, term string, highlight bool) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}

	for _, g := range groups {
		fmt.Fprintf(w, "%s (%d matches)\n", g.Test.Title, len(g.Matches))
		for _, m := range g.Matches {
			content := m.Content
			if highlight {
				content = renderSegments(search.Highlight(content, term))
			}
			fmt.Fprintf(w, "  [%s%s] %s\n", m.Type, location(m), oneLine(content))
		}
	}
	fmt.Fprintf(w, "%d tests, %d matches\n", len(groups), search.MatchCount(groups))
}

// location renders the 1-based section/question/option path of a match
func location(m search.MatchRecord) string {
	var b strings.Builder
	if m.Section > 0 {
		fmt.Fprintf(&b, " s%d", m.Section)
	}
	if m.Question > 0 {
		fmt.Fprintf(&b, " q%d", m.Question)
	}
	if m.Option > 0 {
		fmt.Fprintf(&b, " o%d", m.Option)
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// renderSegments wraps emphasized segments in ** markers
func renderSegments(segments []search.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Emphasized {
			b.WriteString("**")
			b.WriteString(seg.Text)
			b.WriteString("**")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// runInteractive treats each input line as the current contents of a search box.
// Searches run once input pauses for interval; EOF flushes the last pending term.
func runInteractive(in io.Reader, out io.Writer, session *search.Session, interval time.Duration) error {
	var mu sync.Mutex
	debouncer := search.NewDebouncer(interval, func(term string) {
		results := session.Search(term, search.DefaultFilters(), search.SortRelevance)

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "> %s\n", strings.TrimSpace(term))
		printGroups(out, results.Groups, strings.TrimSpace(term), true)
	})
	defer debouncer.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		debouncer.Trigger(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	debouncer.Flush()
	return nil
}
