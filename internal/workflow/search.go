package workflow

import (
	"strings"

	"cosmos/internal/suggest"
)

// VisibleSuggestions returns the suggestions the Suggestions panel should
// render: all of them outside a search, or the subset matching SearchQuery
// (case-insensitive substring match against file path and summary) while
// searching.
func (a *App) VisibleSuggestions() []suggest.Suggestion {
	if !a.Searching || a.SearchQuery == "" {
		return a.Suggestions
	}
	q := strings.ToLower(a.SearchQuery)
	var out []suggest.Suggestion
	for _, s := range a.Suggestions {
		if strings.Contains(strings.ToLower(s.PrimaryFile), q) || strings.Contains(strings.ToLower(s.Summary), q) {
			out = append(out, s)
		}
	}
	return out
}

// SetSearchQuery updates the live search filter and clamps SelectedIdx back
// into range of the newly filtered result set.
func (a *App) SetSearchQuery(q string) {
	a.SearchQuery = q
	if n := len(a.VisibleSuggestions()); a.SelectedIdx >= n {
		a.SelectedIdx = n - 1
	}
	if a.SelectedIdx < 0 {
		a.SelectedIdx = 0
	}
	a.markDirty()
}

// StopSearch exits search mode without discarding the selection.
func (a *App) StopSearch() {
	a.Searching = false
	a.markDirty()
}
