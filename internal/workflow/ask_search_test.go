package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitQuestionThenResolveAnswerAppliesMatchingID(t *testing.T) {
	a := NewApp("main")
	id := a.SubmitQuestion("what does this repo do?")
	assert.True(t, a.AskPending)
	assert.Equal(t, "what does this repo do?", a.AskQuestion)

	a.ResolveAnswer(id, "it does things", nil)
	assert.False(t, a.AskPending)
	assert.Equal(t, "it does things", a.AskAnswer)
}

func TestResolveAnswerDropsStaleID(t *testing.T) {
	a := NewApp("main")
	firstID := a.SubmitQuestion("first question")
	secondID := a.SubmitQuestion("second question")
	require.NotEqual(t, firstID, secondID)

	a.ResolveAnswer(firstID, "stale answer", nil)
	assert.Empty(t, a.AskAnswer, "a superseded ask id must never populate the answer")
	assert.True(t, a.AskPending, "the outstanding (second) question is still pending")

	a.ResolveAnswer(secondID, "fresh answer", nil)
	assert.Equal(t, "fresh answer", a.AskAnswer)
	assert.False(t, a.AskPending)
}

func TestResolveAnswerRecordsErrorOnFailure(t *testing.T) {
	a := NewApp("main")
	id := a.SubmitQuestion("question")
	a.ResolveAnswer(id, "", errors.New("provider unavailable"))
	assert.False(t, a.AskPending)
	assert.Error(t, a.Err)
	assert.Empty(t, a.AskAnswer)
}

func TestVisibleSuggestionsFiltersBySearchQuery(t *testing.T) {
	a := NewApp("main")
	a.Suggestions = twoSuggestions()
	a.Searching = true
	a.SetSearchQuery("b.go")

	visible := a.VisibleSuggestions()
	require.Len(t, visible, 1)
	assert.Equal(t, "sg-2", visible[0].ID)
}

func TestSetSearchQueryClampsSelectedIdx(t *testing.T) {
	a := NewApp("main")
	a.Suggestions = twoSuggestions()
	a.Searching = true
	a.SelectedIdx = 1

	a.SetSearchQuery("a.go")
	assert.Equal(t, 0, a.SelectedIdx)
}

func TestStopSearchShowsAllSuggestionsAgain(t *testing.T) {
	a := NewApp("main")
	a.Suggestions = twoSuggestions()
	a.Searching = true
	a.SetSearchQuery("a.go")
	require.Len(t, a.VisibleSuggestions(), 1)

	a.StopSearch()
	assert.Len(t, a.VisibleSuggestions(), 2)
}
