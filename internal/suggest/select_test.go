package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validated(file string, line int, priority Priority, confidence Confidence) Suggestion {
	return Suggestion{
		PrimaryFile:      file,
		Priority:         priority,
		Confidence:       confidence,
		Category:         CategoryBug,
		ValidationState:  ValidationValidated,
		EvidenceRefs:     []EvidenceRef{{Line: line}},
	}
}

func TestSelectPrefersHigherPriorityThenConfidence(t *testing.T) {
	candidates := []Suggestion{
		validated("a.go", 1, PriorityLow, ConfidenceHigh),
		validated("b.go", 1, PriorityHigh, ConfidenceLow),
	}
	selected := Select(candidates, 6, 12)
	assert.Equal(t, "b.go", selected[0].PrimaryFile)
}

func TestSelectDedupesByFileLineCategory(t *testing.T) {
	candidates := []Suggestion{
		validated("a.go", 10, PriorityHigh, ConfidenceHigh),
		validated("a.go", 10, PriorityHigh, ConfidenceHigh),
	}
	selected := Select(candidates, 6, 12)
	assert.Len(t, selected, 1)
}

func TestSelectPrefersDistinctFilesBeforeRepeats(t *testing.T) {
	candidates := []Suggestion{
		validated("a.go", 1, PriorityHigh, ConfidenceHigh),
		validated("a.go", 2, PriorityHigh, ConfidenceHigh),
		validated("b.go", 1, PriorityHigh, ConfidenceHigh),
	}
	selected := Select(candidates, 6, 12)
	require := assert.New(t)
	require.Equal(3, len(selected))
	require.Equal("a.go", selected[0].PrimaryFile)
	require.Equal("b.go", selected[1].PrimaryFile)
	require.Equal("a.go", selected[2].PrimaryFile)
}

func TestSelectCapsAtHardMax(t *testing.T) {
	var candidates []Suggestion
	for i := 0; i < 20; i++ {
		candidates = append(candidates, validated("f.go", i, PriorityMedium, ConfidenceMedium))
	}
	selected := Select(candidates, 6, 12)
	assert.Len(t, selected, 12)
}

func TestSelectExcludesUnvalidated(t *testing.T) {
	candidates := []Suggestion{
		{PrimaryFile: "a.go", ValidationState: ValidationRejected},
		validated("b.go", 1, PriorityHigh, ConfidenceHigh),
	}
	selected := Select(candidates, 6, 12)
	assert.Len(t, selected, 1)
	assert.Equal(t, "b.go", selected[0].PrimaryFile)
}
