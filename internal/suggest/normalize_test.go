package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsPathsIdentifiersAndBackticks(t *testing.T) {
	s := &Suggestion{
		Summary: "The `parseConfig` function in config/loader.go at line 42 silently ignores malformed entries instead of rejecting them",
	}
	ok := Normalize(s)
	require.True(t, ok)
	assert.NotContains(t, s.Summary, "`")
	assert.NotContains(t, s.Summary, "config/loader.go")
	assert.NotContains(t, s.Summary, "parseConfig")
}

func TestNormalizeRewritesWhenClause(t *testing.T) {
	s := &Suggestion{Summary: "When the cache directory is missing, the loader panics instead of creating it"}
	ok := Normalize(s)
	require.True(t, ok)
	assert.Contains(t, s.Summary, "when")
	assert.True(t, s.Summary[0] >= 'A' && s.Summary[0] <= 'Z')
}

func TestNormalizeDropsLowInformationSummaryWithNoUsableDetail(t *testing.T) {
	s := &Suggestion{Summary: "Bad code", TechnicalDetail: "Fix it"}
	ok := Normalize(s)
	assert.False(t, ok)
}

func TestNormalizeFallsBackToTechnicalDetailOnSecondPass(t *testing.T) {
	s := &Suggestion{
		Summary:         "Bad",
		TechnicalDetail: "The retry loop never resets its backoff counter after a successful call completes",
	}
	ok := Normalize(s)
	require.True(t, ok)
	assert.Contains(t, s.Summary, "retry loop")
}

func TestNormalizeEnsuresTerminalPunctuation(t *testing.T) {
	s := &Suggestion{Summary: "The retry loop never resets its backoff counter after success"}
	ok := Normalize(s)
	require.True(t, ok)
	last := s.Summary[len(s.Summary)-1]
	assert.Contains(t, ".!?", string(last))
}
