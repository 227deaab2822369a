package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cosmos/internal/evidence"
)

func TestEvidenceWeightFormula(t *testing.T) {
	w := EvidenceWeight(evidence.FileSignal{Churn: 1, Complexity: 1, Recency: 1})
	assert.InDelta(t, 1.0, w, 1e-9)

	w = EvidenceWeight(evidence.FileSignal{Churn: 1, Complexity: 0, Recency: 0})
	assert.InDelta(t, 0.40, w, 1e-9)
}

func TestRankFilesOrdersByWeightThenPath(t *testing.T) {
	signals := []evidence.FileSignal{
		{Path: "b.go", Churn: 0.5, Complexity: 0.5, Recency: 0.5},
		{Path: "a.go", Churn: 0.5, Complexity: 0.5, Recency: 0.5},
		{Path: "z.go", Churn: 1, Complexity: 1, Recency: 1},
	}
	ranked := RankFiles(signals)
	assert.Equal(t, []string{"z.go", "a.go", "b.go"}, []string{ranked[0].Path, ranked[1].Path, ranked[2].Path})
}
