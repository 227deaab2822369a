package suggest

import (
	"sort"

	"cosmos/internal/evidence"
)

// churnWeight, complexityWeight, and recencyWeight are the coefficients
// behind EvidenceWeight, taken from original_source's snippet-weighting
// formula rather than invented: churn dominates since a frequently-changed
// file is the likeliest place to find a live bug, complexity is the second
// signal, recency the tie-breaker.
const (
	churnWeight      = 0.40
	complexityWeight = 0.35
	recencyWeight    = 0.25
)

// EvidenceWeight scores a file's priority for evidence-pack inclusion.
// Each input is expected pre-normalized to [0,1]; the result is also in
// [0,1] when inputs are.
func EvidenceWeight(sig evidence.FileSignal) float64 {
	return sig.Churn*churnWeight + sig.Complexity*complexityWeight + sig.Recency*recencyWeight
}

// RankFiles sorts signals by descending EvidenceWeight, breaking ties by
// path for determinism.
func RankFiles(signals []evidence.FileSignal) []evidence.FileSignal {
	ranked := make([]evidence.FileSignal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := EvidenceWeight(ranked[i]), EvidenceWeight(ranked[j])
		if wi != wj {
			return wi > wj
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}
