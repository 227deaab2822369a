package suggest

import (
	"sort"
	"strconv"
)

const (
	// DefaultSoftTarget is the preferred selection size; DefaultHardMax is
	// the absolute cap regardless of how many validated suggestions exist.
	DefaultSoftTarget = 6
	DefaultHardMax    = 12
)

var priorityRank = map[Priority]int{PriorityHigh: 3, PriorityMedium: 2, PriorityLow: 1}
var confidenceRank = map[Confidence]int{ConfidenceHigh: 3, ConfidenceMedium: 2, ConfidenceLow: 1}

// dedupeKey merges duplicates by (file, line, category).
func dedupeKey(s Suggestion) string {
	line := 0
	if len(s.EvidenceRefs) > 0 {
		line = s.EvidenceRefs[0].Line
	}
	return s.PrimaryFile + "|" + strconv.Itoa(line) + "|" + string(s.Category)
}

// Select deterministically picks at most hardMax validated suggestions,
// preferring distinct files, then higher criticality (priority), then
// higher evidence quality (confidence), breaking ties on a stable
// (file, line) ordering. Duplicates sharing (file, line, category) are
// merged, keeping the first-seen (highest-ranked) occurrence. Only
// ValidationValidated suggestions are eligible.
func Select(suggestions []Suggestion, softTarget, hardMax int) []Suggestion {
	if softTarget <= 0 {
		softTarget = DefaultSoftTarget
	}
	if hardMax <= 0 {
		hardMax = DefaultHardMax
	}

	candidates := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.ValidationState == ValidationValidated {
			candidates = append(candidates, s)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if priorityRank[a.Priority] != priorityRank[b.Priority] {
			return priorityRank[a.Priority] > priorityRank[b.Priority]
		}
		if confidenceRank[a.Confidence] != confidenceRank[b.Confidence] {
			return confidenceRank[a.Confidence] > confidenceRank[b.Confidence]
		}
		if a.PrimaryFile != b.PrimaryFile {
			return a.PrimaryFile < b.PrimaryFile
		}
		return evidenceLine(a) < evidenceLine(b)
	})

	seenKeys := map[string]bool{}
	seenFiles := map[string]bool{}
	var distinct, repeat []Suggestion
	for _, s := range candidates {
		key := dedupeKey(s)
		if seenKeys[key] {
			continue
		}
		seenKeys[key] = true
		if seenFiles[s.PrimaryFile] {
			repeat = append(repeat, s)
		} else {
			seenFiles[s.PrimaryFile] = true
			distinct = append(distinct, s)
		}
	}

	ordered := append(distinct, repeat...)
	if len(ordered) > hardMax {
		ordered = ordered[:hardMax]
	}
	return ordered
}

func evidenceLine(s Suggestion) int {
	if len(s.EvidenceRefs) > 0 {
		return s.EvidenceRefs[0].Line
	}
	return 0
}
