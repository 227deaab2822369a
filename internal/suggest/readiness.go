package suggest

import "strings"

// ReadinessThreshold is the default below which a suggestion stays visible
// but discourages auto-apply.
const ReadinessThreshold = 0.5

const (
	FlagClaimNotGrounded       = "claim_not_grounded_in_snippet"
	FlagGenericOrLowInfo       = "generic_or_low_information_description"
	FlagEvidenceTopCommentRatio = "evidence_top_comment_ratio_high"
)

// AnnotateReadiness computes an implementation-readiness score in [0,1] and
// attaches risk flags, in place. Starts at 1.0 and deducts for each risk
// signal found; never goes below 0.
func AnnotateReadiness(s *Suggestion) {
	score := 1.0
	var flags []string

	if s.VerificationState != VerificationVerified {
		score -= 0.4
		flags = append(flags, FlagClaimNotGrounded)
	}
	if len(strings.Fields(s.Summary)) < minSummaryWords+2 {
		score -= 0.2
		flags = append(flags, FlagGenericOrLowInfo)
	}
	if commentRatio(s.EvidenceSnippet) > 0.6 {
		score -= 0.2
		flags = append(flags, FlagEvidenceTopCommentRatio)
	}

	if score < 0 {
		score = 0
	}
	s.ReadinessScore = score
	s.ReadinessFlags = flags
}

// commentRatio estimates the fraction of non-blank lines in an evidence
// snippet that are comment-only, as a proxy for "the grounding text is
// mostly comments, not code".
func commentRatio(snippet string) float64 {
	lines := strings.Split(snippet, "\n")
	total, comments := 0, 0
	for _, l := range lines {
		trimmed := strings.TrimSpace(stripLineNumberPrefix(l))
		if trimmed == "" {
			continue
		}
		total++
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "*") {
			comments++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(comments) / float64(total)
}

// stripLineNumberPrefix removes a leading "123\t" style prefix that tool
// output (file_head, read_file_range) adds.
func stripLineNumberPrefix(line string) string {
	if i := strings.IndexByte(line, '\t'); i > 0 && i < 8 {
		if isDigits(line[:i]) {
			return line[i+1:]
		}
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
