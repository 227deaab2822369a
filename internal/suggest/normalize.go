package suggest

import (
	"regexp"
	"strings"
)

const minSummaryWords = 8

var (
	backtickRe      = regexp.MustCompile("`[^`]*`")
	lineNumberRe    = regexp.MustCompile(`\b(line|ln)\.?\s*\d+\b`)
	pathRe          = regexp.MustCompile(`\b[\w./-]+\.\w{1,5}\b`)
	identifierRe    = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)+\(?\)?\b`)
	mattersClauseRe = regexp.MustCompile(`(?i)\s*this matters because[^.]*\.?`)
	whenPrefixRe    = regexp.MustCompile(`(?i)^when (.+?), (.+)$`)
	vagueConnectors = []string{"when users", "when things", "in some cases", "sometimes"}
)

// Normalize runs the deterministic scrub/rewrite passes described by the
// spec on one suggestion's summary, in place. It returns false when the
// suggestion should be dropped rather than emit a generic fallback.
func Normalize(s *Suggestion) bool {
	summary := scrub(s.Summary)
	summary = firstSentence(summary)
	summary = rewriteWhenClause(summary)
	summary = strings.TrimSpace(summary)

	if isLowInformation(summary) {
		// Second pass: try pulling a sentence-like fragment out of the
		// technical detail instead of giving up immediately.
		fallback := firstSentence(scrub(s.TechnicalDetail))
		fallback = rewriteWhenClause(fallback)
		fallback = strings.TrimSpace(fallback)
		if isLowInformation(fallback) {
			return false
		}
		summary = fallback
	}

	s.Summary = ensureTerminalPunctuation(summary)
	return true
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			return strings.TrimSpace(text[:i])
		}
	}
	return text
}

// scrub strips backticks, file paths, line-number references, and
// dotted/code-style identifiers, then collapses the formulaic
// "this matters because ..." clause and extra whitespace.
func scrub(text string) string {
	text = backtickRe.ReplaceAllString(text, "")
	text = lineNumberRe.ReplaceAllString(text, "")
	text = pathRe.ReplaceAllString(text, "")
	text = identifierRe.ReplaceAllString(text, "")
	text = mattersClauseRe.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return text
}

// rewriteWhenClause turns "When X, Y" into "Y when X." form.
func rewriteWhenClause(text string) string {
	m := whenPrefixRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	condition, outcome := m[1], m[2]
	outcome = strings.TrimSuffix(strings.TrimSpace(outcome), ".")
	condition = strings.TrimSpace(condition)
	return capitalize(outcome) + " when " + condition + "."
}

func isLowInformation(summary string) bool {
	if summary == "" {
		return true
	}
	words := strings.Fields(summary)
	if len(words) < minSummaryWords {
		return true
	}
	lower := strings.ToLower(summary)
	for _, v := range vagueConnectors {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

func ensureTerminalPunctuation(text string) string {
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	default:
		return text + "."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
