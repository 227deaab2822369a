package provider

import (
	"regexp"
	"strings"
)

const redactedMarker = "[REDACTED]"
const sanitizeMaxLen = 200

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9]{10,}`),
	regexp.MustCompile(`(?i)api[_-]?key["':=\s]+[a-zA-Z0-9_\-]{10,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-.]{10,}`),
	regexp.MustCompile(`(?i)authorization["':=\s]+[a-zA-Z0-9_\-.]{10,}`),
}

// sanitize truncates text to a bounded length and redacts any substring
// matching a known secret shape, so diagnostics never leak credentials.
func sanitize(text string) string {
	for _, p := range secretPatterns {
		text = p.ReplaceAllString(text, redactedMarker)
	}
	text = strings.TrimSpace(text)
	if len(text) > sanitizeMaxLen {
		text = text[:sanitizeMaxLen]
	}
	return text
}
