package provider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// healJSON opportunistically salvages lightly malformed JSON content: strip
// markdown fences, unwrap a redundant outer brace pair, and, failing that,
// locate the first balanced JSON object or array in the body. Each candidate
// is tried in order; the first to deserialize wins.
func healJSON(body string, out interface{}) error {
	candidates := []string{body}

	if m := fencePattern.FindStringSubmatch(body); len(m) == 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		candidates = append(candidates, trimmed[1:len(trimmed)-1])
	}

	if balanced := firstBalancedJSON(body); balanced != "" {
		candidates = append(candidates, balanced)
	}

	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c), out); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("heal json: no candidate parsed: %w (sanitized body: %s)", lastErr, sanitize(body))
}

// firstBalancedJSON scans for the first balanced {...} or [...] span in s,
// respecting string escapes so braces inside string literals don't confuse
// the bracket counter.
func firstBalancedJSON(s string) string {
	openers := map[byte]byte{'{': '}', '[': ']'}
	for i := 0; i < len(s); i++ {
		closeCh, ok := openers[s[i]]
		if !ok {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for j := i; j < len(s); j++ {
			ch := s[j]
			if inString {
				if escaped {
					escaped = false
				} else if ch == '\\' {
					escaped = true
				} else if ch == '"' {
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case s[i]:
				depth++
			case closeCh:
				depth--
				if depth == 0 {
					return s[i : j+1]
				}
			}
		}
	}
	return ""
}
