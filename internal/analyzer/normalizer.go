package analyzer

import (
	"regexp"
	"strings"
)

// NoMessagePattern is the sentinel canonical pattern for records whose
// raw error message is absent or empty.
const NoMessagePattern = "(no message)"

// MaxPatternKeyLength bounds the pattern used as a grouping-key
// component. The untruncated pattern is kept for display.
const MaxPatternKeyLength = 200

// substitution rewrites one class of variable substring to a fixed
// placeholder. Order matters: earlier entries win where classes overlap
// (a timestamp contains a date, a URL may contain an IP).
type substitution struct {
	re          *regexp.Regexp
	placeholder string
}

var substitutions = []substitution{
	{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "{UUID}"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`), "{TIMESTAMP}"},
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "{DATE}"},
	{regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`), "{IP}"},
	{regexp.MustCompile(`https?://[^\s]+`), "{URL}"},
	{regexp.MustCompile(`\b\d{4,}\b`), "{ID}"},
}

// NormalizeMessage maps a raw error message to its canonical pattern by
// replacing variable substrings (IDs, timestamps, addresses) with fixed
// placeholders. The result is case-preserving, deterministic, and
// idempotent: placeholders contain nothing any substitution matches, so
// normalizing a pattern returns it unchanged.
func NormalizeMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return NoMessagePattern
	}

	normalized := message
	for _, sub := range substitutions {
		normalized = sub.re.ReplaceAllString(normalized, sub.placeholder)
	}
	return strings.TrimSpace(normalized)
}

// PatternKey truncates a canonical pattern to the bounded length used in
// group keys.
func PatternKey(pattern string) string {
	if len(pattern) > MaxPatternKeyLength {
		return pattern[:MaxPatternKeyLength]
	}
	return pattern
}
