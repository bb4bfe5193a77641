package validators

import "strings"

// SanitizeString normalizes a free-text catalog filter: surrounding space is
// trimmed, inner whitespace runs collapse to one space and the result is cut to
// maxLen runes so multi-byte dish and city names are never split mid-character.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}
