// internal/util/util.go
package util

import (
	"os"
	"strings"
	"unicode/utf8"
)

// WriteFile writes data to a file with 0o644 permissions.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// SingleLine collapses a multi-line string onto one line so it can sit in a
// table cell. Interior whitespace runs become a single space.
func SingleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
