// evaluate/normalize.go

// Package evaluate grades model responses against lists of acceptable
// answers using pluggable match strategies. Free-text model output rarely
// matches an expected answer verbatim, so the default semantic strategy
// layers prefix and partial-match heuristics on top of text normalization.
package evaluate

import "strings"

// quoteReplacer unifies single quotes and backticks to a double quote so
// that quoting style differences never fail a comparison.
var quoteReplacer = strings.NewReplacer("'", `"`, "`", `"`)

// Normalize converts raw text into its canonical comparison form: leading
// and trailing whitespace is removed, every internal run of whitespace
// (including newlines) collapses to a single space, and quote characters
// are unified to a double quote. Case folding is left to callers because it
// depends on the per-test caseSensitive setting. Normalize never fails.
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return quoteReplacer.Replace(collapsed)
}
