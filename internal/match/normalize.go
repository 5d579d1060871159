package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier to its lower-case words with every
// separator dropped, so "dry-run", "dry_run" and "DryRun" compare equal.
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Join(words(s), ""))
}

// KebabCase turns a Go identifier into a flag-style name:
// "MaxDepth" becomes "max-depth" and "UseASCII" becomes "use-ascii".
func KebabCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

// words splits an identifier at separators, at lower-to-upper transitions
// and before the last capital of an acronym followed by a lower-case
// letter, as in "JSONValue" -> "JSON", "Value".
func words(s string) []string {
	var (
		out   []string
		start = -1
	)

	runes := []rune(s)

	flush := func(end int) {
		if start >= 0 && end > start {
			out = append(out, string(runes[start:end]))
		}

		start = -1
	}

	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' {
			flush(i)
			continue
		}

		if start >= 0 && boundary(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return out
}

func boundary(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
