package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxStemRunes = 120
	// Leaves room for "_variation_N_K.ext" within the usual 255-byte name limit.
	maxStemBytes = 200
	untitledStem = "untitled"
)

// SanitizeTitle keeps only letters, numbers and whitespace.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}

		return -1
	}, title)
}

// fileStem is the filename-safe form of title: sanitized, single-line,
// bounded in length and never empty.
func fileStem(title string) string {
	stem := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}

		return r
	}, SanitizeTitle(title))
	stem = strings.TrimSpace(stem)

	if runes := []rune(stem); len(runes) > maxStemRunes {
		stem = string(runes[:maxStemRunes])
	}
	stem = strings.TrimSpace(truncateBytes(stem, maxStemBytes))

	if stem == "" {
		return untitledStem
	}

	return stem
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}
