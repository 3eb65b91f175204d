package markdown

import "strings"

// CommonMark lets any ASCII punctuation be backslash-escaped; these are the
// ones that can start or end inline or block syntax.
const specialChars = "\\`*_{}[]()#+-.!|<>~&"

// Escape makes input render as literal text, e.g. inside a heading.
func Escape(input string) string {
	lookup := specialCharLookup()
	charsToEscape := 0

	for i := 0; i < len(input); i++ {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	// Byte-wise: every special char is ASCII and never a UTF-8 continuation byte.
	for i := 0; i < len(input); i++ {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// SingleLine collapses line breaks so text fits in one heading line.
func SingleLine(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

func specialCharLookup() [256]bool {
	var m [256]bool
	for _, c := range []byte(specialChars) {
		m[c] = true
	}
	return m
}
