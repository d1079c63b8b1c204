// Package morph holds the word-level helpers shared by the command parser,
// the message generator and the loaders: the Esperanto alphabet, case
// folding and the x-system digraphs.
package morph

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// accented lists the six Esperanto letters with diacritics, lower case.
const accented = "ĉĝĥĵŝŭ"

// digraphs maps the base letter of an x-system pair to its accented form.
var digraphs = map[rune]rune{
	'c': 'ĉ',
	'g': 'ĝ',
	'h': 'ĥ',
	'j': 'ĵ',
	's': 'ŝ',
	'u': 'ŭ',
}

// IsAlphabetic reports whether r can appear in a word.
func IsAlphabetic(r rune) bool {
	if r < utf8.RuneSelf {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return strings.ContainsRune(accented, unicode.ToLower(r))
}

// ToLower folds one letter of the alphabet to lower case. Other runes are
// returned unchanged.
func ToLower(r rune) rune {
	if !IsAlphabetic(r) {
		return r
	}
	return unicode.ToLower(r)
}

// ToUpper is the inverse of ToLower.
func ToUpper(r rune) rune {
	if !IsAlphabetic(r) {
		return r
	}
	return unicode.ToUpper(r)
}

// Normalize puts text into NFC, lowercases every letter and decodes
// digraphs such as "cx" or "uX" into the accented letter.
func Normalize(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := ToLower(runes[i])
		if acc, ok := digraphs[r]; ok && i+1 < len(runes) &&
			(runes[i+1] == 'x' || runes[i+1] == 'X') {
			b.WriteRune(acc)
			i++
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Equal compares two words ignoring case and digraph spelling.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(ToUpper(r)) + s[size:]
}

// IsWord reports whether s is non-empty and made only of letters.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsAlphabetic(r) {
			return false
		}
	}
	return true
}
