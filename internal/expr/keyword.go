package expr

import (
	"strings"
	"unicode"
)

// LeadingKeyword returns the first word of text upper cased, and the text
// following it with leading blanks removed. A word ends at a blank or an
// opening parenthesis.
func LeadingKeyword(text string) (keyword, rest string) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	if end < 0 {
		return strings.ToUpper(text), ""
	}
	return strings.ToUpper(text[:end]), strings.TrimLeftFunc(text[end:], unicode.IsSpace)
}
