// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package scan contains the quote aware character scanner shared by every
component that looks inside SQL text. It does not understand SQL grammar. It
only knows three kinds of quoted region, opened by ', " and [ and closed by ',
" and ] respectively, and a set of caller supplied delimiter characters that
are significant outside of quotes.

Malformed input never fails. A quoted region still open at the end of the
input is returned as a Quoted token with Truncated set, and the caller decides
what to do with it.
*/
package scan

import (
	"strings"
	"unicode/utf8"
)

// Kind is the kind of a Token.
type Kind int

const (
	// EOF is returned once the input is exhausted.
	EOF Kind = iota
	// Text is a run of unquoted text containing no delimiter and no quote
	// opener.
	Text
	// Quoted is a quoted region including its delimiters.
	Quoted
	// Delim is a single delimiter character found outside of quotes.
	Delim
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Text:
		return "Text"
	case Quoted:
		return "Quoted"
	case Delim:
		return "Delim"
	}
	return "Unknown"
}

// Token is a logical unit of the input.
type Token struct {
	Kind Kind
	// Text is the exact input text of the token. For Delim tokens it is the
	// delimiter itself.
	Text string
	// Offset is the byte offset of the token in the input.
	Offset int
	// Truncated is set on a Quoted token whose closing delimiter was never
	// found.
	Truncated bool
}

// Inner returns the text of a Quoted token without its quote delimiters. For
// other kinds it returns Text unchanged.
func (t Token) Inner() string {
	if t.Kind != Quoted || t.Text == "" {
		return t.Text
	}
	_, size := utf8.DecodeRuneInString(t.Text)
	if t.Truncated {
		return t.Text[size:]
	}
	if len(t.Text) <= size {
		return ""
	}
	return t.Text[size : len(t.Text)-1]
}

// closer returns the closing delimiter for the quote opened by c. ok is false
// if c does not open a quote.
func closer(c rune) (rune, bool) {
	switch c {
	case '\'', '"':
		return c, true
	case '[':
		return ']', true
	}
	return 0, false
}

// IsQuote returns true if c opens a quoted region.
func IsQuote(c rune) bool {
	_, ok := closer(c)
	return ok
}

// Scanner produces Tokens from an input string on demand.
type Scanner struct {
	input  string
	pos    int
	delims string
	peeked *Token
}

// New returns a Scanner over input. Any character in delims found outside of
// quotes is returned as a separate Delim token.
func New(input, delims string) *Scanner {
	return &Scanner{input: input, delims: delims}
}

// Next returns the next token, or a token of kind EOF at the end of the input.
func (s *Scanner) Next() Token {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t
	}
	return s.scan()
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() Token {
	if s.peeked == nil {
		t := s.scan()
		s.peeked = &t
	}
	return *s.peeked
}

// Done returns true when there is nothing left to scan.
func (s *Scanner) Done() bool {
	return s.peeked == nil && s.pos >= len(s.input)
}

func (s *Scanner) scan() Token {
	if s.pos >= len(s.input) {
		return Token{Kind: EOF, Offset: len(s.input)}
	}
	start := s.pos
	c, size := utf8.DecodeRuneInString(s.input[s.pos:])

	if strings.ContainsRune(s.delims, c) {
		s.pos += size
		return Token{Kind: Delim, Text: s.input[start:s.pos], Offset: start}
	}

	if end, ok := closer(c); ok {
		s.pos += size
		for s.pos < len(s.input) {
			r, n := utf8.DecodeRuneInString(s.input[s.pos:])
			s.pos += n
			if r == end {
				return Token{Kind: Quoted, Text: s.input[start:s.pos], Offset: start}
			}
		}
		return Token{Kind: Quoted, Text: s.input[start:], Offset: start, Truncated: true}
	}

	for s.pos < len(s.input) {
		r, n := utf8.DecodeRuneInString(s.input[s.pos:])
		if IsQuote(r) || strings.ContainsRune(s.delims, r) {
			break
		}
		s.pos += n
	}
	return Token{Kind: Text, Text: s.input[start:s.pos], Offset: start}
}

// The helpers below read the raw input at the current position. They must
// not be mixed with a pending Peek.

// HasPrefix returns true if the unscanned input starts with prefix.
func (s *Scanner) HasPrefix(prefix string) bool {
	s.unpeek()
	return strings.HasPrefix(s.input[s.pos:], prefix)
}

// TakeWhile consumes and returns the longest run of characters satisfying f.
// Quotes and delimiters are not treated specially.
func (s *Scanner) TakeWhile(f func(rune) bool) string {
	s.unpeek()
	start := s.pos
	for s.pos < len(s.input) {
		r, n := utf8.DecodeRuneInString(s.input[s.pos:])
		if !f(r) {
			break
		}
		s.pos += n
	}
	return s.input[start:s.pos]
}

// Skip consumes n bytes of raw input.
func (s *Scanner) Skip(n int) {
	s.unpeek()
	s.pos = min(s.pos+n, len(s.input))
}

// SkipUntil consumes input up to, but not including, the next occurrence of
// stop. If stop is not found the rest of the input is consumed.
func (s *Scanner) SkipUntil(stop string) string {
	s.unpeek()
	start := s.pos
	if i := strings.Index(s.input[s.pos:], stop); i >= 0 {
		s.pos += i
	} else {
		s.pos = len(s.input)
	}
	return s.input[start:s.pos]
}

// SkipPast consumes input up to and including the next occurrence of stop.
// found is false if stop never occurs, in which case the rest of the input is
// consumed.
func (s *Scanner) SkipPast(stop string) (skipped string, found bool) {
	skipped = s.SkipUntil(stop)
	if s.pos < len(s.input) {
		s.pos += len(stop)
		return skipped + stop, true
	}
	return skipped, false
}

// unpeek rewinds a pending peeked token so the raw helpers see the input
// starting at the same place Next would.
func (s *Scanner) unpeek() {
	if s.peeked != nil {
		s.pos = s.peeked.Offset
		s.peeked = nil
	}
}
