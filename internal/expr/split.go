// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"strings"

	"github.com/canonical/sqlmagic/internal/scan"
)

// Split divides a batch into statements at every occurrence of delim outside
// of quotes. Statement text is returned untrimmed. Empty statements between
// two delimiters are kept, a trailing empty statement is not. An unterminated
// quote runs to the end of the batch and is returned as part of the last
// statement.
func Split(batch string, delim rune) []string {
	var stmts []string
	var stmt strings.Builder
	s := scan.New(batch, string(delim))
	for {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			if stmt.Len() > 0 {
				stmts = append(stmts, stmt.String())
			}
			return stmts
		case scan.Delim:
			stmts = append(stmts, stmt.String())
			stmt.Reset()
		default:
			stmt.WriteString(t.Text)
		}
	}
}

// StripComments removes "--" line comments and "/* */" block comments found
// outside of quotes. The newline ending a line comment is kept and a block
// comment is replaced with a single space. An unterminated block comment runs
// to the end of the text.
func StripComments(text string) string {
	var b strings.Builder
	s := scan.New(text, "-/")
	for {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			return b.String()
		case scan.Delim:
			switch {
			case t.Text == "-" && s.HasPrefix("-"):
				s.SkipUntil("\n")
			case t.Text == "/" && s.HasPrefix("*"):
				s.Skip(1)
				s.SkipPast("*/")
				b.WriteString(" ")
			default:
				b.WriteString(t.Text)
			}
		default:
			b.WriteString(t.Text)
		}
	}
}
