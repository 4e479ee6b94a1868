// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"strings"
	"unicode"

	"github.com/canonical/sqlmagic/internal/scan"
)

// CallArg is a single argument of a CALL statement.
type CallArg struct {
	// Text is the argument with quote delimiters removed and surrounding
	// blanks trimmed.
	Text string
	// Quoted is true if any part of the argument was quoted.
	Quoted bool
	// Null is true for an empty argument slot or the unquoted word NULL.
	Null bool
}

// Variable returns the name of the environment variable the argument refers
// to. Variable references are unquoted and start with a colon.
func (a CallArg) Variable() (string, bool) {
	if a.Quoted || a.Null || len(a.Text) < 2 || a.Text[0] != ':' {
		return "", false
	}
	return a.Text[1:], true
}

func (a CallArg) String() string {
	if a.Null {
		return "Null"
	}
	if name, ok := a.Variable(); ok {
		return "Var[" + name + "]"
	}
	if a.Quoted {
		return "Quoted[" + a.Text + "]"
	}
	return "Literal[" + a.Text + "]"
}

// ParseCall parses the text following the CALL keyword, for example
// "MYPROC(:a, 'x', , 5)". The procedure name is every non blank character
// before the first opening parenthesis. Arguments are separated by commas
// outside of quotes and end at the first closing parenthesis outside of
// quotes. An empty slot between two commas is a NULL argument, an empty
// unquoted slot before the closing parenthesis is dropped. A missing closing
// parenthesis is tolerated.
func ParseCall(text string) (name string, args []CallArg) {
	var nb strings.Builder
	open := -1
	s := scan.New(text, "(")
	for open < 0 {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			return nb.String(), nil
		case scan.Delim:
			open = t.Offset
		default:
			for _, r := range t.Text {
				if !unicode.IsSpace(r) {
					nb.WriteRune(r)
				}
			}
		}
	}
	name = nb.String()
	args = []CallArg{}

	var arg argBuilder
	s = scan.New(text[open+1:], ",)")
	for {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			return name, arg.finish(args)
		case scan.Delim:
			if t.Text == ")" {
				return name, arg.finish(args)
			}
			args = append(args, arg.build())
			arg = argBuilder{}
		case scan.Quoted:
			arg.quoted = true
			arg.b.WriteString(t.Inner())
		case scan.Text:
			arg.b.WriteString(strings.TrimSpace(t.Text))
		}
	}
}

// argBuilder accumulates the text of one CALL argument.
type argBuilder struct {
	b      strings.Builder
	quoted bool
}

func (ab *argBuilder) build() CallArg {
	text := ab.b.String()
	if !ab.quoted && (text == "" || strings.EqualFold(text, "NULL")) {
		return CallArg{Text: text, Null: true}
	}
	return CallArg{Text: text, Quoted: ab.quoted}
}

// finish appends the last argument unless its slot is empty and unquoted.
func (ab *argBuilder) finish(args []CallArg) []CallArg {
	if ab.b.Len() == 0 && !ab.quoted {
		return args
	}
	return append(args, ab.build())
}
