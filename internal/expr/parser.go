// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"strings"

	"github.com/canonical/sqlmagic/internal/scan"
)

func NewParser() *Parser {
	return &Parser{}
}

// Parser splits a SQL template into bypass and placeholder parts. A Parser
// can be reused but is not safe for concurrent use.
type Parser struct {
	s *scan.Scanner
	// bypass accumulates the text between placeholders.
	bypass strings.Builder
	// parts are the output of the parser. Parts are added as they are
	// parsed.
	parts []queryPart
}

// ParsedExpr is a parsed SQL template. It is immutable and may be shared.
type ParsedExpr struct {
	parts []queryPart
}

// String returns a textual representation of the parsed template for
// debugging and testing purposes.
func (pe *ParsedExpr) String() string {
	var b strings.Builder
	b.WriteString("ParsedExpr[")
	for i, p := range pe.parts {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(p.String())
	}
	b.WriteString("]")
	return b.String()
}

// Placeholders returns the placeholder names in the order they appear.
func (pe *ParsedExpr) Placeholders() []string {
	var names []string
	for _, p := range pe.parts {
		if pp, ok := p.(*placeholderPart); ok {
			names = append(names, pp.name)
		}
	}
	return names
}

// init resets the state of the parser and sets the input string.
func (p *Parser) init(input string) {
	p.s = scan.New(input, ":")
	p.bypass.Reset()
	p.parts = []queryPart{}
}

// Parse takes a SQL template and returns a ParsedExpr. Parsing never fails:
// text that is not a placeholder, including unterminated quotes, is kept as
// bypass text.
func (p *Parser) Parse(input string) *ParsedExpr {
	p.init(input)

	for {
		t := p.s.Next()
		switch t.Kind {
		case scan.EOF:
			p.flush()
			return &ParsedExpr{parts: p.parts}
		case scan.Text, scan.Quoted:
			p.bypass.WriteString(t.Text)
		case scan.Delim:
			// "::" is the cast operator.
			if p.s.HasPrefix(":") {
				p.s.Skip(1)
				p.bypass.WriteString("::")
				continue
			}
			name := p.s.TakeWhile(isNameChar)
			if name == "" {
				p.bypass.WriteString(":")
				continue
			}
			p.add(&placeholderPart{name: name})
		}
	}
}

// add pushes the placeholder to the list of parts along with the bypass
// chunk that precedes it.
func (p *Parser) add(part *placeholderPart) {
	p.flush()
	p.parts = append(p.parts, part)
}

// flush adds any pending bypass text as a part.
func (p *Parser) flush() {
	if p.bypass.Len() > 0 {
		p.parts = append(p.parts, &bypassPart{chunk: p.bypass.String()})
		p.bypass.Reset()
	}
}

// isNameChar returns true if the given char can be part of a placeholder
// name.
func isNameChar(c rune) bool {
	return c == '@' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
