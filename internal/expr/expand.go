// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"strings"

	"github.com/canonical/sqlmagic/internal/typeinfo"
)

// Env is a variable environment. Lookup returns the value bound to name and
// whether it was found.
type Env interface {
	Lookup(name string) (any, bool)
}

// Expand returns the literal SQL for the parsed template. Placeholders are
// replaced with the values they name in env. When quote is true string values
// are written as quoted SQL literals, otherwise they are written verbatim.
// Placeholders not found in env are written unchanged.
func (pe *ParsedExpr) Expand(env Env, quote bool) string {
	var b strings.Builder
	for _, part := range pe.parts {
		switch p := part.(type) {
		case *bypassPart:
			b.WriteString(p.chunk)
		case *placeholderPart:
			var value any
			var ok bool
			if env != nil {
				value, ok = env.Lookup(p.name)
			}
			if !ok {
				b.WriteString(p.raw())
				continue
			}
			writeValue(&b, typeinfo.Classify(value), quote)
		}
	}
	return b.String()
}

// Expand parses template and expands it in env.
func Expand(template string, env Env, quote bool) string {
	return NewParser().Parse(template).Expand(env, quote)
}

// writeValue writes a classified value as SQL text.
func writeValue(b *strings.Builder, v typeinfo.Value, quote bool) {
	switch v.Kind {
	case typeinfo.Number, typeinfo.Raw:
		b.WriteString(v.Text)
	case typeinfo.String, typeinfo.Struct:
		if quote {
			b.WriteString(Quote(v.Text))
		} else {
			b.WriteString(v.Text)
		}
	case typeinfo.List:
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(",")
			}
			// List elements are always quoted unless numeric or raw.
			writeValue(b, e, true)
		}
	}
}

// Quote returns s as a SQL string literal. Every single quote in s is
// doubled and nothing else is escaped.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
