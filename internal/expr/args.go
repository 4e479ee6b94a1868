package expr

import (
	"strconv"
	"strings"
)

// Arg is a single item of a USING list.
type Arg struct {
	// Text is the item with surrounding blanks and, for quoted strings, the
	// quote delimiters removed.
	Text string
	// Quoted is true for a string constant.
	Quoted bool
	// Numeric is true for a numeric constant.
	Numeric bool
	// Value is an int64 or float64 for numeric constants and Text otherwise.
	Value any
}

// Constant returns true if the item is a string or numeric constant rather
// than a variable reference.
func (a Arg) Constant() bool {
	return a.Quoted || a.Numeric
}

// Variable returns the variable name and bind type of a variable reference.
// References are written "name" or ":name", optionally followed by "@type".
// The type is returned lower cased and is empty when not given.
func (a Arg) Variable() (name, typ string, ok bool) {
	if a.Constant() {
		return "", "", false
	}
	name = strings.TrimPrefix(a.Text, ":")
	if i := strings.LastIndex(name, "@"); i > 0 {
		name, typ = name[:i], strings.ToLower(name[i+1:])
	}
	if name == "" {
		return "", "", false
	}
	return name, typ, true
}

func (a Arg) String() string {
	switch {
	case a.Quoted:
		return "String[" + a.Text + "]"
	case a.Numeric:
		return "Number[" + a.Text + "]"
	}
	return "Name[" + a.Text + "]"
}

// SplitArgs splits a comma separated list of constants and variable
// references, optionally wrapped in parentheses. Commas inside quotes do not
// split. Empty items between commas are kept; a trailing empty item is not.
func SplitArgs(text string) []Arg {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	items := Split(text, ',')
	args := make([]Arg, 0, len(items))
	for _, item := range items {
		args = append(args, newArg(strings.TrimSpace(item)))
	}
	return args
}

func newArg(item string) Arg {
	if item != "" && (item[0] == '\'' || item[0] == '"') {
		inner := item[1:]
		if len(inner) > 0 && inner[len(inner)-1] == item[0] {
			inner = inner[:len(inner)-1]
		}
		return Arg{Text: inner, Quoted: true, Value: inner}
	}
	if isNumberStart(item) {
		if n, err := strconv.ParseInt(item, 10, 64); err == nil {
			return Arg{Text: item, Numeric: true, Value: n}
		}
		if f, err := strconv.ParseFloat(item, 64); err == nil {
			return Arg{Text: item, Numeric: true, Value: f}
		}
	}
	return Arg{Text: item, Value: item}
}

// isNumberStart guards ParseFloat against words such as "Inf" and "NaN".
func isNumberStart(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '+' || c == '-' || c == '.' || ('0' <= c && c <= '9')
}
