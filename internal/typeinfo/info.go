package typeinfo

import (
	"fmt"
	"strings"
)

// Kind is the classification of an environment value.
type Kind int

const (
	// String values are quoted when quoting is enabled.
	String Kind = iota
	// Number values are written as canonical numeric text and never quoted.
	Number
	// List values are written as their comma separated elements.
	List
	// Raw values are written verbatim and never quoted.
	Raw
	// Struct values are maps and structs serialised to JSON text. They are
	// written like String values.
	Struct
)

func (k Kind) String() string {
	switch k {
	case String:
		return "String"
	case Number:
		return "Number"
	case List:
		return "List"
	case Raw:
		return "Raw"
	case Struct:
		return "Struct"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a classified environment value.
type Value struct {
	Kind Kind
	// Text is the textual form of the value before any quoting. It is empty
	// for List values.
	Text string
	// Elems holds the classified elements of a List value.
	Elems []Value
	// Native is the original Go value after pointer dereferencing.
	Native any
}

func (v Value) String() string {
	if v.Kind != List {
		return v.Kind.String() + "[" + v.Text + "]"
	}
	var elems []string
	for _, e := range v.Elems {
		elems = append(elems, e.String())
	}
	return "List[" + strings.Join(elems, " ") + "]"
}
