package result

import (
	"fmt"
	"strings"
)

// Shape is the structure of a materialized result set.
type Shape int

const (
	// Array is a header row of column names followed by one row per result
	// row.
	Array Shape = iota
	// Record is one map per result row keyed by lower cased column name.
	Record
)

func (s Shape) String() string {
	switch s {
	case Array:
		return "array"
	case Record:
		return "record"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape returns the shape named by s. "json" is a synonym for "record".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "array", "":
		return Array, nil
	case "record", "json":
		return Record, nil
	}
	return Array, fmt.Errorf("unknown result format %q", s)
}
