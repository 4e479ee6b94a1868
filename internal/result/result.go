// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package result

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/canonical/sqlmagic/driver"
)

// Set is a materialized result set.
type Set struct {
	Shape   Shape
	Columns []driver.Column
	// Rows holds the array shape: the column names followed by one row per
	// result row.
	Rows [][]any
	// Records holds the record shape.
	Records []map[string]any
	// Count is the number of result rows, not counting the header.
	Count int
}

// Value returns Rows or Records depending on the shape.
func (s *Set) Value() any {
	if s.Shape == Record {
		return s.Records
	}
	return s.Rows
}

// Empty returns true if the set has no result rows.
func (s *Set) Empty() bool {
	return s.Count == 0
}

// Materialize coerces the raw rows and arranges them in the given shape. Each
// raw row has one value per column.
func Materialize(cols []driver.Column, raw [][]any, shape Shape) *Set {
	set := &Set{Shape: shape, Columns: cols, Count: len(raw)}
	switch shape {
	case Record:
		set.Records = make([]map[string]any, 0, len(raw))
		for _, row := range raw {
			rec := make(map[string]any, len(cols))
			for i, col := range cols {
				rec[strings.ToLower(col.Name)] = Coerce(col.Type, row[i])
			}
			set.Records = append(set.Records, rec)
		}
	default:
		header := make([]any, len(cols))
		for i, col := range cols {
			header[i] = col.Name
		}
		set.Rows = make([][]any, 0, len(raw)+1)
		set.Rows = append(set.Rows, header)
		for _, row := range raw {
			out := make([]any, len(cols))
			for i, col := range cols {
				out[i] = Coerce(col.Type, row[i])
			}
			set.Rows = append(set.Rows, out)
		}
	}
	return set
}

// Fetch reads every row from the cursor, closes it and materializes the rows.
func Fetch(cur driver.Cursor, shape Shape) (set *Set, err error) {
	defer func() {
		cerr := cur.Close()
		if err == nil && cerr != nil {
			err = fmt.Errorf("cannot close cursor: %w", cerr)
		}
	}()

	cols := cur.Columns()
	var raw [][]any
	for {
		row := make([]any, len(cols))
		err := cur.Next(row)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("cannot fetch row: %w", err)
		}
		raw = append(raw, row)
	}
	return Materialize(cols, raw, shape), nil
}
