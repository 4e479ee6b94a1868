// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package driver defines the database capability used by the engine. The
// engine never talks to a database directly, it prepares and executes
// statements and fetches rows through these interfaces.
package driver

import (
	"context"
	"errors"
)

// ErrProcedureNotFound is returned by Conn.ProcedureResultSets when the
// catalog has no procedure of the given name.
var ErrProcedureNotFound = errors.New("procedure not found")

// BindType selects how a parameter is bound to a statement marker.
type BindType int

const (
	Char BindType = iota
	Integer
	Double
	Binary
)

func (t BindType) String() string {
	switch t {
	case Char:
		return "char"
	case Integer:
		return "integer"
	case Double:
		return "double"
	case Binary:
		return "binary"
	}
	return "unknown"
}

// ParseBindType returns the bind type named by s. The accepted names are
// "int" and "integer", "dec" and "decimal", "bin" and "binary", and "char".
// The empty string selects Char.
func ParseBindType(s string) (BindType, bool) {
	switch s {
	case "", "char":
		return Char, true
	case "int", "integer":
		return Integer, true
	case "dec", "decimal":
		return Double, true
	case "bin", "binary":
		return Binary, true
	}
	return Char, false
}

// Param is a value bound to one parameter marker. Value is nil, a string, an
// int64, a float64 or a []byte.
type Param struct {
	Value any
	Type  BindType
}

// Column describes a result column. Type is the database type name as
// reported by the driver, for example "INTEGER" or "DECIMAL(10,2)".
type Column struct {
	Name string
	Type string
}

// Cursor iterates over the rows of a result set.
type Cursor interface {
	// Columns returns the result columns. It is computed once per execution.
	Columns() []Column
	// Next fills dest with the values of the next row. dest has one element
	// per column. Next returns io.EOF when there are no more rows.
	Next(dest []any) error
	Close() error
}

// Outcome is the result of executing a statement or calling a procedure.
type Outcome struct {
	// Cursor is nil when the statement produced no result set.
	Cursor Cursor
	// RowsAffected is the number of rows changed by a command, or -1 when
	// unknown.
	RowsAffected int64
	// Values holds the parameter values returned by a procedure call.
	Values []any
}

// Stmt is a prepared statement.
type Stmt interface {
	// Token is an opaque identifier for the statement. Preparing the same
	// text twice yields the same token.
	Token() string
	Execute(ctx context.Context, params []Param) (*Outcome, error)
	Close() error
}

// Conn is a connection to a database.
type Conn interface {
	Prepare(ctx context.Context, query string) (Stmt, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	SetAutocommit(ctx context.Context, on bool) error
	// ProcedureResultSets returns the number of result sets the procedure
	// returns. schema may contain LIKE wildcards.
	ProcedureResultSets(ctx context.Context, schema, name string) (int, error)
	// Call calls a procedure with the given arguments. When wantRows is true
	// the first result set is returned in the Outcome cursor.
	Call(ctx context.Context, name string, args []any, wantRows bool) (*Outcome, error)
	Close() error
}
