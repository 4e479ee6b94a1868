// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqlconn implements the driver capability on top of database/sql.
//
// All work happens on a single pinned connection so that transaction state
// and prepared statements are shared between calls. Turning autocommit off
// opens a transaction on that connection and every Commit or Rollback opens
// the next one.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/canonical/sqlmagic/driver"
	"github.com/canonical/sqlmagic/internal/expr"
	"github.com/canonical/sqlmagic/internal/scan"
)

// DefaultCatalogQuery looks up the number of result sets of a procedure in
// the Db2 catalog. The first parameter is the schema pattern and the second
// the procedure name.
const DefaultCatalogQuery = "SELECT RESULT_SETS FROM SYSCAT.PROCEDURES WHERE PROCSCHEMA LIKE ? AND PROCNAME = ?"

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conn) {
		c.logger = logger
	}
}

// WithCatalogQuery replaces DefaultCatalogQuery. An empty query is ignored.
func WithCatalogQuery(query string) Option {
	return func(c *Conn) {
		if query != "" {
			c.catalogQuery = query
		}
	}
}

// Conn is a driver.Conn over a pinned *sql.Conn.
type Conn struct {
	conn         *sql.Conn
	catalogQuery string
	logger       *slog.Logger

	// mu guards tx.
	mu sync.Mutex
	// tx is the open transaction while autocommit is off.
	tx *sql.Tx
}

var _ driver.Conn = (*Conn)(nil)

// Open pins a connection from db. Autocommit is on.
func Open(ctx context.Context, db *sql.DB, opts ...Option) (*Conn, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot open connection: %w", err)
	}
	return New(conn, opts...), nil
}

// New returns a Conn using conn. The Conn takes ownership of conn.
func New(conn *sql.Conn, opts ...Option) *Conn {
	c := &Conn{
		conn:         conn,
		catalogQuery: DefaultCatalogQuery,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prepare prepares query on the connection.
func (c *Conn) Prepare(ctx context.Context, query string) (driver.Stmt, error) {
	st, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s := &stmt{
		st:    st,
		token: Token(query),
		exec:  isCommand(query),
	}
	c.logger.Debug("prepared statement", "token", s.token, "exec", s.exec)
	return s, nil
}

// Token returns the statement token for query. The same text always yields
// the same token.
func Token(query string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(query)).String()
}

// Commit commits the open transaction and starts the next one. It does
// nothing when autocommit is on.
func (c *Conn) Commit(ctx context.Context) error {
	return c.endTx(ctx, (*sql.Tx).Commit)
}

// Rollback rolls back the open transaction and starts the next one. It does
// nothing when autocommit is on.
func (c *Conn) Rollback(ctx context.Context) error {
	return c.endTx(ctx, (*sql.Tx).Rollback)
}

func (c *Conn) endTx(ctx context.Context, end func(*sql.Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx == nil {
		return nil
	}
	err := end(c.tx)
	c.tx = nil
	if err != nil {
		return err
	}
	return c.begin(ctx)
}

// SetAutocommit turns autocommit on or off. Turning it on commits any open
// transaction.
func (c *Conn) SetAutocommit(ctx context.Context, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		if c.tx == nil {
			return nil
		}
		err := c.tx.Commit()
		c.tx = nil
		return err
	}
	if c.tx != nil {
		return nil
	}
	return c.begin(ctx)
}

// begin opens a transaction. The transaction outlives ctx, it ends with an
// explicit Commit or Rollback.
func (c *Conn) begin(ctx context.Context) error {
	tx, err := c.conn.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

// ProcedureResultSets runs the catalog query.
func (c *Conn) ProcedureResultSets(ctx context.Context, schema, name string) (int, error) {
	var n sql.NullInt64
	err := c.conn.QueryRowContext(ctx, c.catalogQuery, schema, name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, driver.ErrProcedureNotFound
	} else if err != nil {
		return 0, err
	}
	return int(n.Int64), nil
}

// Call runs "CALL name(?,...)". database/sql cannot read output parameters
// portably, so the returned Values are the arguments as sent.
func (c *Conn) Call(ctx context.Context, name string, args []any, wantRows bool) (*driver.Outcome, error) {
	markers := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	query := "CALL " + name + "(" + markers + ")"
	c.logger.Debug("calling procedure", "query", query, "args", len(args))

	if wantRows {
		rows, err := c.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		cur, err := newCursor(rows)
		if err != nil {
			return nil, err
		}
		return &driver.Outcome{Cursor: cur, RowsAffected: -1, Values: args}, nil
	}

	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &driver.Outcome{RowsAffected: rowsAffected(res), Values: args}, nil
}

// Close rolls back any open transaction and returns the connection to its
// pool.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.tx != nil {
		err = c.tx.Rollback()
		c.tx = nil
	}
	return errors.Join(err, c.conn.Close())
}

// stmt is a driver.Stmt over *sql.Stmt. Known commands run through Exec to
// report affected rows; everything else runs through Query and is a result
// set when it has columns.
type stmt struct {
	st    *sql.Stmt
	token string
	exec  bool
}

func (s *stmt) Token() string {
	return s.token
}

func (s *stmt) Execute(ctx context.Context, params []driver.Param) (*driver.Outcome, error) {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Value
	}

	if s.exec {
		res, err := s.st.ExecContext(ctx, args...)
		if err != nil {
			return nil, err
		}
		return &driver.Outcome{RowsAffected: rowsAffected(res)}, nil
	}

	rows, err := s.st.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	if len(cols) == 0 {
		// Some drivers only run the statement as the rows are read.
		for rows.Next() {
		}
		if err := errors.Join(rows.Err(), rows.Close()); err != nil {
			return nil, err
		}
		return &driver.Outcome{RowsAffected: -1}, nil
	}
	cur, err := newCursor(rows)
	if err != nil {
		return nil, err
	}
	return &driver.Outcome{Cursor: cur, RowsAffected: -1}, nil
}

func (s *stmt) Close() error {
	return s.st.Close()
}

func rowsAffected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return -1
	}
	return n
}

// commandKeywords are the leading keywords of statements that never produce
// a result set unless they carry a RETURNING clause.
var commandKeywords = map[string]bool{
	"INSERT":    true,
	"UPDATE":    true,
	"DELETE":    true,
	"MERGE":     true,
	"CREATE":    true,
	"DROP":      true,
	"ALTER":     true,
	"TRUNCATE":  true,
	"RENAME":    true,
	"COMMENT":   true,
	"GRANT":     true,
	"REVOKE":    true,
	"SET":       true,
	"LOCK":      true,
	"DECLARE":   true,
	"SAVEPOINT": true,
	"RELEASE":   true,
}

// isCommand reports whether query is known to produce no result set, from
// its first keyword after any comments. database/sql only tells after
// execution.
func isCommand(query string) bool {
	keyword := strings.TrimLeft(expr.StripComments(query), " \t\r\n(")
	end := strings.IndexFunc(keyword, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z')
	})
	if end >= 0 {
		keyword = keyword[:end]
	}
	return commandKeywords[strings.ToUpper(keyword)] && !returning(query)
}

// returning reports whether query has a RETURNING keyword outside of quotes
// and comments.
func returning(query string) bool {
	s := scan.New(expr.StripComments(query), "")
	for t := s.Next(); t.Kind != scan.EOF; t = s.Next() {
		if t.Kind != scan.Text {
			continue
		}
		words := strings.FieldsFunc(t.Text, func(r rune) bool {
			return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_')
		})
		for _, w := range words {
			if strings.EqualFold(w, "RETURNING") {
				return true
			}
		}
	}
	return false
}

// cursor is a driver.Cursor over *sql.Rows. Text columns are returned as
// string and binary columns as []byte.
type cursor struct {
	rows   *sql.Rows
	cols   []driver.Column
	binary []bool
	vals   []any
	ptrs   []any
}

func newCursor(rows *sql.Rows) (*cursor, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("cannot get column types: %w", err)
	}
	cur := &cursor{
		rows:   rows,
		cols:   make([]driver.Column, len(types)),
		binary: make([]bool, len(types)),
		vals:   make([]any, len(types)),
		ptrs:   make([]any, len(types)),
	}
	for i, ct := range types {
		cur.cols[i] = driver.Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		cur.binary[i] = isBinary(ct.DatabaseTypeName())
		cur.ptrs[i] = &cur.vals[i]
	}
	return cur, nil
}

func (c *cursor) Columns() []driver.Column {
	return c.cols
}

func (c *cursor) Next(dest []any) error {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		return err
	}
	for i, v := range c.vals {
		if b, ok := v.([]byte); ok {
			if c.binary[i] {
				v = append([]byte(nil), b...)
			} else {
				v = string(b)
			}
		}
		dest[i] = v
	}
	return nil
}

func (c *cursor) Close() error {
	return c.rows.Close()
}

func isBinary(typ string) bool {
	typ = strings.ToUpper(typ)
	for _, s := range []string{"BLOB", "BINARY", "BYTEA", "VARBINARY"} {
		if strings.Contains(typ, s) {
			return true
		}
	}
	return false
}
