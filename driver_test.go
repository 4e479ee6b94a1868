// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic_test

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/canonical/sqlmagic/driver"
	"github.com/canonical/sqlmagic/driver/sqlconn"
)

// This file contains a fake driver.Conn which records the statements it
// prepares, executes and closes. We can later use that information to check
// for statement leaks and for what reached the database.

type fakeResult struct {
	cols []driver.Column
	rows [][]any
}

type fakeExec struct {
	query  string
	params []driver.Param
}

type fakeCall struct {
	name     string
	args     []any
	wantRows bool
}

type fakeConn struct {
	mu sync.Mutex

	opened []*fakeStmt
	closed map[*fakeStmt]bool

	// results maps a query to the result set it produces. Queries without a
	// result set report affected rows.
	results  map[string]fakeResult
	affected int64

	// procs maps "SCHEMA.NAME" to the number of result sets.
	procs      map[string]int
	callResult *fakeResult

	prepareErr error
	executeErr error
	commitErr  error

	// executing, when set, is called as a statement starts executing.
	executing func(*fakeStmt)

	executed   []fakeExec
	calls      []fakeCall
	commits    int
	rollbacks  int
	autocommit []bool
}

var _ driver.Conn = (*fakeConn)(nil)

func newFakeConn() *fakeConn {
	return &fakeConn{
		closed:   map[*fakeStmt]bool{},
		results:  map[string]fakeResult{},
		procs:    map[string]int{},
		affected: 1,
	}
}

func (c *fakeConn) Prepare(ctx context.Context, query string) (driver.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	s := &fakeStmt{conn: c, query: query, token: sqlconn.Token(query)}
	c.opened = append(c.opened, s)
	return s, nil
}

func (c *fakeConn) Commit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commitErr != nil {
		return c.commitErr
	}
	c.commits++
	return nil
}

func (c *fakeConn) Rollback(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollbacks++
	return nil
}

func (c *fakeConn) SetAutocommit(ctx context.Context, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autocommit = append(c.autocommit, on)
	return nil
}

func (c *fakeConn) ProcedureResultSets(ctx context.Context, schema, name string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.procs[schema+"."+name]
	if !ok {
		return 0, driver.ErrProcedureNotFound
	}
	return n, nil
}

func (c *fakeConn) Call(ctx context.Context, name string, args []any, wantRows bool) (*driver.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.executeErr != nil {
		return nil, c.executeErr
	}
	c.calls = append(c.calls, fakeCall{name: name, args: args, wantRows: wantRows})
	out := &driver.Outcome{RowsAffected: 0, Values: args}
	if wantRows && c.callResult != nil {
		out.Cursor = newFakeCursor(*c.callResult)
		out.RowsAffected = -1
	}
	return out, nil
}

func (c *fakeConn) Close() error {
	return nil
}

// isClosed reports whether s has been closed.
func (c *fakeConn) isClosed(s *fakeStmt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[s]
}

// openStmts returns the number of prepared statements not yet closed.
func (c *fakeConn) openStmts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.opened {
		if !c.closed[s] {
			n++
		}
	}
	return n
}

// lastExec returns the most recent statement execution.
func (c *fakeConn) lastExec() fakeExec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.executed) == 0 {
		return fakeExec{}
	}
	return c.executed[len(c.executed)-1]
}

// queries returns the text of every executed statement in order.
func (c *fakeConn) queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var qs []string
	for _, e := range c.executed {
		qs = append(qs, e.query)
	}
	return qs
}

type fakeStmt struct {
	conn  *fakeConn
	query string
	token string
}

func (s *fakeStmt) Token() string {
	return s.token
}

func (s *fakeStmt) Execute(ctx context.Context, params []driver.Param) (*driver.Outcome, error) {
	c := s.conn
	c.mu.Lock()
	executing := c.executing
	c.mu.Unlock()
	if executing != nil {
		executing(s)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed[s] {
		return nil, io.ErrClosedPipe
	}
	if c.executeErr != nil {
		return nil, c.executeErr
	}
	c.executed = append(c.executed, fakeExec{query: s.query, params: params})
	if res, ok := c.results[s.query]; ok {
		return &driver.Outcome{Cursor: newFakeCursor(res), RowsAffected: -1}, nil
	}
	if strings.HasPrefix(strings.ToUpper(s.query), "SELECT") {
		return &driver.Outcome{Cursor: newFakeCursor(fakeResult{cols: []driver.Column{{Name: "X", Type: "INTEGER"}}}), RowsAffected: -1}, nil
	}
	return &driver.Outcome{RowsAffected: c.affected}, nil
}

func (s *fakeStmt) Close() error {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	s.conn.closed[s] = true
	return nil
}

type fakeCursor struct {
	res fakeResult
	pos int
}

func newFakeCursor(res fakeResult) *fakeCursor {
	return &fakeCursor{res: res}
}

func (f *fakeCursor) Columns() []driver.Column {
	return f.res.cols
}

func (f *fakeCursor) Next(dest []any) error {
	if f.pos >= len(f.res.rows) {
		return io.EOF
	}
	copy(dest, f.res.rows[f.pos])
	f.pos++
	return nil
}

func (f *fakeCursor) Close() error {
	return nil
}
