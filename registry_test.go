// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic_test

import (
	"context"
	"errors"
	"time"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlmagic"
)

type RegistrySuite struct{}

var _ = Suite(&RegistrySuite{})

func (s *RegistrySuite) TestStatementID(c *C) {
	c.Assert(sqlmagic.StatementID("1b4e28ba-2fa1-11d2-883f-0016d3cca427"), Equals, "1b4e28ba2fa1")
	c.Assert(sqlmagic.StatementID("abc"), Equals, "abc")
}

func (s *RegistrySuite) TestReprepareReplaces(c *C) {
	ctx := context.Background()
	e, conn := newTestEngine(c)

	id1, err := e.Prepare(ctx, "INSERT INTO T VALUES (?)")
	c.Assert(err, IsNil)
	id2, err := e.Prepare(ctx, "  INSERT INTO T VALUES (?)\n")
	c.Assert(err, IsNil)
	c.Assert(id2, Equals, id1)
	c.Assert(e.RegistryLen(), Equals, 1)
	c.Assert(conn.opened, HasLen, 2)
	c.Assert(conn.openStmts(), Equals, 1)

	// The ID now refers to the second statement.
	_, err = e.Execute(ctx, id1, "1", nil)
	c.Assert(err, IsNil)
}

func (s *RegistrySuite) TestReprepareWaitsForExecute(c *C) {
	ctx := context.Background()
	e, conn := newTestEngine(c)
	id, err := e.Prepare(ctx, "UPDATE T SET A = ?")
	c.Assert(err, IsNil)
	first := conn.opened[0]

	started := make(chan struct{})
	release := make(chan struct{})
	conn.executing = func(st *fakeStmt) {
		if st == first {
			close(started)
			<-release
		}
	}

	executed := make(chan error)
	go func() {
		_, err := e.Execute(ctx, id, "1", nil)
		executed <- err
	}()
	<-started

	prepared := make(chan error)
	go func() {
		_, err := e.Prepare(ctx, "UPDATE T SET A = ?")
		prepared <- err
	}()

	// The statement being executed stays open while the new one waits to
	// replace it.
	select {
	case err := <-prepared:
		c.Fatalf("prepare returned during execute: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	c.Assert(conn.isClosed(first), Equals, false)

	close(release)
	c.Assert(<-executed, IsNil)
	c.Assert(<-prepared, IsNil)
	c.Assert(conn.isClosed(first), Equals, true)
	c.Assert(conn.openStmts(), Equals, 1)
	c.Assert(conn.queries(), DeepEquals, []string{"UPDATE T SET A = ?"})
}

func (s *RegistrySuite) TestDistinctStatements(c *C) {
	ctx := context.Background()
	e, _ := newTestEngine(c)

	id1, err := e.Prepare(ctx, "SELECT 1")
	c.Assert(err, IsNil)
	id2, err := e.Prepare(ctx, "SELECT 2")
	c.Assert(err, IsNil)
	c.Assert(id1, Not(Equals), id2)
	c.Assert(e.RegistryLen(), Equals, 2)

	// The shorthand is expanded before the ID is derived.
	id3, err := e.Prepare(ctx, "SELECT ?*2")
	c.Assert(err, IsNil)
	id4, err := e.Prepare(ctx, "SELECT ?,?")
	c.Assert(err, IsNil)
	c.Assert(id3, Equals, id4)
}

func (s *RegistrySuite) TestEmptyPrepare(c *C) {
	e, conn := newTestEngine(c)
	_, err := e.Run(context.Background(), "PREPARE   ", nil)
	c.Assert(errors.Is(err, sqlmagic.ErrPrepare), Equals, true)
	c.Assert(e.Status().Message, Equals, "Missing SQL on PREPARE statement.")
	c.Assert(conn.opened, HasLen, 0)
}

var discardTests = []struct {
	summary string
	text    string
	keep    bool
}{{
	summary: "commit discards",
	text:    "COMMIT",
}, {
	summary: "commit work discards",
	text:    "commit work",
}, {
	summary: "commit hold keeps",
	text:    "COMMIT HOLD",
	keep:    true,
}, {
	summary: "commit work hold keeps",
	text:    "COMMIT WORK HOLD",
	keep:    true,
}, {
	summary: "rollback discards",
	text:    "ROLLBACK",
}, {
	summary: "autocommit keeps",
	text:    "AUTOCOMMIT OFF",
	keep:    true,
}}

func (s *RegistrySuite) TestTransactionBoundaries(c *C) {
	ctx := context.Background()
	for i, test := range discardTests {
		comment := Commentf("test %d failed:\nsummary: %s\ntext: %s", i, test.summary, test.text)
		e, conn := newTestEngine(c)
		id, err := e.Prepare(ctx, "UPDATE T SET A = ?")
		c.Assert(err, IsNil, comment)

		_, err = e.Run(ctx, test.text, nil)
		c.Assert(err, IsNil, comment)

		_, err = e.Run(ctx, "EXECUTE "+id+" USING 1", nil)
		if test.keep {
			c.Check(err, IsNil, comment)
			c.Check(conn.openStmts(), Equals, 1, comment)
			continue
		}
		c.Check(errors.Is(err, sqlmagic.ErrNotFound), Equals, true, comment)
		c.Check(e.Status().Message, Equals, "Prepared statement not found or invalid.", comment)
		c.Check(conn.openStmts(), Equals, 0, comment)
		c.Check(conn.queries(), HasLen, 0, comment)
	}
}

func (s *RegistrySuite) TestPrepareFailureKeepsRegistry(c *C) {
	ctx := context.Background()
	e, conn := newTestEngine(c)
	id, err := e.Prepare(ctx, "SELECT * FROM T")
	c.Assert(err, IsNil)

	conn.prepareErr = errors.New(`[IBM][CLI Driver][DB2/LINUXX8664] SQL0204N  "DB2INST1.NOPE" is an undefined name.  SQLSTATE=42704 SQLCODE=-204`)
	_, err = e.Prepare(ctx, "SELECT * FROM NOPE")
	c.Assert(errors.Is(err, sqlmagic.ErrPrepare), Equals, true)
	c.Assert(e.Status().Code, Equals, -204)
	c.Assert(e.Status().State, Equals, "42704")
	c.Assert(e.RegistryLen(), Equals, 1)

	c.Assert(e.Registered(id), Equals, true)
}

func (s *RegistrySuite) TestCommitFailureKeepsRegistry(c *C) {
	ctx := context.Background()
	e, conn := newTestEngine(c)
	_, err := e.Prepare(ctx, "SELECT * FROM T")
	c.Assert(err, IsNil)

	conn.commitErr = errors.New("SQL30081N  A communication error has been detected.  SQLSTATE=08001 SQLCODE=-30081")
	err = e.Commit(ctx, false)
	c.Assert(errors.Is(err, sqlmagic.ErrExecute), Equals, true)
	c.Assert(e.Status().Code, Equals, -30081)
	c.Assert(e.RegistryLen(), Equals, 1)
}

func (s *RegistrySuite) TestClose(c *C) {
	ctx := context.Background()
	e, conn := newTestEngine(c)
	for _, q := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		_, err := e.Prepare(ctx, q)
		c.Assert(err, IsNil)
	}
	e.Expand(":x", sqlmagic.M{"x": 1})
	c.Assert(e.CacheLen(), Equals, 1)

	c.Assert(e.Close(), IsNil)
	c.Assert(conn.openStmts(), Equals, 0)
	c.Assert(e.RegistryLen(), Equals, 0)
	c.Assert(e.CacheLen(), Equals, 0)
}
