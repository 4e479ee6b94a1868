// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/canonical/sqlmagic/driver"
	"github.com/canonical/sqlmagic/internal/expr"
	"github.com/canonical/sqlmagic/internal/result"
)

// Result is the outcome of running a statement.
type Result struct {
	// Set is the materialized result set, or nil if the statement produced
	// none.
	Set *Set
	// RowsAffected is the number of rows changed by a command, or -1 when
	// unknown.
	RowsAffected int64
	// StatementID is the ID of a prepared statement.
	StatementID string
	// Values holds the parameter values returned by a procedure call.
	Values []any
	// Status is the status recorded for the statement.
	Status Status
}

// Engine expands SQL templates and runs them on a driver connection. It owns
// a registry of prepared statements and a status register. An Engine is safe
// for concurrent use, but the status register always describes the most
// recent operation of any caller.
type Engine struct {
	conn      driver.Conn
	opts      Options
	logger    *slog.Logger
	cacheSize int
	cache     *expr.Cache
	registry  *statementRegistry

	statusMutex sync.Mutex
	status      Status
}

// New returns an Engine running statements on conn.
func New(conn driver.Conn, opts ...Option) (*Engine, error) {
	e := &Engine{
		conn:     conn,
		opts:     DefaultOptions(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: newStatementRegistry(),
		status:   StatusOK,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.opts.Validate(); err != nil {
		return nil, fmt.Errorf("cannot create engine: %w", err)
	}
	cache, err := expr.NewCache(e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create engine: %w", err)
	}
	e.cache = cache
	return e, nil
}

// Options returns the options the engine was created with.
func (e *Engine) Options() Options {
	return e.opts
}

// Status returns the status of the most recent operation.
func (e *Engine) Status() Status {
	e.statusMutex.Lock()
	defer e.statusMutex.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.statusMutex.Lock()
	e.status = s
	e.statusMutex.Unlock()
}

// record sets the status register from the outcome of an operation.
func (e *Engine) record(res *Result, err error) {
	switch {
	case err != nil:
		st := statusOf(err)
		e.logger.Debug("operation failed", "code", st.Code, "state", st.State, "err", err)
		e.setStatus(st)
	case res != nil:
		e.setStatus(res.Status)
	default:
		e.setStatus(StatusOK)
	}
}

// Expand replaces the ":name" placeholders in template with the values of
// env, using the engine's quoting option. Unknown placeholders are left as
// they are.
func (e *Engine) Expand(template string, env Env) string {
	return e.expand(template, env, e.opts.Quote)
}

func (e *Engine) expand(template string, env Env, quote bool) string {
	if env == nil {
		return template
	}
	return e.cache.Parse(template).Expand(env, quote)
}

// RunBatch runs every statement of a delimited batch. Comments are removed
// and each statement is expanded before it is run. The batch ends at the
// first statement producing a result set, whose rows are returned, or at
// the first failure.
func (e *Engine) RunBatch(ctx context.Context, batch string, env Env) (res *Result, err error) {
	defer func() { e.record(res, err) }()
	return e.runBatch(ctx, e.opts, batch, env)
}

func (e *Engine) runBatch(ctx context.Context, o Options, batch string, env Env) (*Result, error) {
	res := &Result{Status: StatusOK}
	for _, text := range expr.Split(expr.StripComments(batch), o.Delimiter) {
		if strings.TrimSpace(text) == "" {
			continue
		}
		sql := strings.TrimSpace(e.expand(text, env, o.Quote))
		e.logger.Debug("running statement", "sql", sql)

		stmt, err := e.conn.Prepare(ctx, sql)
		if err != nil {
			return nil, driverError(ErrPrepare, err)
		}
		res, err = runStmt(ctx, stmt, nil, o.Shape)
		stmt.Close()
		if err != nil {
			return nil, err
		}
		if res.Set != nil {
			return res, nil
		}
	}
	return res, nil
}

// runStmt executes stmt and materializes its result set, if it has one. A
// command changing no rows gets StatusNoRows.
func runStmt(ctx context.Context, stmt driver.Stmt, params []driver.Param, shape Shape) (*Result, error) {
	out, err := stmt.Execute(ctx, params)
	if err != nil {
		return nil, driverError(ErrExecute, err)
	}
	if out.Cursor == nil {
		res := &Result{RowsAffected: out.RowsAffected, Status: StatusOK}
		if out.RowsAffected == 0 {
			res.Status = StatusNoRows
		}
		return res, nil
	}
	set, err := result.Fetch(out.Cursor, shape)
	if err != nil {
		return nil, driverError(ErrExecute, err)
	}
	return setResult(set), nil
}

func setResult(set *Set) *Result {
	res := &Result{Set: set, RowsAffected: -1, Status: StatusOK}
	if set.Empty() {
		res.Status = StatusNoRows
	}
	return res
}

// Prepare prepares sql and returns its statement ID. Every "?*N" outside of
// quotes is first replaced with N parameter markers. Preparing the same text
// again returns the same ID and replaces the earlier statement. The text is
// not expanded.
func (e *Engine) Prepare(ctx context.Context, sql string) (string, error) {
	res, err := e.prepare(ctx, sql)
	e.record(res, err)
	if err != nil {
		return "", err
	}
	return res.StatementID, nil
}

func (e *Engine) prepare(ctx context.Context, sql string) (*Result, error) {
	sql = expr.ExpandMarkers(strings.TrimSpace(sql))
	if sql == "" {
		return nil, engineError(ErrPrepare, "Missing SQL on PREPARE statement.")
	}
	stmt, err := e.conn.Prepare(ctx, sql)
	if err != nil {
		return nil, driverError(ErrPrepare, err)
	}
	id := statementID(stmt.Token())
	e.registry.store(id, stmt)
	e.logger.Debug("prepared statement", "id", id, "sql", sql)
	return &Result{StatementID: id, RowsAffected: -1, Status: StatusOK}, nil
}

// Execute runs the prepared statement registered under id. using is the
// comma separated list of constants and variable references to bind to the
// statement markers, empty when there are none. A variable reference is
// "name", ":name" or "name@type" with type one of int, integer, dec,
// decimal, bin, binary or char.
func (e *Engine) Execute(ctx context.Context, id, using string, env Env) (res *Result, err error) {
	defer func() { e.record(res, err) }()
	return e.execute(ctx, e.opts, id, using, env)
}

func (e *Engine) execute(ctx context.Context, o Options, id, using string, env Env) (*Result, error) {
	var res *Result
	found, err := e.registry.use(id, func(stmt driver.Stmt) error {
		params, err := bindArgs(expr.SplitArgs(using), env)
		if err != nil {
			return err
		}
		e.logger.Debug("executing statement", "id", id, "params", len(params))
		res, err = runStmt(ctx, stmt, params, o.Shape)
		return err
	})
	if !found {
		return nil, engineError(ErrNotFound, "Prepared statement not found or invalid.")
	}
	if err != nil {
		return nil, err
	}
	res.StatementID = id
	return res, nil
}

// Call calls a stored procedure. text is the procedure name followed by its
// parenthesised arguments, as in "MYSCHEMA.MYPROC(:a, 'x', , 5)". Arguments
// written ":name" are taken from env, an empty argument or NULL is a null
// value, and anything else is passed as text. The first result set of the
// procedure is returned when the catalog says it has one.
func (e *Engine) Call(ctx context.Context, text string, env Env) (res *Result, err error) {
	defer func() { e.record(res, err) }()
	return e.call(ctx, e.opts, text, env)
}

func (e *Engine) call(ctx context.Context, o Options, text string, env Env) (*Result, error) {
	name, args := expr.ParseCall(text)
	if name == "" {
		return nil, engineError(ErrPrepare, "Missing procedure name on CALL statement.")
	}

	schema, proc := "%", strings.ToUpper(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		schema, proc = strings.ToUpper(name[:i]), strings.ToUpper(name[i+1:])
	}
	sets, err := e.conn.ProcedureResultSets(ctx, schema, proc)
	if errors.Is(err, driver.ErrProcedureNotFound) {
		return nil, engineError(ErrNotFound, "Procedure "+name+" not found in the system catalog.")
	} else if err != nil {
		return nil, driverError(ErrExecute, err)
	}

	values := make([]any, len(args))
	for i, a := range args {
		switch varName, isVar := a.Variable(); {
		case a.Null:
			values[i] = nil
		case isVar:
			var v any
			var ok bool
			if env != nil {
				v, ok = env.Lookup(varName)
			}
			if !ok {
				return nil, engineError(ErrBind, "Variable "+varName+" is not defined.")
			}
			values[i], err = callValue(v)
			if err != nil {
				return nil, engineError(ErrBind, fmt.Sprintf("Variable %s cannot be passed to %s: %v", varName, name, err))
			}
		default:
			values[i] = a.Text
		}
	}
	e.logger.Debug("calling procedure", "name", name, "args", len(values), "result_sets", sets)

	out, err := e.conn.Call(ctx, name, values, sets > 0)
	if err != nil {
		return nil, driverError(ErrExecute, err)
	}
	if out.Cursor == nil {
		return &Result{RowsAffected: out.RowsAffected, Values: out.Values, Status: StatusOK}, nil
	}
	set, err := result.Fetch(out.Cursor, o.Shape)
	if err != nil {
		return nil, driverError(ErrExecute, err)
	}
	res := setResult(set)
	res.Values = out.Values
	return res, nil
}

// Commit commits the current unit of work. Unless hold is true every
// prepared statement is discarded.
func (e *Engine) Commit(ctx context.Context, hold bool) (err error) {
	defer func() { e.record(nil, err) }()
	if err := e.conn.Commit(ctx); err != nil {
		return driverError(ErrExecute, err)
	}
	if !hold {
		e.purge("commit")
	}
	return nil
}

// Rollback rolls back the current unit of work and discards every prepared
// statement.
func (e *Engine) Rollback(ctx context.Context) (err error) {
	defer func() { e.record(nil, err) }()
	if err := e.conn.Rollback(ctx); err != nil {
		return driverError(ErrExecute, err)
	}
	e.purge("rollback")
	return nil
}

// SetAutocommit turns autocommit on or off. Prepared statements are kept.
func (e *Engine) SetAutocommit(ctx context.Context, on bool) (err error) {
	defer func() { e.record(nil, err) }()
	if err := e.conn.SetAutocommit(ctx, on); err != nil {
		return driverError(ErrExecute, err)
	}
	return nil
}

func (e *Engine) purge(reason string) {
	n := e.registry.clear()
	e.logger.Debug("discarded prepared statements", "reason", reason, "count", n)
}

// Close discards every prepared statement. The connection is not closed.
func (e *Engine) Close() error {
	e.purge("close")
	e.cache.Purge()
	return nil
}
