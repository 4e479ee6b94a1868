// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"context"
	"strings"

	"github.com/canonical/sqlmagic/internal/expr"
)

// Run runs one command. The command is chosen by its first keyword:
//
//	COMMIT [WORK] [HOLD]
//	ROLLBACK [WORK]
//	AUTOCOMMIT ON|OFF
//	PREPARE <sql>
//	EXECUTE <id> [USING <args>]
//	CALL <procedure>(<args>)
//
// Anything else is run as a batch with RunBatch. The body of PREPARE is
// expanded before it is prepared; EXECUTE and CALL read their variables
// from env directly.
//
// The variables "format", "delim" and "quotes" in env override the engine
// options for this call only.
func (e *Engine) Run(ctx context.Context, text string, env Env) (res *Result, err error) {
	e.setStatus(StatusOK)
	defer func() { e.record(res, err) }()

	o := e.opts.override(env, e.logger)
	text = strings.TrimSpace(text)
	if text == "" {
		return &Result{RowsAffected: -1, Status: StatusOK}, nil
	}

	keyword, rest := expr.LeadingKeyword(text)
	switch keyword {
	case "COMMIT":
		return e.runCommit(ctx, rest)
	case "ROLLBACK":
		if err := e.Rollback(ctx); err != nil {
			return nil, err
		}
		return &Result{RowsAffected: -1, Status: StatusOK}, nil
	case "AUTOCOMMIT":
		return e.runAutocommit(ctx, rest)
	case "PREPARE":
		return e.prepare(ctx, e.expand(rest, env, o.Quote))
	case "EXECUTE":
		return e.runExecute(ctx, o, rest, env)
	case "CALL":
		return e.call(ctx, o, rest, env)
	case "CONNECT":
		return nil, engineError(ErrConnection, "CONNECT is not supported, open the connection before creating the engine.")
	}
	return e.runBatch(ctx, o, text, env)
}

func (e *Engine) runCommit(ctx context.Context, rest string) (*Result, error) {
	hold := false
	for _, word := range strings.Fields(strings.ToUpper(rest)) {
		if word == "HOLD" {
			hold = true
		}
	}
	if err := e.Commit(ctx, hold); err != nil {
		return nil, err
	}
	return &Result{RowsAffected: -1, Status: StatusOK}, nil
}

func (e *Engine) runAutocommit(ctx context.Context, rest string) (*Result, error) {
	fields := strings.Fields(strings.ToUpper(rest))
	if len(fields) > 0 {
		switch fields[0] {
		case "ON", "OFF":
			if err := e.SetAutocommit(ctx, fields[0] == "ON"); err != nil {
				return nil, err
			}
		}
	}
	return &Result{RowsAffected: -1, Status: StatusOK}, nil
}

// runExecute parses "<id> [USING <args>]".
func (e *Engine) runExecute(ctx context.Context, o Options, rest string, env Env) (*Result, error) {
	fields := strings.Fields(rest)
	switch {
	case len(fields) == 0:
		return nil, engineError(ErrBind, "Missing statement identifier on EXECUTE statement.")
	case len(fields) == 1:
		return e.execute(ctx, o, fields[0], "", env)
	case len(fields) == 2:
		return nil, engineError(ErrBind, "Missing or invalid USING clause on EXECUTE statement.")
	case !strings.EqualFold(fields[1], "USING"):
		return nil, engineError(ErrBind, "Missing USING clause on EXECUTE statement.")
	}

	// Everything after the USING keyword.
	i := strings.Index(rest, fields[0]) + len(fields[0])
	i += strings.Index(rest[i:], fields[1]) + len(fields[1])
	using := strings.TrimSpace(rest[i:])
	if len(expr.SplitArgs(using)) == 0 {
		return nil, engineError(ErrBind, "Missing parameters after the USING clause.")
	}
	return e.execute(ctx, o, fields[0], using, env)
}
