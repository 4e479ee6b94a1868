// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"strings"
	"sync"

	"github.com/canonical/sqlmagic/driver"
)

// idLength is the number of token characters kept in a statement ID.
const idLength = 12

// statementRegistry maps statement IDs to the driver statements prepared
// under them. Each Engine has its own registry.
//
// The mutex must be locked when accessing stmts.
type statementRegistry struct {
	stmts map[string]driver.Stmt
	mutex sync.RWMutex
}

func newStatementRegistry() *statementRegistry {
	return &statementRegistry{stmts: map[string]driver.Stmt{}}
}

// statementID derives the registry ID from a driver statement token.
func statementID(token string) string {
	id := strings.ReplaceAll(token, "-", "")
	if len(id) > idLength {
		id = id[:idLength]
	}
	return id
}

// store registers stmt under id. A statement previously registered under the
// same ID is replaced and closed once no call to use holds it.
func (r *statementRegistry) store(id string, stmt driver.Stmt) {
	r.mutex.Lock()
	old, ok := r.stmts[id]
	r.stmts[id] = stmt
	r.mutex.Unlock()
	if ok && old != stmt {
		old.Close()
	}
}

// use calls fn with the statement registered under id and reports whether
// there was one. The statement is not replaced or closed before fn returns.
func (r *statementRegistry) use(id string, fn func(driver.Stmt) error) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	stmt, ok := r.stmts[id]
	if !ok {
		return false, nil
	}
	return true, fn(stmt)
}

// clear closes and removes every statement. It returns how many were
// removed.
func (r *statementRegistry) clear() int {
	r.mutex.Lock()
	stmts := r.stmts
	r.stmts = map[string]driver.Stmt{}
	r.mutex.Unlock()
	for _, stmt := range stmts {
		stmt.Close()
	}
	return len(stmts)
}

func (r *statementRegistry) len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.stmts)
}
