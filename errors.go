// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"errors"
)

// Error kinds. Every error returned by an Engine is an *Error wrapping one of
// these, so they can be checked with errors.Is.
var (
	ErrConnection = errors.New("connection error")
	ErrPrepare    = errors.New("prepare error")
	ErrBind       = errors.New("bind error")
	ErrExecute    = errors.New("execute error")
	ErrNotFound   = errors.New("not found")
)

// Error is a failed engine operation.
type Error struct {
	// Kind is one of the Err* kinds above.
	Kind error
	// Status is the status recorded for the failure.
	Status Status
	// Err is the underlying driver error, if any.
	Err error
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Status.Message
}

// Unwrap returns the kind and the driver error.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// engineError returns an error raised by the engine itself.
func engineError(kind error, msg string) *Error {
	return &Error{Kind: kind, Status: messageStatus(msg)}
}

// driverError wraps an error returned by the driver.
func driverError(kind error, err error) *Error {
	return &Error{Kind: kind, Status: driverStatus(err), Err: err}
}

// statusOf returns the status recorded for err.
func statusOf(err error) Status {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return driverStatus(err)
}
