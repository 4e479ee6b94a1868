// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	unknownCode  = -99999
	unknownState = "-99999"
)

// Status is the outcome of the most recent engine operation in the form
// used by Db2: a SQLCODE, a SQLSTATE and a message. A negative code is a
// failure.
type Status struct {
	Code    int
	State   string
	Message string
}

var (
	// StatusOK is the status of a successful operation.
	StatusOK = Status{Code: 0, State: "00000"}
	// StatusNoRows is the status of an operation that completed without
	// finding or changing any rows. It is not a failure.
	StatusNoRows = Status{Code: 100, State: "02000", Message: "No rows found"}
)

// Failed returns true if the status describes a failure.
func (s Status) Failed() bool {
	return s.Code < 0
}

func (s Status) String() string {
	if s.Message == "" {
		return fmt.Sprintf("SQLCODE=%d SQLSTATE=%s", s.Code, s.State)
	}
	return fmt.Sprintf("%s SQLCODE=%d SQLSTATE=%s", s.Message, s.Code, s.State)
}

// messageStatus returns the failure status for an error raised by the engine
// itself.
func messageStatus(msg string) Status {
	return Status{Code: unknownCode, State: unknownState, Message: msg}
}

// driverStatus extracts the status from a driver error message. Db2 drivers
// prefix messages with bracketed component names and embed the codes as
// "SQLSTATE=42704 SQLCODE=-204". Missing codes are reported as unknown.
func driverStatus(err error) Status {
	msg := strings.ReplaceAll(err.Error(), "\r", " ")
	if i := strings.LastIndex(msg, "]"); i >= 0 {
		msg = msg[i+1:]
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "No error text available"
	}

	st := Status{Code: unknownCode, State: unknownState, Message: msg}
	if state, ok := token(msg, "SQLSTATE="); ok {
		st.State = state
	}
	if code, ok := token(msg, "SQLCODE="); ok {
		if n, err := strconv.Atoi(code); err == nil {
			st.Code = n
		}
	}
	return st
}

// token returns the word following key in msg.
func token(msg, key string) (string, bool) {
	i := strings.Index(msg, key)
	if i < 0 {
		return "", false
	}
	rest := msg[i+len(key):]
	if end := strings.IndexAny(rest, " \t\n"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ",;.")
	return rest, rest != ""
}
