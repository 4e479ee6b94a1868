// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/canonical/sqlmagic/internal/result"
	"github.com/canonical/sqlmagic/internal/scan"
)

// Set is a materialized result set.
type Set = result.Set

// Shape is the structure of a materialized result set.
type Shape = result.Shape

const (
	// Array results are a header row of column names followed by the rows.
	Array = result.Array
	// Record results are one map per row keyed by lower cased column name.
	Record = result.Record
)

// ParseShape returns the shape named "array", "json" or "record".
func ParseShape(s string) (Shape, error) {
	return result.ParseShape(s)
}

// Options control how statements are run.
type Options struct {
	// Shape of returned result sets.
	Shape Shape
	// Delimiter separates the statements of a batch.
	Delimiter rune
	// Quote writes string variables as quoted SQL literals when expanding
	// templates.
	Quote bool
}

// DefaultOptions returns array results, ";" delimited batches and quoting.
func DefaultOptions() Options {
	return Options{Shape: Array, Delimiter: ';', Quote: true}
}

// Validate checks that the options can be used.
func (o Options) Validate() error {
	if o.Delimiter == 0 || o.Delimiter == utf8.RuneError {
		return fmt.Errorf("invalid delimiter %q", o.Delimiter)
	}
	if scan.IsQuote(o.Delimiter) || o.Delimiter == ']' {
		return fmt.Errorf("delimiter %q is a quote character", o.Delimiter)
	}
	if o.Shape != Array && o.Shape != Record {
		return fmt.Errorf("invalid result shape %v", o.Shape)
	}
	return nil
}

// ParseDelimiter returns the single character in s.
func ParseDelimiter(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	o := Options{Shape: Array, Delimiter: r}
	if err := o.Validate(); err != nil {
		return 0, err
	}
	return r, nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithOptions replaces DefaultOptions.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithTemplateCacheSize sets how many parsed templates are kept. Zero selects
// the default size.
func WithTemplateCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// Variables that override the options of a single Run.
const (
	formatVar = "format"
	delimVar  = "delim"
	quotesVar = "quotes"
)

// override returns a copy of o adjusted by the "format", "delim" and
// "quotes" variables of env. Invalid overrides are logged and ignored.
func (o Options) override(env Env, logger *slog.Logger) Options {
	if env == nil {
		return o
	}
	if v, ok := env.Lookup(formatVar); ok {
		s, _ := v.(string)
		if shape, err := result.ParseShape(s); err == nil && s != "" {
			o.Shape = shape
		} else {
			logger.Warn("ignoring unknown format option", "format", v)
		}
	}
	if v, ok := env.Lookup(delimVar); ok {
		s, _ := v.(string)
		if r, err := ParseDelimiter(s); err == nil {
			o.Delimiter = r
		} else {
			logger.Warn("ignoring invalid delimiter option", "delim", v, "err", err)
		}
	}
	if v, ok := env.Lookup(quotesVar); ok {
		if b, isBool := v.(bool); isBool {
			o.Quote = b
		} else {
			logger.Warn("ignoring non boolean quotes option", "quotes", v)
		}
	}
	return o
}
