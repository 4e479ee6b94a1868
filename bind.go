// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlmagic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/canonical/sqlmagic/driver"
	"github.com/canonical/sqlmagic/internal/expr"
	"github.com/canonical/sqlmagic/internal/typeinfo"
)

// bindArgs converts the items of a USING list into statement parameters.
// Constants are bound by their own type, variables are looked up in env and
// converted to the bind type named by their "@type" suffix.
func bindArgs(args []expr.Arg, env Env) ([]driver.Param, error) {
	params := make([]driver.Param, 0, len(args))
	for i, a := range args {
		if a.Constant() {
			params = append(params, bindConstant(a))
			continue
		}
		name, typ, ok := a.Variable()
		if !ok {
			return nil, engineError(ErrBind, fmt.Sprintf("Missing parameter %d in the USING clause.", i+1))
		}
		var value any
		if env != nil {
			value, ok = env.Lookup(name)
		}
		if !ok {
			return nil, engineError(ErrBind, "SQL Execute parameter "+name+" not found")
		}
		// Unknown type names bind as character data.
		bt, _ := driver.ParseBindType(typ)
		p, err := bindValue(value, bt)
		if err != nil {
			return nil, engineError(ErrBind, fmt.Sprintf("SQL Bind on variable %s failed: %v", name, err))
		}
		params = append(params, p)
	}
	return params, nil
}

func bindConstant(a expr.Arg) driver.Param {
	switch v := a.Value.(type) {
	case int64:
		return driver.Param{Value: v, Type: driver.Integer}
	case float64:
		return driver.Param{Value: v, Type: driver.Double}
	}
	return driver.Param{Value: a.Text, Type: driver.Char}
}

// bindValue converts an environment value to a parameter of type t.
func bindValue(value any, t driver.BindType) (driver.Param, error) {
	v := typeinfo.Classify(value)
	if isNull(v) {
		return driver.Param{Value: nil, Type: t}, nil
	}
	switch t {
	case driver.Integer:
		n, err := toInteger(v)
		return driver.Param{Value: n, Type: t}, err
	case driver.Double:
		f, err := toDouble(v)
		return driver.Param{Value: f, Type: t}, err
	case driver.Binary:
		b, err := toBinary(value, v)
		return driver.Param{Value: b, Type: t}, err
	}
	s, err := toChar(v)
	return driver.Param{Value: s, Type: driver.Char}, err
}

func isNull(v typeinfo.Value) bool {
	return v.Kind == typeinfo.Raw && v.Native == nil
}

func toInteger(v typeinfo.Value) (int64, error) {
	switch v.Kind {
	case typeinfo.Number, typeinfo.String:
		text := strings.TrimSpace(v.Text)
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		if v.Kind == typeinfo.Number {
			f, err := strconv.ParseFloat(text, 64)
			if err == nil && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
				return int64(f), nil
			}
		}
		return 0, fmt.Errorf("%q is not an integer", v.Text)
	}
	return 0, fmt.Errorf("cannot bind %s value as integer", v.Kind)
}

func toDouble(v typeinfo.Value) (float64, error) {
	switch v.Kind {
	case typeinfo.Number, typeinfo.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v.Text)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot bind %s value as double", v.Kind)
}

func toBinary(value any, v typeinfo.Value) ([]byte, error) {
	if b, ok := value.([]byte); ok {
		return append([]byte(nil), b...), nil
	}
	switch v.Kind {
	case typeinfo.String, typeinfo.Raw:
		return []byte(v.Text), nil
	}
	return nil, fmt.Errorf("cannot bind %s value as binary", v.Kind)
}

// toChar renders scalars as text and structured values as JSON.
func toChar(v typeinfo.Value) (string, error) {
	if v.Kind == typeinfo.List {
		return "", fmt.Errorf("cannot bind %s value as char", v.Kind)
	}
	return v.Text, nil
}

// callValue converts an environment value to a procedure argument.
func callValue(value any) (any, error) {
	v := typeinfo.Classify(value)
	switch {
	case isNull(v):
		return nil, nil
	case v.Kind == typeinfo.Number:
		if n, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseFloat(v.Text, 64)
	case v.Kind == typeinfo.List:
		return nil, fmt.Errorf("cannot pass a %s to a procedure", v.Kind)
	}
	if b, ok := value.([]byte); ok {
		return b, nil
	}
	return v.Text, nil
}
