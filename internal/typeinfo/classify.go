// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package typeinfo

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// HexPrefix marks text that is passed through as a raw hexadecimal literal.
// This is a heuristic: any text starting with "0x" is assumed to be a hex
// value and is never quoted.
const HexPrefix = "0x"

// TimeLayout is the layout used to write time.Time values as text.
const TimeLayout = "2006-01-02 15:04:05.999999"

var timeType = reflect.TypeOf(time.Time{})

// Classify returns the classification of an environment value.
//
//   - nil values and nil pointers are Raw NULL.
//   - maps and structs are Struct, serialised to JSON.
//   - slices and arrays (other than []byte) are List.
//   - integers and floats are Number.
//   - booleans are Raw TRUE or FALSE.
//   - text starting with HexPrefix is Raw.
//   - anything else is String.
func Classify(value any) Value {
	switch v := value.(type) {
	case nil:
		return Value{Kind: Raw, Text: "NULL"}
	case string:
		return classifyText(v, v)
	case []byte:
		return classifyText(string(v), v)
	case json.Number:
		return Value{Kind: Number, Text: v.String(), Native: v}
	case json.RawMessage:
		return Value{Kind: Struct, Text: string(v), Native: v}
	case time.Time:
		return Value{Kind: String, Text: v.Format(TimeLayout), Native: v}
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Value{Kind: Raw, Text: "NULL"}
		}
		rv = rv.Elem()
	}
	if rv.Type() == timeType {
		return Classify(rv.Interface())
	}

	switch rv.Kind() {
	case reflect.String:
		return classifyText(rv.String(), rv.Interface())
	case reflect.Bool:
		if rv.Bool() {
			return Value{Kind: Raw, Text: "TRUE", Native: rv.Interface()}
		}
		return Value{Kind: Raw, Text: "FALSE", Native: rv.Interface()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{Kind: Number, Text: strconv.FormatInt(rv.Int(), 10), Native: rv.Interface()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{Kind: Number, Text: strconv.FormatUint(rv.Uint(), 10), Native: rv.Interface()}
	case reflect.Float32:
		return Value{Kind: Number, Text: strconv.FormatFloat(rv.Float(), 'g', -1, 32), Native: rv.Interface()}
	case reflect.Float64:
		return Value{Kind: Number, Text: strconv.FormatFloat(rv.Float(), 'g', -1, 64), Native: rv.Interface()}
	case reflect.Map, reflect.Struct:
		return Value{Kind: Struct, Text: marshal(rv.Interface()), Native: rv.Interface()}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return classifyText(string(rv.Bytes()), rv.Interface())
		}
		fallthrough
	case reflect.Array:
		elems := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems = append(elems, classifyElem(rv.Index(i).Interface()))
		}
		return Value{Kind: List, Elems: elems, Native: rv.Interface()}
	}
	return Value{Kind: String, Text: fmt.Sprint(rv.Interface()), Native: rv.Interface()}
}

// classifyElem classifies a list element. Nested lists are not expanded, they
// are written as their JSON text.
func classifyElem(value any) Value {
	v := Classify(value)
	if v.Kind == List {
		return Value{Kind: String, Text: marshal(v.Native), Native: v.Native}
	}
	return v
}

func classifyText(s string, native any) Value {
	if strings.HasPrefix(s, HexPrefix) {
		return Value{Kind: Raw, Text: s, Native: native}
	}
	return Value{Kind: String, Text: s, Native: native}
}

// marshal returns the JSON text of v, or its default formatting if v cannot
// be represented as JSON.
func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
