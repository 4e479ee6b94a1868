package result

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/canonical/sqlmagic/internal/typeinfo"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type family int

const (
	other family = iota
	integral
	decimal
	date
	clock
	timestamp
)

var families = map[string]family{
	"smallint":         integral,
	"integer":          integral,
	"int":              integral,
	"bigint":           integral,
	"tinyint":          integral,
	"mediumint":        integral,
	"int2":             integral,
	"int4":             integral,
	"int8":             integral,
	"decimal":          decimal,
	"dec":              decimal,
	"numeric":          decimal,
	"decfloat":         decimal,
	"real":             decimal,
	"float":            decimal,
	"float4":           decimal,
	"float8":           decimal,
	"double":           decimal,
	"double precision": decimal,
	"date":             date,
	"time":             clock,
	"timestamp":        timestamp,
	"timestamptz":      timestamp,
	"datetime":         timestamp,
}

// typeFamily normalises a database type name such as "DECIMAL(10, 2)" or
// "UNSIGNED BIGINT" and returns its family.
func typeFamily(typ string) family {
	typ = strings.ToLower(typ)
	if i := strings.IndexByte(typ, '('); i >= 0 {
		typ = typ[:i]
	}
	typ = strings.TrimPrefix(strings.TrimSpace(typ), "unsigned ")
	if f, ok := families[typ]; ok {
		return f
	}
	if strings.HasPrefix(typ, "timestamp") {
		return timestamp
	}
	return other
}

// Coerce converts a value fetched from a column of the given database type.
// Values that cannot be converted are returned unchanged.
func Coerce(typ string, v any) any {
	if v == nil {
		return nil
	}
	var out any
	var err error
	switch typeFamily(typ) {
	case integral:
		out, err = toInt64(v)
	case decimal:
		out, err = toFloat64(v)
	case date:
		out, err = toText(v, dateLayout)
	case clock:
		out, err = toText(v, timeLayout)
	case timestamp:
		out, err = toText(v, typeinfo.TimeLayout)
	default:
		return v
	}
	if err != nil {
		return v
	}
	return out
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not integral", v)
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, fmt.Errorf("%v overflows int64", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

func toText(v any, layout string) (string, error) {
	switch v := v.(type) {
	case time.Time:
		return v.Format(layout), nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("cannot convert %T to text", v)
}
