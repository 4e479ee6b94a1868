package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseVar splits "name=value". The value is decoded as JSON when it is
// valid JSON and kept as text otherwise, so "n=3" binds a number and
// "s=abc" a string. JSON numbers keep their exact text.
func parseVar(s string) (string, any, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid variable %q, expected name=value", s)
	}
	return name, decodeValue(value), nil
}

func decodeValue(s string) any {
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil || d.More() {
		return s
	}
	return v
}

// formatVar returns the JSON text of a variable value.
func formatVar(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
