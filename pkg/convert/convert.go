// Copyright (c) 2026 Lehae. All rights reserved.

/*
Package convert provides quick type-conversion utilities.

It wraps standards like [strconv] to provide fault-tolerant conversions
(e.g., returning 0 instead of an error when parsing fails). This is highly
useful when reshaping loosely-typed API responses, where a decimal may arrive
as a JSON number, a quoted string, or null depending on the serializer.

Do not use this package if distinguishing between malformed data and zero values
is important in your domain logic; use explicit standard libraries instead.
*/
package convert

import (
	"bytes"
	"strconv"
	"strings"
)

// ToInt converts a string to an integer, silencing parsing errors.
// It returns 0 if the string is empty or cannot be parsed.
func ToInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

// ToBool parses a boolean string ("true", "1", "false", "0").
// It returns false on empty string or parse error.
func ToBool(s string) bool {
	if s == "" {
		return false
	}
	v, _ := strconv.ParseBool(s)
	return v
}

// ToFloat64 converts a string to a float64, swallowing errors.
func ToFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// StringOr returns s, or def when s is empty or only whitespace.
func StringOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// # JSON-Tolerant Number

// Number decodes from a JSON number, a quoted numeric string, or null.
//
// Django REST Framework serializes DecimalField values as strings by default,
// while plain integers and floats arrive as numbers. Number absorbs all three
// so the normalization layer sees a single float64-compatible value; anything
// unparseable decodes to 0 rather than failing the whole record.
type Number float64

// UnmarshalJSON implements [encoding/json.Unmarshaler].
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	// null and empty string both mean "absent"
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	// Quoted numeric string: strip the quotes and parse the content.
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(ToFloat64(s))
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Float64 returns the underlying value.
func (n Number) Float64() float64 { return float64(n) }

// Int returns the truncated integer value.
func (n Number) Int() int { return int(n) }
