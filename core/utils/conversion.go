package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt converts various types to int using explicit type switching.
// It handles standard integer types, floats, strings, and byte slices.
// Unparseable values yield 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case uint32:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(v))
		return i
	case []byte:
		i, _ := strconv.Atoi(strings.TrimSpace(string(v)))
		return i
	default:
		i, _ := strconv.Atoi(fmt.Sprintf("%v", v))
		return i
	}
}

// ToIntPtr converts val to *int. nil, empty and unparseable values yield nil.
func ToIntPtr(val any) *int {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &i
	default:
		i := ToInt(v)
		if i == 0 && fmt.Sprintf("%v", v) != "0" {
			return nil
		}
		return &i
	}
}

// ToString converts various types to string. nil yields "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToStringPtr converts val to *string. nil yields nil.
func ToStringPtr(val any) *string {
	if val == nil {
		return nil
	}
	s := ToString(val)
	return &s
}

// ToStringSlice converts a list value into a slice of strings.
// A scalar becomes a one element slice and nil an empty slice.
func ToStringSlice(val any) []string {
	switch v := val.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, ToString(item))
		}
		return out
	default:
		return []string{ToString(v)}
	}
}

// ToBool converts various types to bool.
// It handles bool, numeric types (1=true), and strings ("1", "true").
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, int32, uint, uint64, uint32:
		return ToInt(v) == 1
	case string:
		return v == "1" || strings.ToLower(v) == "true"
	case []byte:
		s := string(v)
		return s == "1" || strings.ToLower(s) == "true"
	default:
		return false
	}
}
