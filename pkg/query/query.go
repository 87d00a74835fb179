package query

import (
	"strconv"
	"strings"
)

// Int64Slice parses a comma-separated query string into a slice of int64
// identifiers. Invalid or non-positive entries are ignored safely.
func Int64Slice(val string) []int64 {
	if val == "" {
		return nil
	}
	var res []int64
	for _, v := range strings.Split(val, ",") {
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && i > 0 {
			res = append(res, i)
		}
	}
	return res
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
