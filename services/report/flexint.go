package report

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexInt decodes a JSON value that may arrive as a number, a numeric string,
// or garbage. Non-numeric and missing values are zero, matching how the
// report figures are displayed.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0

	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int64(v))
		return nil
	}

	// parseInt-style leading digits ("1200 users" -> 1200).
	digits := leadingDigits(s)
	if digits != "" {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			*f = flexInt(n)
		}
	}

	return nil
}

func leadingDigits(s string) string {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return ""
	}
	return s[:i]
}

var _ json.Unmarshaler = (*flexInt)(nil)
