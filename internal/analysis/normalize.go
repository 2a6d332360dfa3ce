package analysis

import (
	"fmt"
	"strings"
)

// Normalize coerces v to its textual form and lowercases it. nil normalizes
// to the empty string. It never fails and is idempotent.
func Normalize(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.ToLower(s)
}
