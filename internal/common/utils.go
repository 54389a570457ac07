package common

import "strings"

// SplitTrim splits s on sep, trims whitespace from each part, and drops
// empty parts. An empty or all-whitespace s yields nil.
func SplitTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
