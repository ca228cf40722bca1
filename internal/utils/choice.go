package utils

import "strings"

// NormalizeChoice lower-cases and trims a configuration value, mapping
// underscores to dashes.
func NormalizeChoice(input string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(input)), "_", "-")
}

// OneOf normalizes input and reports whether it is one of the allowed values.
func OneOf(input string, allowed ...string) (string, bool) {
	v := NormalizeChoice(input)
	for _, a := range allowed {
		if v == a {
			return v, true
		}
	}
	return v, false
}
