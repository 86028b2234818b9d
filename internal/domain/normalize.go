package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for member names and trip titles.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
