package report

import "strings"

// FilterAll is the literal filter value that disables name filtering.
const FilterAll = "all"

// NormalizeFilter trims the filter and maps "all" (any case) and blank to "".
// An empty result means no filtering.
func NormalizeFilter(filter string) string {
	f := strings.TrimSpace(filter)
	if strings.EqualFold(f, FilterAll) {
		return ""
	}
	return f
}
