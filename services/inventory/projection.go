package inventory

import "strings"

// FilterAll is the status filter value that matches every machine.
const FilterAll = "ALL"

// Project derives the visible subset of machines for a status filter and a
// case-insensitive name substring query. An empty or "ALL" filter matches
// every status; an empty query matches every name. Input order is preserved
// and the input slice is never mutated.
func Project(machines []Machine, statusFilter, query string) []Machine {
	query = strings.ToLower(query)

	out := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if statusFilter != "" && statusFilter != FilterAll && string(m.Status) != statusFilter {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(m.Name), query) {
			continue
		}
		out = append(out, m)
	}
	return out
}
