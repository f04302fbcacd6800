package metrics

import "strings"

// Searchable rows expose their columns as strings for free-text search.
type Searchable interface {
	Field(name string) string
}

var (
	CampaignFields = []string{"name", "status"}
	AdSetFields    = []string{"name", "campaign", "status", "recommendation"}
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Filter keeps the rows where any of fields contains query, ignoring case.
// An empty query returns rows as given. Relative order is preserved.
func Filter[T Searchable](rows []T, query string, fields []string) []T {
	q := norm(query)
	if q == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(r.Field(f)), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusActive StatusFilter = "active"
	StatusPaused StatusFilter = "paused"
)

func ParseStatusFilter(s string) StatusFilter {
	switch StatusFilter(norm(s)) {
	case StatusActive:
		return StatusActive
	case StatusPaused:
		return StatusPaused
	}
	return StatusAll
}

// ByStatus narrows rows to one status. StatusAll is a no-op.
func ByStatus[T Searchable](rows []T, sf StatusFilter) []T {
	if sf == StatusAll || sf == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if norm(r.Field("status")) == string(sf) {
			out = append(out, r)
		}
	}
	return out
}
