package engine

import (
	"sort"
	"strings"
	"time"

	"countdown-tracker/internal/model"
)

// SortKey selects the ordering of a query result.
type SortKey string

const (
	SortByPriority SortKey = "priority"
	SortByDate     SortKey = "date"
	SortByName     SortKey = "name"
)

// QueryParams filters and orders the event list. Zero-valued filters pass
// everything; an unknown or empty SortBy falls back to date order.
type QueryParams struct {
	Text     string
	Category string
	Priority *int
	SortBy   SortKey
}

// Query returns the active events matching every supplied filter, ordered by
// the requested key. Priority sorts descending, date and name ascending;
// equal keys always fall back to target date ascending so the composite
// order is total and stable.
func Query(events []model.Event, p QueryParams) []model.Event {
	needle := strings.ToLower(strings.TrimSpace(p.Text))

	var out []model.Event
	for _, ev := range events {
		if !ev.IsActive {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(ev.Title), needle) &&
			!strings.Contains(strings.ToLower(ev.Description), needle) {
			continue
		}
		if p.Category != "" && ev.Category != p.Category {
			continue
		}
		if p.Priority != nil && ev.Priority != *p.Priority {
			continue
		}
		out = append(out, ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch p.SortBy {
		case SortByPriority:
			if a.Priority != b.Priority {
				return a.Priority > b.Priority
			}
		case SortByName:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		}
		return a.TargetAt.Before(b.TargetAt)
	})
	return out
}

// Categories returns the distinct categories present among active events.
// The result is a set; no particular order is promised.
func Categories(events []model.Event) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ev := range events {
		if !ev.IsActive || seen[ev.Category] {
			continue
		}
		seen[ev.Category] = true
		out = append(out, ev.Category)
	}
	return out
}

// ByCategory returns active events in the category, target date ascending.
func ByCategory(events []model.Event, category string) []model.Event {
	return Query(events, QueryParams{Category: category, SortBy: SortByDate})
}

// ByPriority returns active events with the priority, target date ascending.
func ByPriority(events []model.Event, priority int) []model.Event {
	return Query(events, QueryParams{Priority: &priority, SortBy: SortByDate})
}

// InRange returns active events whose target falls within [from, to], both
// bounds inclusive, target date ascending.
func InRange(events []model.Event, from, to time.Time) []model.Event {
	var out []model.Event
	for _, ev := range Query(events, QueryParams{SortBy: SortByDate}) {
		if ev.TargetAt.Before(from) || ev.TargetAt.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Past returns active events whose target is at or before ref, most recently
// expired first.
func Past(events []model.Event, ref time.Time) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if !ev.IsActive || ev.TargetAt.After(ref) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TargetAt.After(out[j].TargetAt)
	})
	return out
}

// Upcoming returns up to limit active events with targets strictly after
// ref, soonest first. A non-positive limit returns all of them.
func Upcoming(events []model.Event, ref time.Time, limit int) []model.Event {
	var out []model.Event
	for _, ev := range Query(events, QueryParams{SortBy: SortByDate}) {
		if !ev.TargetAt.After(ref) {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
