package model

import (
	"strings"
	"time"
)

// RecurrencePattern is the unit a rule repeats in.
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "daily"
	PatternWeekly  RecurrencePattern = "weekly"
	PatternMonthly RecurrencePattern = "monthly"
	PatternYearly  RecurrencePattern = "yearly"
)

// ParseRecurrencePattern reports whether the stored string names a known
// pattern. There is no safe default for an unknown pattern, so callers must
// check ok.
func ParseRecurrencePattern(s string) (RecurrencePattern, bool) {
	switch RecurrencePattern(s) {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return RecurrencePattern(s), true
	default:
		return "", false
	}
}

// RecurrenceEnd says when a rule stops producing occurrences.
type RecurrenceEnd string

const (
	EndNever      RecurrenceEnd = "never"
	EndOnDate     RecurrenceEnd = "on_date"
	EndAfterCount RecurrenceEnd = "after_count"
)

// ParseRecurrenceEnd falls back to never for unrecognized stored values.
func ParseRecurrenceEnd(s string) RecurrenceEnd {
	switch RecurrenceEnd(s) {
	case EndOnDate, EndAfterCount:
		return RecurrenceEnd(s)
	default:
		return EndNever
	}
}

// RecurrenceRule describes how an event repeats. One rule per event.
//
// Weekdays and ExceptionDates are stored as comma-separated strings
// ("monday,friday" and "2026-03-01,2026-03-08") so the schema stays flat;
// the typed accessors below parse them leniently.
//
// LastOccurrence/NextOccurrence memoize the engine's output: NextOccurrence,
// when set, satisfies the rule's constraints relative to LastOccurrence and
// is recomputed rather than trusted across rule edits.
type RecurrenceRule struct {
	ID             uint `gorm:"primaryKey"`
	EventID        uint `gorm:"uniqueIndex"`
	Pattern        RecurrencePattern
	Interval       int `gorm:"default:1"`
	Weekdays       string
	DayOfMonth     int
	WeekOfMonth    int
	MonthOfYear    int
	EndType        RecurrenceEnd `gorm:"default:never"`
	EndAt          *time.Time
	EndCount       int
	GeneratedCount int
	ExceptionDates string
	SkipWeekends   bool
	SkipHolidays   bool
	LastOccurrence *time.Time
	NextOccurrence *time.Time `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WeekdaySet parses the stored weekday list. Unparseable names are dropped.
func (r *RecurrenceRule) WeekdaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool)
	for _, part := range strings.Split(r.Weekdays, ",") {
		if day, ok := parseWeekday(strings.TrimSpace(part)); ok {
			set[day] = true
		}
	}
	return set
}

// Exceptions parses the stored exception-date list. Unparseable entries are
// dropped. Dates are normalized to midnight UTC for comparison.
func (r *RecurrenceRule) Exceptions() map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(r.ExceptionDates, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", raw); err == nil {
			set[raw] = true
		}
	}
	return set
}

func parseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(s) {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	default:
		return 0, false
	}
}

// FormatWeekdays renders a weekday set back into the stored representation,
// in week order starting from Monday.
func FormatWeekdays(set map[time.Weekday]bool) string {
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var names []string
	for _, d := range order {
		if set[d] {
			names = append(names, strings.ToLower(d.String()))
		}
	}
	return strings.Join(names, ",")
}
