package engine

import (
	"errors"
	"fmt"
	"time"

	"countdown-tracker/internal/model"
)

// ErrRecurrenceExhausted means exception dates blocked every generated
// candidate within the bounded lookahead. It signals a misconfigured rule,
// unlike the normal "series ended" result which is not an error.
var ErrRecurrenceExhausted = errors.New("recurrence: no valid occurrence within lookahead")

// maxExceptionCycles bounds how many times generation restarts after an
// exception-date hit before giving up.
const maxExceptionCycles = 10

// HolidayCalendar reports whether a date should be skipped as a holiday.
// The calendar is an external collaborator; the engine only consults it.
type HolidayCalendar interface {
	IsHoliday(t time.Time) bool
}

// FixedHolidays is a holiday calendar backed by a set of dates. Keys are
// either full dates ("2026-12-25") or recurring month-day pairs ("12-25").
type FixedHolidays map[string]bool

func (f FixedHolidays) IsHoliday(t time.Time) bool {
	return f[t.Format("2006-01-02")] || f[t.Format("01-02")]
}

// RecurrenceEngine computes the next occurrence of a recurrence rule. The
// zero value works and treats no date as a holiday.
type RecurrenceEngine struct {
	Holidays HolidayCalendar
}

// NextOccurrence returns the first valid occurrence strictly after the given
// date, normalized to midnight UTC. ok=false with a nil error means the
// series has legitimately ended (end date or occurrence count reached).
//
// Skip-weekends policy, for every pattern: a candidate on Saturday or Sunday
// always moves forward to the following Monday.
func (e RecurrenceEngine) NextOccurrence(rule model.RecurrenceRule, after time.Time) (time.Time, bool, error) {
	pattern, okPattern := model.ParseRecurrencePattern(string(rule.Pattern))
	if !okPattern {
		return time.Time{}, false, fmt.Errorf("recurrence rule %d: unknown pattern %q", rule.ID, rule.Pattern)
	}
	if rule.Interval < 1 {
		return time.Time{}, false, fmt.Errorf("recurrence rule %d: interval must be positive, got %d", rule.ID, rule.Interval)
	}

	after = dateOnly(after)

	switch model.ParseRecurrenceEnd(string(rule.EndType)) {
	case model.EndOnDate:
		if rule.EndAt == nil {
			return time.Time{}, false, fmt.Errorf("recurrence rule %d: end type on_date without end date", rule.ID)
		}
		if !after.Before(dateOnly(*rule.EndAt)) {
			return time.Time{}, false, nil
		}
	case model.EndAfterCount:
		if rule.GeneratedCount >= rule.EndCount {
			return time.Time{}, false, nil
		}
	}

	exceptions := rule.Exceptions()
	cursor := after
	for cycle := 0; cycle < maxExceptionCycles; cycle++ {
		candidate, err := e.generate(rule, pattern, after, cursor)
		if err != nil {
			return time.Time{}, false, err
		}

		candidate, err = e.applySkips(rule, candidate)
		if err != nil {
			return time.Time{}, false, err
		}

		if rule.EndType == model.EndOnDate && candidate.After(dateOnly(*rule.EndAt)) {
			return time.Time{}, false, nil
		}

		if exceptions[candidate.Format("2006-01-02")] {
			cursor = candidate
			continue
		}
		return candidate, true, nil
	}

	return time.Time{}, false, fmt.Errorf("recurrence rule %d: %w", rule.ID, ErrRecurrenceExhausted)
}

// generate produces the raw pattern candidate after cursor, before skip and
// exception filters. origin is the original after-date; weekly rules fall
// back to its weekday when the rule names none.
func (e RecurrenceEngine) generate(rule model.RecurrenceRule, pattern model.RecurrencePattern, origin, cursor time.Time) (time.Time, error) {
	switch pattern {
	case model.PatternDaily:
		return cursor.AddDate(0, 0, rule.Interval), nil
	case model.PatternWeekly:
		return nextWeekly(rule, origin, cursor)
	case model.PatternMonthly:
		return nextMonthly(rule, cursor)
	case model.PatternYearly:
		return nextYearly(rule, cursor), nil
	}
	return time.Time{}, fmt.Errorf("recurrence rule %d: unhandled pattern %q", rule.ID, pattern)
}

// nextWeekly finds the first date after cursor whose weekday is in the
// rule's set and whose week (Monday-start) is a whole multiple of the
// interval away from the origin's week.
func nextWeekly(rule model.RecurrenceRule, origin, cursor time.Time) (time.Time, error) {
	set := rule.WeekdaySet()
	if len(set) == 0 {
		set = map[time.Weekday]bool{origin.Weekday(): true}
	}

	anchor := weekStart(origin)
	d := cursor.AddDate(0, 0, 1)
	// A matching weekday must appear within interval+1 week cycles.
	limit := 7 * (rule.Interval + 1)
	for i := 0; i < limit; i++ {
		if set[d.Weekday()] && weeksBetween(anchor, weekStart(d))%rule.Interval == 0 {
			return d, nil
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("recurrence rule %d: no weekday match within %d days", rule.ID, limit)
}

// nextMonthly lands on the rule's day in the month interval months after the
// cursor's month. Day selection is either a fixed day-of-month (clamped to
// the month's length) or an ordinal weekday such as "third Tuesday"
// (WeekOfMonth 1-4, or 5 meaning the last such weekday).
func nextMonthly(rule model.RecurrenceRule, cursor time.Time) (time.Time, error) {
	year, month, _ := cursor.AddDate(0, rule.Interval, -cursor.Day()+1).Date()

	if rule.WeekOfMonth > 0 {
		set := rule.WeekdaySet()
		if len(set) == 0 {
			return time.Time{}, fmt.Errorf("recurrence rule %d: week-of-month without a weekday", rule.ID)
		}
		var weekday time.Weekday
		for d := time.Sunday; d <= time.Saturday; d++ {
			if set[d] {
				weekday = d
				break
			}
		}
		return nthWeekdayOfMonth(year, month, weekday, rule.WeekOfMonth), nil
	}

	day := rule.DayOfMonth
	if day <= 0 {
		day = cursor.Day()
	}
	return clampedDate(year, month, day), nil
}

// nextYearly keeps the cursor's month and day (or the rule's explicit
// month/day) interval years later, clamping Feb 29 on non-leap years.
func nextYearly(rule model.RecurrenceRule, cursor time.Time) time.Time {
	year := cursor.Year() + rule.Interval
	month := cursor.Month()
	if rule.MonthOfYear >= 1 && rule.MonthOfYear <= 12 {
		month = time.Month(rule.MonthOfYear)
	}
	day := cursor.Day()
	if rule.DayOfMonth > 0 {
		day = rule.DayOfMonth
	}
	return clampedDate(year, month, day)
}

func (e RecurrenceEngine) applySkips(rule model.RecurrenceRule, candidate time.Time) (time.Time, error) {
	if rule.SkipWeekends {
		candidate = forwardToMonday(candidate)
	}
	if !rule.SkipHolidays || e.Holidays == nil {
		return candidate, nil
	}
	// Bounded: a holiday calendar covering more than a year of consecutive
	// days is a configuration error, not something to loop through.
	for i := 0; i < 366; i++ {
		if !e.Holidays.IsHoliday(candidate) {
			if !rule.SkipWeekends || !isWeekend(candidate) {
				return candidate, nil
			}
		}
		candidate = candidate.AddDate(0, 0, 1)
		if rule.SkipWeekends {
			candidate = forwardToMonday(candidate)
		}
	}
	return time.Time{}, fmt.Errorf("recurrence rule %d: holiday calendar blocks a full year", rule.ID)
}

func forwardToMonday(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// dateOnly truncates to midnight UTC so all calendar arithmetic is immune
// to DST transitions in the source zone.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday beginning t's week.
func weekStart(t time.Time) time.Time {
	t = dateOnly(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func weeksBetween(a, b time.Time) int {
	return int(b.Sub(a) / (7 * 24 * time.Hour))
}

// clampedDate builds a date, pulling an out-of-range day back to the last
// day of the month instead of letting it roll into the next month.
func clampedDate(year int, month time.Month, day int) time.Time {
	if max := daysInMonth(month, year); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekdayOfMonth returns the nth given weekday of the month; n of 5 or
// more means the last such weekday.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7
	if day > daysInMonth(month, year) {
		day = 1 + offset + ((daysInMonth(month, year)-1-offset)/7)*7
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(month time.Month, year int) int {
	// Move to the next month, roll back a day.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
