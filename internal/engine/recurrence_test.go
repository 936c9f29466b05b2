package engine

import (
	"errors"
	"testing"
	"time"

	"countdown-tracker/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustNext(t *testing.T, e RecurrenceEngine, rule model.RecurrenceRule, after time.Time) time.Time {
	t.Helper()
	got, ok, err := e.NextOccurrence(rule, after)
	if err != nil {
		t.Fatalf("NextOccurrence: %v", err)
	}
	if !ok {
		t.Fatal("NextOccurrence: series ended unexpectedly")
	}
	return got
}

func TestNextOccurrenceDaily(t *testing.T) {
	var e RecurrenceEngine

	t.Run("interval of days", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 3}
		got := mustNext(t, e, rule, date(2026, time.January, 5))
		if want := date(2026, time.January, 8); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("result is normalized to midnight UTC", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1}
		after := time.Date(2026, time.January, 5, 18, 30, 0, 0, time.FixedZone("plus3", 3*3600))
		got := mustNext(t, e, rule, after)
		if want := date(2026, time.January, 6); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceWeekly(t *testing.T) {
	var e RecurrenceEngine
	monday := date(2026, time.January, 5) // a Monday

	t.Run("single weekday repeats seven days apart", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 1, Weekdays: "monday"}
		cursor := monday
		for i := 0; i < 5; i++ {
			next := mustNext(t, e, rule, cursor)
			if want := cursor.AddDate(0, 0, 7); !next.Equal(want) {
				t.Fatalf("step %d: got %v, want %v", i, next, want)
			}
			cursor = next
		}
	})

	t.Run("multiple weekdays fire within the same week", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 1, Weekdays: "monday,wednesday"}
		got := mustNext(t, e, rule, monday)
		if want := date(2026, time.January, 7); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("interval skips whole weeks", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 2, Weekdays: "monday"}
		got := mustNext(t, e, rule, monday)
		if want := date(2026, time.January, 19); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty weekday set defaults to the after-date's weekday", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 1}
		got := mustNext(t, e, rule, monday)
		if want := date(2026, time.January, 12); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("unparseable weekday names are dropped", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternWeekly, Interval: 1, Weekdays: "mondy,wednesday"}
		got := mustNext(t, e, rule, monday)
		if want := date(2026, time.January, 7); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceMonthly(t *testing.T) {
	var e RecurrenceEngine

	t.Run("same day next month", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1, DayOfMonth: 15}
		got := mustNext(t, e, rule, date(2026, time.January, 15))
		if want := date(2026, time.February, 15); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("day 31 clamps to the last day of a shorter month", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1, DayOfMonth: 31}

		got := mustNext(t, e, rule, date(2026, time.March, 31))
		if want := date(2026, time.April, 30); !got.Equal(want) {
			t.Errorf("April: got %v, want %v", got, want)
		}

		got = mustNext(t, e, rule, date(2026, time.January, 31))
		if want := date(2026, time.February, 28); !got.Equal(want) {
			t.Errorf("February: got %v, want %v", got, want)
		}
	})

	t.Run("third tuesday of the month", func(t *testing.T) {
		rule := model.RecurrenceRule{
			Pattern:     model.PatternMonthly,
			Interval:    1,
			WeekOfMonth: 3,
			Weekdays:    "tuesday",
		}
		got := mustNext(t, e, rule, date(2026, time.January, 15))
		if want := date(2026, time.February, 17); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("fifth weekday falls back to the last one", func(t *testing.T) {
		rule := model.RecurrenceRule{
			Pattern:     model.PatternMonthly,
			Interval:    1,
			WeekOfMonth: 5,
			Weekdays:    "monday",
		}
		// February 2026 has only four Mondays; the last one is the 23rd.
		got := mustNext(t, e, rule, date(2026, time.January, 15))
		if want := date(2026, time.February, 23); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("week-of-month without a weekday fails loudly", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1, WeekOfMonth: 2}
		if _, _, err := e.NextOccurrence(rule, date(2026, time.January, 15)); err == nil {
			t.Error("want error for week-of-month without weekday")
		}
	})
}

func TestNextOccurrenceYearly(t *testing.T) {
	var e RecurrenceEngine

	t.Run("same month and day a year later", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternYearly, Interval: 1}
		got := mustNext(t, e, rule, date(2026, time.July, 4))
		if want := date(2027, time.July, 4); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("leap day clamps to February 28", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternYearly, Interval: 1}
		got := mustNext(t, e, rule, date(2024, time.February, 29))
		if want := date(2025, time.February, 28); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceEndConditions(t *testing.T) {
	var e RecurrenceEngine

	t.Run("on-date with after at the end date", func(t *testing.T) {
		end := date(2026, time.January, 6)
		rule := model.RecurrenceRule{
			Pattern:  model.PatternDaily,
			Interval: 1,
			EndType:  model.EndOnDate,
			EndAt:    &end,
		}
		_, ok, err := e.NextOccurrence(rule, end)
		if err != nil || ok {
			t.Errorf("got ok=%t err=%v, want normal series end", ok, err)
		}
	})

	t.Run("on-date with candidate beyond the end date", func(t *testing.T) {
		end := date(2026, time.January, 6)
		rule := model.RecurrenceRule{
			Pattern:  model.PatternDaily,
			Interval: 3,
			EndType:  model.EndOnDate,
			EndAt:    &end,
		}
		_, ok, err := e.NextOccurrence(rule, date(2026, time.January, 5))
		if err != nil || ok {
			t.Errorf("got ok=%t err=%v, want normal series end", ok, err)
		}
	})

	t.Run("on-date with candidate at the end date", func(t *testing.T) {
		end := date(2026, time.January, 6)
		rule := model.RecurrenceRule{
			Pattern:  model.PatternDaily,
			Interval: 1,
			EndType:  model.EndOnDate,
			EndAt:    &end,
		}
		got := mustNext(t, e, rule, date(2026, time.January, 5))
		if !got.Equal(end) {
			t.Errorf("got %v, want %v", got, end)
		}
	})

	t.Run("after-count stops at the limit", func(t *testing.T) {
		rule := model.RecurrenceRule{
			Pattern:        model.PatternDaily,
			Interval:       1,
			EndType:        model.EndAfterCount,
			EndCount:       3,
			GeneratedCount: 3,
		}
		_, ok, err := e.NextOccurrence(rule, date(2026, time.January, 5))
		if err != nil || ok {
			t.Errorf("got ok=%t err=%v, want normal series end", ok, err)
		}

		rule.GeneratedCount = 2
		got := mustNext(t, e, rule, date(2026, time.January, 5))
		if want := date(2026, time.January, 6); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceSkips(t *testing.T) {
	t.Run("weekend candidates always move forward to Monday", func(t *testing.T) {
		var e RecurrenceEngine
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1, SkipWeekends: true}
		// Friday the 9th; the daily candidate is Saturday the 10th.
		got := mustNext(t, e, rule, date(2026, time.January, 9))
		if want := date(2026, time.January, 12); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("monthly weekend candidate moves forward too", func(t *testing.T) {
		var e RecurrenceEngine
		rule := model.RecurrenceRule{Pattern: model.PatternMonthly, Interval: 1, DayOfMonth: 1, SkipWeekends: true}
		// February 1st 2026 is a Sunday.
		got := mustNext(t, e, rule, date(2026, time.January, 20))
		if want := date(2026, time.February, 2); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("holiday candidates advance past the holiday", func(t *testing.T) {
		e := RecurrenceEngine{Holidays: FixedHolidays{"01-01": true}}
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1, SkipHolidays: true}
		got := mustNext(t, e, rule, date(2025, time.December, 31))
		if want := date(2026, time.January, 2); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("holiday and weekend skips combine", func(t *testing.T) {
		e := RecurrenceEngine{Holidays: FixedHolidays{"01-01": true, "2026-01-02": true}}
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1, SkipHolidays: true, SkipWeekends: true}
		// Jan 1 and 2 are holidays, Jan 3-4 the weekend.
		got := mustNext(t, e, rule, date(2025, time.December, 31))
		if want := date(2026, time.January, 5); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNextOccurrenceExceptions(t *testing.T) {
	var e RecurrenceEngine

	t.Run("excepted candidate regenerates from itself", func(t *testing.T) {
		rule := model.RecurrenceRule{
			Pattern:        model.PatternDaily,
			Interval:       1,
			ExceptionDates: "2026-01-06, not-a-date",
		}
		got := mustNext(t, e, rule, date(2026, time.January, 5))
		if want := date(2026, time.January, 7); !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("dense exceptions exhaust the lookahead", func(t *testing.T) {
		rule := model.RecurrenceRule{
			Pattern:  model.PatternDaily,
			Interval: 1,
			ExceptionDates: "2026-01-06,2026-01-07,2026-01-08,2026-01-09,2026-01-10," +
				"2026-01-11,2026-01-12,2026-01-13,2026-01-14,2026-01-15",
		}
		_, _, err := e.NextOccurrence(rule, date(2026, time.January, 5))
		if !errors.Is(err, ErrRecurrenceExhausted) {
			t.Errorf("got err=%v, want ErrRecurrenceExhausted", err)
		}
	})
}

func TestNextOccurrenceInvalidRules(t *testing.T) {
	var e RecurrenceEngine

	t.Run("unknown pattern", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: "fortnightly", Interval: 1}
		if _, _, err := e.NextOccurrence(rule, date(2026, time.January, 5)); err == nil {
			t.Error("want error for unknown pattern")
		}
	})

	t.Run("non-positive interval", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternDaily}
		if _, _, err := e.NextOccurrence(rule, date(2026, time.January, 5)); err == nil {
			t.Error("want error for zero interval")
		}
	})

	t.Run("on-date end without a date", func(t *testing.T) {
		rule := model.RecurrenceRule{Pattern: model.PatternDaily, Interval: 1, EndType: model.EndOnDate}
		if _, _, err := e.NextOccurrence(rule, date(2026, time.January, 5)); err == nil {
			t.Error("want error for missing end date")
		}
	})
}
