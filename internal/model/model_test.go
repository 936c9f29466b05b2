package model

import (
	"testing"
	"time"
)

func TestParseMilestoneType(t *testing.T) {
	cases := []struct {
		in   string
		want MilestoneType
	}{
		{"percentage", MilestonePercentage},
		{"time", MilestoneTimeBased},
		{"custom", MilestoneCustom},
		{"percentge", MilestoneCustom},
		{"", MilestoneCustom},
	}
	for _, tc := range cases {
		if got := ParseMilestoneType(tc.in); got != tc.want {
			t.Errorf("ParseMilestoneType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseCelebrationEffect(t *testing.T) {
	cases := []struct {
		in   string
		want CelebrationEffect
	}{
		{"confetti", EffectConfetti},
		{"fireworks", EffectFirework},
		{"sparkles", EffectSparkles},
		{"none", EffectNone},
		{"glitter", EffectNone},
		{"", EffectNone},
	}
	for _, tc := range cases {
		if got := ParseCelebrationEffect(tc.in); got != tc.want {
			t.Errorf("ParseCelebrationEffect(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRecurrencePattern(t *testing.T) {
	for _, valid := range []string{"daily", "weekly", "monthly", "yearly"} {
		if _, ok := ParseRecurrencePattern(valid); !ok {
			t.Errorf("ParseRecurrencePattern(%q) not ok", valid)
		}
	}
	for _, invalid := range []string{"", "hourly", "Daily"} {
		if _, ok := ParseRecurrencePattern(invalid); ok {
			t.Errorf("ParseRecurrencePattern(%q) ok, want not ok", invalid)
		}
	}
}

func TestParseRecurrenceEnd(t *testing.T) {
	cases := []struct {
		in   string
		want RecurrenceEnd
	}{
		{"never", EndNever},
		{"on_date", EndOnDate},
		{"after_count", EndAfterCount},
		{"eventually", EndNever},
		{"", EndNever},
	}
	for _, tc := range cases {
		if got := ParseRecurrenceEnd(tc.in); got != tc.want {
			t.Errorf("ParseRecurrenceEnd(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWeekdaySet(t *testing.T) {
	t.Run("parses names and short forms", func(t *testing.T) {
		rule := RecurrenceRule{Weekdays: "monday, WED, fri"}
		got := rule.WeekdaySet()
		want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for _, d := range want {
			if !got[d] {
				t.Errorf("missing %v in %v", d, got)
			}
		}
	})

	t.Run("drops unparseable names", func(t *testing.T) {
		rule := RecurrenceRule{Weekdays: "monday,funday,,  "}
		got := rule.WeekdaySet()
		if len(got) != 1 || !got[time.Monday] {
			t.Errorf("got %v, want just Monday", got)
		}
	})
}

func TestExceptions(t *testing.T) {
	rule := RecurrenceRule{ExceptionDates: "2026-03-01, 2026-13-45, garbage, 2026-03-08"}
	got := rule.Exceptions()
	if len(got) != 2 || !got["2026-03-01"] || !got["2026-03-08"] {
		t.Errorf("got %v, want the two valid dates", got)
	}
}

func TestFormatWeekdays(t *testing.T) {
	set := map[time.Weekday]bool{time.Sunday: true, time.Monday: true, time.Friday: true}
	if got := FormatWeekdays(set); got != "monday,friday,sunday" {
		t.Errorf("got %q, want %q", got, "monday,friday,sunday")
	}

	// Round-trips through the rule parser.
	rule := RecurrenceRule{Weekdays: FormatWeekdays(set)}
	if parsed := rule.WeekdaySet(); len(parsed) != 3 {
		t.Errorf("round-trip lost days: %v", parsed)
	}
}
