package service

import (
	"strings"
	"testing"
	"time"

	"countdown-tracker/internal/engine"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []engine.FieldError{
		{Field: "title", Msg: "must not be blank"},
		{Field: "priority", Msg: "must be within [0, 10]"},
	}}
	got := err.Error()
	if !strings.Contains(got, "title: must not be blank") || !strings.Contains(got, "priority:") {
		t.Errorf("Error() = %q, want both field messages", got)
	}
}

func TestAtWallClock(t *testing.T) {
	loc := time.FixedZone("plus2", 2*3600)
	previous := time.Date(2026, time.March, 10, 18, 30, 15, 0, loc)
	occurrence := time.Date(2026, time.April, 14, 0, 0, 0, 0, time.UTC)

	got := atWallClock(occurrence, previous)
	want := time.Date(2026, time.April, 14, 18, 30, 15, 0, loc)
	if !got.Equal(want) {
		t.Errorf("atWallClock = %v, want %v", got, want)
	}
	if got.Location() != loc {
		t.Errorf("location = %v, want the previous target's zone", got.Location())
	}
}

func TestBuildDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"09:00", "0 0 9 * * *", false},
		{"23:59", "0 59 23 * * *", false},
		{"24:00", "", true},
		{"9am", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := buildDailySpec(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("buildDailySpec(%q) err = %v, wantErr %t", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("buildDailySpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
