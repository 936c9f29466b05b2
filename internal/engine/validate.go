package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"countdown-tracker/internal/model"
)

// Field limits for events. Sanitize clamps to these; Validate reports
// violations.
const (
	MinTitleLen       = 2
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MaxIconLen        = 50
	MinPriority       = 0
	MaxPriority       = 10
	MaxReminderLead   = 365 * 24 * time.Hour

	// DefaultCategory replaces a blank category.
	DefaultCategory = "General"
)

// Target dates must land within this window around the reference instant.
const (
	targetPastWindow   = 10  // years
	targetFutureWindow = 100 // years
)

// FieldError is one user-correctable validation failure.
type FieldError struct {
	Field string
	Msg   string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Msg }

// Validate checks every field constraint independently and collects all
// violations; it never short-circuits. An empty result means the event is
// acceptable for persistence. now is the reference instant for the target
// date window, injectable for tests.
func Validate(ev model.Event, now time.Time) []FieldError {
	var errs []FieldError

	// Length limits count characters, not bytes, so multi-byte titles get
	// the full budget.
	title := strings.TrimSpace(ev.Title)
	switch {
	case title == "":
		errs = append(errs, FieldError{"title", "must not be blank"})
	case utf8.RuneCountInString(title) < MinTitleLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("min length %d", MinTitleLen)})
	case utf8.RuneCountInString(title) > MaxTitleLen:
		errs = append(errs, FieldError{"title", fmt.Sprintf("max length %d", MaxTitleLen)})
	}

	if utf8.RuneCountInString(ev.Description) > MaxDescriptionLen {
		errs = append(errs, FieldError{"description", fmt.Sprintf("max length %d", MaxDescriptionLen)})
	}

	if strings.TrimSpace(ev.Category) == "" {
		errs = append(errs, FieldError{"category", "must not be blank"})
	}

	if ev.TargetAt.Before(now.AddDate(-targetPastWindow, 0, 0)) {
		errs = append(errs, FieldError{"target_at", fmt.Sprintf("more than %d years in the past", targetPastWindow)})
	}
	if ev.TargetAt.After(now.AddDate(targetFutureWindow, 0, 0)) {
		errs = append(errs, FieldError{"target_at", fmt.Sprintf("more than %d years in the future", targetFutureWindow)})
	}

	if ev.ReminderEnabled {
		switch {
		case ev.ReminderLead == nil:
			errs = append(errs, FieldError{"reminder_lead", "required when reminder is enabled"})
		case *ev.ReminderLead < 0:
			errs = append(errs, FieldError{"reminder_lead", "must not be negative"})
		case *ev.ReminderLead > MaxReminderLead:
			errs = append(errs, FieldError{"reminder_lead", "must be at most one year"})
		}
	}

	if ev.Priority < MinPriority || ev.Priority > MaxPriority {
		errs = append(errs, FieldError{"priority", fmt.Sprintf("must be within [%d, %d]", MinPriority, MaxPriority)})
	}

	if utf8.RuneCountInString(ev.Icon) > MaxIconLen {
		errs = append(errs, FieldError{"icon", fmt.Sprintf("max length %d", MaxIconLen)})
	}

	return errs
}

// Sanitize cleans an event up without ever failing: trims whitespace,
// truncates over-long text fields, substitutes the default category for a
// blank one, and clamps priority into range. Sanitizing twice gives the
// same result as sanitizing once.
func Sanitize(ev model.Event) model.Event {
	ev.Title = truncate(strings.TrimSpace(ev.Title), MaxTitleLen)
	ev.Description = truncate(strings.TrimSpace(ev.Description), MaxDescriptionLen)
	ev.Icon = truncate(strings.TrimSpace(ev.Icon), MaxIconLen)

	ev.Category = strings.TrimSpace(ev.Category)
	if ev.Category == "" {
		ev.Category = DefaultCategory
	}

	if ev.Priority < MinPriority {
		ev.Priority = MinPriority
	}
	if ev.Priority > MaxPriority {
		ev.Priority = MaxPriority
	}

	return ev
}

// truncate cuts s down to at most max characters, never mid-rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
