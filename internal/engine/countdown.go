// Package engine holds the temporal rule engine: countdown derivation,
// milestone evaluation, recurrence generation, and the event query engine.
// Everything here is a pure function over in-memory values; persistence and
// notification stay in the surrounding services. Callers must capture one
// reference instant per evaluation pass and share it across all calls in
// that pass so the results form a consistent snapshot.
package engine

import (
	"time"

	"countdown-tracker/internal/model"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
)

// Remaining computes the time left until the event's target at the given
// reference instant. A target at or before the reference counts as expired.
func Remaining(ev model.Event, ref time.Time) model.CountdownTime {
	return remaining(ev.TargetAt, ref)
}

// RemainingIn is Remaining with both instants converted into an explicit
// zone first. A wall-clock locale change must not perturb an in-flight
// countdown, so the zone is applied to target and reference symmetrically.
func RemainingIn(ev model.Event, ref time.Time, loc *time.Location) model.CountdownTime {
	if loc == nil {
		loc = time.UTC
	}
	return remaining(ev.TargetAt.In(loc), ref.In(loc))
}

// RemainingAll evaluates a batch of events against one shared reference
// instant, keyed by event id. Evaluating against a single instant keeps all
// countdowns in the batch mutually comparable.
func RemainingAll(events []model.Event, ref time.Time) map[uint]model.CountdownTime {
	out := make(map[uint]model.CountdownTime, len(events))
	for _, ev := range events {
		out[ev.ID] = remaining(ev.TargetAt, ref)
	}
	return out
}

// NextUpcoming returns the active event whose target is soonest but still
// strictly after ref, or nil if every event is expired or inactive. For
// identical targets the earliest event in input order wins.
func NextUpcoming(events []model.Event, ref time.Time) *model.Event {
	var best *model.Event
	for i := range events {
		ev := &events[i]
		if !ev.IsActive || !ev.TargetAt.After(ref) {
			continue
		}
		if best == nil || ev.TargetAt.Before(best.TargetAt) {
			best = ev
		}
	}
	return best
}

func remaining(target, ref time.Time) model.CountdownTime {
	if !target.After(ref) {
		return model.CountdownTime{Expired: true}
	}

	total := int64(target.Sub(ref) / time.Second)
	rest := total
	days := rest / secondsPerDay
	rest %= secondsPerDay
	hours := rest / secondsPerHour
	rest %= secondsPerHour
	minutes := rest / secondsPerMinute
	rest %= secondsPerMinute

	return model.CountdownTime{
		Days:         int(days),
		Hours:        int(hours),
		Minutes:      int(minutes),
		Seconds:      int(rest),
		TotalSeconds: total,
	}
}
