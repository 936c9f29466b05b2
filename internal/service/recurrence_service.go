package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"countdown-tracker/internal/engine"
	"countdown-tracker/internal/model"
	"countdown-tracker/internal/repository"
)

// Advance records one consumed occurrence: the rule moved from Occurred to
// Next (Next is zero when the series just ended).
type Advance struct {
	Event    model.Event
	Rule     model.RecurrenceRule
	Occurred time.Time
	Next     time.Time
	Ended    bool
}

// RecurrenceService runs the periodic occurrence-advancing pass over rules
// whose cached next date has come due.
type RecurrenceService struct {
	events     *repository.EventRepository
	rules      *repository.RecurrenceRepository
	recurrence engine.RecurrenceEngine
}

func NewRecurrenceService(events *repository.EventRepository, rules *repository.RecurrenceRepository, recurrence engine.RecurrenceEngine) *RecurrenceService {
	return &RecurrenceService{
		events:     events,
		rules:      rules,
		recurrence: recurrence,
	}
}

// AdvancePass consumes every due occurrence at the reference instant. For
// each due rule it computes the following occurrence, shifts next into last,
// bumps the generated count, and retargets the owning event at the new date
// (keeping its original wall-clock time). Misconfigured rules are logged and
// skipped so one bad rule cannot stall the series of the others.
func (s *RecurrenceService) AdvancePass(ctx context.Context, ref time.Time) ([]Advance, error) {
	due, err := s.rules.ListDueBy(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("recurrence pass: %w", err)
	}

	var advances []Advance
	for _, rule := range due {
		consumed := *rule.NextOccurrence

		next, ok, err := s.recurrence.NextOccurrence(rule, consumed)
		if err != nil {
			log.Printf("recurrence pass: rule %d: %v", rule.ID, err)
			continue
		}

		adv := Advance{Rule: rule, Occurred: consumed, Ended: !ok}
		generated := rule.GeneratedCount
		var nextPtr *time.Time
		if ok {
			adv.Next = next
			nextPtr = &next
			generated++
		}

		if err := s.rules.AdvanceOccurrence(ctx, rule.ID, &consumed, nextPtr, generated); err != nil {
			log.Printf("recurrence pass: rule %d: %v", rule.ID, err)
			continue
		}

		event, err := s.events.FindByID(ctx, rule.EventID)
		if err != nil {
			log.Printf("recurrence pass: rule %d: %v", rule.ID, err)
			continue
		}
		if event != nil {
			if ok {
				event.TargetAt = atWallClock(next, event.TargetAt)
				if err := s.events.Update(ctx, event); err != nil {
					log.Printf("recurrence pass: event %d: %v", event.ID, err)
					continue
				}
			}
			adv.Event = *event
		}
		advances = append(advances, adv)
	}
	return advances, nil
}

// atWallClock combines a generated occurrence date with the time of day of
// the previous target.
func atWallClock(date, previous time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		previous.Hour(), previous.Minute(), previous.Second(), 0,
		previous.Location(),
	)
}
