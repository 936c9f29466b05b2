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

// Achievement pairs a newly achieved milestone with its owning event, ready
// for notification.
type Achievement struct {
	Event     model.Event
	Milestone model.Milestone
}

// MilestoneService runs the periodic milestone evaluation pass and persists
// achievements.
type MilestoneService struct {
	events     *repository.EventRepository
	milestones *repository.MilestoneRepository
	evaluator  engine.MilestoneEvaluator
}

func NewMilestoneService(events *repository.EventRepository, milestones *repository.MilestoneRepository, evaluator engine.MilestoneEvaluator) *MilestoneService {
	return &MilestoneService{
		events:     events,
		milestones: milestones,
		evaluator:  evaluator,
	}
}

// EvaluatePass evaluates every active event's unachieved milestones against
// one shared reference instant, marks the crossed ones achieved, and returns
// them. A failure on one event does not stop the pass for the rest.
func (s *MilestoneService) EvaluatePass(ctx context.Context, ref time.Time) ([]Achievement, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("milestone pass: %w", err)
	}

	var achieved []Achievement
	for _, event := range events {
		unachieved, err := s.milestones.ListUnachieved(ctx, event.ID)
		if err != nil {
			log.Printf("milestone pass: event %d: %v", event.ID, err)
			continue
		}

		for _, m := range s.evaluator.Evaluate(event, unachieved, ref) {
			flipped, err := s.milestones.MarkAchieved(ctx, m.ID, ref)
			if err != nil {
				log.Printf("milestone pass: event %d: %v", event.ID, err)
				continue
			}
			if !flipped {
				// A concurrent pass got there first; it owns the
				// notification.
				continue
			}
			achieved = append(achieved, Achievement{Event: event, Milestone: m})
		}
	}
	return achieved, nil
}
