package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"countdown-tracker/internal/engine"
	"countdown-tracker/internal/model"
	"countdown-tracker/internal/repository"
)

// ValidationError carries the full set of field violations from the write
// path. It is user-correctable, never fatal.
type ValidationError struct {
	Fields []engine.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid event: " + strings.Join(msgs, "; ")
}

// RecurrenceInput describes the optional repetition of a new event.
type RecurrenceInput struct {
	Pattern        model.RecurrencePattern
	Interval       int
	Weekdays       map[time.Weekday]bool
	DayOfMonth     int
	WeekOfMonth    int
	MonthOfYear    int
	EndType        model.RecurrenceEnd
	EndAt          *time.Time
	EndCount       int
	ExceptionDates string
	SkipWeekends   bool
	SkipHolidays   bool
}

// EventInput is the data needed to create or update a countdown event.
type EventInput struct {
	Title            string
	Description      string
	Category         string
	Icon             string
	TargetAt         time.Time
	Priority         int
	ReminderEnabled  bool
	ReminderLead     *time.Duration
	Recurrence       *RecurrenceInput
	CustomMilestones []model.Milestone
}

// EventService implements the write path: sanitize, validate, persist, and
// set up the event's milestones and recurrence rule.
type EventService struct {
	events     *repository.EventRepository
	milestones *repository.MilestoneRepository
	rules      *repository.RecurrenceRepository
	recurrence engine.RecurrenceEngine
}

func NewEventService(events *repository.EventRepository, milestones *repository.MilestoneRepository, rules *repository.RecurrenceRepository, recurrence engine.RecurrenceEngine) *EventService {
	return &EventService{
		events:     events,
		milestones: milestones,
		rules:      rules,
		recurrence: recurrence,
	}
}

// CreateEvent validates and persists a new event together with its template
// milestones, any caller-supplied custom milestones, and its recurrence rule
// with the first occurrence precomputed.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput, now time.Time) (*model.Event, error) {
	event := engine.Sanitize(model.Event{
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Icon:            input.Icon,
		TargetAt:        input.TargetAt,
		Priority:        input.Priority,
		ReminderEnabled: input.ReminderEnabled,
		ReminderLead:    input.ReminderLead,
		IsActive:        true,
	})
	if fields := engine.Validate(event, now); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.events.Create(ctx, &event); err != nil {
		return nil, err
	}

	milestones := engine.InstantiateMilestones(event, now, input.CustomMilestones)
	if err := s.milestones.InsertBatch(ctx, milestones); err != nil {
		return nil, err
	}

	if input.Recurrence != nil {
		if err := s.createRule(ctx, event, *input.Recurrence); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

func (s *EventService) createRule(ctx context.Context, event model.Event, input RecurrenceInput) error {
	rule := model.RecurrenceRule{
		EventID:        event.ID,
		Pattern:        input.Pattern,
		Interval:       input.Interval,
		Weekdays:       model.FormatWeekdays(input.Weekdays),
		DayOfMonth:     input.DayOfMonth,
		WeekOfMonth:    input.WeekOfMonth,
		MonthOfYear:    input.MonthOfYear,
		EndType:        input.EndType,
		EndAt:          input.EndAt,
		EndCount:       input.EndCount,
		ExceptionDates: input.ExceptionDates,
		SkipWeekends:   input.SkipWeekends,
		SkipHolidays:   input.SkipHolidays,
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	if rule.EndType == "" {
		rule.EndType = model.EndNever
	}

	next, ok, err := s.recurrence.NextOccurrence(rule, event.TargetAt)
	if err != nil {
		return fmt.Errorf("event %d: %w", event.ID, err)
	}
	if ok {
		rule.NextOccurrence = &next
		rule.GeneratedCount = 1
	}

	return s.rules.Insert(ctx, &rule)
}

// UpdateEvent applies input to an existing event, re-running sanitize and
// validate. Returns (nil, nil) when the event no longer exists.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, input EventInput, now time.Time) (*model.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil || event == nil {
		return nil, err
	}

	updated := engine.Sanitize(model.Event{
		ID:              event.ID,
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Icon:            input.Icon,
		TargetAt:        input.TargetAt,
		Priority:        input.Priority,
		ReminderEnabled: input.ReminderEnabled,
		ReminderLead:    input.ReminderLead,
		IsActive:        event.IsActive,
		CreatedAt:       event.CreatedAt,
	})
	if fields := engine.Validate(updated, now); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.events.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (*model.Event, error) {
	return s.events.FindByID(ctx, id)
}

func (s *EventService) ListActive(ctx context.Context) ([]model.Event, error) {
	return s.events.ListActive(ctx)
}

func (s *EventService) SetActive(ctx context.Context, id uint, active bool) error {
	return s.events.SetActive(ctx, id, active)
}

func (s *EventService) SetPriority(ctx context.Context, id uint, priority int) error {
	if priority < engine.MinPriority {
		priority = engine.MinPriority
	}
	if priority > engine.MaxPriority {
		priority = engine.MaxPriority
	}
	return s.events.SetPriority(ctx, id, priority)
}

// DeleteEvent removes the event and cascades to its milestones and
// recurrence rule.
func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.milestones.DeleteByEvent(ctx, id); err != nil {
		return err
	}
	if err := s.rules.DeleteByEvent(ctx, id); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

// DuplicateEvent copies an event with a fresh id and a " (Copy)" suffix and
// gives the copy its own template milestones. The recurrence rule is not
// copied.
func (s *EventService) DuplicateEvent(ctx context.Context, id uint, now time.Time) (*model.Event, error) {
	copyEvent, err := s.events.Duplicate(ctx, id)
	if err != nil || copyEvent == nil {
		return nil, err
	}
	if err := s.milestones.InsertBatch(ctx, engine.DefaultMilestones(*copyEvent, now)); err != nil {
		return nil, err
	}
	return copyEvent, nil
}
