package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"countdown-tracker/internal/engine"
	"countdown-tracker/internal/model"
)

// EventRepository handles CRUD for countdown events.
//
// Lookup methods return (nil, nil) when no record exists: absence is an
// expected outcome of concurrent deletion, not an error.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).First(&event, id).Error
	switch {
	case err == nil:
		return &event, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find event %d: %w", id, err)
	}
}

func (r *EventRepository) ListAll(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Order("target_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) ListActive(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("target_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list active events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) ListByCategory(ctx context.Context, category string) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("is_active = ? AND category = ?", true, category).
		Order("target_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events by category: %w", err)
	}
	return events, nil
}

func (r *EventRepository) ListByPriority(ctx context.Context, priority int) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Where("is_active = ? AND priority = ?", true, priority).
		Order("target_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events by priority: %w", err)
	}
	return events, nil
}

// ListByDateRange returns active events with targets in [from, to], both
// bounds inclusive, target date ascending.
func (r *EventRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND target_at >= ? AND target_at <= ?", true, from, to).
		Order("target_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events by date range: %w", err)
	}
	return events, nil
}

func (r *EventRepository) SetActive(ctx context.Context, id uint, active bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).
		Update("is_active", active).Error; err != nil {
		return fmt.Errorf("set event %d active=%t: %w", id, active, err)
	}
	return nil
}

func (r *EventRepository) SetPriority(ctx context.Context, id uint, priority int) error {
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).
		Update("priority", priority).Error; err != nil {
		return fmt.Errorf("set event %d priority=%d: %w", id, priority, err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Event{}, id).Error; err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return nil
}

// Duplicate copies an event under a new id with " (Copy)" appended to the
// title. Returns (nil, nil) when the source event is gone.
func (r *EventRepository) Duplicate(ctx context.Context, id uint) (*model.Event, error) {
	source, err := r.FindByID(ctx, id)
	if err != nil || source == nil {
		return nil, err
	}

	copyEvent := *source
	copyEvent.ID = 0
	copyEvent.Title = copyTitle(source.Title)
	copyEvent.CreatedAt = time.Time{}
	copyEvent.UpdatedAt = time.Time{}
	if err := r.Create(ctx, &copyEvent); err != nil {
		return nil, fmt.Errorf("duplicate event %d: %w", id, err)
	}
	return &copyEvent, nil
}

const copySuffix = " (Copy)"

// copyTitle appends the duplicate marker, trimming the base title first so
// the result stays within the title limit and survives later validation.
func copyTitle(title string) string {
	max := engine.MaxTitleLen - utf8.RuneCountInString(copySuffix)
	if utf8.RuneCountInString(title) > max {
		title = strings.TrimSpace(string([]rune(title)[:max]))
	}
	return title + copySuffix
}
