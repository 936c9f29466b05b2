package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"countdown-tracker/internal/model"
)

// RecurrenceRepository manages recurrence rules. Each event has at most one.
type RecurrenceRepository struct {
	db *gorm.DB
}

func NewRecurrenceRepository(db *gorm.DB) *RecurrenceRepository {
	return &RecurrenceRepository{db: db}
}

func (r *RecurrenceRepository) Insert(ctx context.Context, rule *model.RecurrenceRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("insert recurrence rule: %w", err)
	}
	return nil
}

func (r *RecurrenceRepository) Update(ctx context.Context, rule *model.RecurrenceRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("update recurrence rule %d: %w", rule.ID, err)
	}
	return nil
}

func (r *RecurrenceRepository) FindByEvent(ctx context.Context, eventID uint) (*model.RecurrenceRule, error) {
	var rule model.RecurrenceRule
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&rule).Error
	switch {
	case err == nil:
		return &rule, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find recurrence rule for event %d: %w", eventID, err)
	}
}

// ListDueBy returns the rules whose cached next occurrence is at or before
// the given date, oldest first.
func (r *RecurrenceRepository) ListDueBy(ctx context.Context, due time.Time) ([]model.RecurrenceRule, error) {
	var rules []model.RecurrenceRule
	if err := r.db.WithContext(ctx).
		Where("next_occurrence IS NOT NULL AND next_occurrence <= ?", due).
		Order("next_occurrence ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list due recurrence rules: %w", err)
	}
	return rules, nil
}

// AdvanceOccurrence updates just the occurrence cache and generated count:
// the consumed occurrence becomes the last one and next points at the newly
// generated date (nil when the series ended).
func (r *RecurrenceRepository) AdvanceOccurrence(ctx context.Context, id uint, last, next *time.Time, generated int) error {
	if err := r.db.WithContext(ctx).Model(&model.RecurrenceRule{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_occurrence": last,
			"next_occurrence": next,
			"generated_count": generated,
		}).Error; err != nil {
		return fmt.Errorf("advance recurrence rule %d: %w", id, err)
	}
	return nil
}

func (r *RecurrenceRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.RecurrenceRule{}, id).Error; err != nil {
		return fmt.Errorf("delete recurrence rule %d: %w", id, err)
	}
	return nil
}

func (r *RecurrenceRepository) DeleteByEvent(ctx context.Context, eventID uint) error {
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).
		Delete(&model.RecurrenceRule{}).Error; err != nil {
		return fmt.Errorf("delete recurrence rule for event %d: %w", eventID, err)
	}
	return nil
}
