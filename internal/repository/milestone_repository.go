package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"countdown-tracker/internal/model"
)

// MilestoneRepository manages milestones attached to events.
type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}
	return nil
}

func (r *MilestoneRepository) InsertBatch(ctx context.Context, ms []model.Milestone) error {
	if len(ms) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&ms).Error; err != nil {
		return fmt.Errorf("insert %d milestones: %w", len(ms), err)
	}
	return nil
}

func (r *MilestoneRepository) Update(ctx context.Context, m *model.Milestone) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("update milestone %s: %w", m.ID, err)
	}
	return nil
}

func (r *MilestoneRepository) FindByID(ctx context.Context, id string) (*model.Milestone, error) {
	var m model.Milestone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	switch {
	case err == nil:
		return &m, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find milestone %s: %w", id, err)
	}
}

func (r *MilestoneRepository) ListByEvent(ctx context.Context, eventID uint) ([]model.Milestone, error) {
	var ms []model.Milestone
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list milestones for event %d: %w", eventID, err)
	}
	return ms, nil
}

// ListUnachieved returns the milestones still eligible for evaluation.
func (r *MilestoneRepository) ListUnachieved(ctx context.Context, eventID uint) ([]model.Milestone, error) {
	var ms []model.Milestone
	if err := r.db.WithContext(ctx).Where("event_id = ? AND is_achieved = ?", eventID, false).
		Order("created_at ASC, id ASC").
		Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list unachieved milestones for event %d: %w", eventID, err)
	}
	return ms, nil
}

// MarkAchieved flips a milestone to achieved exactly once; a milestone that
// is already achieved keeps its original achieved-at instant. It reports
// whether this call performed the flip, so callers do not notify twice.
func (r *MilestoneRepository) MarkAchieved(ctx context.Context, id string, achievedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.Milestone{}).
		Where("id = ? AND is_achieved = ?", id, false).
		Updates(map[string]interface{}{
			"is_achieved": true,
			"achieved_at": achievedAt,
		})
	if tx.Error != nil {
		return false, fmt.Errorf("mark milestone %s achieved: %w", id, tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Milestone{}).Error; err != nil {
		return fmt.Errorf("delete milestone %s: %w", id, err)
	}
	return nil
}

// DeleteByEvent removes every milestone owned by the event; called when the
// event itself is deleted.
func (r *MilestoneRepository) DeleteByEvent(ctx context.Context, eventID uint) error {
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.Milestone{}).Error; err != nil {
		return fmt.Errorf("delete milestones for event %d: %w", eventID, err)
	}
	return nil
}
