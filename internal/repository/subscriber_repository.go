package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"countdown-tracker/internal/model"
)

// SubscriberRepository stores Telegram chats that receive notifications.
type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// UpsertFromTelegram finds or creates a subscriber by chat id and refreshes
// the profile fields.
func (r *SubscriberRepository) UpsertFromTelegram(ctx context.Context, chatID int64, firstName, username string) (*model.Subscriber, error) {
	var sub model.Subscriber
	db := r.db.WithContext(ctx)
	err := db.Where("chat_id = ?", chatID).First(&sub).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": firstName,
			"username":   username,
		}
		if err := db.Model(&sub).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update subscriber: %w", err)
		}
		return &sub, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = model.Subscriber{
			ChatID:    chatID,
			FirstName: firstName,
			Username:  username,
		}
		if err := db.Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}
		return &sub, nil
	default:
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	if err := r.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}
