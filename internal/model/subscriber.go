package model

import "time"

// Subscriber stores a Telegram chat that receives notifications.
type Subscriber struct {
	ID        uint  `gorm:"primaryKey"`
	ChatID    int64 `gorm:"uniqueIndex"`
	FirstName string
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
