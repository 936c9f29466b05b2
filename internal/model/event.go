package model

import "time"

// Event is a single tracked countdown: something happening at TargetAt.
type Event struct {
	ID              uint   `gorm:"primaryKey"`
	Title           string `gorm:"index"`
	Description     string
	Category        string `gorm:"index;default:General"`
	TargetAt        time.Time
	ReminderEnabled bool
	ReminderLead    *time.Duration
	Priority        int `gorm:"default:0"`
	Icon            string
	IsActive        bool `gorm:"default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CountdownTime is the remaining time until an event's target, decomposed
// into calendar-free units. It is derived on every evaluation and never
// persisted. TotalSeconds always equals
// Days*86400 + Hours*3600 + Minutes*60 + Seconds.
type CountdownTime struct {
	Expired      bool
	Days         int
	Hours        int
	Minutes      int
	Seconds      int
	TotalSeconds int64
}
