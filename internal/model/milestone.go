package model

import "time"

// MilestoneType says how a milestone's Threshold is interpreted.
type MilestoneType string

const (
	// MilestonePercentage fires when elapsed time reaches Threshold percent
	// of the event's total span.
	MilestonePercentage MilestoneType = "percentage"
	// MilestoneTimeBased fires when at most Threshold whole days remain.
	MilestoneTimeBased MilestoneType = "time"
	// MilestoneCustom is an extension point; it is never achieved by the
	// built-in evaluator.
	MilestoneCustom MilestoneType = "custom"
)

// ParseMilestoneType maps a stored string to a milestone type. Unknown values
// fall back to custom, which keeps them inert instead of misfiring.
func ParseMilestoneType(s string) MilestoneType {
	switch MilestoneType(s) {
	case MilestonePercentage, MilestoneTimeBased, MilestoneCustom:
		return MilestoneType(s)
	default:
		return MilestoneCustom
	}
}

// CelebrationEffect tags how an achievement should be presented.
type CelebrationEffect string

const (
	EffectNone     CelebrationEffect = "none"
	EffectConfetti CelebrationEffect = "confetti"
	EffectFirework CelebrationEffect = "fireworks"
	EffectSparkles CelebrationEffect = "sparkles"
)

// ParseCelebrationEffect falls back to none for unrecognized stored values.
func ParseCelebrationEffect(s string) CelebrationEffect {
	switch CelebrationEffect(s) {
	case EffectConfetti, EffectFirework, EffectSparkles:
		return CelebrationEffect(s)
	default:
		return EffectNone
	}
}

// Milestone is a one-shot threshold on an event's remaining time. Once
// achieved it stays achieved; AchievedAt is set exactly once.
type Milestone struct {
	ID            string `gorm:"primaryKey"`
	EventID       uint   `gorm:"index"`
	Type          MilestoneType
	Threshold     float64
	Title         string
	Message       string
	NotifyEnabled bool `gorm:"default:true"`
	IsAchieved    bool `gorm:"default:false;index"`
	AchievedAt    *time.Time
	Effect        CelebrationEffect `gorm:"default:none"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
