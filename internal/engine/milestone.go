package engine

import (
	"fmt"
	"time"

	"countdown-tracker/internal/model"
)

// CustomEvaluator decides achievement for milestones of type custom. The
// built-in evaluator never achieves them on its own.
type CustomEvaluator interface {
	Achieved(ev model.Event, m model.Milestone, ref time.Time) bool
}

// MilestoneEvaluator decides which not-yet-achieved milestones become
// achieved at a reference instant. The zero value evaluates percentage and
// time-based milestones and leaves custom milestones alone.
type MilestoneEvaluator struct {
	Custom CustomEvaluator
}

// Evaluate returns the milestones from unachieved that become achieved at
// ref, each returned with IsAchieved set and AchievedAt stamped to ref.
// Callers persist the returned records; passing only unachieved milestones
// in makes repeated evaluation at later instants naturally idempotent.
func (e MilestoneEvaluator) Evaluate(ev model.Event, unachieved []model.Milestone, ref time.Time) []model.Milestone {
	var achieved []model.Milestone
	for _, m := range unachieved {
		if m.IsAchieved {
			continue
		}
		if !e.achieved(ev, m, ref) {
			continue
		}
		at := ref
		m.IsAchieved = true
		m.AchievedAt = &at
		achieved = append(achieved, m)
	}
	return achieved
}

func (e MilestoneEvaluator) achieved(ev model.Event, m model.Milestone, ref time.Time) bool {
	switch model.ParseMilestoneType(string(m.Type)) {
	case model.MilestonePercentage:
		return elapsedPercent(ev, ref) >= m.Threshold
	case model.MilestoneTimeBased:
		left := ev.TargetAt.Sub(ref)
		if left < 0 {
			// Past target: expiry does not retroactively fire
			// days-remaining milestones.
			return false
		}
		return float64(int(left/(24*time.Hour))) <= m.Threshold
	default:
		if e.Custom != nil {
			return e.Custom.Achieved(ev, m, ref)
		}
		return false
	}
}

// elapsedPercent is how far through its life the event is at ref, in
// [0, +inf). A zero-length span counts as fully elapsed.
func elapsedPercent(ev model.Event, ref time.Time) float64 {
	total := ev.TargetAt.Sub(ev.CreatedAt)
	if total <= 0 {
		return 100
	}
	elapsed := ref.Sub(ev.CreatedAt)
	return 100 * float64(elapsed) / float64(total)
}

// Template thresholds expanded for every new event. Percentages mark how far
// through the countdown the event is; day counts mark how close the target
// has come.
var (
	templatePercents = []float64{25, 50, 75, 90}
	templateDays     = []float64{7, 1}
)

// DefaultMilestones expands the built-in template catalogue into concrete
// milestone records for a new event.
func DefaultMilestones(ev model.Event, createdAt time.Time) []model.Milestone {
	var out []model.Milestone
	for _, pct := range templatePercents {
		out = append(out, model.Milestone{
			ID:            milestoneID(ev.ID, model.MilestonePercentage, pct, len(out)),
			EventID:       ev.ID,
			Type:          model.MilestonePercentage,
			Threshold:     pct,
			Title:         fmt.Sprintf("%.0f%% of the wait is behind you", pct),
			Message:       fmt.Sprintf("%q is %.0f%% of the way there.", ev.Title, pct),
			NotifyEnabled: true,
			Effect:        model.EffectSparkles,
			CreatedAt:     createdAt,
		})
	}
	for _, days := range templateDays {
		title := fmt.Sprintf("%.0f days to go", days)
		effect := model.EffectConfetti
		if days <= 1 {
			title = "Final day"
			effect = model.EffectFirework
		}
		out = append(out, model.Milestone{
			ID:            milestoneID(ev.ID, model.MilestoneTimeBased, days, len(out)),
			EventID:       ev.ID,
			Type:          model.MilestoneTimeBased,
			Threshold:     days,
			Title:         title,
			Message:       fmt.Sprintf("%q is almost here.", ev.Title),
			NotifyEnabled: true,
			Effect:        effect,
			CreatedAt:     createdAt,
		})
	}
	return out
}

// InstantiateMilestones combines the template set with caller-supplied
// custom milestones. Custom records keep their fields but are rebound to the
// event and given a fresh id when they arrive without one.
func InstantiateMilestones(ev model.Event, createdAt time.Time, custom []model.Milestone) []model.Milestone {
	out := DefaultMilestones(ev, createdAt)
	for i, m := range custom {
		m.EventID = ev.ID
		if m.ID == "" {
			m.ID = milestoneID(ev.ID, m.Type, m.Threshold, len(out)+i)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = createdAt
		}
		out = append(out, m)
	}
	return out
}

func milestoneID(eventID uint, kind model.MilestoneType, threshold float64, n int) string {
	return fmt.Sprintf("ms-%d-%s-%g-%d", eventID, kind, threshold, n)
}
