package report

import (
	"tally/internal/core"
)

// GoalStatus tells whether a goal's deadline still lies ahead.
type GoalStatus string

const (
	GoalOnTrack GoalStatus = "on_track"
	GoalOverdue GoalStatus = "overdue"
)

// GoalProjection is the derived view of one goal against today.
// Remaining is stored unclamped so callers can detect overshoot;
// display layers clamp it at zero.
type GoalProjection struct {
	GoalID        int64         `json:"goal_id"`
	Name          string        `json:"name"`
	Priority      core.Priority `json:"priority"`
	Remaining     core.Money    `json:"remaining"`
	ProgressPct   float64       `json:"progress_pct"`
	DaysRemaining int           `json:"days_remaining"`
	MonthlyNeeded core.Money    `json:"monthly_needed"`
	Status        GoalStatus    `json:"status"`
}

// goalProgress returns the clamped fraction complete in [0, 1]. A
// non-positive target counts as fully complete; targets are validated
// positive at creation, so this guard only matters if that invariant is
// ever violated.
func goalProgress(g core.Goal) float64 {
	if !g.Target.IsPositive() {
		return 1
	}
	progress := g.Current.Ratio(g.Target)
	if progress > 1 {
		return 1
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// ProjectGoal computes remaining amount, progress, days left and the
// monthly saving pace needed to land the goal on time. The pace divisor
// floors at one month so near-term deadlines don't produce runaway
// figures.
func ProjectGoal(g core.Goal, today core.Date) GoalProjection {
	remaining := g.Target.Sub(g.Current)
	daysRemaining := g.Deadline.DaysSince(today)

	projection := GoalProjection{
		GoalID:        g.ID,
		Name:          g.Name,
		Priority:      g.Priority,
		Remaining:     remaining,
		ProgressPct:   goalProgress(g) * 100,
		DaysRemaining: daysRemaining,
		MonthlyNeeded: core.Zero(),
		Status:        GoalOverdue,
	}

	if daysRemaining > 0 {
		projection.Status = GoalOnTrack
		months := float64(daysRemaining) / 30
		if months < 1 {
			months = 1
		}
		projection.MonthlyNeeded = remaining.MulFloat(1 / months)
	}
	return projection
}

// ProjectGoals projects every goal, ordered most urgent priority first.
func ProjectGoals(goals []core.Goal, today core.Date) []GoalProjection {
	sorted := core.SortGoals(goals)
	out := make([]GoalProjection, len(sorted))
	for i, g := range sorted {
		out[i] = ProjectGoal(g, today)
	}
	return out
}
