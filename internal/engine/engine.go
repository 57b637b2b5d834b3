// Package engine computes the state transition triggered by completing a
// task: points, streak, and the next occurrence of a recurring task. It is
// pure computation; persistence and atomicity belong to the repository,
// which invokes it from inside a transaction.
package engine

import (
	"errors"
	"time"

	"zenithlist/internal/models"
)

// ErrAlreadyCompleted is returned when the task is already marked done.
// Completing twice must not award points twice.
var ErrAlreadyCompleted = errors.New("task already completed")

const (
	pointsLow    = 10
	pointsMedium = 15
	pointsHigh   = 25
)

// TaskPatch is the field set applied to the completed task.
type TaskPatch struct {
	IsCompleted bool
	CompletedAt time.Time
}

// Result holds the three artifacts of a completion. Spawned is the next
// occurrence of a recurring task, carrying no ID (the store assigns one on
// insert); it is nil when the task does not recur.
type Result struct {
	Profile models.Profile
	Patch   TaskPatch
	Spawned *models.Task
}

// Complete computes the transition for marking task done at now. Identical
// inputs yield identical outputs; now is injected so the day-boundary logic
// is testable.
func Complete(profile models.Profile, task models.Task, now time.Time) (Result, error) {
	if task.IsCompleted {
		return Result{}, ErrAlreadyCompleted
	}

	next := profile
	next.Points += pointsFor(task.Priority)
	next.Streak = nextStreak(profile, now)
	completedAt := now
	next.LastCompletionDate = &completedAt

	return Result{
		Profile: next,
		Patch:   TaskPatch{IsCompleted: true, CompletedAt: now},
		Spawned: spawnNext(task),
	}, nil
}

func pointsFor(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return pointsHigh
	case models.PriorityMedium:
		return pointsMedium
	default:
		return pointsLow
	}
}

// nextStreak counts consecutive calendar days with at least one completion.
// Days are bounded at midnight in now's location.
func nextStreak(profile models.Profile, now time.Time) int {
	if profile.LastCompletionDate == nil {
		return 1
	}
	today := StartOfDay(now)
	lastDay := StartOfDay(profile.LastCompletionDate.In(now.Location()))
	switch {
	case lastDay.Equal(today):
		// A second completion on the same day keeps the streak as is.
		if profile.Streak < 1 {
			return 1
		}
		return profile.Streak
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return profile.Streak + 1
	default:
		return 1
	}
}

func spawnNext(task models.Task) *models.Task {
	rec := task.Recurrence
	if rec == nil || rec.Frequency == models.FrequencyNone || task.DueDate == nil {
		return nil
	}
	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}
	due := *task.DueDate
	var nextDue time.Time
	switch rec.Frequency {
	case models.FrequencyDaily:
		nextDue = due.AddDate(0, 0, interval)
	case models.FrequencyWeekly:
		nextDue = due.AddDate(0, 0, 7*interval)
	case models.FrequencyMonthly:
		nextDue = addMonthsClamped(due, interval)
	default:
		// Unrecognized frequency is cosmetic data; skip the spawn
		// instead of failing the whole completion.
		return nil
	}

	next := task
	next.ID = ""
	next.DueDate = &nextDue
	next.IsCompleted = false
	next.CompletedAt = nil
	next.Subtasks = append([]models.Subtask(nil), task.Subtasks...)
	next.Tags = append([]string(nil), task.Tags...)
	return &next
}

// addMonthsClamped advances t by whole calendar months, clamping the day to
// the last valid day of the target month: Jan 31 + 1 month is Feb 29 in a
// leap year, Feb 28 otherwise.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := m + time.Month(months)
	if last := daysIn(y, target, t.Location()); d > last {
		d = last
	}
	return time.Date(y, target, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay is midnight of t's calendar day in t's location. Streaks and
// the agenda views all bound days the same way.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
