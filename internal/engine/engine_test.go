package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenithlist/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestCompletePointsByPriority(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		priority models.Priority
		want     int
	}{
		{models.PriorityHigh, 25},
		{models.PriorityMedium, 15},
		{models.PriorityLow, 10},
		{models.Priority("Urgent"), 10}, // unknown priority falls back to the low award
		{models.Priority(""), 10},
	}
	for _, tc := range cases {
		profile := models.Profile{UserID: "u1", Points: 40}
		res, err := Complete(profile, models.Task{Title: "t", Priority: tc.priority}, now)
		require.NoError(t, err)
		assert.Equal(t, 40+tc.want, res.Profile.Points, "priority %q", tc.priority)
		assert.GreaterOrEqual(t, res.Profile.Points, profile.Points)
	}
}

func TestCompleteAlreadyCompleted(t *testing.T) {
	now := time.Now()
	_, err := Complete(models.Profile{}, models.Task{IsCompleted: true}, now)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCompletePatch(t *testing.T) {
	now := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	res, err := Complete(models.Profile{}, models.Task{Title: "t"}, now)
	require.NoError(t, err)
	assert.True(t, res.Patch.IsCompleted)
	assert.Equal(t, now, res.Patch.CompletedAt)
	require.NotNil(t, res.Profile.LastCompletionDate)
	assert.Equal(t, now, *res.Profile.LastCompletionDate)
}

func TestStreakFirstCompletion(t *testing.T) {
	res, err := Complete(models.Profile{Streak: 0}, models.Task{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.Streak)
}

func TestStreakSameDayDoesNotIncrement(t *testing.T) {
	now := time.Date(2024, time.March, 5, 18, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)
	profile := models.Profile{Streak: 4, LastCompletionDate: &earlier}

	res, err := Complete(profile, models.Task{}, now)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Profile.Streak)

	// Completing yet another task with the updated profile still holds.
	res2, err := Complete(res.Profile, models.Task{}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, res2.Profile.Streak)
}

func TestStreakConsecutiveDay(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 30, 0, 0, time.UTC)
	yesterday := time.Date(2024, time.March, 4, 23, 50, 0, 0, time.UTC)
	profile := models.Profile{Streak: 4, LastCompletionDate: &yesterday}

	res, err := Complete(profile, models.Task{}, now)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Profile.Streak)
}

func TestStreakResetAfterGap(t *testing.T) {
	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	threeDaysAgo := time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC)
	profile := models.Profile{Streak: 9, LastCompletionDate: &threeDaysAgo}

	res, err := Complete(profile, models.Task{}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.Streak)
}

func TestStreakNeverZero(t *testing.T) {
	// A corrupt stored streak of 0 with a same-day completion still yields 1.
	earlier := time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC)
	now := earlier.Add(2 * time.Hour)
	res, err := Complete(models.Profile{Streak: 0, LastCompletionDate: &earlier}, models.Task{}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Profile.Streak)
}

func TestSpawnDailyInterval(t *testing.T) {
	task := models.Task{
		Title:       "water plants",
		Priority:    models.PriorityLow,
		DueDate:     datePtr(2024, time.January, 10),
		Recurrence:  &models.Recurrence{Frequency: models.FrequencyDaily, Interval: 2},
		Subtasks:    []models.Subtask{{ID: "s1", Title: "front room", IsCompleted: true}},
		Tags:        []string{"home"},
		Description: "all of them",
	}
	res, err := Complete(models.Profile{}, task, time.Now())
	require.NoError(t, err)
	require.NotNil(t, res.Spawned)

	sp := res.Spawned
	assert.Empty(t, sp.ID)
	assert.Equal(t, date(2024, time.January, 12), *sp.DueDate)
	assert.False(t, sp.IsCompleted)
	assert.Nil(t, sp.CompletedAt)
	assert.Equal(t, task.Title, sp.Title)
	assert.Equal(t, task.Description, sp.Description)
	assert.Equal(t, task.Priority, sp.Priority)
	assert.Equal(t, task.Subtasks, sp.Subtasks)
	assert.Equal(t, task.Tags, sp.Tags)
	assert.Equal(t, task.Recurrence, sp.Recurrence)
}

func TestSpawnWeekly(t *testing.T) {
	task := models.Task{
		DueDate:    datePtr(2024, time.January, 10),
		Recurrence: &models.Recurrence{Frequency: models.FrequencyWeekly, Interval: 1},
	}
	res, err := Complete(models.Profile{}, task, time.Now())
	require.NoError(t, err)
	require.NotNil(t, res.Spawned)
	assert.Equal(t, date(2024, time.January, 17), *res.Spawned.DueDate)
}

func TestSpawnMonthlyClampsToEndOfMonth(t *testing.T) {
	cases := []struct {
		due      time.Time
		interval int
		want     time.Time
	}{
		{date(2024, time.January, 31), 1, date(2024, time.February, 29)}, // leap year
		{date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{date(2024, time.November, 30), 3, date(2025, time.February, 28)}, // wraps the year
		{date(2024, time.April, 15), 1, date(2024, time.May, 15)},
	}
	for _, tc := range cases {
		due := tc.due
		task := models.Task{
			DueDate:    &due,
			Recurrence: &models.Recurrence{Frequency: models.FrequencyMonthly, Interval: tc.interval},
		}
		res, err := Complete(models.Profile{}, task, time.Now())
		require.NoError(t, err)
		require.NotNil(t, res.Spawned, "due %v", tc.due)
		assert.Equal(t, tc.want, *res.Spawned.DueDate, "due %v + %d months", tc.due, tc.interval)
	}
}

func TestSpawnIntervalFloorsAtOne(t *testing.T) {
	task := models.Task{
		DueDate:    datePtr(2024, time.January, 10),
		Recurrence: &models.Recurrence{Frequency: models.FrequencyDaily, Interval: 0},
	}
	res, err := Complete(models.Profile{}, task, time.Now())
	require.NoError(t, err)
	require.NotNil(t, res.Spawned)
	assert.Equal(t, date(2024, time.January, 11), *res.Spawned.DueDate)
}

func TestNoSpawn(t *testing.T) {
	cases := map[string]models.Task{
		"no recurrence":     {DueDate: datePtr(2024, time.January, 10)},
		"frequency none":    {DueDate: datePtr(2024, time.January, 10), Recurrence: &models.Recurrence{Frequency: models.FrequencyNone, Interval: 1}},
		"unknown frequency": {DueDate: datePtr(2024, time.January, 10), Recurrence: &models.Recurrence{Frequency: "fortnightly", Interval: 1}},
		"no due date":       {Recurrence: &models.Recurrence{Frequency: models.FrequencyDaily, Interval: 1}},
	}
	for name, task := range cases {
		res, err := Complete(models.Profile{}, task, time.Now())
		require.NoError(t, err, name)
		assert.Nil(t, res.Spawned, name)
	}
}

func TestCompleteIsDeterministic(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	last := time.Date(2024, time.May, 31, 22, 0, 0, 0, time.UTC)
	profile := models.Profile{Points: 95, Streak: 2, LastCompletionDate: &last}
	task := models.Task{
		Priority:   models.PriorityHigh,
		DueDate:    datePtr(2024, time.June, 1),
		Recurrence: &models.Recurrence{Frequency: models.FrequencyWeekly, Interval: 2},
	}

	first, err := Complete(profile, task, now)
	require.NoError(t, err)
	second, err := Complete(profile, task, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 120, first.Profile.Points)
	assert.Equal(t, 3, first.Profile.Streak)
}
