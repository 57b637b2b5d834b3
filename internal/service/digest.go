package service

import (
	"context"
	"time"

	"zenithlist/internal/engine"
)

// DailyDigest logs, per user, how many open tasks fall due on now's calendar
// day. The mobile app schedules local notifications for this; the server
// stops at structured log events a delivery channel can consume.
func (s *Service) DailyDigest(ctx context.Context, now time.Time) error {
	from := engine.StartOfDay(now)
	to := from.AddDate(0, 0, 1)
	counts, err := s.Repo.CountDueByUser(ctx, from, to)
	if err != nil {
		return err
	}
	for _, c := range counts {
		s.Log.Info().
			Str("user_id", c.UserID).
			Str("email", c.Email).
			Int("due_today", c.Count).
			Msg("daily digest")
	}
	return nil
}

// DueSoonSweep logs every open task due within the next 24 hours.
func (s *Service) DueSoonSweep(ctx context.Context, now time.Time) error {
	reminders, err := s.Repo.ListDueBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return err
	}
	for _, rem := range reminders {
		s.Log.Info().
			Str("user_id", rem.UserID).
			Str("task_id", rem.TaskID).
			Str("title", rem.Title).
			Time("due_date", rem.DueDate).
			Msg("task due soon")
	}
	return nil
}
