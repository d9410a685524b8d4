// Package scheduler implements the daily reminder loop: a fixed-interval
// poll that pings users who have not logged an egg count today.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/domain"
)

// Sender is the minimal interface the scheduler needs to deliver a text
// message. telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Store is the read-only slice of the repository the scheduler consumes.
type Store interface {
	ListReminderEnabled(ctx context.Context) ([]domain.ReminderSettings, error)
	HasRecordOnDate(ctx context.Context, userID int64, date string) (bool, error)
}

const reminderText = "⏰ Напоминание! Сегодня вы ещё не вносили данные о яйцах.\n" +
	"Используйте команду /add или просто отправьте число."

// Scheduler periodically polls reminder settings and dispatches due
// notifications. The check is an exact HH:MM match against the user's local
// clock at tick granularity: if the process misses the matching minute, the
// notification for that day is skipped, never caught up.
type Scheduler struct {
	store    Store
	log      *zap.Logger
	sender   Sender
	interval time.Duration
	now      func() time.Time

	wg sync.WaitGroup // in-flight dispatches
}

// New creates a Scheduler polling once a minute, matching the tick interval
// to the one-minute firing window.
func New(store Store, log *zap.Logger, sender Sender) *Scheduler {
	return &Scheduler{
		store:    store,
		log:      log,
		sender:   sender,
		interval: time.Minute,
		now:      time.Now,
	}
}

// Run starts the loop until ctx is canceled, then waits for in-flight
// dispatches to finish. Ticks never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			s.wg.Wait()
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one scheduling cycle. Per-user failures are logged and never
// abort the remaining users; a failed settings load only skips this tick.
func (s *Scheduler) tick(ctx context.Context) {
	nowUTC := s.now().UTC()
	today := domain.Today(nowUTC)

	users, err := s.store.ListReminderEnabled(ctx)
	if err != nil {
		s.log.Error("load reminder settings failed", zap.Error(err))
		return
	}

	for _, u := range users {
		if err := s.checkUser(ctx, u, nowUTC, today); err != nil {
			s.log.Error("reminder check failed",
				zap.Error(err),
				zap.Int64("userID", u.UserID),
			)
		}
	}
}

// checkUser dispatches a reminder if the user has no record for today (UTC)
// and their local wall clock matches the configured time exactly. The UTC
// date decides which records count as "today"; the user's offset decides
// only the firing instant.
func (s *Scheduler) checkUser(ctx context.Context, u domain.ReminderSettings, nowUTC time.Time, today string) error {
	logged, err := s.store.HasRecordOnDate(ctx, u.UserID, today)
	if err != nil {
		return fmt.Errorf("has record: %w", err)
	}
	if logged {
		return nil
	}

	wantH, wantM, err := domain.ParseClock(u.ReminderTime)
	if err != nil {
		// Normalize should have caught this; skip rather than fail the tick.
		return fmt.Errorf("reminder time %q: %w", u.ReminderTime, err)
	}
	gotH, gotM := u.LocalClock(nowUTC)
	if gotH != wantH || gotM != wantM {
		return nil
	}

	// Dispatch in its own goroutine so one slow send never delays the rest
	// of the tick. Failures are logged and isolated to this user.
	s.wg.Add(1)
	go func(userID int64) {
		defer s.wg.Done()
		if err := s.sender.SendMessage(userID, reminderText); err != nil {
			s.log.Error("reminder dispatch failed",
				zap.Error(err),
				zap.Int64("userID", userID),
			)
		}
	}(u.UserID)
	return nil
}
