package service

import (
	"context"

	"github.com/cirodil/tenhens/internal/domain"
)

// Settings returns a user's reminder settings (defaults when unset).
func (s *Service) Settings(ctx context.Context, userID int64) (*domain.ReminderSettings, error) {
	return s.repo.GetSettings(ctx, userID)
}

// SetRemindersEnabled toggles daily reminders for a user.
func (s *Service) SetRemindersEnabled(ctx context.Context, userID int64, enabled bool) error {
	return s.repo.UpdateSettings(ctx, userID, domain.SettingsUpdate{Enabled: &enabled})
}

// SetReminderTime stores a new "HH:MM" reminder time after validating it.
func (s *Service) SetReminderTime(ctx context.Context, userID int64, clock string) error {
	if _, _, err := domain.ParseClock(clock); err != nil {
		return err
	}
	return s.repo.UpdateSettings(ctx, userID, domain.SettingsUpdate{ReminderTime: &clock})
}

// SetTimezone parses a "±HH:MM" offset once, at write time, and stores the
// validated minute offset.
func (s *Service) SetTimezone(ctx context.Context, userID int64, offset string) error {
	min, err := domain.ParseOffset(offset)
	if err != nil {
		return err
	}
	return s.repo.UpdateSettings(ctx, userID, domain.SettingsUpdate{OffsetMin: &min})
}
