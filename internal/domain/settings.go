package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when a settings row is absent or holds unreadable values.
const (
	DefaultReminderTime = "20:00"
	DefaultOffsetMin    = 3 * 60 // UTC+03:00
)

var (
	ErrInvalidClock  = errors.New("invalid time, expected HH:MM")
	ErrInvalidOffset = errors.New("invalid offset, expected ±HH:MM")
)

// ReminderSettings is a user's daily-reminder configuration. The timezone
// offset is kept as signed minutes east of UTC, validated once when written,
// so reads never re-parse a loose "±HH:MM" string.
type ReminderSettings struct {
	UserID       int64
	Enabled      bool
	ReminderTime string // HH:MM, user-local
	OffsetMin    int    // minutes east of UTC
}

// SettingsUpdate carries a partial settings mutation. Nil fields keep their
// stored values; the row is created with defaults first if absent.
type SettingsUpdate struct {
	Enabled      *bool
	ReminderTime *string
	OffsetMin    *int
}

// DefaultSettings returns the settings a user has before any mutation.
func DefaultSettings(userID int64) ReminderSettings {
	return ReminderSettings{
		UserID:       userID,
		Enabled:      false,
		ReminderTime: DefaultReminderTime,
		OffsetMin:    DefaultOffsetMin,
	}
}

// Normalize replaces unreadable stored values with the documented defaults
// instead of failing the caller.
func (s *ReminderSettings) Normalize() {
	if _, _, err := ParseClock(s.ReminderTime); err != nil {
		s.ReminderTime = DefaultReminderTime
	}
	if s.OffsetMin < -14*60 || s.OffsetMin > 14*60 {
		s.OffsetMin = DefaultOffsetMin
	}
}

// LocalClock returns the user's wall clock (hour, minute) for the given UTC
// instant, shifted by the stored offset.
func (s ReminderSettings) LocalClock(nowUTC time.Time) (hour, minute int) {
	local := nowUTC.UTC().Add(time.Duration(s.OffsetMin) * time.Minute)
	return local.Hour(), local.Minute()
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidClock
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidClock
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidClock
	}
	return hour, minute, nil
}

// ParseOffset parses a "±HH:MM" UTC offset into signed minutes east of UTC.
// Offsets beyond ±14:00 are rejected.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, ErrInvalidOffset
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil || h > 14 {
		return 0, ErrInvalidOffset
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil || m > 59 {
		return 0, ErrInvalidOffset
	}
	total := h*60 + m
	if s[0] == '-' {
		total = -total
	}
	if total < -14*60 || total > 14*60 {
		return 0, ErrInvalidOffset
	}
	return total, nil
}

// FormatOffset renders signed minutes east of UTC back as "±HH:MM".
func FormatOffset(min int) string {
	sign := "+"
	if min < 0 {
		sign = "-"
		min = -min
	}
	return fmt.Sprintf("%s%02d:%02d", sign, min/60, min%60)
}
