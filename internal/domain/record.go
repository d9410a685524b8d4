package domain

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date format used everywhere in the store ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidCount = errors.New("count must be a non-negative integer")
)

// EggRecord is one logged entry: eggs counted by a user on a date, with an
// optional free-text note. A user may have several records on the same date;
// the daily total is the sum of their counts.
type EggRecord struct {
	ID     int64
	UserID int64
	Date   string // YYYY-MM-DD
	Count  int
	Notes  string
}

// RecordUpdate carries a partial-field edit. Nil fields are left untouched.
type RecordUpdate struct {
	Count *int
	Date  *string
	Notes *string
}

// Empty reports whether the update changes nothing.
func (u RecordUpdate) Empty() bool {
	return u.Count == nil && u.Date == nil && u.Notes == nil
}

// DayTotal is a per-day aggregate: the sum of counts over all of a user's
// records sharing a date.
type DayTotal struct {
	Date  string // YYYY-MM-DD
	Total int
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns the current UTC calendar date. UTC is the system's notion of
// "today" for record matching; user timezones only shift reminder firing.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
