package store

import (
	"context"
	"errors"

	"github.com/cirodil/tenhens/internal/domain"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// UserActivity is one row of the admin user listing.
type UserActivity struct {
	UserID  int64
	Records int
}

// GeneralStats aggregates usage across all users.
type GeneralStats struct {
	TotalUsers   int
	TotalRecords int
	TotalEggs    int
	ActiveUsers  int // users with a record in the last 7 days
}

// DashboardUser is a web-dashboard account linked to a telegram identity.
type DashboardUser struct {
	ID                 int64
	Username           string
	TelegramID         int64
	PasswordHash       string
	SecurityQuestion   string
	SecurityAnswerHash string
}

// Repo defines storage operations for egg records, reminder settings and
// dashboard accounts.
type Repo interface {
	// Records.
	AddRecord(ctx context.Context, userID int64, date string, count int, notes string) (int64, error)
	GetRecord(ctx context.Context, id int64) (*domain.EggRecord, error)
	UpdateRecord(ctx context.Context, id int64, upd domain.RecordUpdate) error
	DeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context, userID int64, from, to string) ([]domain.EggRecord, error)
	ListAllRecords(ctx context.Context, userID int64) ([]domain.EggRecord, error)
	DailyTotals(ctx context.Context, userID int64) ([]domain.DayTotal, error)
	ListNotes(ctx context.Context, userID int64, from, to string) ([]string, error)
	HasRecordOnDate(ctx context.Context, userID int64, date string) (bool, error)

	// Reminder settings.
	GetSettings(ctx context.Context, userID int64) (*domain.ReminderSettings, error)
	UpdateSettings(ctx context.Context, userID int64, upd domain.SettingsUpdate) error
	ListReminderEnabled(ctx context.Context) ([]domain.ReminderSettings, error)

	// Admin.
	GeneralStats(ctx context.Context) (*GeneralStats, error)
	ListUserActivity(ctx context.Context) ([]UserActivity, error)
	ListKnownUserIDs(ctx context.Context) ([]int64, error)

	// Dashboard accounts.
	CreateDashboardUser(ctx context.Context, u *DashboardUser) error
	GetDashboardUser(ctx context.Context, username string) (*DashboardUser, error)
	SetDashboardPassword(ctx context.Context, username, passwordHash string) error

	Close() error
}
