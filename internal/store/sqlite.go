package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/cirodil/tenhens/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// --- Records ---

// AddRecord inserts a new egg record and returns its assigned id.
func (r *SQLiteRepo) AddRecord(ctx context.Context, userID int64, date string, count int, notes string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO eggs (user_id, date, count, notes)
		VALUES (?, ?, ?, ?)`,
		userID, date, count, notes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetRecord returns a record by id or ErrNotFound.
func (r *SQLiteRepo) GetRecord(ctx context.Context, id int64) (*domain.EggRecord, error) {
	rec := &domain.EggRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, count, notes
		FROM eggs
		WHERE id = ?`,
		id,
	).Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Count, &rec.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord applies a partial-field update. Updating an absent id or an
// empty update is a no-op.
func (r *SQLiteRepo) UpdateRecord(ctx context.Context, id int64, upd domain.RecordUpdate) error {
	var (
		sets   []string
		params []any
	)
	if upd.Count != nil {
		sets = append(sets, "count = ?")
		params = append(params, *upd.Count)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		params = append(params, *upd.Date)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		params = append(params, *upd.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	params = append(params, id)
	_, err := r.db.ExecContext(ctx,
		"UPDATE eggs SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		params...,
	)
	return err
}

// DeleteRecord removes a record by id. Deleting an absent id is a no-op.
func (r *SQLiteRepo) DeleteRecord(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM eggs WHERE id = ?`, id)
	return err
}

// ListRecords returns a user's records with date in [from, to], chronological.
func (r *SQLiteRepo) ListRecords(ctx context.Context, userID int64, from, to string) ([]domain.EggRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, count, notes
		FROM eggs
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, id ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListAllRecords returns every record of a user, newest first.
func (r *SQLiteRepo) ListAllRecords(ctx context.Context, userID int64) ([]domain.EggRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, count, notes
		FROM eggs
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.EggRecord, error) {
	var res []domain.EggRecord
	for rows.Next() {
		var rec domain.EggRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Count, &rec.Notes); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// DailyTotals returns per-day summed counts over the user's entire history,
// ordered chronologically. The analytics engine needs the full history to
// build its previous-period comparison.
func (r *SQLiteRepo) DailyTotals(ctx context.Context, userID int64) ([]domain.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, SUM(count)
		FROM eggs
		WHERE user_id = ?
		GROUP BY date
		ORDER BY date ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.DayTotal
	for rows.Next() {
		var d domain.DayTotal
		if err := rows.Scan(&d.Date, &d.Total); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// ListNotes returns non-empty notes of records with date in [from, to].
func (r *SQLiteRepo) ListNotes(ctx context.Context, userID int64, from, to string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT notes
		FROM eggs
		WHERE user_id = ? AND date >= ? AND date <= ? AND notes != ''
		ORDER BY date ASC, id ASC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// HasRecordOnDate reports whether the user logged anything on the given date.
func (r *SQLiteRepo) HasRecordOnDate(ctx context.Context, userID int64, date string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM eggs WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&n)
	return n > 0, err
}

// --- Reminder settings ---

// GetSettings returns a user's reminder settings, or the defaults when no
// row exists yet. Unreadable stored values are normalized to defaults.
func (r *SQLiteRepo) GetSettings(ctx context.Context, userID int64) (*domain.ReminderSettings, error) {
	s := domain.ReminderSettings{UserID: userID}
	var enabled int
	err := r.db.QueryRowContext(ctx, `
		SELECT reminders_enabled, reminder_time, tz_offset_min
		FROM user_settings
		WHERE user_id = ?`,
		userID,
	).Scan(&enabled, &s.ReminderTime, &s.OffsetMin)
	if errors.Is(err, sql.ErrNoRows) {
		def := domain.DefaultSettings(userID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	s.Enabled = enabled != 0
	s.Normalize()
	return &s, nil
}

// UpdateSettings applies a partial settings mutation, lazily creating the
// row with defaults first if absent.
func (r *SQLiteRepo) UpdateSettings(ctx context.Context, userID int64, upd domain.SettingsUpdate) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id) VALUES (?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID,
	); err != nil {
		return err
	}

	var (
		sets   []string
		params []any
	)
	if upd.Enabled != nil {
		sets = append(sets, "reminders_enabled = ?")
		params = append(params, boolToInt(*upd.Enabled))
	}
	if upd.ReminderTime != nil {
		sets = append(sets, "reminder_time = ?")
		params = append(params, *upd.ReminderTime)
	}
	if upd.OffsetMin != nil {
		sets = append(sets, "tz_offset_min = ?")
		params = append(params, *upd.OffsetMin)
	}
	if len(sets) == 0 {
		return nil
	}
	params = append(params, userID)
	_, err := r.db.ExecContext(ctx,
		"UPDATE user_settings SET "+strings.Join(sets, ", ")+" WHERE user_id = ?",
		params...,
	)
	return err
}

// ListReminderEnabled returns settings of every user with reminders on.
func (r *SQLiteRepo) ListReminderEnabled(ctx context.Context) ([]domain.ReminderSettings, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, reminder_time, tz_offset_min
		FROM user_settings
		WHERE reminders_enabled = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ReminderSettings
	for rows.Next() {
		s := domain.ReminderSettings{Enabled: true}
		if err := rows.Scan(&s.UserID, &s.ReminderTime, &s.OffsetMin); err != nil {
			return nil, err
		}
		s.Normalize()
		res = append(res, s)
	}
	return res, rows.Err()
}

// --- Admin ---

// GeneralStats aggregates usage across all users.
func (r *SQLiteRepo) GeneralStats(ctx context.Context) (*GeneralStats, error) {
	var st GeneralStats
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id), COUNT(*), COALESCE(SUM(count), 0) FROM eggs`,
	).Scan(&st.TotalUsers, &st.TotalRecords, &st.TotalEggs); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM eggs WHERE date >= date('now', '-7 days')`,
	).Scan(&st.ActiveUsers); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListUserActivity returns users ordered by record count, busiest first.
func (r *SQLiteRepo) ListUserActivity(ctx context.Context) ([]UserActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) AS records
		FROM eggs
		GROUP BY user_id
		ORDER BY records DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []UserActivity
	for rows.Next() {
		var a UserActivity
		if err := rows.Scan(&a.UserID, &a.Records); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// ListKnownUserIDs returns every user id that ever logged a record.
func (r *SQLiteRepo) ListKnownUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM eggs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Dashboard accounts ---

// CreateDashboardUser inserts a new dashboard account.
func (r *SQLiteRepo) CreateDashboardUser(ctx context.Context, u *DashboardUser) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO dashboard_users
			(username, telegram_id, password_hash, security_question, security_answer_hash)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.TelegramID, u.PasswordHash, u.SecurityQuestion, u.SecurityAnswerHash,
	)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

// GetDashboardUser returns an account by username or ErrNotFound.
func (r *SQLiteRepo) GetDashboardUser(ctx context.Context, username string) (*DashboardUser, error) {
	u := &DashboardUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, telegram_id, password_hash, security_question, security_answer_hash
		FROM dashboard_users
		WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.TelegramID, &u.PasswordHash, &u.SecurityQuestion, &u.SecurityAnswerHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// SetDashboardPassword replaces the stored password hash.
func (r *SQLiteRepo) SetDashboardPassword(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE dashboard_users SET password_hash = ? WHERE username = ?`,
		passwordHash, username,
	)
	return err
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
