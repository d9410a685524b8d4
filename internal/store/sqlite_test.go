package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cirodil/tenhens/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	id, err := repo.AddRecord(ctx, 42, "2024-03-01", 12, "корм новый")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	rec, err := repo.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.UserID != 42 || rec.Date != "2024-03-01" || rec.Count != 12 || rec.Notes != "корм новый" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// Partial update: only the count changes.
	newCount := 15
	if err := repo.UpdateRecord(ctx, id, domain.RecordUpdate{Count: &newCount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ = repo.GetRecord(ctx, id)
	if rec.Count != 15 || rec.Notes != "корм новый" {
		t.Fatalf("partial update touched other fields: %+v", rec)
	}

	if err := repo.DeleteRecord(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetRecord(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	id, _ := repo.AddRecord(ctx, 1, "2024-03-01", 5, "")
	if err := repo.DeleteRecord(ctx, id+100); err != nil {
		t.Fatalf("deleting absent id must not error: %v", err)
	}
	if _, err := repo.GetRecord(ctx, id); err != nil {
		t.Fatalf("existing record must survive: %v", err)
	}
}

func TestUpdateAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	count := 3
	if err := repo.UpdateRecord(ctx, 999, domain.RecordUpdate{Count: &count}); err != nil {
		t.Fatalf("updating absent id must not error: %v", err)
	}
	if err := repo.UpdateRecord(ctx, 999, domain.RecordUpdate{}); err != nil {
		t.Fatalf("empty update must not error: %v", err)
	}
}

func TestDailyTotalsGroupsByDate(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	// Two records on the same date must sum; a foreign user's rows must not leak.
	_, _ = repo.AddRecord(ctx, 7, "2024-03-02", 4, "")
	_, _ = repo.AddRecord(ctx, 7, "2024-03-01", 10, "")
	_, _ = repo.AddRecord(ctx, 7, "2024-03-02", 6, "")
	_, _ = repo.AddRecord(ctx, 8, "2024-03-01", 99, "")

	totals, err := repo.DailyTotals(ctx, 7)
	if err != nil {
		t.Fatalf("daily totals: %v", err)
	}
	want := []domain.DayTotal{
		{Date: "2024-03-01", Total: 10},
		{Date: "2024-03-02", Total: 10},
	}
	if len(totals) != len(want) {
		t.Fatalf("got %+v, want %+v", totals, want)
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Errorf("totals[%d] = %+v, want %+v", i, totals[i], want[i])
		}
	}
}

func TestListNotesSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, _ = repo.AddRecord(ctx, 7, "2024-03-01", 4, "корм хороший")
	_, _ = repo.AddRecord(ctx, 7, "2024-03-02", 6, "")
	_, _ = repo.AddRecord(ctx, 7, "2024-03-03", 6, "вода")
	_, _ = repo.AddRecord(ctx, 7, "2024-03-09", 6, "вне диапазона")

	notes, err := repo.ListNotes(ctx, 7, "2024-03-01", "2024-03-05")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 2 || notes[0] != "корм хороший" || notes[1] != "вода" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func TestHasRecordOnDate(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, _ = repo.AddRecord(ctx, 5, "2024-03-01", 1, "")
	for _, tc := range []struct {
		userID int64
		date   string
		want   bool
	}{
		{5, "2024-03-01", true},
		{5, "2024-03-02", false},
		{6, "2024-03-01", false},
	} {
		got, err := repo.HasRecordOnDate(ctx, tc.userID, tc.date)
		if err != nil {
			t.Fatalf("has record: %v", err)
		}
		if got != tc.want {
			t.Errorf("HasRecordOnDate(%d, %s) = %v, want %v", tc.userID, tc.date, got, tc.want)
		}
	}
}

func TestSettingsDefaultsAndLazyCreate(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	s, err := repo.GetSettings(ctx, 10)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if s.Enabled || s.ReminderTime != domain.DefaultReminderTime || s.OffsetMin != domain.DefaultOffsetMin {
		t.Fatalf("expected defaults, got %+v", s)
	}

	// First mutation creates the row lazily and applies only the given field.
	enabled := true
	if err := repo.UpdateSettings(ctx, 10, domain.SettingsUpdate{Enabled: &enabled}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	s, _ = repo.GetSettings(ctx, 10)
	if !s.Enabled || s.ReminderTime != domain.DefaultReminderTime {
		t.Fatalf("lazy create lost defaults: %+v", s)
	}

	tm := "19:00"
	offset := -300
	if err := repo.UpdateSettings(ctx, 10, domain.SettingsUpdate{ReminderTime: &tm, OffsetMin: &offset}); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	s, _ = repo.GetSettings(ctx, 10)
	if !s.Enabled || s.ReminderTime != "19:00" || s.OffsetMin != -300 {
		t.Fatalf("partial update wrong: %+v", s)
	}

	list, err := repo.ListReminderEnabled(ctx)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(list) != 1 || list[0].UserID != 10 {
		t.Fatalf("unexpected enabled list: %+v", list)
	}
}

func TestGeneralStatsAndActivity(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	_, _ = repo.AddRecord(ctx, 1, "2020-01-01", 10, "")
	_, _ = repo.AddRecord(ctx, 1, "2020-01-02", 20, "")
	_, _ = repo.AddRecord(ctx, 2, "2020-01-01", 5, "")

	st, err := repo.GeneralStats(ctx)
	if err != nil {
		t.Fatalf("general stats: %v", err)
	}
	if st.TotalUsers != 2 || st.TotalRecords != 3 || st.TotalEggs != 35 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	act, err := repo.ListUserActivity(ctx)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(act) != 2 || act[0].UserID != 1 || act[0].Records != 2 {
		t.Fatalf("unexpected activity: %+v", act)
	}

	ids, err := repo.ListKnownUserIDs(ctx)
	if err != nil || len(ids) != 2 {
		t.Fatalf("known ids: %+v, %v", ids, err)
	}
}

func TestDashboardUsers(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	u := &DashboardUser{
		Username:           "fermer",
		TelegramID:         42,
		PasswordHash:       "hash1",
		SecurityQuestion:   "Кличка первой курицы?",
		SecurityAnswerHash: "hash2",
	}
	if err := repo.CreateDashboardUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("id not assigned")
	}

	// Username is unique.
	dup := *u
	if err := repo.CreateDashboardUser(ctx, &dup); err == nil {
		t.Fatal("duplicate username must fail")
	}

	got, err := repo.GetDashboardUser(ctx, "fermer")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TelegramID != 42 || got.PasswordHash != "hash1" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if err := repo.SetDashboardPassword(ctx, "fermer", "hash3"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	got, _ = repo.GetDashboardUser(ctx, "fermer")
	if got.PasswordHash != "hash3" {
		t.Fatalf("password not updated: %+v", got)
	}

	if _, err := repo.GetDashboardUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
