package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cirodil/tenhens/internal/domain"
	"github.com/cirodil/tenhens/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	svc := New(repo)
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestAddRecordDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	id, err := svc.AddRecord(ctx, 1, "", 12, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	stats, err := svc.Stats(ctx, 1, 7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Date != "2024-03-10" || stats[0].IDs[0] != id {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAddRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.AddRecord(ctx, 1, "", -1, ""); !errors.Is(err, domain.ErrInvalidCount) {
		t.Errorf("negative count: got %v", err)
	}
	if _, err := svc.AddRecord(ctx, 1, "вчера", 5, ""); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("bad date: got %v", err)
	}
}

func TestEditRejectsForeignRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	id, _ := svc.AddRecord(ctx, 1, "2024-03-01", 10, "корм")
	count := 99

	// User 2 must be rejected, repeatedly, without mutating anything.
	for i := 0; i < 2; i++ {
		err := svc.EditRecord(ctx, 2, id, domain.RecordUpdate{Count: &count})
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("attempt %d: got %v, want ErrNotOwner", i, err)
		}
	}
	stats, _ := svc.Stats(ctx, 1, 30)
	if stats[0].Total != 10 {
		t.Fatalf("record mutated by rejected edit: %+v", stats)
	}

	// The owner succeeds.
	if err := svc.EditRecord(ctx, 1, id, domain.RecordUpdate{Count: &count}); err != nil {
		t.Fatalf("owner edit: %v", err)
	}
	stats, _ = svc.Stats(ctx, 1, 30)
	if stats[0].Total != 99 {
		t.Fatalf("owner edit not applied: %+v", stats)
	}
}

func TestEditAbsentRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	count := 5
	if err := svc.EditRecord(ctx, 1, 12345, domain.RecordUpdate{Count: &count}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteOwnershipAndAbsence(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	id, _ := svc.AddRecord(ctx, 1, "2024-03-01", 10, "")

	if err := svc.DeleteRecord(ctx, 2, id); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign delete: got %v", err)
	}
	if err := svc.DeleteRecord(ctx, 1, 777); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absent delete: got %v", err)
	}
	if err := svc.DeleteRecord(ctx, 1, id); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestStatsGroupsAndKeepsIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	a, _ := svc.AddRecord(ctx, 1, "2024-03-08", 4, "")
	b, _ := svc.AddRecord(ctx, 1, "2024-03-08", 6, "")
	c, _ := svc.AddRecord(ctx, 1, "2024-03-09", 7, "")

	stats, err := svc.Stats(ctx, 1, 7)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats[0].Total != 10 || len(stats[0].IDs) != 2 || stats[0].IDs[0] != a || stats[0].IDs[1] != b {
		t.Errorf("day 1 wrong: %+v", stats[0])
	}
	if stats[1].Total != 7 || stats[1].IDs[0] != c {
		t.Errorf("day 2 wrong: %+v", stats[1])
	}
}

func TestAnalyticsInsufficientData(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	report, err := svc.Analytics(ctx, 1, 7)
	if err != nil || report != nil {
		t.Fatalf("empty history: report %+v, err %v", report, err)
	}

	_, _ = svc.AddRecord(ctx, 1, "2024-03-01", 5, "")
	_, _ = svc.AddRecord(ctx, 1, "2024-03-01", 3, "") // same day, still one aggregated day
	report, err = svc.Analytics(ctx, 1, 7)
	if err != nil || report != nil {
		t.Fatalf("one aggregated day: report %+v, err %v", report, err)
	}

	_, _ = svc.AddRecord(ctx, 1, "2024-03-02", 9, "")
	report, err = svc.Analytics(ctx, 1, 7)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if report == nil {
		t.Fatal("two aggregated days must produce a report")
	}
}

func TestAnalyticsMinesCurrentPeriodNotes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Old note outside the window must not be counted.
	_, _ = svc.AddRecord(ctx, 1, "2024-01-01", 10, "зима зима зима")
	_, _ = svc.AddRecord(ctx, 1, "2024-03-01", 10, "корм хороший")
	_, _ = svc.AddRecord(ctx, 1, "2024-03-02", 12, "корм новый")
	_, _ = svc.AddRecord(ctx, 1, "2024-03-03", 14, "вода")

	report, err := svc.Analytics(ctx, 1, 3)
	if err != nil || report == nil {
		t.Fatalf("analytics: %+v, %v", report, err)
	}
	if len(report.TopWords) == 0 || report.TopWords[0].Word != "корм" || report.TopWords[0].Count != 2 {
		t.Fatalf("top words wrong: %+v", report.TopWords)
	}
	for _, w := range report.TopWords {
		if w.Word == "зима" {
			t.Fatalf("note outside current period leaked in: %+v", report.TopWords)
		}
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.SetTimezone(ctx, 1, "+05:30"); err != nil {
		t.Fatalf("set tz: %v", err)
	}
	if err := svc.SetReminderTime(ctx, 1, "19:00"); err != nil {
		t.Fatalf("set time: %v", err)
	}
	if err := svc.SetRemindersEnabled(ctx, 1, true); err != nil {
		t.Fatalf("enable: %v", err)
	}

	s, err := svc.Settings(ctx, 1)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if !s.Enabled || s.ReminderTime != "19:00" || s.OffsetMin != 330 {
		t.Fatalf("unexpected settings: %+v", s)
	}

	if err := svc.SetReminderTime(ctx, 1, "25:00"); err == nil {
		t.Error("invalid time must be rejected at write")
	}
	if err := svc.SetTimezone(ctx, 1, "Europe/Moscow"); err == nil {
		t.Error("invalid offset must be rejected at write")
	}
}
