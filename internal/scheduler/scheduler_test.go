package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cirodil/tenhens/internal/domain"
)

type fakeStore struct {
	users  []domain.ReminderSettings
	logged map[int64]bool // userID -> has a record today (UTC)
	err    error
}

func (f *fakeStore) ListReminderEnabled(ctx context.Context) ([]domain.ReminderSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeStore) HasRecordOnDate(ctx context.Context, userID int64, date string) (bool, error) {
	return f.logged[userID], nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []int64
	fail map[int64]bool
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[chatID] {
		return errors.New("unreachable recipient")
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func (f *fakeSender) sentTo() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.sent...)
}

func newTestScheduler(store Store, sender Sender, nowUTC time.Time) *Scheduler {
	s := New(store, zap.NewNop(), sender)
	s.now = func() time.Time { return nowUTC }
	return s
}

// tickAndDrain runs one tick and waits for spawned dispatches.
func tickAndDrain(s *Scheduler) {
	s.tick(context.Background())
	s.wg.Wait()
}

func enabledUser(id int64, clock string, offsetMin int) domain.ReminderSettings {
	return domain.ReminderSettings{
		UserID:       id,
		Enabled:      true,
		ReminderTime: clock,
		OffsetMin:    offsetMin,
	}
}

func TestFiresAtExactLocalMinute(t *testing.T) {
	// 17:00 UTC is 20:00 at UTC+3.
	now := time.Date(2024, time.March, 10, 17, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users:  []domain.ReminderSettings{enabledUser(1, "20:00", 180)},
		logged: map[int64]bool{},
	}
	sender := &fakeSender{}

	tickAndDrain(newTestScheduler(store, sender, now))
	if got := sender.sentTo(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("sent = %v, want [1]", got)
	}
}

func TestSkipsWhenMinuteDoesNotMatch(t *testing.T) {
	store := &fakeStore{
		users:  []domain.ReminderSettings{enabledUser(1, "20:00", 180)},
		logged: map[int64]bool{},
	}
	for _, utc := range []time.Time{
		time.Date(2024, time.March, 10, 16, 59, 0, 0, time.UTC), // 19:59 local
		time.Date(2024, time.March, 10, 17, 1, 0, 0, time.UTC),  // 20:01 local
	} {
		sender := &fakeSender{}
		tickAndDrain(newTestScheduler(store, sender, utc))
		if got := sender.sentTo(); len(got) != 0 {
			t.Errorf("at %v: sent = %v, want none", utc, got)
		}
	}
}

func TestSkipsUserWithTodayRecord(t *testing.T) {
	// Local time matches exactly, but a record already exists for today (UTC).
	now := time.Date(2024, time.March, 10, 17, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users:  []domain.ReminderSettings{enabledUser(1, "20:00", 180)},
		logged: map[int64]bool{1: true},
	}
	sender := &fakeSender{}

	tickAndDrain(newTestScheduler(store, sender, now))
	if got := sender.sentTo(); len(got) != 0 {
		t.Fatalf("sent = %v, want none", got)
	}
}

func TestNegativeOffset(t *testing.T) {
	// 20:00 at UTC-05:00 is 01:00 UTC the next day.
	now := time.Date(2024, time.March, 11, 1, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users:  []domain.ReminderSettings{enabledUser(2, "20:00", -300)},
		logged: map[int64]bool{},
	}
	sender := &fakeSender{}

	tickAndDrain(newTestScheduler(store, sender, now))
	if got := sender.sentTo(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("sent = %v, want [2]", got)
	}
}

func TestDispatchFailureIsolatedPerUser(t *testing.T) {
	now := time.Date(2024, time.March, 10, 17, 0, 0, 0, time.UTC)
	store := &fakeStore{
		users: []domain.ReminderSettings{
			enabledUser(1, "20:00", 180),
			enabledUser(2, "20:00", 180),
			enabledUser(3, "20:00", 180),
		},
		logged: map[int64]bool{},
	}
	sender := &fakeSender{fail: map[int64]bool{2: true}}

	tickAndDrain(newTestScheduler(store, sender, now))
	got := sender.sentTo()
	if len(got) != 2 {
		t.Fatalf("sent = %v, want users 1 and 3", got)
	}
	for _, id := range got {
		if id == 2 {
			t.Fatalf("failed recipient recorded as sent: %v", got)
		}
	}
}

func TestStoreErrorSkipsTick(t *testing.T) {
	now := time.Date(2024, time.March, 10, 17, 0, 0, 0, time.UTC)
	store := &fakeStore{err: errors.New("db locked")}
	sender := &fakeSender{}

	tickAndDrain(newTestScheduler(store, sender, now))
	if got := sender.sentTo(); len(got) != 0 {
		t.Fatalf("sent = %v, want none", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{logged: map[int64]bool{}}
	sender := &fakeSender{}
	s := newTestScheduler(store, sender, time.Now())
	s.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
