package domain

import (
	"testing"
	"time"
)

func TestParseOffset(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"+03:00", 180, false},
		{"-05:00", -300, false},
		{"+05:30", 330, false},
		{"+00:00", 0, false},
		{"-14:00", -840, false},
		{"+14:00", 840, false},
		{"+15:00", 0, true},
		{"+03:60", 0, true},
		{"03:00", 0, true},
		{"+3:00", 0, true},
		{"", 0, true},
		{"москва", 0, true},
	}
	for _, c := range cases {
		got, err := ParseOffset(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseOffset(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOffset(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseOffset(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatOffsetRoundTrip(t *testing.T) {
	for _, s := range []string{"+03:00", "-05:30", "+00:00", "+12:45"} {
		min, err := ParseOffset(s)
		if err != nil {
			t.Fatalf("ParseOffset(%q): %v", s, err)
		}
		if got := FormatOffset(min); got != s {
			t.Errorf("FormatOffset(ParseOffset(%q)) = %q", s, got)
		}
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("19:05")
	if err != nil || h != 19 || m != 5 {
		t.Fatalf("ParseClock(19:05) = %d:%d, %v", h, m, err)
	}
	for _, bad := range []string{"24:00", "19:60", "19", "a:b", ""} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q): expected error", bad)
		}
	}
}

func TestLocalClock(t *testing.T) {
	nowUTC := time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)

	s := ReminderSettings{OffsetMin: 180} // UTC+3
	if h, m := s.LocalClock(nowUTC); h != 20 || m != 0 {
		t.Errorf("UTC+3: got %02d:%02d, want 20:00", h, m)
	}

	s.OffsetMin = -330 // UTC-5:30
	if h, m := s.LocalClock(nowUTC); h != 11 || m != 30 {
		t.Errorf("UTC-5:30: got %02d:%02d, want 11:30", h, m)
	}
}

func TestNormalizeFallsBackToDefaults(t *testing.T) {
	s := ReminderSettings{ReminderTime: "99:99", OffsetMin: 9000}
	s.Normalize()
	if s.ReminderTime != DefaultReminderTime {
		t.Errorf("time: got %q, want %q", s.ReminderTime, DefaultReminderTime)
	}
	if s.OffsetMin != DefaultOffsetMin {
		t.Errorf("offset: got %d, want %d", s.OffsetMin, DefaultOffsetMin)
	}
}

func TestValidDate(t *testing.T) {
	if !ValidDate("2023-12-15") {
		t.Error("2023-12-15 should be valid")
	}
	for _, bad := range []string{"2023-13-01", "15.12.2023", "сегодня", ""} {
		if ValidDate(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}
