package domain

import (
	"testing"
	"time"
)

func TestSlotByID(t *testing.T) {
	if s, ok := SlotByID("11:00-14:00"); !ok || s.StartHour != 11 || s.EndHour != 14 {
		t.Fatalf("lookup mismatch: %+v ok=%v", s, ok)
	}
	if _, ok := SlotByID("23:00-24:00"); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

func TestCurrentSlotWindows(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{8, "08:00-11:00"},
		{10, "08:00-11:00"},
		{11, "11:00-14:00"}, // end hour is exclusive
		{16, "14:00-17:00"},
		{19, "17:00-20:00"},
		{20, "08:00-11:00"}, // outside every window falls back to the first slot
		{3, "08:00-11:00"},
	}
	for _, tc := range cases {
		now := time.Date(2025, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		if got := CurrentSlot(now); got.ID != tc.want {
			t.Fatalf("hour %d: got %s, want %s", tc.hour, got.ID, tc.want)
		}
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	cases := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), "2025-03-10"}, // Monday maps to itself
		{time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), "2025-03-10"},
		{time.Date(2025, 3, 16, 23, 59, 0, 0, time.UTC), "2025-03-10"}, // Sunday belongs to the prior Monday
		{time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), "2025-03-17"},
	}
	for _, tc := range cases {
		got := WeekStart(tc.day)
		if got.Format(DateFormat) != tc.want {
			t.Fatalf("%v: got %s, want %s", tc.day, got.Format(DateFormat), tc.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Fatalf("week start must be midnight, got %v", got)
		}
	}
}

func TestWeekDates(t *testing.T) {
	dates := WeekDates(time.Date(2025, 3, 13, 12, 0, 0, 0, time.UTC))
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	if dates[0] != "2025-03-10" || dates[6] != "2025-03-16" {
		t.Fatalf("unexpected week: %v", dates)
	}
}
