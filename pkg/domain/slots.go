package domain

import "time"

// DateFormat is the ISO calendar-date key format used by the schedule.
const DateFormat = "2006-01-02"

// Slot is one fixed time window within a day to which volunteers are
// assigned. StartHour is inclusive, EndHour exclusive.
type Slot struct {
	ID        string
	StartHour int
	EndHour   int
}

// Slots is the fixed ordered slot table. Identifiers double as the schedule
// map keys.
var Slots = []Slot{
	{ID: "08:00-11:00", StartHour: 8, EndHour: 11},
	{ID: "11:00-14:00", StartHour: 11, EndHour: 14},
	{ID: "14:00-17:00", StartHour: 14, EndHour: 17},
	{ID: "17:00-20:00", StartHour: 17, EndHour: 20},
}

// SlotByID returns the slot definition for an identifier.
func SlotByID(id string) (Slot, bool) {
	for _, s := range Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// CurrentSlot maps a wall-clock instant to the slot covering it. Hours
// outside every window fall back to the first slot; the last window's end
// hour is exclusive. The permissive fallback is intentional.
func CurrentSlot(now time.Time) Slot {
	hour := now.Hour()
	for _, s := range Slots {
		if hour >= s.StartHour && hour < s.EndHour {
			return s
		}
	}
	return Slots[0]
}

// WeekStart returns the Monday 00:00 of the week containing t, in t's
// location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekDates returns the seven ISO date keys of the Monday-start week
// containing t.
func WeekDates(t time.Time) []string {
	start := WeekStart(t)
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(DateFormat)
	}
	return dates
}
