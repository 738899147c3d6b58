package core

import (
	"context"
	"fmt"
	"time"

	"hostelcore/pkg/domain"
)

// WeeklyLoadThreshold is the number of shifts per Monday-start week above
// which an assignment needs explicit confirmation.
const WeeklyLoadThreshold = 5

// ShiftProposal is a deferred assignment handed back when the target already
// carries the weekly load threshold. Nothing is mutated until Confirm.
type ShiftProposal struct {
	UserID      string
	Date        string
	SlotID      string
	WeeklyCount int

	store *Store
}

// Confirm applies the proposed assignment, bypassing the load check once.
func (p *ShiftProposal) Confirm(ctx context.Context) error {
	_, err := p.store.assignShift(ctx, p.UserID, p.Date, p.SlotID, true)
	return err
}

// AssignShift adds the volunteer to the slot on the given date. Assigning an
// already-present member is a no-op. When the volunteer already has
// WeeklyLoadThreshold shifts in that date's week, no mutation happens and the
// call returns a proposal together with ErrConfirmationRequired; the caller
// confirms or drops the proposal.
func (s *Store) AssignShift(ctx context.Context, userID, date, slotID string) (*ShiftProposal, error) {
	return s.assignShift(ctx, userID, date, slotID, false)
}

func (s *Store) assignShift(ctx context.Context, userID, date, slotID string, force bool) (*ShiftProposal, error) {
	if _, ok := domain.SlotByID(slotID); !ok {
		return nil, ErrUnknownSlot
	}
	day, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("parse shift date %q: %w", date, err)
	}

	var proposal *ShiftProposal
	err = s.commit(ctx, "shift_assign", func(tx *txn) (effect, error) {
		if containsString(tx.state.schedule[date][slotID], userID) {
			return effect{}, nil
		}
		if !force {
			if count := weeklyShiftCount(tx.state.schedule, userID, day); count >= WeeklyLoadThreshold {
				proposal = &ShiftProposal{UserID: userID, Date: date, SlotID: slotID, WeeklyCount: count, store: s}
				return effect{}, nil
			}
		}

		before := cloneSlotMap(tx.state.schedule[date])
		hadDate := tx.state.schedule[date] != nil
		slots := cloneSlotMap(tx.state.schedule[date])
		if slots == nil {
			slots = make(domain.SlotMap)
		}
		slots[slotID] = append(slots[slotID], userID)
		tx.state.schedule[date] = slots
		tx.record(domain.Change{Entity: domain.EntitySchedule, Action: domain.ActionUpdate, Before: before, After: cloneSlotMap(slots)})

		after := cloneSlotMap(slots)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Schedule.SaveDate(ctx, date, after) },
			guard:   func(st *mirrorState) bool { return slotMapsEqual(st.schedule[date], after) },
			revert: func(st *mirrorState) {
				if hadDate {
					st.schedule[date] = cloneSlotMap(before)
				} else {
					delete(st.schedule, date)
				}
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if proposal != nil {
		return proposal, ErrConfirmationRequired
	}
	return nil, nil
}

// RemoveShift removes one volunteer from a slot, or clears the whole slot
// when userID is empty. Empty slots and dates are pruned; removing something
// absent is a no-op.
func (s *Store) RemoveShift(ctx context.Context, date, slotID, userID string) error {
	return s.commit(ctx, "shift_remove", func(tx *txn) (effect, error) {
		slots, ok := tx.state.schedule[date]
		if !ok {
			return effect{}, nil
		}
		members, ok := slots[slotID]
		if !ok {
			return effect{}, nil
		}
		if userID != "" && !containsString(members, userID) {
			return effect{}, nil
		}

		before := cloneSlotMap(slots)
		next := cloneSlotMap(slots)
		if userID == "" {
			delete(next, slotID)
		} else {
			remaining := removeString(append([]string(nil), members...), userID)
			if len(remaining) == 0 {
				delete(next, slotID)
			} else {
				next[slotID] = remaining
			}
		}

		dateEmptied := len(next) == 0
		if dateEmptied {
			delete(tx.state.schedule, date)
		} else {
			tx.state.schedule[date] = next
		}
		tx.record(domain.Change{Entity: domain.EntitySchedule, Action: domain.ActionUpdate, Before: before, After: cloneSlotMap(next)})

		after := cloneSlotMap(next)
		return effect{
			persist: func(ctx context.Context) error {
				if dateEmptied {
					return s.remote.Schedule.DeleteDate(ctx, date)
				}
				return s.remote.Schedule.SaveDate(ctx, date, after)
			},
			guard: func(st *mirrorState) bool {
				if dateEmptied {
					_, ok := st.schedule[date]
					return !ok
				}
				return slotMapsEqual(st.schedule[date], after)
			},
			revert: func(st *mirrorState) { st.schedule[date] = cloneSlotMap(before) },
		}, nil
	})
}

// weeklyShiftCount counts the volunteer's slot memberships across the
// Monday-start week containing day.
func weeklyShiftCount(schedule domain.Schedule, userID string, day time.Time) int {
	count := 0
	for _, date := range domain.WeekDates(day) {
		for _, members := range schedule[date] {
			if containsString(members, userID) {
				count++
			}
		}
	}
	return count
}

func cloneSlotMap(slots domain.SlotMap) domain.SlotMap {
	if slots == nil {
		return nil
	}
	out := make(domain.SlotMap, len(slots))
	for slot, ids := range slots {
		out[slot] = append([]string(nil), ids...)
	}
	return out
}

func slotMapsEqual(a, b domain.SlotMap) bool {
	if len(a) != len(b) {
		return false
	}
	for slot, ids := range a {
		other, ok := b[slot]
		if !ok || len(other) != len(ids) {
			return false
		}
		for i := range ids {
			if ids[i] != other[i] {
				return false
			}
		}
	}
	return true
}

// Shift pairs a calendar date with the slot held on it.
type Shift struct {
	Date string
	Slot domain.Slot
}

// NextShiftForUser finds the volunteer's next upcoming shift within the next
// 14 days. Today's slots that have already ended are skipped.
func (s *Store) NextShiftForUser(userID string) (Shift, bool) {
	return s.scanForward(14, func(members []string) bool {
		return containsString(members, userID)
	})
}

// NextActiveShift finds the next upcoming shift held by any volunteer within
// the next 30 days.
func (s *Store) NextActiveShift() (Shift, bool) {
	return s.scanForward(30, func(members []string) bool {
		return len(members) > 0
	})
}

func (s *Store) scanForward(days int, match func(members []string) bool) (Shift, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.nowFn()
	for offset := 0; offset <= days; offset++ {
		day := now.AddDate(0, 0, offset)
		date := day.Format(domain.DateFormat)
		slots, ok := s.state.schedule[date]
		if !ok {
			continue
		}
		for _, slot := range domain.Slots {
			if offset == 0 && now.Hour() >= slot.EndHour {
				continue
			}
			if match(slots[slot.ID]) {
				return Shift{Date: date, Slot: slot}, true
			}
		}
	}
	return Shift{}, false
}

// LastActiveShift finds the most recent shift held by any volunteer that has
// already started, looking back up to 30 days.
func (s *Store) LastActiveShift() (Shift, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.nowFn()
	for offset := 0; offset <= 30; offset++ {
		day := now.AddDate(0, 0, -offset)
		date := day.Format(domain.DateFormat)
		slots, ok := s.state.schedule[date]
		if !ok {
			continue
		}
		for i := len(domain.Slots) - 1; i >= 0; i-- {
			slot := domain.Slots[i]
			if offset == 0 && now.Hour() < slot.StartHour {
				continue
			}
			if len(slots[slot.ID]) > 0 {
				return Shift{Date: date, Slot: slot}, true
			}
		}
	}
	return Shift{}, false
}

// OnShiftNow reports whether the volunteer is assigned to the slot covering
// the current wall-clock instant.
func (s *Store) OnShiftNow(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.nowFn()
	slot := domain.CurrentSlot(now)
	date := now.Format(domain.DateFormat)
	return containsString(s.state.schedule[date][slot.ID], userID)
}

// DaysOff returns the dates of the Monday-start week containing t on which
// the volunteer holds no shift.
func (s *Store) DaysOff(userID string, t time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var off []string
	for _, date := range domain.WeekDates(t) {
		assigned := false
		for _, members := range s.state.schedule[date] {
			if containsString(members, userID) {
				assigned = true
				break
			}
		}
		if !assigned {
			off = append(off, date)
		}
	}
	return off
}
