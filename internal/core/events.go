package core

import (
	"context"
	"errors"

	"hostelcore/pkg/domain"
)

// CreateEvent creates an event record, defaulting the status to upcoming and
// the organizer to the session user.
func (s *Store) CreateEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	var created domain.Event
	err := s.commit(ctx, "event_create", func(tx *txn) (effect, error) {
		if e.ID == "" {
			e.ID = s.idFn()
		}
		if e.Status == "" {
			e.Status = domain.EventStatusUpcoming
		}
		if e.Type == "" {
			e.Type = domain.EventTypeActivity
		}
		if e.Organizer == "" && tx.state.current != nil {
			e.Organizer = tx.state.current.ID
		}
		e.CreatedAt = tx.now
		e.UpdatedAt = tx.now
		tx.state.events[e.ID] = cloneEvent(e)
		tx.record(domain.Change{Entity: domain.EntityEvent, Action: domain.ActionCreate, After: cloneEvent(e)})
		created = cloneEvent(e)

		id := e.ID
		record := cloneEvent(e)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Events.Save(ctx, record) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.events[id]
				return ok && cur.UpdatedAt.Equal(record.UpdatedAt)
			},
			revert: func(st *mirrorState) { delete(st.events, id) },
		}, nil
	})
	return created, err
}

// UpdateEvent merges a partial patch into the matching event. Unknown ids are
// a no-op.
func (s *Store) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error {
	return s.mutateEvent(ctx, "event_update", id, func(_ *txn, e *domain.Event) (domain.EventPatch, error) {
		patch.Apply(e)
		return patch, nil
	})
}

// DeleteEvent removes an event outright. Absent ids are tolerated.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.commit(ctx, "event_delete", func(tx *txn) (effect, error) {
		current, ok := tx.state.events[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneEvent(current)
		delete(tx.state.events, id)
		tx.record(domain.Change{Entity: domain.EntityEvent, Action: domain.ActionDelete, Before: before})

		return effect{
			persist: func(ctx context.Context) error { return s.remote.Events.Delete(ctx, id) },
			guard: func(st *mirrorState) bool {
				_, ok := st.events[id]
				return !ok
			},
			revert: func(st *mirrorState) { st.events[id] = cloneEvent(before) },
		}, nil
	})
}

// CancelEvent marks the event cancelled. Unlike delete, the record and its
// attendee list survive.
func (s *Store) CancelEvent(ctx context.Context, id string) error {
	return s.mutateEvent(ctx, "event_cancel", id, func(_ *txn, e *domain.Event) (domain.EventPatch, error) {
		if e.Status == domain.EventStatusCancelled {
			return domain.EventPatch{}, errSkipMutation
		}
		e.Status = domain.EventStatusCancelled
		status := domain.EventStatusCancelled
		return domain.EventPatch{Status: &status}, nil
	})
}

// JoinEvent adds the user to the attendee list. Joining twice is a no-op; a
// positive capacity already reached fails with ErrEventFull.
func (s *Store) JoinEvent(ctx context.Context, eventID, userID string) error {
	return s.mutateEvent(ctx, "event_join", eventID, func(_ *txn, e *domain.Event) (domain.EventPatch, error) {
		if containsString(e.Attendees, userID) {
			return domain.EventPatch{}, errSkipMutation
		}
		if e.Capacity > 0 && len(e.Attendees) >= e.Capacity {
			return domain.EventPatch{}, ErrEventFull
		}
		e.Attendees = append(e.Attendees, userID)
		attendees := append([]string(nil), e.Attendees...)
		return domain.EventPatch{Attendees: &attendees}, nil
	})
}

// LeaveEvent removes the user from the attendee list. Leaving an event never
// joined is a no-op.
func (s *Store) LeaveEvent(ctx context.Context, eventID, userID string) error {
	return s.mutateEvent(ctx, "event_leave", eventID, func(_ *txn, e *domain.Event) (domain.EventPatch, error) {
		if !containsString(e.Attendees, userID) {
			return domain.EventPatch{}, errSkipMutation
		}
		e.Attendees = removeString(e.Attendees, userID)
		attendees := append([]string(nil), e.Attendees...)
		return domain.EventPatch{Attendees: &attendees}, nil
	})
}

// mutateEvent runs one optimistic event mutation with the shared
// stamp/persist/rollback plumbing. Unknown ids are a no-op.
func (s *Store) mutateEvent(ctx context.Context, op, id string, fn func(tx *txn, e *domain.Event) (domain.EventPatch, error)) error {
	return s.commit(ctx, op, func(tx *txn) (effect, error) {
		current, ok := tx.state.events[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneEvent(current)
		patch, err := fn(tx, &current)
		if err != nil {
			if errors.Is(err, errSkipMutation) {
				return effect{}, nil
			}
			return effect{}, err
		}
		current.ID = id
		current.UpdatedAt = tx.now
		tx.state.events[id] = cloneEvent(current)
		tx.record(domain.Change{Entity: domain.EntityEvent, Action: domain.ActionUpdate, Before: before, After: cloneEvent(current)})

		after := cloneEvent(current)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Events.Update(ctx, id, patch) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.events[id]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.events[id] = cloneEvent(before) },
		}, nil
	})
}
