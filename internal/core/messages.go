package core

import (
	"context"
	"errors"

	"hostelcore/pkg/domain"
)

// SendMessage appends a message to the channel. The author is always counted
// as having read their own message.
func (s *Store) SendMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	var created domain.Message
	err := s.commit(ctx, "message_send", func(tx *txn) (effect, error) {
		if m.ID == "" {
			m.ID = s.idFn()
		}
		if m.UserID == "" && tx.state.current != nil {
			m.UserID = tx.state.current.ID
		}
		if !containsString(m.ReadBy, m.UserID) && m.UserID != "" {
			m.ReadBy = append(m.ReadBy, m.UserID)
		}
		m.CreatedAt = tx.now
		m.UpdatedAt = tx.now
		tx.state.messages = append(tx.state.messages, cloneMessage(m))
		tx.record(domain.Change{Entity: domain.EntityMessage, Action: domain.ActionCreate, After: cloneMessage(m)})
		created = cloneMessage(m)

		id := m.ID
		record := cloneMessage(m)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Messages.Save(ctx, record) },
			guard: func(st *mirrorState) bool {
				cur, _, ok := findMessage(st, id)
				return ok && cur.UpdatedAt.Equal(record.UpdatedAt)
			},
			revert: func(st *mirrorState) { removeMessage(st, id) },
		}, nil
	})
	return created, err
}

// DeleteMessage removes a message. Only the author or an admin may delete;
// absent ids are tolerated.
func (s *Store) DeleteMessage(ctx context.Context, id, actorID string) error {
	return s.commit(ctx, "message_delete", func(tx *txn) (effect, error) {
		current, index, ok := findMessage(tx.state, id)
		if !ok {
			return effect{}, nil
		}
		if current.UserID != actorID {
			actor, ok := tx.state.users[actorID]
			if !ok || actor.Role != domain.RoleAdmin {
				return effect{}, ErrNotMessageOwner
			}
		}
		before := cloneMessage(current)
		position := index
		tx.state.messages = append(tx.state.messages[:index], tx.state.messages[index+1:]...)
		tx.record(domain.Change{Entity: domain.EntityMessage, Action: domain.ActionDelete, Before: before})

		return effect{
			persist: func(ctx context.Context) error { return s.remote.Messages.Delete(ctx, id) },
			guard: func(st *mirrorState) bool {
				_, _, ok := findMessage(st, id)
				return !ok
			},
			revert: func(st *mirrorState) { insertMessage(st, before, position) },
		}, nil
	})
}

// ToggleReaction adds the user to the emoji's reaction list, or removes them
// when already present. Empty reaction lists are pruned.
func (s *Store) ToggleReaction(ctx context.Context, id, userID, emoji string) error {
	return s.mutateMessage(ctx, "message_react", id, func(_ *txn, m *domain.Message) (domain.MessagePatch, error) {
		if m.Reactions == nil {
			m.Reactions = make(map[string][]string)
		}
		if containsString(m.Reactions[emoji], userID) {
			remaining := removeString(append([]string(nil), m.Reactions[emoji]...), userID)
			if len(remaining) == 0 {
				delete(m.Reactions, emoji)
			} else {
				m.Reactions[emoji] = remaining
			}
		} else {
			m.Reactions[emoji] = append(m.Reactions[emoji], userID)
		}
		reactions := make(map[string][]string, len(m.Reactions))
		for k, v := range m.Reactions {
			reactions[k] = append([]string(nil), v...)
		}
		return domain.MessagePatch{Reactions: &reactions}, nil
	})
}

// MarkMessageRead records that the user has seen the message. Re-reading is a
// no-op.
func (s *Store) MarkMessageRead(ctx context.Context, id, userID string) error {
	return s.mutateMessage(ctx, "message_read", id, func(_ *txn, m *domain.Message) (domain.MessagePatch, error) {
		if containsString(m.ReadBy, userID) {
			return domain.MessagePatch{}, errSkipMutation
		}
		m.ReadBy = append(m.ReadBy, userID)
		readBy := append([]string(nil), m.ReadBy...)
		return domain.MessagePatch{ReadBy: &readBy}, nil
	})
}

// mutateMessage runs one optimistic message mutation with the shared
// stamp/persist/rollback plumbing. Unknown ids are a no-op.
func (s *Store) mutateMessage(ctx context.Context, op, id string, fn func(tx *txn, m *domain.Message) (domain.MessagePatch, error)) error {
	return s.commit(ctx, op, func(tx *txn) (effect, error) {
		current, index, ok := findMessage(tx.state, id)
		if !ok {
			return effect{}, nil
		}
		before := cloneMessage(current)
		patch, err := fn(tx, &current)
		if err != nil {
			if errors.Is(err, errSkipMutation) {
				return effect{}, nil
			}
			return effect{}, err
		}
		current.ID = id
		current.UpdatedAt = tx.now
		tx.state.messages[index] = cloneMessage(current)
		tx.record(domain.Change{Entity: domain.EntityMessage, Action: domain.ActionUpdate, Before: before, After: cloneMessage(current)})

		after := cloneMessage(current)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Messages.Update(ctx, id, patch) },
			guard: func(st *mirrorState) bool {
				cur, _, ok := findMessage(st, id)
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) {
				if _, i, ok := findMessage(st, id); ok {
					st.messages[i] = cloneMessage(before)
				}
			},
		}, nil
	})
}

func findMessage(st *mirrorState, id string) (domain.Message, int, bool) {
	for i, m := range st.messages {
		if m.ID == id {
			return m, i, true
		}
	}
	return domain.Message{}, -1, false
}

func removeMessage(st *mirrorState, id string) {
	if _, i, ok := findMessage(st, id); ok {
		st.messages = append(st.messages[:i], st.messages[i+1:]...)
	}
}

func insertMessage(st *mirrorState, m domain.Message, at int) {
	if at < 0 || at > len(st.messages) {
		at = len(st.messages)
	}
	st.messages = append(st.messages, domain.Message{})
	copy(st.messages[at+1:], st.messages[at:])
	st.messages[at] = cloneMessage(m)
}
