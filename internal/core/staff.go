package core

import (
	"context"
	"strings"

	"hostelcore/pkg/domain"
)

// AddStaff creates a staff record. Duplicate emails are rejected against the
// mirror before any remote call. The new record defaults to the user role
// unless one is set.
func (s *Store) AddStaff(ctx context.Context, u domain.User) (domain.User, error) {
	var created domain.User
	err := s.commit(ctx, "staff_create", func(tx *txn) (effect, error) {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		for _, existing := range tx.state.users {
			if strings.EqualFold(existing.Email, email) && email != "" {
				return effect{}, ErrDuplicateEmail
			}
		}
		if u.ID == "" {
			u.ID = s.idFn()
		}
		if u.Role == "" {
			u.Role = domain.RoleUser
		}
		u.Email = email
		u.CreatedAt = tx.now
		u.UpdatedAt = tx.now
		tx.state.users[u.ID] = cloneUser(u)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: cloneUser(u)})
		created = cloneUser(u)

		id := u.ID
		record := cloneUser(u)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Users.Save(ctx, record) },
			guard: func(st *mirrorState) bool {
				current, ok := st.users[id]
				return ok && current.UpdatedAt.Equal(record.UpdatedAt)
			},
			revert: func(st *mirrorState) { delete(st.users, id) },
		}, nil
	})
	return created, err
}

// UpdateStaff merges a partial patch into the matching record. Unknown ids
// are a no-op so stale UI references stay harmless.
func (s *Store) UpdateStaff(ctx context.Context, id string, patch domain.UserPatch) error {
	return s.commit(ctx, "staff_update", func(tx *txn) (effect, error) {
		current, ok := tx.state.users[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneUser(current)
		patch.Apply(&current)
		current.ID = id
		current.UpdatedAt = tx.now
		tx.state.users[id] = cloneUser(current)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})

		after := cloneUser(current)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Users.Update(ctx, id, patch) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.users[id]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.users[id] = cloneUser(before) },
		}, nil
	})
}

// MakeAdmin promotes the target to admin. The acting identity must be an
// admin per the mirror at call time.
func (s *Store) MakeAdmin(ctx context.Context, actorID, targetID string) error {
	return s.commit(ctx, "staff_make_admin", func(tx *txn) (effect, error) {
		if err := requireAdmin(tx.state, actorID); err != nil {
			return effect{}, err
		}
		current, ok := tx.state.users[targetID]
		if !ok || current.Role == domain.RoleAdmin {
			return effect{}, nil
		}
		before := cloneUser(current)
		current.Role = domain.RoleAdmin
		current.UpdatedAt = tx.now
		tx.state.users[targetID] = cloneUser(current)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})

		after := cloneUser(current)
		role := domain.RoleAdmin
		return effect{
			persist: func(ctx context.Context) error {
				return s.remote.Users.Update(ctx, targetID, domain.UserPatch{Role: &role})
			},
			guard: func(st *mirrorState) bool {
				cur, ok := st.users[targetID]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.users[targetID] = cloneUser(before) },
		}, nil
	})
}

// RemoveAdmin demotes the target back to the user role. Rejected when the
// actor is not an admin, when the target is the last remaining admin, or when
// an admin targets themself.
func (s *Store) RemoveAdmin(ctx context.Context, actorID, targetID string) error {
	return s.commit(ctx, "staff_remove_admin", func(tx *txn) (effect, error) {
		if err := requireAdmin(tx.state, actorID); err != nil {
			return effect{}, err
		}
		current, ok := tx.state.users[targetID]
		if !ok || current.Role != domain.RoleAdmin {
			return effect{}, nil
		}
		if adminCount(tx.state) <= 1 {
			return effect{}, ErrLastAdmin
		}
		if actorID == targetID {
			return effect{}, ErrSelfTarget
		}
		before := cloneUser(current)
		current.Role = domain.RoleUser
		current.UpdatedAt = tx.now
		tx.state.users[targetID] = cloneUser(current)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: cloneUser(current)})

		after := cloneUser(current)
		role := domain.RoleUser
		return effect{
			persist: func(ctx context.Context) error {
				return s.remote.Users.Update(ctx, targetID, domain.UserPatch{Role: &role})
			},
			guard: func(st *mirrorState) bool {
				cur, ok := st.users[targetID]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.users[targetID] = cloneUser(before) },
		}, nil
	})
}

// RemoveStaff deletes the target record. The same guards as RemoveAdmin apply
// when the target holds the admin role.
func (s *Store) RemoveStaff(ctx context.Context, actorID, targetID string) error {
	return s.commit(ctx, "staff_remove", func(tx *txn) (effect, error) {
		if err := requireAdmin(tx.state, actorID); err != nil {
			return effect{}, err
		}
		current, ok := tx.state.users[targetID]
		if !ok {
			return effect{}, nil
		}
		if current.Role == domain.RoleAdmin && adminCount(tx.state) <= 1 {
			return effect{}, ErrLastAdmin
		}
		if actorID == targetID {
			return effect{}, ErrSelfTarget
		}
		before := cloneUser(current)
		delete(tx.state.users, targetID)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionDelete, Before: before})

		return effect{
			persist: func(ctx context.Context) error { return s.remote.Users.Delete(ctx, targetID) },
			guard: func(st *mirrorState) bool {
				_, ok := st.users[targetID]
				return !ok
			},
			revert: func(st *mirrorState) { st.users[targetID] = cloneUser(before) },
		}, nil
	})
}

func requireAdmin(st *mirrorState, actorID string) error {
	actor, ok := st.users[actorID]
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

func adminCount(st *mirrorState) int {
	count := 0
	for _, u := range st.users {
		if u.Role == domain.RoleAdmin {
			count++
		}
	}
	return count
}
