package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hostelcore/internal/blob"
	"hostelcore/pkg/domain"
)

// CreateTask creates a task record with status defaulting to todo. A negative
// reward is a precondition failure.
func (s *Store) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var created domain.Task
	err := s.commit(ctx, "task_create", func(tx *txn) (effect, error) {
		if t.Points < 0 {
			return effect{}, ErrNegativePoints
		}
		if t.ID == "" {
			t.ID = s.idFn()
		}
		if t.Status == "" {
			t.Status = domain.TaskStatusTodo
		}
		if t.Priority == "" {
			t.Priority = domain.TaskPriorityMedium
		}
		if t.Type == "" {
			t.Type = domain.TaskTypeHostel
		}
		if t.CreatedBy == "" && tx.state.current != nil {
			t.CreatedBy = tx.state.current.ID
		}
		t.CreatedAt = tx.now
		t.UpdatedAt = tx.now
		tx.state.tasks[t.ID] = cloneTask(t)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionCreate, After: cloneTask(t)})
		created = cloneTask(t)

		id := t.ID
		record := cloneTask(t)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Tasks.Save(ctx, record) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[id]
				return ok && cur.UpdatedAt.Equal(record.UpdatedAt)
			},
			revert: func(st *mirrorState) { delete(st.tasks, id) },
		}, nil
	})
	return created, err
}

// UpdateTask merges a partial patch into the matching task. Unknown ids are a
// no-op. A status carried by the patch runs through the same transition
// guards and points side effect as SetTaskStatus, acting as the session user.
func (s *Store) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) error {
	return s.commit(ctx, "task_update", func(tx *txn) (effect, error) {
		current, ok := tx.state.tasks[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneTask(current)

		var nextStatus *domain.TaskStatus
		if patch.Status != nil {
			nextStatus = patch.Status
			patch.Status = nil
		}
		patch.Apply(&current)
		var awards []pointsAward
		if nextStatus != nil {
			actorID := ""
			if tx.state.current != nil {
				actorID = tx.state.current.ID
			}
			var err error
			awards, err = applyStatusTransition(tx, &current, *nextStatus, actorID)
			if err != nil {
				return effect{}, err
			}
			patch.Status = nextStatus
		}
		current.ID = id
		current.UpdatedAt = tx.now
		tx.state.tasks[id] = cloneTask(current)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})

		after := cloneTask(current)
		return effect{
			persist: func(ctx context.Context) error {
				if err := s.remote.Tasks.Update(ctx, id, patch); err != nil {
					return err
				}
				return s.persistAwards(ctx, awards)
			},
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[id]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) {
				st.tasks[id] = cloneTask(before)
				revertAwards(st, awards)
			},
		}, nil
	})
}

// DeleteTask removes a task outright. Absent ids are tolerated.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.commit(ctx, "task_delete", func(tx *txn) (effect, error) {
		current, ok := tx.state.tasks[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneTask(current)
		delete(tx.state.tasks, id)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionDelete, Before: before})

		return effect{
			persist: func(ctx context.Context) error { return s.remote.Tasks.Delete(ctx, id) },
			guard: func(st *mirrorState) bool {
				_, ok := st.tasks[id]
				return !ok
			},
			revert: func(st *mirrorState) { st.tasks[id] = cloneTask(before) },
		}, nil
	})
}

// SetTaskStatus moves a task through the workflow. Any of the six directed
// transitions is permitted; entering done on a photo-gated task without an
// approved photo fails with ErrPhotoApprovalPending, and entering done from a
// non-done state on a hostel task awards its points exactly once.
func (s *Store) SetTaskStatus(ctx context.Context, id string, status domain.TaskStatus, actorID string) error {
	return s.commit(ctx, "task_status", func(tx *txn) (effect, error) {
		current, ok := tx.state.tasks[id]
		if !ok {
			return effect{}, nil
		}
		before := cloneTask(current)
		awards, err := applyStatusTransition(tx, &current, status, actorID)
		if err != nil {
			return effect{}, err
		}
		if current.Status == before.Status {
			return effect{}, nil
		}
		current.UpdatedAt = tx.now
		tx.state.tasks[id] = cloneTask(current)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})

		after := cloneTask(current)
		next := status
		return effect{
			persist: func(ctx context.Context) error {
				if err := s.remote.Tasks.Update(ctx, id, domain.TaskPatch{Status: &next}); err != nil {
					return err
				}
				return s.persistAwards(ctx, awards)
			},
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[id]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) {
				st.tasks[id] = cloneTask(before)
				revertAwards(st, awards)
			},
		}, nil
	})
}

// pointsAward records one ledger adjustment so the effect can persist it and
// a rollback can undo it.
type pointsAward struct {
	userID string
	before int
	after  int
}

// applyStatusTransition mutates task in place and applies any points awards
// to the transaction state. A done->done transition is a no-op and never
// re-awards; regressing out of done never claws points back.
func applyStatusTransition(tx *txn, task *domain.Task, next domain.TaskStatus, actorID string) ([]pointsAward, error) {
	if task.Status == next {
		return nil, nil
	}
	if next == domain.TaskStatusDone && task.RequirePhoto && (task.Photo == nil || !task.Photo.Approved) {
		return nil, ErrPhotoApprovalPending
	}
	from := task.Status
	task.Status = next
	if next != domain.TaskStatusDone || from == domain.TaskStatusDone {
		return nil, nil
	}
	if task.Type != domain.TaskTypeHostel || task.Points == 0 {
		return nil, nil
	}
	recipients := task.AssignedTo
	if len(recipients) == 0 && actorID != "" {
		recipients = []string{actorID}
	}
	var awards []pointsAward
	for _, userID := range recipients {
		u, ok := tx.state.users[userID]
		if !ok {
			continue
		}
		award := pointsAward{userID: userID, before: u.Points, after: u.Points + task.Points}
		beforeUser := cloneUser(u)
		u.Points = award.after
		u.UpdatedAt = tx.now
		tx.state.users[userID] = cloneUser(u)
		tx.record(domain.Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: beforeUser, After: cloneUser(u)})
		awards = append(awards, award)
	}
	return awards, nil
}

func (s *Store) persistAwards(ctx context.Context, awards []pointsAward) error {
	for _, award := range awards {
		points := award.after
		if err := s.remote.Users.Update(ctx, award.userID, domain.UserPatch{Points: &points}); err != nil {
			return err
		}
	}
	return nil
}

func revertAwards(st *mirrorState, awards []pointsAward) {
	for _, award := range awards {
		u, ok := st.users[award.userID]
		if !ok {
			continue
		}
		// Restore only when the award is still the newest write to the ledger.
		if u.Points != award.after {
			continue
		}
		u.Points = award.before
		st.users[award.userID] = u
	}
}

// AddComment appends a comment to the task's thread.
func (s *Store) AddComment(ctx context.Context, taskID, userID, content string) error {
	return s.mutateTask(ctx, "task_comment", taskID, func(tx *txn, t *domain.Task) (domain.TaskPatch, error) {
		t.Comments = append(t.Comments, domain.Comment{UserID: userID, Content: content, CreatedAt: tx.now})
		comments := append([]domain.Comment(nil), t.Comments...)
		return domain.TaskPatch{Comments: &comments}, nil
	})
}

// AddChecklistItem appends an unchecked item to the task checklist.
func (s *Store) AddChecklistItem(ctx context.Context, taskID, content string) error {
	return s.mutateTask(ctx, "task_checklist_add", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		t.Checklist = append(t.Checklist, domain.ChecklistItem{Content: content})
		checklist := append([]domain.ChecklistItem(nil), t.Checklist...)
		return domain.TaskPatch{Checklist: &checklist}, nil
	})
}

// SetChecklistItem sets the completed flag of the checklist item at index.
// Out-of-range indexes are tolerated as no-ops.
func (s *Store) SetChecklistItem(ctx context.Context, taskID string, index int, completed bool) error {
	return s.mutateTask(ctx, "task_checklist_set", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if index < 0 || index >= len(t.Checklist) {
			return domain.TaskPatch{}, errSkipMutation
		}
		t.Checklist[index].Completed = completed
		checklist := append([]domain.ChecklistItem(nil), t.Checklist...)
		return domain.TaskPatch{Checklist: &checklist}, nil
	})
}

// AddTag adds a tag if not already present.
func (s *Store) AddTag(ctx context.Context, taskID, tag string) error {
	return s.mutateTask(ctx, "task_tag_add", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if containsString(t.Tags, tag) {
			return domain.TaskPatch{}, errSkipMutation
		}
		t.Tags = append(t.Tags, tag)
		tags := append([]string(nil), t.Tags...)
		return domain.TaskPatch{Tags: &tags}, nil
	})
}

// RemoveTag removes a tag if present.
func (s *Store) RemoveTag(ctx context.Context, taskID, tag string) error {
	return s.mutateTask(ctx, "task_tag_remove", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if !containsString(t.Tags, tag) {
			return domain.TaskPatch{}, errSkipMutation
		}
		t.Tags = removeString(t.Tags, tag)
		tags := append([]string(nil), t.Tags...)
		return domain.TaskPatch{Tags: &tags}, nil
	})
}

// AssignTask adds a user to the task's assignee set.
func (s *Store) AssignTask(ctx context.Context, taskID, userID string) error {
	return s.mutateTask(ctx, "task_assign", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if containsString(t.AssignedTo, userID) {
			return domain.TaskPatch{}, errSkipMutation
		}
		t.AssignedTo = append(t.AssignedTo, userID)
		assigned := append([]string(nil), t.AssignedTo...)
		return domain.TaskPatch{AssignedTo: &assigned}, nil
	})
}

// UnassignTask removes a user from the task's assignee set.
func (s *Store) UnassignTask(ctx context.Context, taskID, userID string) error {
	return s.mutateTask(ctx, "task_unassign", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if !containsString(t.AssignedTo, userID) {
			return domain.TaskPatch{}, errSkipMutation
		}
		t.AssignedTo = removeString(t.AssignedTo, userID)
		assigned := append([]string(nil), t.AssignedTo...)
		return domain.TaskPatch{AssignedTo: &assigned}, nil
	})
}

// errSkipMutation signals a tolerated no-op from a mutator closure.
var errSkipMutation = errors.New("skip mutation")

// mutateTask runs one optimistic sub-entity mutation with the shared
// stamp/persist/rollback plumbing. Unknown task ids are a no-op.
func (s *Store) mutateTask(ctx context.Context, op, taskID string, fn func(tx *txn, t *domain.Task) (domain.TaskPatch, error)) error {
	return s.commit(ctx, op, func(tx *txn) (effect, error) {
		current, ok := tx.state.tasks[taskID]
		if !ok {
			return effect{}, nil
		}
		before := cloneTask(current)
		patch, err := fn(tx, &current)
		if err != nil {
			if errors.Is(err, errSkipMutation) {
				return effect{}, nil
			}
			return effect{}, err
		}
		current.ID = taskID
		current.UpdatedAt = tx.now
		tx.state.tasks[taskID] = cloneTask(current)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})

		after := cloneTask(current)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Tasks.Update(ctx, taskID, patch) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[taskID]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.tasks[taskID] = cloneTask(before) },
		}, nil
	})
}

// UploadPhoto stores the encoded image in the photo blob store and attaches
// it to the task with approval reset to false. Rejected when the task is
// absent or does not require a photo.
func (s *Store) UploadPhoto(ctx context.Context, taskID string, photo io.Reader, contentType, uploaderID string) (domain.TaskPhoto, error) {
	task, ok := s.GetTask(taskID)
	if !ok {
		return domain.TaskPhoto{}, ErrTaskNotFound
	}
	if !task.RequirePhoto {
		return domain.TaskPhoto{}, ErrPhotoNotRequired
	}

	now := s.nowFn()
	key := fmt.Sprintf("tasks/%s/photo-%d", taskID, now.UnixNano())
	if _, err := s.photos.Put(ctx, key, photo, blob.PutOptions{ContentType: contentType, Metadata: map[string]string{"uploaded_by": uploaderID}}); err != nil {
		return domain.TaskPhoto{}, fmt.Errorf("store photo: %w", err)
	}
	url, err := s.photos.SignedURL(ctx, key, blob.SignedURLOptions{Method: "GET"})
	if err != nil {
		if !errors.Is(err, blob.ErrUnsupported) {
			s.log.Warn("sign photo url", "key", key, "error", err)
		}
		url = key
	}

	attached := domain.TaskPhoto{URL: url, UploadedBy: uploaderID, UploadedAt: now, Approved: false}
	err = s.mutateTask(ctx, "task_photo_upload", taskID, func(_ *txn, t *domain.Task) (domain.TaskPatch, error) {
		if !t.RequirePhoto {
			return domain.TaskPatch{}, ErrPhotoNotRequired
		}
		photo := attached
		t.Photo = &photo
		persisted := attached
		return domain.TaskPatch{Photo: &persisted}, nil
	})
	if err != nil {
		if _, delErr := s.photos.Delete(ctx, key); delErr != nil {
			s.log.Warn("discard orphaned photo", "key", key, "error", delErr)
		}
		return domain.TaskPhoto{}, err
	}
	return attached, nil
}

// ApprovePhoto marks the task's pending photo approved, stamping approver and
// time. Only admins may approve; a task without a photo is rejected.
func (s *Store) ApprovePhoto(ctx context.Context, taskID, adminID string) error {
	return s.commit(ctx, "task_photo_approve", func(tx *txn) (effect, error) {
		if err := requireAdmin(tx.state, adminID); err != nil {
			return effect{}, err
		}
		current, ok := tx.state.tasks[taskID]
		if !ok {
			return effect{}, nil
		}
		if current.Photo == nil {
			return effect{}, ErrNoPhoto
		}
		if current.Photo.Approved {
			return effect{}, nil
		}
		before := cloneTask(current)
		approvedAt := tx.now
		photo := *current.Photo
		photo.Approved = true
		photo.ApprovedBy = &adminID
		photo.ApprovedAt = &approvedAt
		current.Photo = &photo
		current.UpdatedAt = tx.now
		tx.state.tasks[taskID] = cloneTask(current)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})

		after := cloneTask(current)
		persisted := photo
		return effect{
			persist: func(ctx context.Context) error {
				return s.remote.Tasks.Update(ctx, taskID, domain.TaskPatch{Photo: &persisted})
			},
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[taskID]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.tasks[taskID] = cloneTask(before) },
		}, nil
	})
}

// RejectPhoto clears the task's photo entirely, forcing a re-upload. Only
// admins may reject. Persists the full task: a merge patch cannot express
// removing the photo field.
func (s *Store) RejectPhoto(ctx context.Context, taskID, adminID string) error {
	var blobKey string
	err := s.commit(ctx, "task_photo_reject", func(tx *txn) (effect, error) {
		if err := requireAdmin(tx.state, adminID); err != nil {
			return effect{}, err
		}
		current, ok := tx.state.tasks[taskID]
		if !ok {
			return effect{}, nil
		}
		if current.Photo == nil {
			return effect{}, ErrNoPhoto
		}
		before := cloneTask(current)
		blobKey = current.Photo.URL
		current.Photo = nil
		current.UpdatedAt = tx.now
		tx.state.tasks[taskID] = cloneTask(current)
		tx.record(domain.Change{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: cloneTask(current)})

		after := cloneTask(current)
		return effect{
			persist: func(ctx context.Context) error { return s.remote.Tasks.Save(ctx, after) },
			guard: func(st *mirrorState) bool {
				cur, ok := st.tasks[taskID]
				return ok && cur.UpdatedAt.Equal(after.UpdatedAt)
			},
			revert: func(st *mirrorState) { st.tasks[taskID] = cloneTask(before) },
		}, nil
	})
	if err == nil && blobKey != "" {
		// Best-effort cleanup; only key-style URLs resolve in the blob store.
		if _, delErr := s.photos.Delete(ctx, blobKey); delErr != nil {
			s.log.Debug("photo blob cleanup skipped", "key", blobKey, "error", delErr)
		}
	}
	return err
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(values []string, v string) []string {
	out := values[:0]
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
