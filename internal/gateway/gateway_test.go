package gateway

import (
	"context"
	"testing"
	"time"

	"hostelcore/internal/infra/persistence/memory"
	"hostelcore/pkg/domain"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	return NewSet(memory.NewStore())
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	set := testSet(t)
	u := domain.User{
		Base:  domain.Base{ID: "u1", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()},
		Name:  "Ana",
		Email: "ana@example.com",
		Role:  domain.RoleAdmin,
	}
	if err := set.Users.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	users, err := set.Users.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(users) != 1 || users[0].Email != "ana@example.com" || users[0].Role != domain.RoleAdmin {
		t.Fatalf("round trip mismatch: %+v", users)
	}
}

func TestUpdateMergesOnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	set := testSet(t)
	u := domain.User{Base: domain.Base{ID: "u1"}, Name: "Ana", Email: "ana@example.com", Points: 7}
	if err := set.Users.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	name := "Ana Maria"
	if err := set.Users.Update(ctx, "u1", domain.UserPatch{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	users, err := set.Users.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if users[0].Name != "Ana Maria" {
		t.Fatalf("expected patched name, got %q", users[0].Name)
	}
	if users[0].Email != "ana@example.com" || users[0].Points != 7 {
		t.Fatalf("unpatched fields clobbered: %+v", users[0])
	}
}

func TestUpdateUnknownIDTolerated(t *testing.T) {
	set := testSet(t)
	name := "Ghost"
	if err := set.Users.Update(context.Background(), "missing", domain.UserPatch{Name: &name}); err != nil {
		t.Fatalf("unknown id must be tolerated, got %v", err)
	}
}

func TestDeleteAbsentIDTolerated(t *testing.T) {
	set := testSet(t)
	if err := set.Tasks.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("absent delete must succeed, got %v", err)
	}
}

func TestTasksPreserveNestedStructures(t *testing.T) {
	ctx := context.Background()
	set := testSet(t)
	approvedBy := "admin-1"
	approvedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	task := domain.Task{
		Base:         domain.Base{ID: "t1"},
		Title:        "Fix shower",
		Status:       domain.TaskStatusInProgress,
		Type:         domain.TaskTypeHostel,
		AssignedTo:   []string{"u1", "u2"},
		Checklist:    []domain.ChecklistItem{{Content: "buy parts", Completed: true}},
		Comments:     []domain.Comment{{UserID: "u1", Content: "on it"}},
		RequirePhoto: true,
		Photo: &domain.TaskPhoto{
			URL: "tasks/t1/photo-1", UploadedBy: "u1", Approved: true,
			ApprovedBy: &approvedBy, ApprovedAt: &approvedAt,
		},
	}
	if err := set.Tasks.Save(ctx, task); err != nil {
		t.Fatalf("save: %v", err)
	}

	tasks, err := set.Tasks.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := tasks[0]
	if got.Photo == nil || !got.Photo.Approved || *got.Photo.ApprovedBy != "admin-1" {
		t.Fatalf("photo mismatch: %+v", got.Photo)
	}
	if len(got.AssignedTo) != 2 || len(got.Checklist) != 1 || len(got.Comments) != 1 {
		t.Fatalf("nested lists mismatch: %+v", got)
	}
}

func TestSchedulePersistsOneDocumentPerDate(t *testing.T) {
	ctx := context.Background()
	set := testSet(t)

	if err := set.Schedule.SaveDate(ctx, "2025-03-10", domain.SlotMap{"08:00-11:00": {"u1"}}); err != nil {
		t.Fatalf("save date: %v", err)
	}
	if err := set.Schedule.SaveDate(ctx, "2025-03-11", domain.SlotMap{"17:00-20:00": {"u2"}}); err != nil {
		t.Fatalf("save date: %v", err)
	}

	schedule, err := set.Schedule.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(schedule) != 2 {
		t.Fatalf("expected 2 dates, got %+v", schedule)
	}
	if members := schedule["2025-03-10"]["08:00-11:00"]; len(members) != 1 || members[0] != "u1" {
		t.Fatalf("date mismatch: %+v", schedule)
	}

	if err := set.Schedule.DeleteDate(ctx, "2025-03-10"); err != nil {
		t.Fatalf("delete date: %v", err)
	}
	schedule, err = set.Schedule.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := schedule["2025-03-10"]; ok {
		t.Fatalf("expected date removed, got %+v", schedule)
	}
	// Deleting an absent date is tolerated.
	if err := set.Schedule.DeleteDate(ctx, "2025-03-10"); err != nil {
		t.Fatalf("absent delete must succeed, got %v", err)
	}
}
