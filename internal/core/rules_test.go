package core

import (
	"context"
	"testing"

	"hostelcore/pkg/domain"
)

func TestAdminQuorumRuleBlocksZeroAdmins(t *testing.T) {
	st := newMirrorState()
	st.users["u1"] = domain.User{Base: domain.Base{ID: "u1"}, Role: domain.RoleUser}
	changes := []domain.Change{{Entity: domain.EntityUser, Action: domain.ActionUpdate}}

	res, err := NewAdminQuorumRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking violation, got %+v", res)
	}
}

func TestAdminQuorumRuleIgnoresUnrelatedChanges(t *testing.T) {
	st := newMirrorState()
	st.users["u1"] = domain.User{Base: domain.Base{ID: "u1"}, Role: domain.RoleUser}
	changes := []domain.Change{{Entity: domain.EntityTask, Action: domain.ActionCreate}}

	res, err := NewAdminQuorumRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("task-only change set must pass, got %+v", res)
	}
}

func TestAdminQuorumRuleAllowsEmptyRoster(t *testing.T) {
	st := newMirrorState()
	changes := []domain.Change{{Entity: domain.EntityUser, Action: domain.ActionDelete}}

	res, err := NewAdminQuorumRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("empty roster must pass, got %+v", res)
	}
}

func TestPhotoApprovalRuleBlocksUnapprovedDone(t *testing.T) {
	st := newMirrorState()
	task := domain.Task{Base: domain.Base{ID: "t1"}, Title: "Gated", Status: domain.TaskStatusDone, RequirePhoto: true}
	changes := []domain.Change{{
		Entity: domain.EntityTask,
		Action: domain.ActionUpdate,
		Before: domain.Task{Base: domain.Base{ID: "t1"}, Status: domain.TaskStatusInProgress, RequirePhoto: true},
		After:  task,
	}}

	res, err := NewPhotoApprovalRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking violation, got %+v", res)
	}
}

func TestPhotoApprovalRuleAllowsEditsToDoneTask(t *testing.T) {
	st := newMirrorState()
	before := domain.Task{Base: domain.Base{ID: "t1"}, Status: domain.TaskStatusDone, RequirePhoto: true}
	after := before
	after.Photo = nil
	changes := []domain.Change{{Entity: domain.EntityTask, Action: domain.ActionUpdate, Before: before, After: after}}

	res, err := NewPhotoApprovalRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("edit to an already-done task must pass, got %+v", res)
	}
}

func TestSlotMembershipRuleBlocksDuplicates(t *testing.T) {
	st := newMirrorState()
	st.schedule["2025-03-12"] = domain.SlotMap{"08:00-11:00": {"u1", "u1"}}
	changes := []domain.Change{{Entity: domain.EntitySchedule, Action: domain.ActionUpdate}}

	res, err := NewSlotMembershipRule().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking violation, got %+v", res)
	}
}

func TestDefaultRulesEngineRegistersPolicySet(t *testing.T) {
	st := newMirrorState()
	st.schedule["2025-03-12"] = domain.SlotMap{"08:00-11:00": {"u1", "u1"}}
	changes := []domain.Change{{Entity: domain.EntitySchedule, Action: domain.ActionUpdate}}

	res, err := NewDefaultRulesEngine().Evaluate(context.Background(), newRuleView(&st), changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("default engine must carry the slot membership rule")
	}
}
