package core

import (
	"context"
	"fmt"

	"hostelcore/pkg/domain"
)

// NewPhotoApprovalRule returns the built-in rule blocking any commit that
// would mark a photo-gated task done without an approved photo. The mutators
// reject this up front; the rule is the commit-level backstop.
func NewPhotoApprovalRule() domain.Rule {
	return photoApprovalRule{}
}

type photoApprovalRule struct{}

func (photoApprovalRule) Name() string { return "photo_approval" }

func (photoApprovalRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityTask {
			continue
		}
		task, ok := change.After.(domain.Task)
		if !ok {
			continue
		}
		if task.Status != domain.TaskStatusDone || !task.RequirePhoto {
			continue
		}
		// Only transitions into done are gated; edits to a task already done
		// (photo rejection included) pass.
		if before, ok := change.Before.(domain.Task); ok && before.Status == domain.TaskStatusDone {
			continue
		}
		if task.Photo != nil && task.Photo.Approved {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "photo_approval",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("task %s (%s) completed without an approved photo", task.Title, task.ID),
			Entity:   domain.EntityTask,
			EntityID: task.ID,
		})
	}
	return res, nil
}
