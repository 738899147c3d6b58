package core

import (
	"context"

	"hostelcore/pkg/domain"
)

// NewAdminQuorumRule returns the built-in rule blocking any commit that would
// leave a non-empty staff roster without a single admin.
func NewAdminQuorumRule() domain.Rule {
	return adminQuorumRule{}
}

type adminQuorumRule struct{}

func (adminQuorumRule) Name() string { return "admin_quorum" }

func (adminQuorumRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touchesUsers := false
	for _, change := range changes {
		if change.Entity == domain.EntityUser {
			touchesUsers = true
			break
		}
	}
	if !touchesUsers {
		return domain.Result{}, nil
	}

	users := view.ListUsers()
	if len(users) == 0 {
		return domain.Result{}, nil
	}
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			return domain.Result{}, nil
		}
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "admin_quorum",
		Severity: domain.SeverityBlock,
		Message:  "staff roster would be left without any admin",
		Entity:   domain.EntityUser,
	}}}, nil
}
