package core

import (
	"context"
	"fmt"

	"hostelcore/pkg/domain"
)

// NewSlotMembershipRule returns the built-in rule blocking any commit that
// would assign the same volunteer twice to one slot on one date.
func NewSlotMembershipRule() domain.Rule {
	return slotMembershipRule{}
}

type slotMembershipRule struct{}

func (slotMembershipRule) Name() string { return "slot_membership" }

func (slotMembershipRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touchesSchedule := false
	for _, change := range changes {
		if change.Entity == domain.EntitySchedule {
			touchesSchedule = true
			break
		}
	}
	if !touchesSchedule {
		return domain.Result{}, nil
	}

	res := domain.Result{}
	for date, slots := range view.ScheduleSnapshot() {
		for slotID, members := range slots {
			seen := make(map[string]bool, len(members))
			for _, userID := range members {
				if seen[userID] {
					res.Violations = append(res.Violations, domain.Violation{
						Rule:     "slot_membership",
						Severity: domain.SeverityBlock,
						Message:  fmt.Sprintf("volunteer %s assigned twice to %s on %s", userID, slotID, date),
						Entity:   domain.EntitySchedule,
						EntityID: date,
					})
				}
				seen[userID] = true
			}
		}
	}
	return res, nil
}
