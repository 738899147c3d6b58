package core

import "hostelcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewAdminQuorumRule())
	engine.Register(NewPhotoApprovalRule())
	engine.Register(NewSlotMembershipRule())
	return engine
}
