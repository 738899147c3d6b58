package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"hostelcore/pkg/domain"
)

// Schedule is the persistence gateway for the shift schedule. One document
// per calendar date holds that date's full slot map: assignments and removals
// persist the whole date rather than a per-slot patch, so concurrent edits to
// the same date resolve last-write-wins at document granularity.
type Schedule struct {
	store domain.DocumentStore
}

// NewSchedule constructs the schedule gateway.
func NewSchedule(store domain.DocumentStore) *Schedule {
	return &Schedule{store: store}
}

// Load returns the full schedule keyed by date.
func (g *Schedule) Load(ctx context.Context) (domain.Schedule, error) {
	docs, err := g.store.Load(ctx, domain.CollectionSchedule)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	out := make(domain.Schedule, len(docs))
	for _, doc := range docs {
		var slots domain.SlotMap
		if err := json.Unmarshal(doc.Payload, &slots); err != nil {
			return nil, fmt.Errorf("decode schedule %s: %w", doc.ID, err)
		}
		out[doc.ID] = slots
	}
	return out, nil
}

// SaveDate overwrites one date's slot map.
func (g *Schedule) SaveDate(ctx context.Context, date string, slots domain.SlotMap) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode schedule %s: %w", date, err)
	}
	if err := g.store.Save(ctx, domain.CollectionSchedule, date, payload); err != nil {
		return fmt.Errorf("save schedule %s: %w", date, err)
	}
	return nil
}

// DeleteDate removes one date document; deleting an absent date succeeds.
func (g *Schedule) DeleteDate(ctx context.Context, date string) error {
	if err := g.store.Delete(ctx, domain.CollectionSchedule, date); err != nil {
		return fmt.Errorf("delete schedule %s: %w", date, err)
	}
	return nil
}
