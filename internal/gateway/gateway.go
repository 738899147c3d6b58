// Package gateway provides the per-entity persistence gateways: thin, typed
// I/O adapters over the abstract remote document store. No business rules
// live here; merge semantics ahead of Save are the domain store's
// responsibility.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"hostelcore/pkg/domain"
)

// collection wraps one remote collection with JSON codec plumbing shared by
// every typed gateway.
type collection[T any] struct {
	store domain.DocumentStore
	name  string
	id    func(T) string
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	docs, err := c.store.Load(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var entity T
		if err := json.Unmarshal(doc.Payload, &entity); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", c.name, doc.ID, err)
		}
		out = append(out, entity)
	}
	return out, nil
}

func (c collection[T]) save(ctx context.Context, entity T) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.store.Save(ctx, c.name, c.id(entity), payload); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}

func (c collection[T]) update(ctx context.Context, id string, patch any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", c.name, err)
	}
	if err := c.store.Update(ctx, c.name, id, raw); err != nil {
		return fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	return nil
}

// Set bundles the five gateways over one remote store.
type Set struct {
	Users    *Users
	Tasks    *Tasks
	Events   *Events
	Messages *Messages
	Schedule *Schedule

	store domain.DocumentStore
}

// NewSet constructs all gateways over the supplied remote store.
func NewSet(store domain.DocumentStore) *Set {
	return &Set{
		Users:    NewUsers(store),
		Tasks:    NewTasks(store),
		Events:   NewEvents(store),
		Messages: NewMessages(store),
		Schedule: NewSchedule(store),
		store:    store,
	}
}

// Close releases the underlying remote store.
func (s *Set) Close() error {
	return s.store.Close()
}
