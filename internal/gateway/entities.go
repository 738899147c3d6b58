package gateway

import (
	"context"

	"hostelcore/pkg/domain"
)

// Users is the persistence gateway for staff records.
type Users struct {
	c collection[domain.User]
}

// NewUsers constructs the users gateway.
func NewUsers(store domain.DocumentStore) *Users {
	return &Users{c: collection[domain.User]{store: store, name: domain.CollectionUsers, id: func(u domain.User) string { return u.ID }}}
}

// Load returns the full users collection.
func (g *Users) Load(ctx context.Context) ([]domain.User, error) { return g.c.load(ctx) }

// Save overwrites-or-creates the record.
func (g *Users) Save(ctx context.Context, u domain.User) error { return g.c.save(ctx, u) }

// Update merges the patch server-side. Unknown ids are tolerated.
func (g *Users) Update(ctx context.Context, id string, patch domain.UserPatch) error {
	return g.c.update(ctx, id, patch)
}

// Delete removes the record; deleting an absent id succeeds.
func (g *Users) Delete(ctx context.Context, id string) error { return g.c.delete(ctx, id) }

// Tasks is the persistence gateway for task records.
type Tasks struct {
	c collection[domain.Task]
}

// NewTasks constructs the tasks gateway.
func NewTasks(store domain.DocumentStore) *Tasks {
	return &Tasks{c: collection[domain.Task]{store: store, name: domain.CollectionTasks, id: func(t domain.Task) string { return t.ID }}}
}

// Load returns the full tasks collection.
func (g *Tasks) Load(ctx context.Context) ([]domain.Task, error) { return g.c.load(ctx) }

// Save overwrites-or-creates the record.
func (g *Tasks) Save(ctx context.Context, t domain.Task) error { return g.c.save(ctx, t) }

// Update merges the patch server-side. Unknown ids are tolerated.
func (g *Tasks) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	return g.c.update(ctx, id, patch)
}

// Delete removes the record; deleting an absent id succeeds.
func (g *Tasks) Delete(ctx context.Context, id string) error { return g.c.delete(ctx, id) }

// Events is the persistence gateway for event records.
type Events struct {
	c collection[domain.Event]
}

// NewEvents constructs the events gateway.
func NewEvents(store domain.DocumentStore) *Events {
	return &Events{c: collection[domain.Event]{store: store, name: domain.CollectionEvents, id: func(e domain.Event) string { return e.ID }}}
}

// Load returns the full events collection.
func (g *Events) Load(ctx context.Context) ([]domain.Event, error) { return g.c.load(ctx) }

// Save overwrites-or-creates the record.
func (g *Events) Save(ctx context.Context, e domain.Event) error { return g.c.save(ctx, e) }

// Update merges the patch server-side. Unknown ids are tolerated.
func (g *Events) Update(ctx context.Context, id string, patch domain.EventPatch) error {
	return g.c.update(ctx, id, patch)
}

// Delete removes the record; deleting an absent id succeeds.
func (g *Events) Delete(ctx context.Context, id string) error { return g.c.delete(ctx, id) }

// Messages is the persistence gateway for chat messages.
type Messages struct {
	c collection[domain.Message]
}

// NewMessages constructs the messages gateway.
func NewMessages(store domain.DocumentStore) *Messages {
	return &Messages{c: collection[domain.Message]{store: store, name: domain.CollectionMessages, id: func(m domain.Message) string { return m.ID }}}
}

// Load returns the full messages collection.
func (g *Messages) Load(ctx context.Context) ([]domain.Message, error) { return g.c.load(ctx) }

// Save overwrites-or-creates the record.
func (g *Messages) Save(ctx context.Context, m domain.Message) error { return g.c.save(ctx, m) }

// Update merges the patch server-side. Unknown ids are tolerated.
func (g *Messages) Update(ctx context.Context, id string, patch domain.MessagePatch) error {
	return g.c.update(ctx, id, patch)
}

// Delete removes the record; deleting an absent id succeeds.
func (g *Messages) Delete(ctx context.Context, id string) error { return g.c.delete(ctx, id) }
