package core

import (
	"context"
	"time"

	"hostelcore/pkg/domain"
)

// txn carries the cloned mirror a mutator computes its next state on, plus
// the change set handed to the rules engine before commit.
type txn struct {
	state   *mirrorState
	now     time.Time
	changes []domain.Change
}

func (tx *txn) record(change domain.Change) {
	tx.changes = append(tx.changes, change)
}

// effect is the deferred persistence half of an optimistic mutation. persist
// runs on a detached goroutine after the mirror commit. When it fails, revert
// restores the pre-mutation value; guard must report whether the mirror still
// holds the optimistic value, so a rollback cannot clobber a newer unrelated
// mutation of the same record.
type effect struct {
	persist func(ctx context.Context) error
	revert  func(st *mirrorState)
	guard   func(st *mirrorState) bool
}

// commit runs fn against a cloned mirror, evaluates the rules engine over the
// candidate state, installs the clone, and dispatches the persistence effect.
// The caller gets its answer as soon as the mirror is updated; persistence
// settles in the background.
func (s *Store) commit(ctx context.Context, op string, fn func(tx *txn) (effect, error)) error {
	start := s.nowFn()
	ctx, span := s.tracer.Start(ctx, op)

	s.mu.Lock()
	next := s.state.clone()
	tx := &txn{state: &next, now: s.nowFn()}
	eff, err := fn(tx)
	if err != nil {
		s.mu.Unlock()
		s.metrics.ObserveMutation(op, err, s.nowFn().Sub(start))
		span.End(err)
		return err
	}
	res, err := s.engine.Evaluate(ctx, newRuleView(&next), tx.changes)
	if err != nil {
		s.mu.Unlock()
		s.metrics.ObserveMutation(op, err, s.nowFn().Sub(start))
		span.End(err)
		return err
	}
	if res.HasBlocking() {
		s.mu.Unlock()
		err := domain.RuleViolationError{Result: res}
		s.metrics.ObserveMutation(op, err, s.nowFn().Sub(start))
		span.End(err)
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.metrics.ObserveMutation(op, nil, s.nowFn().Sub(start))
	span.End(nil)
	s.dispatch(op, eff)
	return nil
}

// dispatch runs the persistence effect fire-and-forget. The caller already
// holds its optimistic success, so a failure is recovered by rolling the
// mirror back, never by re-raising to the caller.
func (s *Store) dispatch(op string, eff effect) {
	if eff.persist == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		ctx, span := s.tracer.Start(context.Background(), op+"_persist")
		err := eff.persist(ctx)
		s.metrics.ObservePersist(op, err, time.Since(start))
		span.End(err)
		if err == nil {
			return
		}
		s.log.Error("persistence failed, reverting mirror", "op", op, "error", err)
		s.mu.Lock()
		if eff.revert != nil && (eff.guard == nil || eff.guard(&s.state)) {
			eff.revert(&s.state)
			s.metrics.ObserveRollback(op)
		}
		s.mu.Unlock()
	}()
}

// ruleView adapts a mirror snapshot to the domain.RuleView contract.
type ruleView struct {
	state *mirrorState
}

func newRuleView(state *mirrorState) domain.RuleView {
	return ruleView{state: state}
}

func (v ruleView) ListUsers() []domain.User {
	out := make([]domain.User, 0, len(v.state.users))
	for _, u := range v.state.users {
		out = append(out, cloneUser(u))
	}
	return out
}

func (v ruleView) ListTasks() []domain.Task {
	out := make([]domain.Task, 0, len(v.state.tasks))
	for _, t := range v.state.tasks {
		out = append(out, cloneTask(t))
	}
	return out
}

func (v ruleView) ListEvents() []domain.Event {
	out := make([]domain.Event, 0, len(v.state.events))
	for _, e := range v.state.events {
		out = append(out, cloneEvent(e))
	}
	return out
}

func (v ruleView) ListMessages() []domain.Message {
	out := make([]domain.Message, 0, len(v.state.messages))
	for _, m := range v.state.messages {
		out = append(out, cloneMessage(m))
	}
	return out
}

func (v ruleView) ScheduleSnapshot() domain.Schedule {
	return v.state.schedule.Clone()
}

func (v ruleView) FindUser(id string) (domain.User, bool) {
	u, ok := v.state.users[id]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(u), true
}

func (v ruleView) FindTask(id string) (domain.Task, bool) {
	t, ok := v.state.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(t), true
}

func (v ruleView) FindEvent(id string) (domain.Event, bool) {
	e, ok := v.state.events[id]
	if !ok {
		return domain.Event{}, false
	}
	return cloneEvent(e), true
}

func (v ruleView) FindMessage(id string) (domain.Message, bool) {
	for _, m := range v.state.messages {
		if m.ID == id {
			return cloneMessage(m), true
		}
	}
	return domain.Message{}, false
}
