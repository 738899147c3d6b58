// Package core implements the optimistic local-state synchronization engine:
// the in-memory mirror of the remote collections, the mutators that apply
// changes optimistically and persist them asynchronously, the scheduling and
// task workflow engines, and the rules encoding cross-entity invariants.
package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"hostelcore/internal/blob"
	"hostelcore/internal/gateway"
	"hostelcore/pkg/domain"
)

type mirrorState struct {
	users    map[string]domain.User
	tasks    map[string]domain.Task
	events   map[string]domain.Event
	messages []domain.Message
	schedule domain.Schedule
	current  *domain.User
}

func newMirrorState() mirrorState {
	return mirrorState{
		users:    make(map[string]domain.User),
		tasks:    make(map[string]domain.Task),
		events:   make(map[string]domain.Event),
		schedule: make(domain.Schedule),
	}
}

func (s mirrorState) clone() mirrorState {
	cloned := newMirrorState()
	for k, v := range s.users {
		cloned.users[k] = cloneUser(v)
	}
	for k, v := range s.tasks {
		cloned.tasks[k] = cloneTask(v)
	}
	for k, v := range s.events {
		cloned.events[k] = cloneEvent(v)
	}
	cloned.messages = make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		cloned.messages = append(cloned.messages, cloneMessage(m))
	}
	cloned.schedule = s.schedule.Clone()
	if s.current != nil {
		cp := cloneUser(*s.current)
		cloned.current = &cp
	}
	return cloned
}

func cloneUser(u domain.User) domain.User { return u }

func cloneTask(t domain.Task) domain.Task {
	cp := t
	cp.AssignedTo = append([]string(nil), t.AssignedTo...)
	cp.Tags = append([]string(nil), t.Tags...)
	cp.Checklist = append([]domain.ChecklistItem(nil), t.Checklist...)
	cp.Comments = append([]domain.Comment(nil), t.Comments...)
	if t.Photo != nil {
		photo := *t.Photo
		cp.Photo = &photo
	}
	return cp
}

func cloneEvent(e domain.Event) domain.Event {
	cp := e
	cp.Attendees = append([]string(nil), e.Attendees...)
	return cp
}

func cloneMessage(m domain.Message) domain.Message {
	cp := m
	cp.Attachments = append([]string(nil), m.Attachments...)
	cp.ReadBy = append([]string(nil), m.ReadBy...)
	if m.Reactions != nil {
		cp.Reactions = make(map[string][]string, len(m.Reactions))
		for emoji, ids := range m.Reactions {
			cp.Reactions[emoji] = append([]string(nil), ids...)
		}
	}
	return cp
}

// Logger is the minimal structured logging surface used by the store.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store holds the in-memory mirror of the remote collections and exposes the
// mutator families. The mirror is authoritative for rendering during a
// session; the remote store is only the system of record.
type Store struct {
	mu      sync.RWMutex
	state   mirrorState
	engine  *domain.RulesEngine
	remote  *gateway.Set
	photos  blob.Store
	metrics MetricsRecorder
	tracer  Tracer
	log     Logger
	nowFn   func() time.Time
	idFn    func() string
	wg      sync.WaitGroup
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the wall clock used for timestamps and schedule queries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// WithLogger overrides the no-op default logger.
func WithLogger(log Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIDFunc overrides the record id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.idFn = fn }
}

// WithMetrics overrides the no-op metrics recorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Store) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer overrides the no-op tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithRules overrides the default rules engine.
func WithRules(engine *domain.RulesEngine) Option {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithPhotoStore overrides the blob store backing task photo uploads.
func WithPhotoStore(store blob.Store) Option {
	return func(s *Store) {
		if store != nil {
			s.photos = store
		}
	}
}

// New constructs a store over the supplied persistence gateways. The default
// configuration uses the built-in rules engine, an in-memory photo store, a
// UTC clock, and no-op logging and metrics.
func New(remote *gateway.Set, opts ...Option) *Store {
	s := &Store{
		state:   newMirrorState(),
		engine:  NewDefaultRulesEngine(),
		remote:  remote,
		photos:  blob.NewMemory(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		log:     noopLogger{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	s.idFn = newID
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// Init hydrates the mirror from the remote store. A failed collection load is
// logged and leaves that collection empty: the remote contract cannot
// distinguish an empty collection from a failed read, and a session must
// remain usable either way.
func (s *Store) Init(ctx context.Context) {
	users, err := s.remote.Users.Load(ctx)
	if err != nil {
		s.log.Error("load users", "error", err)
	}
	tasks, err := s.remote.Tasks.Load(ctx)
	if err != nil {
		s.log.Error("load tasks", "error", err)
	}
	events, err := s.remote.Events.Load(ctx)
	if err != nil {
		s.log.Error("load events", "error", err)
	}
	messages, err := s.remote.Messages.Load(ctx)
	if err != nil {
		s.log.Error("load messages", "error", err)
	}
	schedule, err := s.remote.Schedule.Load(ctx)
	if err != nil {
		s.log.Error("load schedule", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := newMirrorState()
	for _, u := range users {
		next.users[u.ID] = u
	}
	for _, t := range tasks {
		next.tasks[t.ID] = t
	}
	for _, e := range events {
		next.events[e.ID] = e
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	next.messages = messages
	if schedule != nil {
		next.schedule = schedule
	}
	next.current = s.state.current
	s.state = next
}

// Flush blocks until every in-flight persistence effect has settled. Intended
// for teardown and tests.
func (s *Store) Flush() {
	s.wg.Wait()
}

// Close flushes pending effects and releases the remote store.
func (s *Store) Close() error {
	s.Flush()
	return s.remote.Close()
}

// SetUser installs the session identity delivered by the authentication
// service. The profile is mirrored into the users collection when absent so
// role checks can resolve it.
func (s *Store) SetUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.state.current = nil
		return
	}
	cp := cloneUser(*u)
	s.state.current = &cp
	if _, ok := s.state.users[cp.ID]; !ok && cp.ID != "" {
		s.state.users[cp.ID] = cloneUser(cp)
	}
}

// CurrentUser returns the session identity, if any.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.current == nil {
		return domain.User{}, false
	}
	return cloneUser(*s.state.current), true
}

// Read helpers ---------------------------------------------------------------

// Users returns all staff records sorted by name.
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetUser retrieves a staff record by id.
func (s *Store) GetUser(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(u), true
}

// Tasks returns all tasks sorted by creation time.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.state.tasks))
	for _, t := range s.state.tasks {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return cloneTask(t), true
}

// Events returns all events sorted by start time.
func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, 0, len(s.state.events))
	for _, e := range s.state.events {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

// GetEvent retrieves an event by id.
func (s *Store) GetEvent(id string) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.events[id]
	if !ok {
		return domain.Event{}, false
	}
	return cloneEvent(e), true
}

// Messages returns all messages in insertion order.
func (s *Store) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, 0, len(s.state.messages))
	for _, m := range s.state.messages {
		out = append(out, cloneMessage(m))
	}
	return out
}

// GetMessage retrieves a message by id.
func (s *Store) GetMessage(id string) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.state.messages {
		if m.ID == id {
			return cloneMessage(m), true
		}
	}
	return domain.Message{}, false
}

// ScheduleSnapshot returns a deep copy of the shift schedule.
func (s *Store) ScheduleSnapshot() domain.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.schedule.Clone()
}
