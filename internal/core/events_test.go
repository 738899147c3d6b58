package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"hostelcore/pkg/domain"
)

func TestCreateEventDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	e, err := env.store.CreateEvent(context.Background(), domain.Event{Title: "Beach day", StartsAt: testBase.AddDate(0, 0, 3)})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if e.Status != domain.EventStatusUpcoming || e.Type != domain.EventTypeActivity {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and stamps, got %+v", e)
	}
}

func TestJoinEventCapacityAndDedupe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")
	cid := env.seedUser(t, "Cid", "cid@example.com")

	e, err := env.store.CreateEvent(ctx, domain.Event{Title: "Cooking class", Capacity: 1})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := env.store.JoinEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := env.store.JoinEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("re-join must be a no-op, got %v", err)
	}
	if err := env.store.JoinEvent(ctx, e.ID, cid.ID); !errors.Is(err, ErrEventFull) {
		t.Fatalf("expected ErrEventFull, got %v", err)
	}

	got, _ := env.store.GetEvent(e.ID)
	if len(got.Attendees) != 1 || got.Attendees[0] != bea.ID {
		t.Fatalf("unexpected attendees: %+v", got.Attendees)
	}
}

func TestZeroCapacityMeansUnlimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	e, err := env.store.CreateEvent(ctx, domain.Event{Title: "Open mic"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		if err := env.store.JoinEvent(ctx, e.ID, id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if got, _ := env.store.GetEvent(e.ID); len(got.Attendees) != 3 {
		t.Fatalf("expected 3 attendees, got %+v", got.Attendees)
	}
}

func TestCancelEventKeepsAttendees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")

	e, err := env.store.CreateEvent(ctx, domain.Event{Title: "Hike"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := env.store.JoinEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := env.store.CancelEvent(ctx, e.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, _ := env.store.GetEvent(e.ID)
	if got.Status != domain.EventStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", got.Status)
	}
	if len(got.Attendees) != 1 {
		t.Fatalf("cancel must keep attendees, got %+v", got.Attendees)
	}
}

func TestLeaveEventTolerant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")
	e, err := env.store.CreateEvent(ctx, domain.Event{Title: "Quiz night"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := env.store.LeaveEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("leaving an unjoined event must be tolerated, got %v", err)
	}
	if err := env.store.JoinEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := env.store.LeaveEvent(ctx, e.ID, bea.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got, _ := env.store.GetEvent(e.ID); len(got.Attendees) != 0 {
		t.Fatalf("expected empty attendees, got %+v", got.Attendees)
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	e, err := env.store.CreateEvent(ctx, domain.Event{Title: "Movie night"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	loc := "Common room"
	starts := testBase.Add(48 * time.Hour)
	if err := env.store.UpdateEvent(ctx, e.ID, domain.EventPatch{Location: &loc, StartsAt: &starts}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := env.store.GetEvent(e.ID)
	if got.Location != "Common room" || !got.StartsAt.Equal(starts) {
		t.Fatalf("unexpected event: %+v", got)
	}

	if err := env.store.DeleteEvent(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.store.DeleteEvent(ctx, e.ID); err != nil {
		t.Fatalf("second delete must be tolerated, got %v", err)
	}
}
