package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hostelcore/pkg/domain"
)

func TestSendMessageReadByAuthor(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")

	m, err := env.store.SendMessage(context.Background(), domain.Message{UserID: bea.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !containsString(m.ReadBy, bea.ID) {
		t.Fatalf("author must be in ReadBy, got %+v", m.ReadBy)
	}
}

func TestMessagesKeepInsertionOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")

	for i := 0; i < 5; i++ {
		if _, err := env.store.SendMessage(ctx, domain.Message{UserID: bea.ID, Content: fmt.Sprintf("msg %d", i)}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	msgs := env.store.Messages()
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Content != fmt.Sprintf("msg %d", i) {
			t.Fatalf("order broken at %d: %q", i, m.Content)
		}
		if i > 0 && msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Fatalf("CreatedAt not non-decreasing at %d", i)
		}
	}
}

func TestDeleteMessagePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")
	cid := env.seedUser(t, "Cid", "cid@example.com")

	m, err := env.store.SendMessage(ctx, domain.Message{UserID: bea.ID, Content: "delete me"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := env.store.DeleteMessage(ctx, m.ID, cid.ID); !errors.Is(err, ErrNotMessageOwner) {
		t.Fatalf("expected ErrNotMessageOwner, got %v", err)
	}
	if err := env.store.DeleteMessage(ctx, m.ID, bea.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, ok := env.store.GetMessage(m.ID); ok {
		t.Fatalf("message still present")
	}

	m2, err := env.store.SendMessage(ctx, domain.Message{UserID: bea.ID, Content: "admin removes"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := env.store.DeleteMessage(ctx, m2.ID, admin.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	// Deleting an absent id is tolerated.
	if err := env.store.DeleteMessage(ctx, m2.ID, admin.ID); err != nil {
		t.Fatalf("second delete must be tolerated, got %v", err)
	}
}

func TestToggleReaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")

	m, err := env.store.SendMessage(ctx, domain.Message{UserID: bea.ID, Content: "react to me"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := env.store.ToggleReaction(ctx, m.ID, bea.ID, "thumbsup"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	got, _ := env.store.GetMessage(m.ID)
	if !containsString(got.Reactions["thumbsup"], bea.ID) {
		t.Fatalf("expected reaction, got %+v", got.Reactions)
	}

	if err := env.store.ToggleReaction(ctx, m.ID, bea.ID, "thumbsup"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	got, _ = env.store.GetMessage(m.ID)
	if _, ok := got.Reactions["thumbsup"]; ok {
		t.Fatalf("expected emptied reaction pruned, got %+v", got.Reactions)
	}
}

func TestMarkMessageRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedAdmin(t)
	bea := env.seedUser(t, "Bea", "bea@example.com")
	cid := env.seedUser(t, "Cid", "cid@example.com")

	m, err := env.store.SendMessage(ctx, domain.Message{UserID: bea.ID, Content: "read receipt"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := env.store.MarkMessageRead(ctx, m.ID, cid.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := env.store.MarkMessageRead(ctx, m.ID, cid.ID); err != nil {
		t.Fatalf("repeat mark must be a no-op, got %v", err)
	}
	got, _ := env.store.GetMessage(m.ID)
	if len(got.ReadBy) != 2 {
		t.Fatalf("expected author and reader, got %+v", got.ReadBy)
	}
}
