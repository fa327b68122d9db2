package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"intellitest/internal/app"
	"intellitest/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := app.State{ID: "s-1", Phase: app.InProgress, Answers: domain.NewAnswerSet(3), Remaining: 10}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Phase != app.InProgress || got.Total() != 3 || got.Remaining != 10 {
		t.Fatalf("unexpected state %+v", got)
	}

	if err := store.Delete(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpiresAndSweeps(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithTTL(time.Hour)
	store.clock = func() time.Time { return now }

	for _, id := range []string{"s-2", "s-1"} {
		if err := store.Save(ctx, app.State{ID: id, Phase: app.InProgress}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	ids, _ := store.SessionIDs(ctx)
	if len(ids) != 2 || ids[0] != "s-1" || ids[1] != "s-2" {
		t.Fatalf("unexpected ids %v", ids)
	}

	now = now.Add(40 * time.Minute)
	if err := store.Save(ctx, app.State{ID: "s-2", Phase: app.Submitted}); err != nil {
		t.Fatalf("refresh s-2: %v", err)
	}
	now = now.Add(30 * time.Minute)

	if _, err := store.Load(ctx, "s-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected s-1 expired, got %v", err)
	}
	if got, err := store.Load(ctx, "s-2"); err != nil || got.Phase != app.Submitted {
		t.Fatalf("expected refreshed s-2 to survive: %+v %v", got, err)
	}
	if ids, _ := store.SessionIDs(ctx); len(ids) != 1 || ids[0] != "s-2" {
		t.Fatalf("expired session still listed: %v", ids)
	}
	if n := store.Sweep(); n != 1 || store.Len() != 1 {
		t.Fatalf("expected one swept session, swept %d and kept %d", n, store.Len())
	}
}

func TestSessionStoreWithoutTTLKeepsSessions(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	store.clock = func() time.Time { return time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := store.Save(ctx, app.State{ID: "s-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if n := store.Sweep(); n != 0 {
		t.Fatalf("sweep removed %d sessions without a ttl", n)
	}
	if _, err := store.Load(ctx, "s-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
}
