package memory

import (
	"context"
	"testing"
	"time"

	"tutor-game-service/internal/domain"
)

func TestGameStoreCreateOnce(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()

	created, err := store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: 1, QuestionNumber: 1, CreatedAt: time.Now()})
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	created, err = store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: 1, QuestionNumber: 9})
	if err != nil || created {
		t.Fatalf("expected no second creation, got created=%v err=%v", created, err)
	}

	game, _ := store.Get(ctx, "u1", 1)
	if game.QuestionNumber != 1 {
		t.Fatalf("second create must not overwrite, got question %d", game.QuestionNumber)
	}
}

func TestGameStoreUpsertSeedsAndIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, "u1", 3, 1, 1, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, "u1", 3, 2, 0, first.Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, "u1", 3, 3, 1, first.Add(2*time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	game, err := store.Get(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if game.CorrectCount != 2 || game.QuestionNumber != 3 {
		t.Fatalf("expected correct=2 question=3, got %+v", game)
	}
	if !game.CreatedAt.Equal(first) {
		t.Fatalf("later upserts must not overwrite created_at, got %v", game.CreatedAt)
	}

	games, _ := store.ListByUser(ctx, "u1")
	if len(games) != 1 {
		t.Fatalf("upserted game must be listed, got %d", len(games))
	}
}

func TestGameStoreListSortedAndScoped(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore()

	for _, n := range []int{3, 1, 2} {
		if _, err := store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: n}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := store.Create(ctx, domain.GameProgress{UserID: "u2", GameNumber: 7}); err != nil {
		t.Fatalf("create: %v", err)
	}

	games, _ := store.ListByUser(ctx, "u1")
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}
	for i, game := range games {
		if game.GameNumber != i+1 {
			t.Fatalf("expected ascending game numbers, got %+v", games)
		}
	}

	if err := store.DeleteByUser(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	games, _ = store.ListByUser(ctx, "u1")
	if len(games) != 0 {
		t.Fatalf("expected no games after delete, got %d", len(games))
	}
	other, _ := store.ListByUser(ctx, "u2")
	if len(other) != 1 {
		t.Fatalf("delete must not touch other users, got %d", len(other))
	}
}
