package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutor-game-service/internal/domain"
)

func TestGameStoreCreateOnce(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore(newTestClient(t))

	created, err := store.Create(ctx, domain.GameProgress{
		UserID: "u1", GameNumber: 1, QuestionNumber: 1, CorrectCount: 0, CreatedAt: time.Now(),
	})
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}

	created, err = store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: 1, QuestionNumber: 9})
	if err != nil || created {
		t.Fatalf("expected idempotent create, got created=%v err=%v", created, err)
	}

	game, err := store.Get(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if game.QuestionNumber != 1 {
		t.Fatalf("second create must not overwrite, got %+v", game)
	}

	if _, err := store.Get(ctx, "u1", 2); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestGameStoreUpsertCreatesAndIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore(newTestClient(t))

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Missing record: correct_count seeds at 0, then the delta lands.
	if err := store.Upsert(ctx, "u1", 5, 1, 1, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, "u1", 5, 2, 0, first.Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, "u1", 5, 3, 1, first.Add(2*time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	game, err := store.Get(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if game.CorrectCount != 2 || game.QuestionNumber != 3 {
		t.Fatalf("expected correct=2 question=3, got %+v", game)
	}
	if !game.CreatedAt.Equal(first) {
		t.Fatalf("later upserts must not overwrite created_at, got %v", game.CreatedAt)
	}

	games, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("upserted game must be listed for read-repair, got %d", len(games))
	}
}

func TestGameStoreSetQuestionNumber(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore(newTestClient(t))

	if _, err := store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: 1, QuestionNumber: 1, CorrectCount: 4, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SetQuestionNumber(ctx, "u1", 1, 6); err != nil {
		t.Fatalf("set question: %v", err)
	}

	game, _ := store.Get(ctx, "u1", 1)
	if game.QuestionNumber != 6 || game.CorrectCount != 4 {
		t.Fatalf("expected question moved and correct_count untouched, got %+v", game)
	}

	if err := store.SetQuestionNumber(ctx, "u1", 9, 1); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestGameStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewGameStore(newTestClient(t))

	for _, n := range []int{10, 2, 7} {
		if _, err := store.Create(ctx, domain.GameProgress{UserID: "u1", GameNumber: n, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	games, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 3 || games[0].GameNumber != 2 || games[2].GameNumber != 10 {
		t.Fatalf("expected games sorted ascending, got %+v", games)
	}

	if err := store.DeleteByUser(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	games, _ = store.ListByUser(ctx, "u1")
	if len(games) != 0 {
		t.Fatalf("expected empty after delete, got %d", len(games))
	}
}
