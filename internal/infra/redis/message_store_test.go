package redis

import (
	"context"
	"testing"
	"time"

	"tutor-game-service/internal/domain"
)

func TestMessageStoreFiltersByGame(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore(newTestClient(t))

	for _, game := range []int{1, 2, 1} {
		err := store.Append(ctx, domain.ChatMessage{
			UserID:      "u1",
			Username:    "alice",
			UserMessage: "question",
			BotResponse: "answer",
			GameNumber:  game,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}

	game1, err := store.ListByGame(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("list by game: %v", err)
	}
	if len(game1) != 2 {
		t.Fatalf("expected 2 messages for game 1, got %d", len(game1))
	}

	if err := store.DeleteByUser(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, _ = store.ListByUser(ctx, "u1")
	if len(all) != 0 {
		t.Fatalf("expected empty transcript, got %d", len(all))
	}
}
