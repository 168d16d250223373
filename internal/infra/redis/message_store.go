package redis

import (
	"context"
	"encoding/json"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// MessageStore appends tutor exchanges as JSON documents on a per-user list.
type MessageStore struct {
	client *redis.Client
}

func NewMessageStore(client *redis.Client) *MessageStore {
	return &MessageStore{client: client}
}

func (s *MessageStore) Append(ctx context.Context, msg domain.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key(msg.UserID), data).Err()
}

func (s *MessageStore) ListByUser(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	return s.list(ctx, userID, func(domain.ChatMessage) bool { return true })
}

func (s *MessageStore) ListByGame(ctx context.Context, userID string, gameNumber int) ([]domain.ChatMessage, error) {
	return s.list(ctx, userID, func(msg domain.ChatMessage) bool {
		return msg.GameNumber == gameNumber
	})
}

func (s *MessageStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *MessageStore) list(ctx context.Context, userID string, keep func(domain.ChatMessage) bool) ([]domain.ChatMessage, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, err
		}
		if keep(msg) {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (s *MessageStore) key(userID string) string {
	return "messages:" + userID
}
