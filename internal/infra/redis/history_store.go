package redis

import (
	"context"
	"encoding/json"
	"time"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps bounded per-session conversation windows as Redis lists.
// Each append trims the list to the configured window and refreshes the
// session TTL, so idle sessions expire on their own.
type HistoryStore struct {
	client *redis.Client
	window int
	ttl    time.Duration
}

func NewHistoryStore(client *redis.Client, window int, ttl time.Duration) *HistoryStore {
	return &HistoryStore{client: client, window: window, ttl: ttl}
}

func (s *HistoryStore) Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if s.window > 0 {
			pipe.LTrim(ctx, key, int64(-s.window), -1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]domain.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn domain.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *HistoryStore) key(sessionID string) string {
	return "chat:" + sessionID
}
