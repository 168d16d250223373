package redis

import (
	"context"
	"encoding/json"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AttemptStore appends quiz attempts as JSON documents on a per-user list.
// RPUSH preserves insertion order, which is creation order.
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) Append(ctx context.Context, attempt domain.QuizAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key(attempt.UserID), data).Err()
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	attempts := make([]domain.QuizAttempt, 0, len(raw))
	for _, item := range raw {
		var attempt domain.QuizAttempt
		if err := json.Unmarshal([]byte(item), &attempt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func (s *AttemptStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *AttemptStore) key(userID string) string {
	return "attempts:" + userID
}
