package redis

import (
	"context"
	"sort"
	"strconv"
	"time"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// GameStore keeps one hash per (user, game) pair plus a per-user set of
// game numbers. SADD doubles as the create-once signal: the pair is the
// idempotency key, so a game can never be created twice.
// Layout:
//
//	SADD games:{userID} {gameNumber}
//	HSET game:{userID}:{gameNumber} question_number correct_count created_at
type GameStore struct {
	client *redis.Client
}

func NewGameStore(client *redis.Client) *GameStore {
	return &GameStore{client: client}
}

func (s *GameStore) Get(ctx context.Context, userID string, gameNumber int) (domain.GameProgress, error) {
	fields, err := s.client.HGetAll(ctx, s.gameKey(userID, gameNumber)).Result()
	if err != nil {
		return domain.GameProgress{}, err
	}
	if len(fields) == 0 {
		return domain.GameProgress{}, domain.ErrGameNotFound
	}
	return gameFromHash(userID, gameNumber, fields), nil
}

func (s *GameStore) Create(ctx context.Context, game domain.GameProgress) (bool, error) {
	added, err := s.client.SAdd(ctx, s.setKey(game.UserID), game.GameNumber).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}
	err = s.client.HSet(ctx, s.gameKey(game.UserID, game.GameNumber), map[string]interface{}{
		"question_number": game.QuestionNumber,
		"correct_count":   game.CorrectCount,
		"created_at":      game.CreatedAt.Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GameStore) SetQuestionNumber(ctx context.Context, userID string, gameNumber, questionNumber int) error {
	key := s.gameKey(userID, gameNumber)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrGameNotFound
	}
	return s.client.HSet(ctx, key, "question_number", questionNumber).Err()
}

func (s *GameStore) Upsert(ctx context.Context, userID string, gameNumber, questionNumber, correctDelta int, createdAt time.Time) error {
	key := s.gameKey(userID, gameNumber)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// Register the game so listing and read-repair see it; total_games is
		// deliberately not incremented on this path.
		pipe.SAdd(ctx, s.setKey(userID), gameNumber)
		pipe.HSetNX(ctx, key, "created_at", createdAt.Format(time.RFC3339Nano))
		pipe.HSet(ctx, key, "question_number", questionNumber)
		if correctDelta != 0 {
			pipe.HIncrBy(ctx, key, "correct_count", int64(correctDelta))
		} else {
			pipe.HSetNX(ctx, key, "correct_count", 0)
		}
		return nil
	})
	return err
}

func (s *GameStore) ListByUser(ctx context.Context, userID string) ([]domain.GameProgress, error) {
	members, err := s.client.SMembers(ctx, s.setKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(members))
	for _, m := range members {
		if n, err := strconv.Atoi(m); err == nil {
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)

	games := make([]domain.GameProgress, 0, len(numbers))
	for _, n := range numbers {
		fields, err := s.client.HGetAll(ctx, s.gameKey(userID, n)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		games = append(games, gameFromHash(userID, n, fields))
	}
	return games, nil
}

func (s *GameStore) DeleteByUser(ctx context.Context, userID string) error {
	members, err := s.client.SMembers(ctx, s.setKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		if n, err := strconv.Atoi(m); err == nil {
			keys = append(keys, s.gameKey(userID, n))
		}
	}
	keys = append(keys, s.setKey(userID))
	return s.client.Del(ctx, keys...).Err()
}

func (s *GameStore) gameKey(userID string, gameNumber int) string {
	return "game:" + userID + ":" + strconv.Itoa(gameNumber)
}

func (s *GameStore) setKey(userID string) string {
	return "games:" + userID
}

func gameFromHash(userID string, gameNumber int, fields map[string]string) domain.GameProgress {
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	return domain.GameProgress{
		UserID:         userID,
		GameNumber:     gameNumber,
		QuestionNumber: atoi(fields["question_number"]),
		CorrectCount:   atoi(fields["correct_count"]),
		CreatedAt:      createdAt,
	}
}
