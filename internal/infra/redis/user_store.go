package redis

import (
	"context"
	"strconv"
	"time"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// UserStore keeps each user as a Redis hash plus a username index key.
// Layout:
//
//	SET  user:name:{username} -> {userID}
//	HSET user:{userID} username password_hash best_score total_games total_correct created_at
//
// Counters are mutated with HINCRBY only; best_score goes through a
// compare-and-set script so stale candidates never regress it.
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

// setIfHigher updates best_score only when the candidate is strictly greater.
var setIfHigher = redis.NewScript(`
local cur = tonumber(redis.call('HGET', KEYS[1], 'best_score') or '0')
local cand = tonumber(ARGV[1])
if cand > cur then
  redis.call('HSET', KEYS[1], 'best_score', ARGV[1])
  return 1
end
return 0
`)

func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	userID, err := s.client.Get(ctx, s.nameKey(username)).Result()
	if err == redis.Nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return s.findByID(ctx, userID)
}

func (s *UserStore) findByID(ctx context.Context, userID string) (domain.User, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return domain.User{}, err
	}
	if len(fields) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	return domain.User{
		ID:           userID,
		Username:     fields["username"],
		PasswordHash: fields["password_hash"],
		BestScore:    atoi(fields["best_score"]),
		Stats: domain.Stats{
			TotalGames:   atoi(fields["total_games"]),
			TotalCorrect: atoi(fields["total_correct"]),
		},
		CreatedAt: createdAt,
	}, nil
}

func (s *UserStore) Create(ctx context.Context, user domain.User) error {
	ok, err := s.client.SetNX(ctx, s.nameKey(user.Username), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUsernameTaken
	}
	return s.client.HSet(ctx, s.userKey(user.ID), map[string]interface{}{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"best_score":    user.BestScore,
		"total_games":   user.Stats.TotalGames,
		"total_correct": user.Stats.TotalCorrect,
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
	}).Err()
}

func (s *UserStore) IncrTotalGames(ctx context.Context, userID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.client.HIncrBy(ctx, s.userKey(userID), "total_games", 1).Err()
}

func (s *UserStore) IncrTotalCorrect(ctx context.Context, userID string, by int) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if by == 0 {
		return nil
	}
	return s.client.HIncrBy(ctx, s.userKey(userID), "total_correct", int64(by)).Err()
}

func (s *UserStore) SetBestScoreIfHigher(ctx context.Context, userID string, candidate int) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return setIfHigher.Run(ctx, s.client, []string{s.userKey(userID)}, candidate).Err()
}

func (s *UserStore) SetTotalGames(ctx context.Context, userID string, value int) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.client.HSet(ctx, s.userKey(userID), "total_games", value).Err()
}

func (s *UserStore) ResetStats(ctx context.Context, userID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.client.HSet(ctx, s.userKey(userID), "total_games", 0, "total_correct", 0).Err()
}

func (s *UserStore) requireUser(ctx context.Context, userID string) error {
	exists, err := s.client.Exists(ctx, s.userKey(userID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) userKey(userID string) string {
	return "user:" + userID
}

func (s *UserStore) nameKey(username string) string {
	return "user:name:" + username
}

func atoi(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}
