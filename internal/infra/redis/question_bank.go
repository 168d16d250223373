package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"tutor-game-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches fallback questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.FallbackQuestion, error)
}

// QuestionBank caches the fallback question set in Redis and falls back to a
// loader on cache miss. The whole set is stored as one JSON document:
//
//	SET quiz:fallback:questions {json array} EX {ttl+jitter}
//
// Randomness goes through the locked top-level rand functions; Pick runs on
// concurrent request goroutines.
type QuestionBank struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionBank(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

const bankKey = "quiz:fallback:questions"

func (b *QuestionBank) Pick(ctx context.Context) (domain.FallbackQuestion, error) {
	if questions, ok := b.fromCache(ctx); ok {
		return b.pickOne(questions), nil
	}

	result, err, _ := b.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := b.fromCache(ctx); ok {
			return questions, nil
		}

		questions, err := b.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, domain.ErrQuestionBankEmpty
		}

		if data, err := json.Marshal(questions); err == nil {
			_ = b.client.Set(ctx, bankKey, data, b.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return domain.FallbackQuestion{}, err
	}
	return b.pickOne(result.([]domain.FallbackQuestion)), nil
}

func (b *QuestionBank) fromCache(ctx context.Context) ([]domain.FallbackQuestion, bool) {
	raw, err := b.client.Get(ctx, bankKey).Result()
	if err != nil {
		return nil, false
	}
	var questions []domain.FallbackQuestion
	if err := json.Unmarshal([]byte(raw), &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (b *QuestionBank) pickOne(questions []domain.FallbackQuestion) domain.FallbackQuestion {
	return questions[rand.Intn(len(questions))]
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
