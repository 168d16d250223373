package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"tutor-game-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches fallback questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.FallbackQuestion, error)
}

// QuestionBank caches the fallback question set with TTL to avoid repeated
// backing-store hits and picks one at random per request. Randomness goes
// through the locked top-level rand functions; Pick runs on concurrent
// request goroutines.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	questions []domain.FallbackQuestion
	expiresAt time.Time
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (b *QuestionBank) Pick(ctx context.Context) (domain.FallbackQuestion, error) {
	now := b.clock()

	b.mu.RLock()
	if len(b.questions) > 0 && b.expiresAt.After(now) {
		q := b.questions[rand.Intn(len(b.questions))]
		b.mu.RUnlock()
		return q, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("bank", func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if len(b.questions) > 0 && b.expiresAt.After(now) {
			questions := b.questions
			b.mu.RUnlock()
			return questions, nil
		}
		b.mu.RUnlock()

		questions, err := b.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, domain.ErrQuestionBankEmpty
		}

		b.mu.Lock()
		b.questions = questions
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return domain.FallbackQuestion{}, err
	}

	questions := result.([]domain.FallbackQuestion)
	return questions[rand.Intn(len(questions))], nil
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed question set (useful without Postgres).
type StaticQuestionLoader struct {
	questions []domain.FallbackQuestion
}

func NewStaticQuestionLoader(questions []domain.FallbackQuestion) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.FallbackQuestion, error) {
	return l.questions, nil
}

// DefaultQuestions is the built-in fallback set used when no backing store
// is configured.
func DefaultQuestions() []domain.FallbackQuestion {
	return []domain.FallbackQuestion{
		{
			Question:           "What is the main nutrient found in meat?",
			Options:            []string{"Protein", "Fiber", "Vitamin C", "Carbohydrates"},
			CorrectAnswerIndex: 0,
		},
		{
			Question:           "Which nutrient is most abundant in meat?",
			Options:            []string{"Protein", "Carbohydrates", "Lipids", "Vitamins"},
			CorrectAnswerIndex: 0,
		},
	}
}
