package memory

import (
	"context"
	"sync"

	"tutor-game-service/internal/domain"
)

// AttemptStore is an in-memory append-only log of quiz attempts.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.QuizAttempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string][]domain.QuizAttempt)}
}

func (s *AttemptStore) Append(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)
	return nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempts := make([]domain.QuizAttempt, len(s.attempts[userID]))
	copy(attempts, s.attempts[userID])
	return attempts, nil
}

func (s *AttemptStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, userID)
	return nil
}
