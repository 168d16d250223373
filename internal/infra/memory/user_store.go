package memory

import (
	"context"
	"sync"

	"tutor-game-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	byName map[string]*domain.User
	byID   map[string]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byName: make(map[string]*domain.User),
		byID:   make(map[string]*domain.User),
	}
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byName[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func (s *UserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[user.Username]; ok {
		return domain.ErrUsernameTaken
	}
	stored := user
	s.byName[user.Username] = &stored
	s.byID[user.ID] = &stored
	return nil
}

func (s *UserStore) IncrTotalGames(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Stats.TotalGames++
	return nil
}

func (s *UserStore) IncrTotalCorrect(_ context.Context, userID string, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Stats.TotalCorrect += by
	return nil
}

func (s *UserStore) SetBestScoreIfHigher(_ context.Context, userID string, candidate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if candidate > user.BestScore {
		user.BestScore = candidate
	}
	return nil
}

func (s *UserStore) SetTotalGames(_ context.Context, userID string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Stats.TotalGames = value
	return nil
}

func (s *UserStore) ResetStats(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Stats = domain.Stats{}
	return nil
}
