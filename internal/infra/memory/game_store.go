package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tutor-game-service/internal/domain"
)

type gameKey struct {
	userID     string
	gameNumber int
}

// GameStore is an in-memory implementation of app.GameStore.
type GameStore struct {
	mu    sync.RWMutex
	games map[gameKey]*domain.GameProgress
}

func NewGameStore() *GameStore {
	return &GameStore{games: make(map[gameKey]*domain.GameProgress)}
}

func (s *GameStore) Get(_ context.Context, userID string, gameNumber int) (domain.GameProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[gameKey{userID, gameNumber}]
	if !ok {
		return domain.GameProgress{}, domain.ErrGameNotFound
	}
	return *game, nil
}

func (s *GameStore) Create(_ context.Context, game domain.GameProgress) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := gameKey{game.UserID, game.GameNumber}
	if _, ok := s.games[key]; ok {
		return false, nil
	}
	stored := game
	s.games[key] = &stored
	return true, nil
}

func (s *GameStore) SetQuestionNumber(_ context.Context, userID string, gameNumber, questionNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameKey{userID, gameNumber}]
	if !ok {
		return domain.ErrGameNotFound
	}
	game.QuestionNumber = questionNumber
	return nil
}

func (s *GameStore) Upsert(_ context.Context, userID string, gameNumber, questionNumber, correctDelta int, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := gameKey{userID, gameNumber}
	game, ok := s.games[key]
	if !ok {
		game = &domain.GameProgress{
			UserID:     userID,
			GameNumber: gameNumber,
			CreatedAt:  createdAt,
		}
		s.games[key] = game
	}
	game.QuestionNumber = questionNumber
	game.CorrectCount += correctDelta
	return nil
}

func (s *GameStore) ListByUser(_ context.Context, userID string) ([]domain.GameProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.GameProgress, 0)
	for key, game := range s.games {
		if key.userID == userID {
			games = append(games, *game)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].GameNumber < games[j].GameNumber })
	return games, nil
}

func (s *GameStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.games {
		if key.userID == userID {
			delete(s.games, key)
		}
	}
	return nil
}
