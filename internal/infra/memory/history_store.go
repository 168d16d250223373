package memory

import (
	"context"
	"sync"

	"tutor-game-service/internal/domain"
)

// HistoryStore keeps bounded per-session conversation windows in memory.
type HistoryStore struct {
	window   int
	mu       sync.RWMutex
	sessions map[string][]domain.ChatTurn
}

// NewHistoryStore creates a store that keeps at most window turns per session.
func NewHistoryStore(window int) *HistoryStore {
	return &HistoryStore{
		window:   window,
		sessions: make(map[string][]domain.ChatTurn),
	}
}

func (s *HistoryStore) Append(_ context.Context, sessionID string, turns ...domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.sessions[sessionID], turns...)
	if s.window > 0 && len(history) > s.window {
		history = history[len(history)-s.window:]
	}
	s.sessions[sessionID] = history
	return nil
}

func (s *HistoryStore) List(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]domain.ChatTurn, len(s.sessions[sessionID]))
	copy(turns, s.sessions[sessionID])
	return turns, nil
}

func (s *HistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
