package memory

import (
	"context"
	"sync"

	"tutor-game-service/internal/domain"
)

// MessageStore is an in-memory implementation of app.MessageStore.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string][]domain.ChatMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[string][]domain.ChatMessage)}
}

func (s *MessageStore) Append(_ context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.UserID] = append(s.messages[msg.UserID], msg)
	return nil
}

func (s *MessageStore) ListByUser(_ context.Context, userID string) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]domain.ChatMessage, len(s.messages[userID]))
	copy(msgs, s.messages[userID])
	return msgs, nil
}

func (s *MessageStore) ListByGame(_ context.Context, userID string, gameNumber int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]domain.ChatMessage, 0)
	for _, msg := range s.messages[userID] {
		if msg.GameNumber == gameNumber {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (s *MessageStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, userID)
	return nil
}
