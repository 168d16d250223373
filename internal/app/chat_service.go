package app

import (
	"context"
	"fmt"
	"time"

	"tutor-game-service/internal/domain"
)

// Completer is the conversational collaborator: given ordered turns it
// returns the next assistant turn.
type Completer interface {
	Complete(ctx context.Context, turns []domain.ChatTurn) (string, error)
}

// HistoryStore keeps per-session conversation windows. Implementations trim
// to a bounded number of turns so no session grows without limit.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, turns ...domain.ChatTurn) error
	List(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Clear(ctx context.Context, sessionID string) error
}

// ChatService drives the tutoring conversation. History is keyed by session
// so concurrent users never share a buffer.
type ChatService struct {
	users        UserStore
	messages     MessageStore
	history      HistoryStore
	completer    Completer
	systemPrompt string
	now          func() time.Time
}

func NewChatService(users UserStore, messages MessageStore, history HistoryStore, completer Completer, systemPrompt string) *ChatService {
	return &ChatService{
		users:        users,
		messages:     messages,
		history:      history,
		completer:    completer,
		systemPrompt: systemPrompt,
		now:          time.Now,
	}
}

// Ask continues the session's conversation with one more user turn and
// returns the assistant reply. Upstream failures are not retried here.
func (s *ChatService) Ask(ctx context.Context, sessionID, question string) (string, error) {
	history, err := s.history.List(ctx, sessionID)
	if err != nil {
		return "", err
	}

	turns := make([]domain.ChatTurn, 0, len(history)+2)
	if s.systemPrompt != "" {
		turns = append(turns, domain.ChatTurn{Role: domain.RoleSystem, Content: s.systemPrompt})
	}
	turns = append(turns, history...)
	turns = append(turns, domain.ChatTurn{Role: domain.RoleUser, Content: question})

	answer, err := s.completer.Complete(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstreamService, err)
	}

	if err := s.history.Append(ctx, sessionID,
		domain.ChatTurn{Role: domain.RoleUser, Content: question},
		domain.ChatTurn{Role: domain.RoleAssistant, Content: answer},
	); err != nil {
		return "", err
	}
	return answer, nil
}

// SaveMessage answers a single tutoring question for a registered user and
// persists the exchange against the game/question it belongs to.
func (s *ChatService) SaveMessage(ctx context.Context, username, text string, gameNumber, questionNumber int) (domain.ChatMessage, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	turns := []domain.ChatTurn{
		{Role: domain.RoleSystem, Content: s.systemPrompt},
		{Role: domain.RoleUser, Content: text},
	}
	reply, err := s.completer.Complete(ctx, turns)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrUpstreamService, err)
	}

	msg := domain.ChatMessage{
		UserID:         user.ID,
		Username:       username,
		UserMessage:    text,
		BotResponse:    reply,
		GameNumber:     gameNumber,
		QuestionNumber: questionNumber,
		CreatedAt:      s.now(),
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}

// EndSession discards the session's conversation window.
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	return s.history.Clear(ctx, sessionID)
}
