package app

import (
	"context"
	"sort"
	"time"

	"tutor-game-service/internal/domain"
)

// UserStore abstracts how user documents are stored (in-memory, Redis, etc).
// Counter mutations must be atomic per document; SetBestScoreIfHigher must
// not regress on concurrent calls with stale candidates.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, user domain.User) error
	IncrTotalGames(ctx context.Context, userID string) error
	IncrTotalCorrect(ctx context.Context, userID string, by int) error
	SetBestScoreIfHigher(ctx context.Context, userID string, candidate int) error
	// SetTotalGames is an authoritative overwrite reserved for read-repair.
	SetTotalGames(ctx context.Context, userID string, value int) error
	ResetStats(ctx context.Context, userID string) error
}

// GameStore owns per-(user, game) progress records.
type GameStore interface {
	Get(ctx context.Context, userID string, gameNumber int) (domain.GameProgress, error)
	// Create inserts the record if the (userID, gameNumber) pair is unseen and
	// reports whether it was created now. Existing records are left untouched.
	Create(ctx context.Context, game domain.GameProgress) (bool, error)
	SetQuestionNumber(ctx context.Context, userID string, gameNumber, questionNumber int) error
	// Upsert sets question_number and atomically adds correctDelta to
	// correct_count, creating the record if missing. createdAt is only used
	// when the record is created now; an existing stamp is never overwritten.
	Upsert(ctx context.Context, userID string, gameNumber, questionNumber, correctDelta int, createdAt time.Time) error
	ListByUser(ctx context.Context, userID string) ([]domain.GameProgress, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AttemptStore is the append-only quiz attempt log.
type AttemptStore interface {
	Append(ctx context.Context, attempt domain.QuizAttempt) error
	ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// MessageStore owns the tutor chat transcript per user.
type MessageStore interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	ListByUser(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	ListByGame(ctx context.Context, userID string, gameNumber int) ([]domain.ChatMessage, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// ProgressService contains the game progress, quiz recording, and stats use cases.
type ProgressService struct {
	users    UserStore
	games    GameStore
	attempts AttemptStore
	messages MessageStore
	now      func() time.Time
}

func NewProgressService(users UserStore, games GameStore, attempts AttemptStore, messages MessageStore) *ProgressService {
	return &ProgressService{
		users:    users,
		games:    games,
		attempts: attempts,
		messages: messages,
		now:      time.Now,
	}
}

// NewProgressServiceWithClock is test-only for deterministic timestamps.
func NewProgressServiceWithClock(users UserStore, games GameStore, attempts AttemptStore, messages MessageStore, now func() time.Time) *ProgressService {
	s := NewProgressService(users, games, attempts, messages)
	s.now = now
	return s
}

// ReportProgress records a coarse progress snapshot for one game.
// The first report for a (user, game) pair creates the record and is the only
// path that increments total_games; later reports only move question_number.
// correct_count is owned by RecordQuizResult after creation, so the two write
// paths never race on the same counter.
func (s *ProgressService) ReportProgress(ctx context.Context, username string, gameNumber, questionNumber, correctCount, highestScore int) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	created, err := s.games.Create(ctx, domain.GameProgress{
		UserID:         user.ID,
		GameNumber:     gameNumber,
		QuestionNumber: questionNumber,
		CorrectCount:   correctCount,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return err
	}

	if created {
		// Exactly once per distinct game; the pair is the idempotency key.
		if err := s.users.IncrTotalGames(ctx, user.ID); err != nil {
			return err
		}
	} else if err := s.games.SetQuestionNumber(ctx, user.ID, gameNumber, questionNumber); err != nil {
		return err
	}

	return s.users.SetBestScoreIfHigher(ctx, user.ID, highestScore)
}

// RecordQuizResult appends one quiz attempt and folds it into the game and
// user counters as a single logical event. Repeated submissions produce new
// attempt rows; the log is a full audit trail, not a set.
func (s *ProgressService) RecordQuizResult(ctx context.Context, username string, gameNumber, questionNumber int, question string, options []string, selected, correctLetter, correctText string, isCorrect bool) (domain.QuizResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.QuizResult{}, err
	}

	if err := s.attempts.Append(ctx, domain.QuizAttempt{
		UserID:              user.ID,
		Username:            username,
		GameNumber:          gameNumber,
		QuestionNumber:      questionNumber,
		QuizQuestion:        question,
		QuizOptions:         options,
		SelectedOption:      selected,
		CorrectAnswerLetter: correctLetter,
		CorrectAnswerText:   correctText,
		IsCorrect:           isCorrect,
		CreatedAt:           s.now(),
	}); err != nil {
		return domain.QuizResult{}, err
	}

	delta := 0
	if isCorrect {
		delta = 1
	}

	// The upsert path does not touch total_games; a game first seen here is
	// picked up by the next Stats read-repair.
	if err := s.games.Upsert(ctx, user.ID, gameNumber, questionNumber, delta, s.now()); err != nil {
		return domain.QuizResult{}, err
	}
	if err := s.users.IncrTotalCorrect(ctx, user.ID, delta); err != nil {
		return domain.QuizResult{}, err
	}

	return domain.QuizResult{
		IsCorrect:           isCorrect,
		CorrectAnswerLetter: correctLetter,
		CorrectAnswerText:   correctText,
	}, nil
}

// Stats returns the user's aggregate view, repairing total_games drift from
// the authoritative game record count before replying.
func (s *ProgressService) Stats(ctx context.Context, username string) (domain.StatsSnapshot, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.StatsSnapshot{}, err
	}

	games, err := s.games.ListByUser(ctx, user.ID)
	if err != nil {
		return domain.StatsSnapshot{}, err
	}
	messages, err := s.messages.ListByUser(ctx, user.ID)
	if err != nil {
		return domain.StatsSnapshot{}, err
	}

	totalGames := user.Stats.TotalGames
	if real := len(games); real != totalGames {
		if err := s.users.SetTotalGames(ctx, user.ID, real); err != nil {
			return domain.StatsSnapshot{}, err
		}
		totalGames = real
	}

	return domain.StatsSnapshot{
		Username:     username,
		BestScore:    user.BestScore,
		TotalGames:   totalGames,
		TotalCorrect: user.Stats.TotalCorrect,
		Games:        games,
		Messages:     messages,
	}, nil
}

// QuizHistory lists every recorded attempt for the user, oldest first.
func (s *ProgressService) QuizHistory(ctx context.Context, username string) ([]domain.QuizAttempt, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.Before(attempts[j].CreatedAt)
	})
	return attempts, nil
}

// GameMessages returns the tutor transcript for one game ordered by question.
func (s *ProgressService) GameMessages(ctx context.Context, username string, gameNumber int) ([]domain.ChatMessage, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByGame(ctx, user.ID, gameNumber)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].QuestionNumber < msgs[j].QuestionNumber
	})
	return msgs, nil
}

// DeleteAllForUser drops every game, message, and attempt record for the user
// and zeroes both aggregate counters. The user record itself survives.
func (s *ProgressService) DeleteAllForUser(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.messages.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.games.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	if err := s.attempts.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	return s.users.ResetStats(ctx, user.ID)
}
