package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"tutor-game-service/internal/domain"
)

// QuizGenerator is the quiz-generation collaborator: given conversation
// context it returns the model's raw textual output.
type QuizGenerator interface {
	GenerateRaw(ctx context.Context, contextText string) (string, error)
}

// QuestionBank supplies curated default questions for the fallback path.
type QuestionBank interface {
	Pick(ctx context.Context) (domain.FallbackQuestion, error)
}

// QuizGenService turns free-form conversation context into one validated
// multiple-choice question. Malformed model output never reaches the caller;
// it is replaced by a question from the bank.
type QuizGenService struct {
	generator QuizGenerator
	bank      QuestionBank
}

func NewQuizGenService(generator QuizGenerator, bank QuestionBank) *QuizGenService {
	return &QuizGenService{generator: generator, bank: bank}
}

// lastResort covers the case where the question bank itself is unavailable.
var lastResort = domain.FallbackQuestion{
	Question:           "What is the main nutrient found in meat?",
	Options:            []string{"Protein", "Fiber", "Vitamin C", "Carbohydrates"},
	CorrectAnswerIndex: 0,
}

// Generate produces one quiz question from the supplied context.
func (s *QuizGenService) Generate(ctx context.Context, contextText string) (domain.QuizQuestion, error) {
	raw, err := s.generator.GenerateRaw(ctx, contextText)
	if err != nil {
		log.Printf("quiz generation failed, falling back: %v", err)
		return s.fallback(ctx), nil
	}

	parsed, err := parseGeneratedQuiz(raw)
	if err != nil {
		log.Printf("quiz output rejected, falling back: %v", err)
		return s.fallback(ctx), nil
	}
	return toQuizQuestion(parsed), nil
}

func (s *QuizGenService) fallback(ctx context.Context) domain.QuizQuestion {
	q, err := s.bank.Pick(ctx)
	if err != nil {
		log.Printf("question bank unavailable, using built-in default: %v", err)
		q = lastResort
	} else if !usableFallback(q) {
		// Bank rows come from external storage; a bad row must not panic.
		log.Printf("question bank row malformed, using built-in default")
		q = lastResort
	}
	return toQuizQuestion(q)
}

func usableFallback(q domain.FallbackQuestion) bool {
	return len(q.Options) > 0 &&
		q.CorrectAnswerIndex >= 0 &&
		q.CorrectAnswerIndex < len(q.Options)
}

// parseGeneratedQuiz is the strict parse-then-validate step: the payload must
// be exactly the requested JSON document, with four options and an index in
// range. Anything else is malformed.
func parseGeneratedQuiz(raw string) (domain.FallbackQuestion, error) {
	var q domain.FallbackQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &q); err != nil {
		return q, fmt.Errorf("%w: %v", domain.ErrMalformedQuiz, err)
	}
	if strings.TrimSpace(q.Question) == "" {
		return q, fmt.Errorf("%w: empty question", domain.ErrMalformedQuiz)
	}
	if len(q.Options) != 4 {
		return q, fmt.Errorf("%w: want 4 options, got %d", domain.ErrMalformedQuiz, len(q.Options))
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return q, fmt.Errorf("%w: blank option", domain.ErrMalformedQuiz)
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
		return q, fmt.Errorf("%w: answer index %d out of range", domain.ErrMalformedQuiz, q.CorrectAnswerIndex)
	}
	return q, nil
}

func toQuizQuestion(q domain.FallbackQuestion) domain.QuizQuestion {
	return domain.QuizQuestion{
		Question:            q.Question,
		Options:             q.Options,
		CorrectAnswerLetter: string(rune('A' + q.CorrectAnswerIndex)),
		CorrectAnswerText:   q.Options[q.CorrectAnswerIndex],
	}
}
