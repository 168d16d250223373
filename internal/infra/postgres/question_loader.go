package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"tutor-game-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads the fallback question set from Postgres. Each row
// holds one question as JSONB.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.FallbackQuestion, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM quiz_fallback_questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.FallbackQuestion
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.FallbackQuestion
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
