package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studyhub-service/internal/domain"
)

// AttemptStore persists immutable quiz attempts; answers ride in one JSONB
// column since they are only ever read back whole for the share page.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, mcq_set_id, mcq_set_name, score, total_questions, answers, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		attempt.ID, attempt.UserID, attempt.MCQSetID, attempt.MCQSetName,
		attempt.Score, attempt.TotalQuestions, answers, attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID string) (domain.QuizAttempt, error) {
	var (
		attempt domain.QuizAttempt
		answers []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, mcq_set_id, mcq_set_name, score, total_questions, answers, created_at
		FROM quiz_attempts WHERE id=$1`, attemptID).
		Scan(&attempt.ID, &attempt.UserID, &attempt.MCQSetID, &attempt.MCQSetName,
			&attempt.Score, &attempt.TotalQuestions, &answers, &attempt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return attempt, nil
}
