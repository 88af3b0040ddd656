package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studyhub-service/internal/domain"
)

// QotdStore enforces the once-per-question invariant with the primary key
// on (user_id, question_id): the insert and the score bump run in one
// transaction, and ON CONFLICT DO NOTHING makes concurrent submissions
// race-free — exactly one wins, the rest see created=false.
type QotdStore struct {
	pool *pgxpool.Pool
}

func NewQotdStore(pool *pgxpool.Pool) *QotdStore {
	return &QotdStore{pool: pool}
}

func (s *QotdStore) Record(ctx context.Context, answer domain.QotdAnswer, bonus int) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO qotd_answers (user_id, question_id, selected_option_id, is_correct, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id, question_id) DO NOTHING`,
		answer.UserID, answer.QuestionID, answer.SelectedOptionID, answer.IsCorrect, answer.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert answer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}
	if answer.IsCorrect {
		if _, err := tx.Exec(ctx, `UPDATE users SET score = score + $2 WHERE id=$1`, answer.UserID, bonus); err != nil {
			return false, fmt.Errorf("apply bonus: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *QotdStore) Revoke(ctx context.Context, userID, questionID string, bonus int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var wasCorrect bool
	err = tx.QueryRow(ctx, `
		DELETE FROM qotd_answers WHERE user_id=$1 AND question_id=$2
		RETURNING is_correct`, userID, questionID).Scan(&wasCorrect)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if wasCorrect {
		if _, err := tx.Exec(ctx, `UPDATE users SET score = score - $2 WHERE id=$1`, userID, bonus); err != nil {
			return fmt.Errorf("revert bonus: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *QotdStore) GetAnswer(ctx context.Context, userID, questionID string) (domain.QotdAnswer, bool, error) {
	var answer domain.QotdAnswer
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, question_id, selected_option_id, is_correct, created_at
		FROM qotd_answers WHERE user_id=$1 AND question_id=$2`, userID, questionID).
		Scan(&answer.UserID, &answer.QuestionID, &answer.SelectedOptionID, &answer.IsCorrect, &answer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QotdAnswer{}, false, nil
	}
	if err != nil {
		return domain.QotdAnswer{}, false, fmt.Errorf("load answer: %w", err)
	}
	return answer, true, nil
}
