package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"studyhub-service/internal/app"
	"studyhub-service/internal/domain"
)

// UserStore reads and updates principal rows. It doubles as the rank store
// in Postgres-only deployments: scores are read straight off the users
// table.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var (
		user             domain.User
		noteAccess       []string
		attemptedQuizzes []string
		role             string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, display_name, role, full_notes_access, ai_access,
		       note_access, attempted_quizzes, score, show_on_leaderboard
		FROM users WHERE id=$1`, userID).
		Scan(&user.ID, &user.DisplayName, &role, &user.HasFullNotesAccess, &user.HasAIAccess,
			&noteAccess, &attemptedQuizzes, &user.Score, &user.ShowOnLeaderboard)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	user.Role = domain.Role(role)
	user.NoteAccess = toSet(noteAccess)
	user.AttemptedQuizzes = toSet(attemptedQuizzes)
	return user, nil
}

func (s *UserStore) PutUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, display_name, role, full_notes_access, ai_access,
		                   note_access, attempted_quizzes, score, show_on_leaderboard)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			display_name=EXCLUDED.display_name,
			role=EXCLUDED.role,
			full_notes_access=EXCLUDED.full_notes_access,
			ai_access=EXCLUDED.ai_access,
			note_access=EXCLUDED.note_access,
			attempted_quizzes=EXCLUDED.attempted_quizzes,
			score=EXCLUDED.score,
			show_on_leaderboard=EXCLUDED.show_on_leaderboard`,
		user.ID, user.DisplayName, string(user.Role), user.HasFullNotesAccess, user.HasAIAccess,
		toSlice(user.NoteAccess), toSlice(user.AttemptedQuizzes), user.Score, user.ShowOnLeaderboard)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// MarkQuizAttempted appends the set ID unless already present; the guard in
// the WHERE clause makes repeated calls a no-op.
func (s *UserStore) MarkQuizAttempted(ctx context.Context, userID, setID string) error {
	ct, err := s.pool.Exec(ctx, `
		UPDATE users SET attempted_quizzes = array_append(attempted_quizzes, $2)
		WHERE id=$1 AND NOT ($2 = ANY(attempted_quizzes))`, userID, setID)
	if err != nil {
		return fmt.Errorf("mark attempted: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Either already marked or the user is missing; only the latter
		// is an error.
		var exists bool
		if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("mark attempted: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
	}
	return nil
}

// IncrScore satisfies app.RankStore. QOTD scoring already moves the score
// inside its transaction, so there is nothing extra to apply here.
func (s *UserStore) IncrScore(_ context.Context, _ string, _ int) error {
	return nil
}

// Top satisfies app.RankStore. n <= 0 means no limit.
func (s *UserStore) Top(ctx context.Context, n int) ([]app.RankedScore, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, score FROM users ORDER BY score DESC, id LIMIT NULLIF($1, 0)`, n)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}
	defer rows.Close()

	var ranked []app.RankedScore
	for rows.Next() {
		var r app.RankedScore
		if err := rows.Scan(&r.UserID, &r.Score); err != nil {
			return nil, fmt.Errorf("scan rank: %w", err)
		}
		ranked = append(ranked, r)
	}
	return ranked, rows.Err()
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func toSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v, ok := range set {
		if ok {
			out = append(out, v)
		}
	}
	return out
}
