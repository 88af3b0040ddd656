package memory

import (
	"context"
	"sort"
	"sync"

	"studyhub-service/internal/app"
	"studyhub-service/internal/domain"
)

// UserStore keeps principals in memory. It also serves as the rank store:
// scores live on the user record, so the leaderboard reads straight from
// the source of truth.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserStore(seed ...domain.User) *UserStore {
	s := &UserStore{users: make(map[string]*domain.User)}
	for i := range seed {
		u := seed[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *UserStore) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return cloneUser(*user), nil
}

func (s *UserStore) PutUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := cloneUser(user)
	s.users[u.ID] = &u
	return nil
}

// MarkQuizAttempted performs the idempotent set union on the attempted set.
func (s *UserStore) MarkQuizAttempted(_ context.Context, userID, setID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if user.AttemptedQuizzes == nil {
		user.AttemptedQuizzes = make(map[string]bool)
	}
	user.AttemptedQuizzes[setID] = true
	return nil
}

// addScore is called by the QOTD store under its own guard.
func (s *UserStore) addScore(userID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.Score += delta
	}
}

// IncrScore satisfies app.RankStore. Scores already move inside the QOTD
// record unit, so the rank store has nothing extra to apply.
func (s *UserStore) IncrScore(_ context.Context, _ string, _ int) error {
	return nil
}

// Top satisfies app.RankStore: users ordered by score descending, ties by ID.
func (s *UserStore) Top(_ context.Context, n int) ([]app.RankedScore, error) {
	s.mu.RLock()
	ranked := make([]app.RankedScore, 0, len(s.users))
	for _, user := range s.users {
		ranked = append(ranked, app.RankedScore{UserID: user.ID, Score: user.Score})
	}
	s.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func cloneUser(u domain.User) domain.User {
	u.NoteAccess = cloneSet(u.NoteAccess)
	u.AttemptedQuizzes = cloneSet(u.AttemptedQuizzes)
	return u
}

func cloneSet(set map[string]bool) map[string]bool {
	if set == nil {
		return nil
	}
	out := make(map[string]bool, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}
