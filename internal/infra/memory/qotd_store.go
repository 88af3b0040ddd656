package memory

import (
	"context"
	"sync"

	"studyhub-service/internal/domain"
)

// QotdStore keeps once-per-question answers in memory. A single mutex
// guards the existence check, the insert, and the score bump, so two
// concurrent submissions for the same (user, question) key cannot both
// pass the does-not-exist check.
type QotdStore struct {
	users *UserStore

	mu      sync.Mutex
	answers map[qotdKey]domain.QotdAnswer
}

type qotdKey struct {
	userID     string
	questionID string
}

func NewQotdStore(users *UserStore) *QotdStore {
	return &QotdStore{
		users:   users,
		answers: make(map[qotdKey]domain.QotdAnswer),
	}
}

func (s *QotdStore) Record(_ context.Context, answer domain.QotdAnswer, bonus int) (bool, error) {
	key := qotdKey{userID: answer.UserID, questionID: answer.QuestionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.answers[key]; exists {
		return false, nil
	}
	s.answers[key] = answer
	if answer.IsCorrect {
		s.users.addScore(answer.UserID, bonus)
	}
	return true, nil
}

func (s *QotdStore) Revoke(_ context.Context, userID, questionID string, bonus int) error {
	key := qotdKey{userID: userID, questionID: questionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	answer, exists := s.answers[key]
	if !exists {
		return nil
	}
	delete(s.answers, key)
	if answer.IsCorrect {
		s.users.addScore(userID, -bonus)
	}
	return nil
}

func (s *QotdStore) GetAnswer(_ context.Context, userID, questionID string) (domain.QotdAnswer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, exists := s.answers[qotdKey{userID: userID, questionID: questionID}]
	return answer, exists, nil
}
