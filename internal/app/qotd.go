package app

import (
	"context"
	"fmt"
	"time"

	"studyhub-service/internal/domain"
)

// QotdBonus is the fixed score delta for a correct first answer.
const QotdBonus = 10

// QotdStore persists once-per-question answers. Record and Revoke must be
// atomic against the user's score: a transactional check-and-set or an
// exclusivity constraint on the (userID, questionID) key, so two concurrent
// submissions cannot both pass the does-not-exist check.
type QotdStore interface {
	// Record inserts the answer unless one already exists for the key, and
	// when inserted with IsCorrect set adds bonus to the user's score, as
	// one unit. Returns created=false when the guard trips; nothing else
	// changes in that case.
	Record(ctx context.Context, answer domain.QotdAnswer, bonus int) (bool, error)
	// Revoke deletes the answer for the key, reverting bonus from the score
	// if the deleted answer was correct. Deleting a missing record is a no-op.
	Revoke(ctx context.Context, userID, questionID string, bonus int) error
	GetAnswer(ctx context.Context, userID, questionID string) (domain.QotdAnswer, bool, error)
}

// LeaderboardNotifier is poked after an accepted correct answer so
// subscribers see the new standings.
type LeaderboardNotifier interface {
	ScoreChanged(ctx context.Context, userID string, delta int)
}

// QotdService validates and records question-of-the-day submissions.
type QotdService struct {
	catalog  CatalogRepository
	answers  QotdStore
	notifier LeaderboardNotifier
	bonus    int
	now      func() time.Time
}

func NewQotdService(catalog CatalogRepository, answers QotdStore, notifier LeaderboardNotifier) *QotdService {
	return &QotdService{
		catalog:  catalog,
		answers:  answers,
		notifier: notifier,
		bonus:    QotdBonus,
		now:      time.Now,
	}
}

// NewQotdServiceWithClock is test-only for deterministic availability checks.
func NewQotdServiceWithClock(catalog CatalogRepository, answers QotdStore, notifier LeaderboardNotifier, now func() time.Time) *QotdService {
	s := NewQotdService(catalog, answers, notifier)
	if now != nil {
		s.now = now
	}
	return s
}

// QotdResult is the outcome of an accepted submission.
type QotdResult struct {
	QuestionID      string `json:"questionId"`
	IsCorrect       bool   `json:"isCorrect"`
	CorrectOptionID string `json:"correctOptionId"`
	Awarded         int    `json:"awarded"`
}

// QotdView is the question as shown before answering; no answer key.
type QotdView struct {
	ID       string              `json:"id"`
	Question string              `json:"question"`
	Options  []domain.QotdOption `json:"options"`
	Date     string              `json:"date"`
	Answered bool                `json:"answered"`
}

// Submit records a principal's answer exactly once. A repeat submission for
// the same question returns ErrAlreadyAnswered and moves nothing, including
// the score. Future-dated questions are rejected with ErrNotYetAvailable.
func (s *QotdService) Submit(ctx context.Context, userID, questionID, optionID string) (QotdResult, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return QotdResult{}, err
	}
	question, ok := catalog.FindQuestion(questionID)
	if !ok {
		return QotdResult{}, domain.ErrNotFound
	}
	if !question.AvailableAt(s.now()) {
		return QotdResult{}, domain.ErrNotYetAvailable
	}
	if !question.HasOption(optionID) {
		return QotdResult{}, domain.ErrOptionNotFound
	}

	isCorrect := optionID == question.CorrectOptionID
	answer := domain.QotdAnswer{
		UserID:           userID,
		QuestionID:       questionID,
		SelectedOptionID: optionID,
		IsCorrect:        isCorrect,
		CreatedAt:        s.now(),
	}
	created, err := s.answers.Record(ctx, answer, s.bonus)
	if err != nil {
		return QotdResult{}, fmt.Errorf("%w: record answer: %v", domain.ErrPersistence, err)
	}
	if !created {
		return QotdResult{}, domain.ErrAlreadyAnswered
	}

	awarded := 0
	if isCorrect {
		awarded = s.bonus
		if s.notifier != nil {
			s.notifier.ScoreChanged(ctx, userID, awarded)
		}
	}
	return QotdResult{
		QuestionID:      questionID,
		IsCorrect:       isCorrect,
		CorrectOptionID: question.CorrectOptionID,
		Awarded:         awarded,
	}, nil
}

// Today returns the question published for the current calendar day in the
// question-of-the-day timezone, flagged with whether the user already
// answered it.
func (s *QotdService) Today(ctx context.Context, userID string) (QotdView, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return QotdView{}, err
	}
	question, ok := catalog.QuestionForDate(domain.CurrentDate(s.now()))
	if !ok {
		return QotdView{}, domain.ErrNotFound
	}
	_, answered, err := s.answers.GetAnswer(ctx, userID, question.ID)
	if err != nil {
		return QotdView{}, fmt.Errorf("%w: load answer: %v", domain.ErrPersistence, err)
	}
	return QotdView{
		ID:       question.ID,
		Question: question.Question,
		Options:  question.Options,
		Date:     question.Date,
		Answered: answered,
	}, nil
}

// Reopen deletes a user's answer so they may answer again. This is the only
// sanctioned path around the once-per-question guard and is admin-only; a
// correct answer's bonus is reverted so the score cannot be farmed.
func (s *QotdService) Reopen(ctx context.Context, admin domain.User, userID, questionID string) error {
	if admin.Role != domain.RoleAdmin {
		return domain.ErrPermissionDenied
	}
	answer, found, err := s.answers.GetAnswer(ctx, userID, questionID)
	if err != nil {
		return fmt.Errorf("%w: load answer: %v", domain.ErrPersistence, err)
	}
	if !found {
		return domain.ErrNotFound
	}
	if err := s.answers.Revoke(ctx, userID, questionID, s.bonus); err != nil {
		return fmt.Errorf("%w: revoke answer: %v", domain.ErrPersistence, err)
	}
	if answer.IsCorrect && s.notifier != nil {
		s.notifier.ScoreChanged(ctx, userID, -s.bonus)
	}
	return nil
}
