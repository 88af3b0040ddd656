package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studyhub-service/internal/app"
	"studyhub-service/internal/domain"
	"studyhub-service/internal/infra/memory"
)

type attemptFixture struct {
	service  *app.AttemptService
	users    *memory.UserStore
	attempts app.AttemptStore
}

func newAttemptFixture(t *testing.T, attempts app.AttemptStore) attemptFixture {
	t.Helper()
	users := memory.NewUserStore(domain.User{ID: "u1", DisplayName: "Asha", Role: domain.RoleUser, ShowOnLeaderboard: true})
	if attempts == nil {
		attempts = memory.NewAttemptStore()
	}
	catalog := memory.NewCatalogCache(memory.NewStaticCatalogLoader(testCatalog()), time.Minute)

	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("attempt-%d", seq)
	}
	service := app.NewAttemptServiceWithClock(memory.NewSessionStore(), catalog, users, attempts, newID, fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	return attemptFixture{service: service, users: users, attempts: attempts}
}

// runQuiz answers all three questions of set-waves; correct answers are
// 0, 0, 1.
func runQuiz(t *testing.T, service *app.AttemptService, answers []int) domain.QuizAttempt {
	t.Helper()
	ctx := context.Background()

	prompt, err := service.Start(ctx, "u1", "set-waves")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if prompt.TotalQuestions != 3 || prompt.QuestionIndex != 0 {
		t.Fatalf("unexpected first prompt: %+v", prompt)
	}

	for i, selected := range answers {
		if _, err := service.Answer(ctx, "u1", "set-waves", i, selected); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		_, done, err := service.Next(ctx, "u1", "set-waves")
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if wantDone := i == len(answers)-1; done != wantDone {
			t.Fatalf("next %d: done=%v", i, done)
		}
	}

	attempt, err := service.Finish(ctx, "u1", "set-waves")
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	return attempt
}

func TestQuizScoringTwoOfThree(t *testing.T) {
	fx := newAttemptFixture(t, nil)

	attempt := runQuiz(t, fx.service, []int{0, 1, 1}) // correct, wrong, correct
	if attempt.Score != 2 || attempt.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %d/%d", attempt.Score, attempt.TotalQuestions)
	}
	if attempt.ID == "" {
		t.Fatalf("expected shareable id")
	}

	loaded, err := fx.service.Attempt(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if loaded.Score != 2 || len(loaded.Answers) != 3 {
		t.Fatalf("persisted attempt mismatch: %+v", loaded)
	}
	if loaded.Answers[1].SelectedOptionIndex != 1 || loaded.Answers[1].CorrectOptionIndex != 0 {
		t.Fatalf("answer record mismatch: %+v", loaded.Answers[1])
	}

	user, err := fx.users.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !user.HasAttempted("set-waves") {
		t.Fatalf("expected set marked attempted")
	}
	if user.Score != 0 {
		t.Fatalf("quiz scoring must not touch the leaderboard score, got %d", user.Score)
	}
}

func TestReattemptProducesDistinctAttempts(t *testing.T) {
	fx := newAttemptFixture(t, nil)

	first := runQuiz(t, fx.service, []int{0, 0, 1})
	second := runQuiz(t, fx.service, []int{1, 1, 0})
	if first.ID == second.ID {
		t.Fatalf("expected distinct attempt ids, both %q", first.ID)
	}
	if first.Score != 3 || second.Score != 0 {
		t.Fatalf("unexpected scores %d and %d", first.Score, second.Score)
	}

	user, _ := fx.users.GetUser(context.Background(), "u1")
	if len(user.AttemptedQuizzes) != 1 || !user.HasAttempted("set-waves") {
		t.Fatalf("attempted set should contain exactly set-waves: %v", user.AttemptedQuizzes)
	}
}

func TestSecondStartIsLabelledReattempt(t *testing.T) {
	fx := newAttemptFixture(t, nil)

	runQuiz(t, fx.service, []int{0, 0, 1})
	prompt, err := fx.service.Start(context.Background(), "u1", "set-waves")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !prompt.Reattempt {
		t.Fatalf("expected reattempt label")
	}
}

func TestTransitionViolations(t *testing.T) {
	fx := newAttemptFixture(t, nil)
	ctx := context.Background()

	if _, err := fx.service.Answer(ctx, "u1", "set-waves", 0, 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("answer without session: %v", err)
	}

	if _, err := fx.service.Start(ctx, "u1", "set-waves"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// out of sequence
	if _, err := fx.service.Answer(ctx, "u1", "set-waves", 1, 0); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("out-of-sequence answer: %v", err)
	}
	// next before answering
	if _, _, err := fx.service.Next(ctx, "u1", "set-waves"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("premature next: %v", err)
	}
	// finish before completing
	if _, err := fx.service.Finish(ctx, "u1", "set-waves"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("premature finish: %v", err)
	}

	if _, err := fx.service.Answer(ctx, "u1", "set-waves", 0, 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// double answer
	if _, err := fx.service.Answer(ctx, "u1", "set-waves", 0, 1); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("double answer: %v", err)
	}
	// selected index out of range
	if _, _, err := fx.service.Next(ctx, "u1", "set-waves"); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := fx.service.Answer(ctx, "u1", "set-waves", 1, 9); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("bad option index: %v", err)
	}
}

func TestEmptySetRejectedAtStart(t *testing.T) {
	fx := newAttemptFixture(t, nil)

	if _, err := fx.service.Start(context.Background(), "u1", "set-empty"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state for empty set, got %v", err)
	}
}

type failingAttemptStore struct{}

func (failingAttemptStore) SaveAttempt(context.Context, domain.QuizAttempt) error {
	return errors.New("store down")
}

func (failingAttemptStore) GetAttempt(context.Context, string) (domain.QuizAttempt, error) {
	return domain.QuizAttempt{}, errors.New("store down")
}

func TestFinishKeepsScoreWhenSaveFails(t *testing.T) {
	fx := newAttemptFixture(t, failingAttemptStore{})
	ctx := context.Background()

	if _, err := fx.service.Start(ctx, "u1", "set-waves"); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, selected := range []int{0, 0, 1} {
		if _, err := fx.service.Answer(ctx, "u1", "set-waves", i, selected); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if _, _, err := fx.service.Next(ctx, "u1", "set-waves"); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}

	attempt, err := fx.service.Finish(ctx, "u1", "set-waves")
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if attempt.Score != 3 || attempt.TotalQuestions != 3 {
		t.Fatalf("computed score must survive the failure, got %d/%d", attempt.Score, attempt.TotalQuestions)
	}
	if attempt.ID != "" {
		t.Fatalf("un-persisted attempt must not carry a shareable id")
	}
}
