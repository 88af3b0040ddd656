package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhub-service/internal/domain"
)

// CatalogRepository loads the catalog snapshot (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// UserStore reads and updates principal records.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	// MarkQuizAttempted adds setID to the user's attempted set. It is a
	// set union: a no-op when already present.
	MarkQuizAttempted(ctx context.Context, userID, setID string) error
}

// AttemptStore persists immutable quiz attempts.
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	GetAttempt(ctx context.Context, attemptID string) (domain.QuizAttempt, error)
}

// SessionRepository abstracts how in-flight quiz sessions are stored
// (in-memory, Redis-marked, etc). Sessions are keyed per (user, set).
type SessionRepository interface {
	Put(key string, session *QuizSession)
	Get(key string) (*QuizSession, bool)
	Delete(key string)
}

// AttemptService runs the quiz flow: start a session against the
// authoritative question set, collect answers in strict order, and persist
// the scored attempt on finish.
type AttemptService struct {
	sessions SessionRepository
	catalog  CatalogRepository
	users    UserStore
	attempts AttemptStore
	newID    func() string
	now      func() time.Time
}

func NewAttemptService(sessions SessionRepository, catalog CatalogRepository, users UserStore, attempts AttemptStore) *AttemptService {
	return &AttemptService{
		sessions: sessions,
		catalog:  catalog,
		users:    users,
		attempts: attempts,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// NewAttemptServiceWithClock is test-only for deterministic ids and timestamps.
func NewAttemptServiceWithClock(sessions SessionRepository, catalog CatalogRepository, users UserStore, attempts AttemptStore, newID func() string, now func() time.Time) *AttemptService {
	s := NewAttemptService(sessions, catalog, users, attempts)
	if newID != nil {
		s.newID = newID
	}
	if now != nil {
		s.now = now
	}
	return s
}

// QuizPrompt is the view of the current question shown to the user. It
// never carries the correct index.
type QuizPrompt struct {
	SetID          string   `json:"setId"`
	SetName        string   `json:"setName"`
	QuestionIndex  int      `json:"questionIndex"`
	TotalQuestions int      `json:"totalQuestions"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Reattempt      bool     `json:"reattempt"`
}

// AnswerOutcome reveals the result of one answered question.
type AnswerOutcome struct {
	QuestionIndex      int  `json:"questionIndex"`
	Correct            bool `json:"correct"`
	CorrectOptionIndex int  `json:"correctOptionIndex"`
	RunningScore       int  `json:"runningScore"`
}

// Start opens a fresh session for the set, replacing any stale one for the
// same user. An empty question set is rejected up front.
func (s *AttemptService) Start(ctx context.Context, userID, setID string) (QuizPrompt, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return QuizPrompt{}, err
	}
	set, ok := catalog.FindMCQSet(setID)
	if !ok {
		return QuizPrompt{}, domain.ErrNotFound
	}
	if len(set.Questions) == 0 {
		return QuizPrompt{}, fmt.Errorf("%w: set %q has no questions", domain.ErrInvalidState, setID)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return QuizPrompt{}, err
	}

	session := newQuizSession(userID, set, user.HasAttempted(setID), s.now)
	s.sessions.Put(sessionKey(userID, setID), session)
	return session.prompt(), nil
}

// Answer scores the current question. questionIndex must match the
// session's cursor; anything out of sequence is an ErrInvalidState.
func (s *AttemptService) Answer(ctx context.Context, userID, setID string, questionIndex, selectedIndex int) (AnswerOutcome, error) {
	session, ok := s.sessions.Get(sessionKey(userID, setID))
	if !ok {
		return AnswerOutcome{}, domain.ErrSessionNotFound
	}
	return session.answer(questionIndex, selectedIndex)
}

// Next advances to the following question, or completes the session when
// none remain. The returned prompt is meaningful only when done is false.
func (s *AttemptService) Next(ctx context.Context, userID, setID string) (QuizPrompt, bool, error) {
	session, ok := s.sessions.Get(sessionKey(userID, setID))
	if !ok {
		return QuizPrompt{}, false, domain.ErrSessionNotFound
	}
	return session.next()
}

// Finish persists the completed session as an immutable attempt and marks
// the set attempted for the user, as one logical unit. On a store failure
// the scored attempt is still returned (with an empty ID) alongside an
// ErrPersistence so the caller can show a non-shareable success.
func (s *AttemptService) Finish(ctx context.Context, userID, setID string) (domain.QuizAttempt, error) {
	key := sessionKey(userID, setID)
	session, ok := s.sessions.Get(key)
	if !ok {
		return domain.QuizAttempt{}, domain.ErrSessionNotFound
	}

	attempt, err := session.finalize(s.newID(), s.now())
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	s.sessions.Delete(key)

	if err := s.users.MarkQuizAttempted(ctx, userID, setID); err != nil {
		attempt.ID = ""
		return attempt, fmt.Errorf("%w: mark attempted: %v", domain.ErrPersistence, err)
	}
	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		attempt.ID = ""
		return attempt, fmt.Errorf("%w: save attempt: %v", domain.ErrPersistence, err)
	}
	return attempt, nil
}

// Attempt loads a persisted attempt by its shareable ID.
func (s *AttemptService) Attempt(ctx context.Context, attemptID string) (domain.QuizAttempt, error) {
	return s.attempts.GetAttempt(ctx, attemptID)
}

func sessionKey(userID, setID string) string {
	return userID + "/" + setID
}

type sessionState int

const (
	stateInProgress sessionState = iota
	stateAnswered
	stateCompleted
	stateSaved
)

// QuizSession is the in-flight state machine for one user's pass through
// one MCQ set: InProgress -> Answered per question, then Completed, then
// Saved. Answers are applied in strict question order.
type QuizSession struct {
	mu        sync.Mutex
	userID    string
	set       domain.MCQSet
	reattempt bool
	state     sessionState
	cursor    int
	score     int
	answers   []domain.AttemptAnswer
	createdAt time.Time
}

func newQuizSession(userID string, set domain.MCQSet, reattempt bool, now func() time.Time) *QuizSession {
	return &QuizSession{
		userID:    userID,
		set:       set,
		reattempt: reattempt,
		state:     stateInProgress,
		answers:   make([]domain.AttemptAnswer, 0, len(set.Questions)),
		createdAt: now(),
	}
}

func (qs *QuizSession) prompt() QuizPrompt {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	return qs.promptLocked()
}

func (qs *QuizSession) promptLocked() QuizPrompt {
	q := qs.set.Questions[qs.cursor]
	return QuizPrompt{
		SetID:          qs.set.ID,
		SetName:        qs.set.Name,
		QuestionIndex:  qs.cursor,
		TotalQuestions: len(qs.set.Questions),
		Question:       q.Question,
		Options:        q.Options,
		Reattempt:      qs.reattempt,
	}
}

func (qs *QuizSession) answer(questionIndex, selectedIndex int) (AnswerOutcome, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.state != stateInProgress {
		return AnswerOutcome{}, fmt.Errorf("%w: answer while not awaiting one", domain.ErrInvalidState)
	}
	if questionIndex != qs.cursor {
		return AnswerOutcome{}, fmt.Errorf("%w: answer for question %d, current is %d", domain.ErrInvalidState, questionIndex, qs.cursor)
	}
	question := qs.set.Questions[qs.cursor]
	if selectedIndex < 0 || selectedIndex >= len(question.Options) {
		return AnswerOutcome{}, domain.ErrOptionNotFound
	}

	// The correct index is read from the authoritative set, never from
	// client input.
	correct := selectedIndex == question.CorrectOptionIndex
	if correct {
		qs.score++
	}
	qs.answers = append(qs.answers, domain.AttemptAnswer{
		MCQID:               question.ID,
		Question:            question.Question,
		Options:             question.Options,
		CorrectOptionIndex:  question.CorrectOptionIndex,
		SelectedOptionIndex: selectedIndex,
	})
	qs.state = stateAnswered

	return AnswerOutcome{
		QuestionIndex:      questionIndex,
		Correct:            correct,
		CorrectOptionIndex: question.CorrectOptionIndex,
		RunningScore:       qs.score,
	}, nil
}

func (qs *QuizSession) next() (QuizPrompt, bool, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.state != stateAnswered {
		return QuizPrompt{}, false, fmt.Errorf("%w: next before answering", domain.ErrInvalidState)
	}
	if qs.cursor+1 < len(qs.set.Questions) {
		qs.cursor++
		qs.state = stateInProgress
		return qs.promptLocked(), false, nil
	}
	qs.state = stateCompleted
	return QuizPrompt{}, true, nil
}

func (qs *QuizSession) finalize(attemptID string, now time.Time) (domain.QuizAttempt, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.state != stateCompleted {
		return domain.QuizAttempt{}, fmt.Errorf("%w: finish before completing all questions", domain.ErrInvalidState)
	}
	qs.state = stateSaved

	answers := make([]domain.AttemptAnswer, len(qs.answers))
	copy(answers, qs.answers)
	return domain.QuizAttempt{
		ID:             attemptID,
		UserID:         qs.userID,
		MCQSetID:       qs.set.ID,
		MCQSetName:     qs.set.Name,
		Score:          qs.score,
		TotalQuestions: len(qs.set.Questions),
		Answers:        answers,
		CreatedAt:      now,
	}, nil
}
