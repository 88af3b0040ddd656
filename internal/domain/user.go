package domain

import "time"

// Role is the coarse principal role. There are exactly two.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is an authenticated principal: permission flags, grants, quiz
// history markers, and the leaderboard score.
type User struct {
	ID                 string          `json:"id"`
	DisplayName        string          `json:"displayName"`
	Role               Role            `json:"role"`
	HasFullNotesAccess bool            `json:"hasFullNotesAccess"`
	HasAIAccess        bool            `json:"hasAiAccess"`
	NoteAccess         map[string]bool `json:"noteAccess"`
	AttemptedQuizzes   map[string]bool `json:"attemptedQuizzes"`
	Score              int             `json:"score"`
	ShowOnLeaderboard  bool            `json:"showOnLeaderboard"`
}

// CanAccessNote reports whether the user holds a per-note grant.
func (u User) CanAccessNote(noteID string) bool {
	return u.NoteAccess[noteID]
}

// HasAttempted reports whether the user has finished the set at least once.
// Used only for "re-attempt" labelling, never to block re-entry.
func (u User) HasAttempted(setID string) bool {
	return u.AttemptedQuizzes[setID]
}

// AttemptAnswer is one scored answer inside a persisted attempt. It copies
// the question and options so the share page renders even if the set is
// later edited.
type AttemptAnswer struct {
	MCQID               string   `json:"mcqId"`
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectOptionIndex  int      `json:"correctOptionIndex"`
	SelectedOptionIndex int      `json:"selectedOptionIndex"`
}

// QuizAttempt is one completed pass through an MCQSet. Immutable once
// persisted; its ID doubles as the public share key.
type QuizAttempt struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	MCQSetID       string          `json:"mcqSetId"`
	MCQSetName     string          `json:"mcqSetName"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	Answers        []AttemptAnswer `json:"answers"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// LeaderboardEntry is a snapshot-friendly view of one ranked user.
type LeaderboardEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard is the ordered scoreboard fed by question-of-the-day bonuses.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
