package domain

import (
	"time"
)

// qotdLocation is the fixed timezone used for availability checks. Questions
// go live at the start of their calendar day in this zone, regardless of
// where the server runs.
var qotdLocation = mustLoadLocation("Asia/Kolkata")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("load location " + name + ": " + err.Error())
	}
	return loc
}

// QotdDateLayout is the wire form of QuestionOfTheDay.Date.
const QotdDateLayout = "2006-01-02"

// QotdOption is one selectable answer with a stable ID.
type QotdOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionOfTheDay is a dated question answerable at most once per user.
// CorrectOptionID is the authoritative answer key. Date is a YYYY-MM-DD
// string, interpreted at the start of that calendar day in Asia/Kolkata.
type QuestionOfTheDay struct {
	ID              string       `json:"id"`
	Question        string       `json:"question"`
	Options         []QotdOption `json:"options"`
	CorrectOptionID string       `json:"correctOptionId"`
	Date            string       `json:"date"`
}

// AvailableAt reports whether the question is live at the given instant.
// A malformed date is treated as never available.
func (q QuestionOfTheDay) AvailableAt(now time.Time) bool {
	published, err := time.ParseInLocation(QotdDateLayout, q.Date, qotdLocation)
	if err != nil {
		return false
	}
	return !now.In(qotdLocation).Before(published)
}

// HasOption reports whether the given option ID exists on the question.
func (q QuestionOfTheDay) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// CurrentDate returns the calendar date at the given instant in the QOTD
// timezone, in YYYY-MM-DD form.
func CurrentDate(now time.Time) string {
	return now.In(qotdLocation).Format(QotdDateLayout)
}

// QotdAnswer records one user's single answer to one dated question.
// At most one record may ever exist per (UserID, QuestionID) pair.
type QotdAnswer struct {
	UserID           string    `json:"userId"`
	QuestionID       string    `json:"questionId"`
	SelectedOptionID string    `json:"selectedOptionId"`
	IsCorrect        bool      `json:"isCorrect"`
	CreatedAt        time.Time `json:"createdAt"`
}
