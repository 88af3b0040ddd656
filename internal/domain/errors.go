package domain

import "errors"

var (
	// ErrNotFound is returned when a catalog path, attempt, or question
	// cannot be resolved. Callers surface it as a generic not-found.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when a principal may not view a note.
	// The presentation layer renders it identically to ErrNotFound.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidState is returned on a quiz session transition violation:
	// answering out of order, double-answering, or an empty question set.
	ErrInvalidState = errors.New("invalid quiz session state")
	// ErrAlreadyAnswered means the once-per-question guard tripped; the
	// user's score did not move.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotYetAvailable means the question's calendar day has not started
	// in the question-of-the-day timezone.
	ErrNotYetAvailable = errors.New("question not yet available")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSessionNotFound is returned when a quiz session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrPersistence wraps store failures. When the attempt engine returns
	// it, the computed result is still populated so callers can show a
	// scored but non-shareable outcome.
	ErrPersistence = errors.New("persistence failure")
)
