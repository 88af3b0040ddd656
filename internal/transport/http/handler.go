package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"studyhub-service/internal/app"
	"studyhub-service/internal/domain"
)

// Handler exposes the catalog, quiz, question-of-the-day, and leaderboard
// use cases over REST.
type Handler struct {
	browse      *app.BrowseService
	attempts    *app.AttemptService
	qotd        *app.QotdService
	leaderboard *app.LeaderboardService
	users       app.UserStore
	secret      []byte
}

func NewHandler(browse *app.BrowseService, attempts *app.AttemptService, qotd *app.QotdService, leaderboard *app.LeaderboardService, users app.UserStore, secret []byte) *Handler {
	return &Handler{
		browse:      browse,
		attempts:    attempts,
		qotd:        qotd,
		leaderboard: leaderboard,
		users:       users,
		secret:      secret,
	}
}

// Register wires all routes onto the mux. Attempt share pages and health
// are public; everything else needs a principal.
func (h *Handler) Register(mux *http.ServeMux) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return WithAuth(h.secret, RequireAuth(fn))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /attempts/{attemptID}", h.getAttempt)

	mux.Handle("GET /browse/{path...}", authed(h.getBrowse))
	mux.Handle("POST /quiz/{setID}/start", authed(h.postQuizStart))
	mux.Handle("POST /quiz/{setID}/answer", authed(h.postQuizAnswer))
	mux.Handle("POST /quiz/{setID}/next", authed(h.postQuizNext))
	mux.Handle("POST /quiz/{setID}/finish", authed(h.postQuizFinish))
	mux.Handle("GET /qotd/today", authed(h.getQotdToday))
	mux.Handle("POST /qotd/{questionID}/answer", authed(h.postQotdAnswer))
	mux.Handle("GET /leaderboard", authed(h.getLeaderboard))
	mux.Handle("DELETE /admin/qotd/{userID}/{questionID}", authed(h.deleteQotdAnswer))
}

func (h *Handler) getBrowse(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	segments := splitPath(r.PathValue("path"))

	view, err := h.browse.Browse(r.Context(), userID, segments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) postQuizStart(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	prompt, err := h.attempts.Start(r.Context(), userID, r.PathValue("setID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

type answerRequest struct {
	QuestionIndex       int `json:"questionIndex"`
	SelectedOptionIndex int `json:"selectedOptionIndex"`
}

func (h *Handler) postQuizAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid answer payload", http.StatusBadRequest)
		return
	}
	outcome, err := h.attempts.Answer(r.Context(), userID, r.PathValue("setID"), req.QuestionIndex, req.SelectedOptionIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *Handler) postQuizNext(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	prompt, done, err := h.attempts.Next(r.Context(), userID, r.PathValue("setID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if done {
		writeJSON(w, http.StatusOK, map[string]bool{"completed": true})
		return
	}
	writeJSON(w, http.StatusOK, prompt)
}

type finishResponse struct {
	AttemptID      string `json:"attemptId,omitempty"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Shareable      bool   `json:"shareable"`
}

func (h *Handler) postQuizFinish(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	attempt, err := h.attempts.Finish(r.Context(), userID, r.PathValue("setID"))
	if err != nil {
		// A persistence failure still carries the computed score; surface
		// it as a degraded, non-shareable success.
		if errors.Is(err, domain.ErrPersistence) {
			writeJSON(w, http.StatusOK, finishResponse{
				Score:          attempt.Score,
				TotalQuestions: attempt.TotalQuestions,
				Shareable:      false,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finishResponse{
		AttemptID:      attempt.ID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Shareable:      true,
	})
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.attempts.Attempt(r.Context(), r.PathValue("attemptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) getQotdToday(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	view, err := h.qotd.Today(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type qotdAnswerRequest struct {
	OptionID string `json:"optionId"`
}

func (h *Handler) postQotdAnswer(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req qotdAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid answer payload", http.StatusBadRequest)
		return
	}
	result, err := h.qotd.Submit(r.Context(), userID, r.PathValue("questionID"), req.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.leaderboard.Top(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) deleteQotdAnswer(w http.ResponseWriter, r *http.Request) {
	adminID, _ := UserIDFromContext(r.Context())
	admin, err := h.users.GetUser(r.Context(), adminID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.qotd.Reopen(r.Context(), admin, r.PathValue("userID"), r.PathValue("questionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func splitPath(raw string) []string {
	var segments []string
	for _, s := range strings.Split(raw, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain taxonomy onto HTTP statuses. Denied and
// missing resources answer identically so existence never leaks.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOptionNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrAlreadyAnswered):
		http.Error(w, "you already answered this question", http.StatusConflict)
	case errors.Is(err, domain.ErrNotYetAvailable):
		http.Error(w, "this question is not yet available", http.StatusForbidden)
	case errors.Is(err, domain.ErrPersistence):
		http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
