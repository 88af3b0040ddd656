package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studyhub-service/internal/app"
	"studyhub-service/internal/domain"
	"studyhub-service/internal/infra/memory"
)

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T) (*httptest.Server, *memory.UserStore) {
	t.Helper()

	users := memory.NewUserStore(
		domain.User{ID: "u1", DisplayName: "Asha", Role: domain.RoleUser, ShowOnLeaderboard: true},
		domain.User{ID: "root", DisplayName: "Root", Role: domain.RoleAdmin},
	)
	catalog := memory.NewCatalogCache(memory.NewStaticCatalogLoader(testCatalog()), time.Minute)
	attemptStore := memory.NewAttemptStore()
	qotdStore := memory.NewQotdStore(users)

	leaderboard := app.NewLeaderboardService(users, users, 10)
	browse := app.NewBrowseService(catalog, users)
	attempts := app.NewAttemptService(memory.NewSessionStore(), catalog, users, attemptStore)
	qotd := app.NewQotdServiceWithClock(catalog, qotdStore, leaderboard,
		func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) })

	handler := NewHandler(browse, attempts, qotd, leaderboard, users, testSecret)
	mux := http.NewServeMux()
	handler.Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, users
}

func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func tokenFor(t *testing.T, uid string) string {
	t.Helper()
	tok, err := SignToken(testSecret, uid, uid, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAuthRequired(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/browse/science", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/browse/science", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
}

func TestBrowseHidesDenialBehindNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	token := tokenFor(t, "u1")

	// Missing resource and denied resource answer identically.
	missing := doRequest(t, http.MethodGet, server.URL+"/browse/science/physics/waves/nope", token, nil)
	denied := doRequest(t, http.MethodGet, server.URL+"/browse/science/physics/waves/n-sound", token, nil)
	if missing.StatusCode != http.StatusNotFound || denied.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404/404, got %d/%d", missing.StatusCode, denied.StatusCode)
	}

	// Public note renders.
	resp := doRequest(t, http.MethodGet, server.URL+"/browse/science/physics/waves/n-light", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for public note, got %d", resp.StatusCode)
	}
	var view app.BrowseView
	decode(t, resp, &view)
	if view.Note == nil || view.Note.ID != "n-light" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Breadcrumbs) != 4 {
		t.Fatalf("expected 4 breadcrumbs, got %+v", view.Breadcrumbs)
	}
}

func TestQuizFlowOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	token := tokenFor(t, "u1")
	base := server.URL + "/quiz/set-waves"

	resp := doRequest(t, http.MethodPost, base+"/start", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: %d", resp.StatusCode)
	}
	var prompt app.QuizPrompt
	decode(t, resp, &prompt)
	if prompt.TotalQuestions != 3 {
		t.Fatalf("unexpected prompt: %+v", prompt)
	}

	// Answer 2 of 3 correctly (key: 0, 0, 1).
	for i, selected := range []int{0, 1, 1} {
		resp := doRequest(t, http.MethodPost, base+"/answer", token, map[string]int{
			"questionIndex":       i,
			"selectedOptionIndex": selected,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %d: %d", i, resp.StatusCode)
		}
		resp = doRequest(t, http.MethodPost, base+"/next", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("next %d: %d", i, resp.StatusCode)
		}
	}

	resp = doRequest(t, http.MethodPost, base+"/finish", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finish: %d", resp.StatusCode)
	}
	var finish struct {
		AttemptID      string `json:"attemptId"`
		Score          int    `json:"score"`
		TotalQuestions int    `json:"totalQuestions"`
		Shareable      bool   `json:"shareable"`
	}
	decode(t, resp, &finish)
	if finish.Score != 2 || finish.TotalQuestions != 3 || !finish.Shareable || finish.AttemptID == "" {
		t.Fatalf("unexpected finish: %+v", finish)
	}

	// The share page is public.
	resp = doRequest(t, http.MethodGet, server.URL+"/attempts/"+finish.AttemptID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("share page: %d", resp.StatusCode)
	}
	var attempt domain.QuizAttempt
	decode(t, resp, &attempt)
	if attempt.Score != 2 || len(attempt.Answers) != 3 {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}
}

func TestAnswerOutOfOrderIsRejected(t *testing.T) {
	server, _ := newTestServer(t)
	token := tokenFor(t, "u1")
	base := server.URL + "/quiz/set-waves"

	doRequest(t, http.MethodPost, base+"/start", token, nil)
	resp := doRequest(t, http.MethodPost, base+"/answer", token, map[string]int{
		"questionIndex":       2,
		"selectedOptionIndex": 0,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-order answer, got %d", resp.StatusCode)
	}
}

func TestQotdSubmitOnceOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	token := tokenFor(t, "u1")
	url := server.URL + "/qotd/qotd-1/answer"

	resp := doRequest(t, http.MethodPost, url, token, map[string]string{"optionId": "a"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d", resp.StatusCode)
	}
	var result app.QotdResult
	decode(t, resp, &result)
	if !result.IsCorrect || result.Awarded != app.QotdBonus {
		t.Fatalf("unexpected result: %+v", result)
	}

	resp = doRequest(t, http.MethodPost, url, token, map[string]string{"optionId": "b"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on repeat, got %d", resp.StatusCode)
	}

	// The bonus shows up on the leaderboard.
	resp = doRequest(t, http.MethodGet, server.URL+"/leaderboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard: %d", resp.StatusCode)
	}
	var lb domain.Leaderboard
	decode(t, resp, &lb)
	if len(lb.Entries) == 0 || lb.Entries[0].UserID != "u1" || lb.Entries[0].Score != app.QotdBonus {
		t.Fatalf("unexpected leaderboard: %+v", lb.Entries)
	}
}

func TestAdminReopenOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	userToken := tokenFor(t, "u1")
	adminToken := tokenFor(t, "root")

	doRequest(t, http.MethodPost, server.URL+"/qotd/qotd-1/answer", userToken, map[string]string{"optionId": "a"})

	url := fmt.Sprintf("%s/admin/qotd/%s/%s", server.URL, "u1", "qotd-1")
	resp := doRequest(t, http.MethodDelete, url, userToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("non-admin reopen should look like not found, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodDelete, url, adminToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("admin reopen: %d", resp.StatusCode)
	}

	// Answerable again.
	resp = doRequest(t, http.MethodPost, server.URL+"/qotd/qotd-1/answer", userToken, map[string]string{"optionId": "b"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-submit after reopen: %d", resp.StatusCode)
	}
}

// testCatalog mirrors the app package fixture: an empty chapter plus a
// chapter with notes and a three-question set, and one dated question.
func testCatalog() domain.Catalog {
	return domain.Catalog{
		Subjects: []domain.Subject{
			{
				ID:   "science",
				Name: "Science",
				SubSubjects: []domain.SubSubject{
					{
						ID:   "physics",
						Name: "Physics",
						Chapters: []domain.Chapter{
							{ID: "motion", Name: "Motion"},
							{
								ID:   "waves",
								Name: "Waves",
								Notes: []domain.Note{
									{ID: "n-sound", Name: "Sound waves", Type: "pdf", PDFURL: "https://example.com/sound.pdf", IsPublic: false, ChapterID: "waves"},
									{ID: "n-light", Name: "Light waves", Type: "pdf", PDFURL: "https://example.com/light.pdf", IsPublic: true, ChapterID: "waves"},
								},
								MCQSets: []domain.MCQSet{
									{
										ID:   "set-waves",
										Name: "Waves basics",
										Questions: []domain.MCQ{
											{ID: "q1", Question: "Sound needs a medium?", Options: []string{"yes", "no"}, CorrectOptionIndex: 0},
											{ID: "q2", Question: "Light speed in vacuum (m/s)?", Options: []string{"3e8", "3e5", "3e6"}, CorrectOptionIndex: 0},
											{ID: "q3", Question: "Unit of frequency?", Options: []string{"watt", "hertz"}, CorrectOptionIndex: 1},
										},
									},
								},
							},
						},
					},
				},
			},
		},
		Questions: []domain.QuestionOfTheDay{
			{
				ID:              "qotd-1",
				Question:        "What is 2 + 2?",
				Options:         []domain.QotdOption{{ID: "a", Text: "4"}, {ID: "b", Text: "5"}},
				CorrectOptionID: "a",
				Date:            "2024-01-01",
			},
		},
	}
}
