package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/auth"
	"quiz-progress-service/internal/domain"
	"quiz-progress-service/internal/infra/memory"
)

type testServer struct {
	router  *gin.Engine
	tokens  *auth.Tokens
	learner string
	other   string
	admin   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank := memory.NewQuestionBank(testQuestions())
	store := memory.NewStore(bank, testUsers())
	log := zaptest.NewLogger(t)
	tokens := auth.NewTokens("test-secret", time.Hour)

	router := NewRouter(Options{
		Sessions:       app.NewSessionManager(store, memory.NewAnswerKeyCache(bank, time.Minute), log),
		Progress:       app.NewProgressReader(store, store),
		Analytics:      app.NewAnalytics(store, store),
		Tokens:         tokens,
		Log:            log,
		StreamInterval: 50 * time.Millisecond,
	})

	issue := func(id int64, role domain.Role) string {
		raw, err := tokens.Issue(id, role)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return raw
	}
	return &testServer{
		router:  router,
		tokens:  tokens,
		learner: issue(1, domain.RoleLearner),
		other:   issue(2, domain.RoleLearner),
		admin:   issue(9, domain.RoleAdmin),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/quiz/session/start", s.learner, map[string]any{"level": "easy", "question_count": 5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "correct_option") {
		t.Fatalf("start leaks the answer key: %s", rec.Body.String())
	}
	started := decode[domain.StartResult](t, rec)
	if started.TotalQuestions != 5 {
		t.Fatalf("expected 5 questions, got %d", started.TotalQuestions)
	}

	key := answerKey()
	answers := make([]map[string]any, 0, len(started.Questions))
	for i, q := range started.Questions {
		option := string(key[q.ID])
		if i >= 3 {
			option = wrongOption(key[q.ID])
		}
		// ids are sent as strings for half the entries
		var id any = q.ID
		if i%2 == 1 {
			id = fmt.Sprint(q.ID)
		}
		answers = append(answers, map[string]any{"quiz_id": id, "selected_option": strings.ToLower(option)})
	}

	path := "/quiz/session/" + started.SessionID + "/submit"
	if rec := s.do(t, http.MethodPost, path, s.other, map[string]any{"answers": answers}); rec.Code != http.StatusNotFound {
		t.Fatalf("submit by other user: expected 404, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, path, s.learner, map[string]any{"answers": answers})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	res := decode[domain.SubmitResult](t, rec)
	if res.CorrectAnswers != 3 || res.ScorePercent != 60 {
		t.Fatalf("expected 3 correct / 60%%, got %+v", res)
	}

	rec = s.do(t, http.MethodPost, path, s.learner, map[string]any{"answers": answers})
	if rec.Code != http.StatusConflict {
		t.Fatalf("resubmit: expected 409, got %d", rec.Code)
	}
	envelope := decode[ErrorEnvelope](t, rec)
	if envelope.Error.Code != "conflict" || envelope.Error.SessionStatus != "completed" {
		t.Fatalf("unexpected conflict body %+v", envelope)
	}

	rec = s.do(t, http.MethodGet, "/progress/me", s.learner, nil)
	overview := decode[domain.UserOverview](t, rec)
	if rec.Code != http.StatusOK || overview.TotalSessions != 1 || overview.AvgScorePercent != 60 {
		t.Fatalf("unexpected overview %d %+v", rec.Code, overview)
	}

	rec = s.do(t, http.MethodGet, "/progress/me/levels", s.learner, nil)
	levels := decode[[]domain.LevelProgressView](t, rec)
	if len(levels) != 1 || levels[0].BestScorePercent != 60 {
		t.Fatalf("unexpected levels %+v", levels)
	}

	rec = s.do(t, http.MethodGet, "/progress/me/history?status=completed&limit=5", s.learner, nil)
	history := decode[[]domain.SessionHistory](t, rec)
	if len(history) != 1 || len(history[0].Attempts) != 5 {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown level", http.MethodPost, "/quiz/session/start", map[string]any{"level": "expert", "question_count": 5}, http.StatusBadRequest},
		{"count too large", http.MethodPost, "/quiz/session/start", map[string]any{"level": "easy", "question_count": 21}, http.StatusBadRequest},
		{"count not a number", http.MethodPost, "/quiz/session/start", `{"level":"easy","question_count":"five"}`, http.StatusBadRequest},
		{"empty pool", http.MethodPost, "/quiz/session/start", map[string]any{"level": "intermediate", "question_count": 5}, http.StatusNotFound},
		{"answers not a list", http.MethodPost, "/quiz/session/6f1c1f0e-9f59-4d49-a5c4-0a4b8a1b2c3d/submit", `{"answers":"A"}`, http.StatusBadRequest},
		{"empty answers", http.MethodPost, "/quiz/session/6f1c1f0e-9f59-4d49-a5c4-0a4b8a1b2c3d/submit", map[string]any{"answers": []any{}}, http.StatusBadRequest},
		{"answers without quiz ids", http.MethodPost, "/quiz/session/6f1c1f0e-9f59-4d49-a5c4-0a4b8a1b2c3d/submit", `{"answers":[{"selected_option":"A"},{},1]}`, http.StatusBadRequest},
		{"unknown session", http.MethodPost, "/quiz/session/6f1c1f0e-9f59-4d49-a5c4-0a4b8a1b2c3d/submit", map[string]any{"answers": []any{map[string]any{"quiz_id": 1, "selected_option": "A"}}}, http.StatusNotFound},
		{"abandon unknown", http.MethodPost, "/quiz/session/nope/abandon", nil, http.StatusNotFound},
		{"bad history status", http.MethodGet, "/progress/me/history?status=done", nil, http.StatusBadRequest},
		{"bad history limit", http.MethodGet, "/progress/me/history?limit=ten", nil, http.StatusBadRequest},
		{"negative offset", http.MethodGet, "/progress/me/history?offset=-1", nil, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, tc.method, tc.path, s.learner, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAbandonOverHTTP(t *testing.T) {
	s := newTestServer(t)
	started := decode[domain.StartResult](t, s.do(t, http.MethodPost, "/quiz/session/start", s.learner, map[string]any{"level": "hard", "question_count": 2}))

	path := "/quiz/session/" + started.SessionID + "/abandon"
	if rec := s.do(t, http.MethodPost, path, s.learner, nil); rec.Code != http.StatusOK {
		t.Fatalf("abandon: expected 200, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, path, s.learner, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second abandon: expected 404, got %d", rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/quiz/session/"+started.SessionID+"/submit", s.learner,
		map[string]any{"answers": []any{map[string]any{"quiz_id": 6, "selected_option": "C"}}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("submit after abandon: expected 409, got %d", rec.Code)
	}
}

func TestAuthAndRoles(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/progress/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/progress/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
	for _, path := range []string{"/admin/analytics", "/admin/analytics/leaderboard", "/admin/analytics/user/1", "/admin/analytics/quiz-stats"} {
		if rec := s.do(t, http.MethodGet, path, s.learner, nil); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for learner, got %d", path, rec.Code)
		}
		if rec := s.do(t, http.MethodGet, path, s.admin, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 for admin, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
	if rec := s.do(t, http.MethodGet, "/admin/analytics/user/404", s.admin, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/admin/analytics/leaderboard?level=expert", s.admin, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown level, got %d", rec.Code)
	}
}

func TestPracticeDraw(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/quiz/practice?level=easy&count=3", s.learner, nil)
	set := decode[domain.PracticeSet](t, rec)
	if rec.Code != http.StatusOK || set.Count != 3 || len(set.Questions) != 3 {
		t.Fatalf("unexpected practice set %d %+v", rec.Code, set)
	}
	if strings.Contains(rec.Body.String(), "correct_option") {
		t.Fatalf("practice leaks the answer key")
	}

	rec = s.do(t, http.MethodGet, "/quiz/practice?level=easy", s.learner, nil)
	if set := decode[domain.PracticeSet](t, rec); set.Count != 5 {
		t.Fatalf("expected default count 5, got %d", set.Count)
	}
	if rec := s.do(t, http.MethodGet, "/quiz/practice", s.learner, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without level, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/quiz/session/start", s.learner, map[string]any{"level": "easy", "question_count": 1})

	if rec := s.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(rec.Body.String(), `quiz_sessions_total{event="started"} 1`) {
		t.Fatalf("expected started counter in metrics output")
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestDecodeQuizID(t *testing.T) {
	cases := map[string]int64{
		`12`:                  12,
		`"12"`:                12,
		`" 7 "`:               7,
		`1.5`:                 0,
		`-3`:                  0,
		`"-4"`:                0,
		`"x"`:                 0,
		`null`:                0,
		`true`:                0,
		`9223372036854775808`: 0,
	}
	for raw, want := range cases {
		if got := decodeQuizID(json.RawMessage(raw)); got != want {
			t.Fatalf("decodeQuizID(%s) = %d, want %d", raw, got, want)
		}
	}
}

func answerKey() map[int64]domain.Option {
	key := map[int64]domain.Option{}
	for _, q := range testQuestions() {
		key[q.ID] = q.CorrectOption
	}
	return key
}

func wrongOption(correct domain.Option) string {
	if correct == domain.OptionA {
		return "B"
	}
	return "A"
}

func testUsers() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Asha", Email: "asha@example.com", Role: domain.RoleLearner},
		{ID: 2, Name: "Bikash", Email: "bikash@example.com", Role: domain.RoleLearner},
		{ID: 9, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
	}
}

func testQuestions() []domain.QuizQuestion {
	q := func(id int64, level domain.Level, correct domain.Option) domain.QuizQuestion {
		return domain.QuizQuestion{
			ID: id, Level: level, Prompt: fmt.Sprintf("question %d", id),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectOption: correct,
		}
	}
	return []domain.QuizQuestion{
		q(1, domain.LevelEasy, domain.OptionB),
		q(2, domain.LevelEasy, domain.OptionA),
		q(3, domain.LevelEasy, domain.OptionC),
		q(4, domain.LevelEasy, domain.OptionD),
		q(5, domain.LevelEasy, domain.OptionB),
		q(6, domain.LevelHard, domain.OptionC),
		q(7, domain.LevelHard, domain.OptionA),
	}
}
