package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-progress-service/internal/domain"
)

func TestLeaderboardFeedPushesSnapshots(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/admin/analytics/leaderboard/ws?level=easy&token=" + s.admin
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readLeaderboard(t, conn)
	if len(first) != 0 {
		t.Fatalf("expected empty board before any session, got %+v", first)
	}

	// play a session, the next tick must carry it
	started := decode[domain.StartResult](t, s.do(t, http.MethodPost, "/quiz/session/start", s.learner, map[string]any{"level": "easy", "question_count": 2}))
	key := answerKey()
	answers := []map[string]any{}
	for _, q := range started.Questions {
		answers = append(answers, map[string]any{"quiz_id": q.ID, "selected_option": string(key[q.ID])})
	}
	if rec := s.do(t, http.MethodPost, "/quiz/session/"+started.SessionID+"/submit", s.learner, map[string]any{"answers": answers}); rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		rows := readLeaderboard(t, conn)
		if len(rows) == 1 {
			if rows[0].UserID != 1 || rows[0].RankInLevel != 1 || rows[0].BestScorePercent != 100 {
				t.Fatalf("unexpected row %+v", rows[0])
			}
			return
		}
	}
	t.Fatalf("leaderboard feed never reported the completed session")
}

func TestLeaderboardFeedRefusesLearners(t *testing.T) {
	s := newTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/admin/analytics/leaderboard/ws?token=" + s.learner
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) []domain.LeaderboardRow {
	t.Helper()
	var msg struct {
		Type    string                  `json:"type"`
		Payload []domain.LeaderboardRow `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
