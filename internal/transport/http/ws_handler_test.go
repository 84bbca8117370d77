package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iam-academy-service/internal/app"
	"iam-academy-service/internal/domain"
	"iam-academy-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketAttemptFlow(t *testing.T) {
	store := memory.NewProgressStore()
	repo := memory.NewModuleRepository(memory.NewStaticModuleLoader(sampleModules()), time.Minute)
	service := app.NewQuizService(repo, store, 80)
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?moduleId=iam-101"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial state: first question, nothing selected, answer key hidden.
	state := readState(conn, t)
	if state["completed"] != false {
		t.Fatalf("expected in-progress state, got %v", state)
	}
	question := state["question"].(map[string]any)
	if _, leaked := question["correctAnswerIndex"]; leaked {
		t.Fatalf("correct answer must not be sent before submit")
	}

	// First question: select the correct option and submit.
	writeOp(conn, t, "select", map[string]any{"optionIndex": 1})
	state = readState(conn, t)
	if state["selectedAnswer"].(float64) != 1 {
		t.Fatalf("expected selection echoed, got %v", state["selectedAnswer"])
	}

	writeOp(conn, t, "submit", nil)
	state = readState(conn, t)
	if state["explanationVisible"] != true {
		t.Fatalf("expected explanation after submit, got %v", state)
	}
	question = state["question"].(map[string]any)
	if question["correctAnswerIndex"].(float64) != 1 {
		t.Fatalf("expected correct answer revealed after submit, got %v", question)
	}

	// Second (last) question: answer wrong, then finish.
	writeOp(conn, t, "next", nil)
	state = readState(conn, t)
	q := state["question"].(map[string]any)
	if q["position"].(float64) != 1 {
		t.Fatalf("expected second question, got %v", q)
	}

	writeOp(conn, t, "select", map[string]any{"optionIndex": 0})
	_ = readState(conn, t)
	writeOp(conn, t, "submit", nil)
	_ = readState(conn, t)
	writeOp(conn, t, "next", nil)

	state = readState(conn, t)
	if state["completed"] != true {
		t.Fatalf("expected completed attempt, got %v", state)
	}

	typ, payload := readNext(conn, t, "result")
	if typ != "result" {
		t.Fatalf("expected result event, got %s", typ)
	}
	if payload["score"].(float64) != 50 {
		t.Fatalf("expected score 50, got %v", payload["score"])
	}
	if payload["passed"] != false {
		t.Fatalf("expected failing attempt, got %v", payload)
	}
	if payload["attemptCount"].(float64) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %v", payload["attemptCount"])
	}

	// Retry resets to the first question with cleared answers.
	writeOp(conn, t, "retry", nil)
	state = readState(conn, t)
	if state["completed"] != false {
		t.Fatalf("expected fresh attempt after retry, got %v", state)
	}
	if _, present := state["selectedAnswer"]; present {
		t.Fatalf("expected cleared selection after retry, got %v", state)
	}
}

func TestWebSocketUnknownModule(t *testing.T) {
	store := memory.NewProgressStore()
	repo := memory.NewModuleRepository(memory.NewStaticModuleLoader(sampleModules()), time.Minute)
	wsHandler := NewWSHandler(app.NewQuizService(repo, store, 80))

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "?moduleId=nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown module, got %d", resp.StatusCode)
	}
}

func writeOp(conn *websocket.Conn, t *testing.T, opType string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": opType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", opType, err)
	}
}

func readState(conn *websocket.Conn, t *testing.T) map[string]any {
	t.Helper()
	typ, payload := readNext(conn, t, "state")
	if typ != "state" {
		t.Fatalf("expected state, got %s", typ)
	}
	return payload
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleModules() map[string]domain.CourseModule {
	return map[string]domain.CourseModule{
		"iam-101": {
			ID:      "iam-101",
			Title:   "IAM Basics",
			BadgeID: "badge-iam-101",
			Quiz: domain.Quiz{
				ModuleID: "iam-101",
				Questions: []domain.Question{
					{
						ID:                 "q1",
						Text:               "Which party issues tokens?",
						Options:            []string{"Resource server", "Authorization server"},
						CorrectAnswerIndex: 1,
						Explanation:        "The authorization server mints tokens.",
					},
					{
						ID:                 "q2",
						Text:               "What does a scope bound?",
						Options:            []string{"Identity", "Access"},
						CorrectAnswerIndex: 1,
					},
				},
			},
		},
	}
}
