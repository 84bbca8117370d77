package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"iam-academy-service/internal/app"
	"iam-academy-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs one quiz attempt per websocket connection. The session is
// confined to the connection's read loop, so no locking is needed around it;
// closing the socket mid-attempt discards the in-progress state, matching
// the navigate-away semantics of the UI.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type questionPayload struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
	// Revealed only after the answer is submitted.
	Explanation        string `json:"explanation,omitempty"`
	CorrectAnswerIndex *int   `json:"correctAnswerIndex,omitempty"`
}

type statePayload struct {
	ModuleID           string          `json:"moduleId"`
	ModuleTitle        string          `json:"moduleTitle"`
	TotalQuestions     int             `json:"totalQuestions"`
	Question           questionPayload `json:"question"`
	SelectedAnswer     *int            `json:"selectedAnswer,omitempty"`
	ExplanationVisible bool            `json:"explanationVisible"`
	ProgressPercent    float64         `json:"progressPercent"`
	Completed          bool            `json:"completed"`
}

type resultPayload struct {
	ModuleID     string   `json:"moduleId"`
	Score        int      `json:"score"`
	Passed       bool     `json:"passed"`
	BestScore    int      `json:"bestScore"`
	IsNewBest    bool     `json:"isNewBest"`
	AttemptCount int      `json:"attemptCount"`
	Badges       []string `json:"badges,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives a quiz attempt from inbound ops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	moduleID := r.URL.Query().Get("moduleId")
	if moduleID == "" {
		http.Error(w, "missing moduleId", http.StatusBadRequest)
		return
	}

	session, err := h.service.StartSession(r.Context(), moduleID)
	if errors.Is(err, domain.ErrModuleNotFound) || errors.Is(err, domain.ErrQuizNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: snapshotState(session)}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		wasCompleted := session.Completed()
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "invalid select payload")
				continue
			}
			session.SelectAnswer(payload.OptionIndex)
		case "submit":
			session.SubmitAnswer()
		case "next":
			if err := session.NextQuestion(r.Context()); err != nil {
				// The attempt result stands; the client gets a
				// non-blocking warning about lost durability.
				log.Printf("module %s: %v", moduleID, err)
				writeWarning(conn, err.Error())
			}
		case "prev":
			session.PreviousQuestion()
		case "retry":
			session.Retry()
		default:
			writeError(conn, "unsupported message type")
			continue
		}

		if err := conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: snapshotState(session)}); err != nil {
			break
		}
		if session.Completed() && !wasCompleted {
			result := outboundMessage[resultPayload]{Type: "result", Payload: resultPayload{
				ModuleID:     moduleID,
				Score:        session.Score(),
				Passed:       session.Passed(),
				BestScore:    session.BestScore(),
				IsNewBest:    session.IsNewBest(),
				AttemptCount: len(session.PreviousAttempts()),
				Badges:       session.Badges(),
			}}
			if err := conn.WriteJSON(result); err != nil {
				break
			}
		}
	}
}

func snapshotState(session *app.QuizSession) statePayload {
	question := session.CurrentQuestion()
	payload := statePayload{
		ModuleID:           session.Module().ID,
		ModuleTitle:        session.Module().Title,
		TotalQuestions:     session.TotalQuestions(),
		ExplanationVisible: session.ExplanationVisible(),
		ProgressPercent:    session.ProgressPercent(),
		Completed:          session.Completed(),
		Question: questionPayload{
			ID:       question.ID,
			Text:     question.Text,
			Options:  question.Options,
			Position: session.CurrentIndex(),
		},
	}
	if sel, ok := session.SelectedAnswer(); ok {
		payload.SelectedAnswer = &sel
	}
	// The correct answer and explanation stay server-side until submit.
	if session.ExplanationVisible() {
		correct := question.CorrectAnswerIndex
		payload.Question.Explanation = question.Explanation
		payload.Question.CorrectAnswerIndex = &correct
	}
	return payload
}

func writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}

func writeWarning(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "progressWarning", Payload: errorPayload{Message: message}})
}
