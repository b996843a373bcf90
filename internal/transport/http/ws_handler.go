package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// PlayHandler runs one quiz session per websocket connection. The
// connection goroutine is the only owner of its session.
type PlayHandler struct {
	game     *app.GameService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewPlayHandler(game *app.GameService, log logrus.FieldLogger) *PlayHandler {
	return &PlayHandler{
		game: game,
		log:  log,
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
	Choice string `json:"choice"`
}

type savePayload struct {
	PlayerName string `json:"player_name"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type questionPayload struct {
	Question domain.PublicQuestion `json:"question"`
	Progress app.SessionSnapshot   `json:"progress"`
}

type completedPayload struct {
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Level   string `json:"level"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades /ws/play?teacher=&category=&count= and drives the session
// from client messages: select, submit, next, restart and save.
func (h *PlayHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	req, err := parseGameRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.log.WithFields(logrus.Fields{"teacher_id": req.TeacherID, "category_id": req.CategoryID})
	send := func(typ string, payload any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(outboundMessage{Type: typ, Payload: payload}); err != nil {
			log.WithError(err).Debug("ws write failed")
			return false
		}
		return true
	}
	sendErr := func(err error) bool {
		if statusFor(err) == http.StatusInternalServerError {
			log.WithError(err).Error("play failed")
			return send("error", errorPayload{Message: "internal error"})
		}
		return send("error", errorPayload{Message: err.Error()})
	}

	session, err := h.game.StartGame(ctx, req)
	if err != nil {
		sendErr(err)
		return
	}
	if !sendQuestion(send, session) {
		return
	}

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("ws read ended")
			}
			return
		}

		ok := true
		switch in.Type {
		case "select":
			var p selectPayload
			if err := json.Unmarshal(in.Payload, &p); err != nil {
				ok = sendErr(domain.NewValidationError("payload", "invalid select payload"))
				break
			}
			choice, err := domain.ParseChoice(p.Choice)
			if err == nil {
				err = session.SelectAnswer(choice)
			}
			if err != nil {
				ok = sendErr(err)
			}
		case "submit":
			result, err := session.Submit()
			if err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("answerResult", result)
		case "next":
			if err := session.Advance(); err != nil {
				ok = sendErr(err)
				break
			}
			if session.IsComplete() {
				ok = sendCompleted(send, session)
				break
			}
			ok = sendQuestion(send, session)
		case "restart":
			next, err := h.game.StartGame(ctx, req)
			if err != nil {
				ok = sendErr(err)
				break
			}
			session = next
			ok = sendQuestion(send, session)
		case "save":
			var p savePayload
			if err := json.Unmarshal(in.Payload, &p); err != nil {
				ok = sendErr(domain.NewValidationError("payload", "invalid save payload"))
				break
			}
			saved, err := h.game.SaveSessionScore(ctx, session, p.PlayerName, req.CategoryID)
			if err != nil {
				ok = sendErr(err)
				break
			}
			ok = send("scoreSaved", saved)
		default:
			ok = sendErr(domain.NewValidationError("type", "unsupported message type %q", in.Type))
		}
		if !ok {
			return
		}
	}
}

func sendQuestion(send func(string, any) bool, session *app.Session) bool {
	q, err := session.Current()
	if err != nil {
		return send("error", errorPayload{Message: err.Error()})
	}
	return send("question", questionPayload{Question: q.Public(), Progress: session.Snapshot()})
}

func sendCompleted(send func(string, any) bool, session *app.Session) bool {
	score, total, err := session.FinalScore()
	if err != nil {
		return send("error", errorPayload{Message: err.Error()})
	}
	return send("completed", completedPayload{
		Score:   score,
		Total:   total,
		Percent: domain.Percent(score, total),
		Level:   domain.DifficultyFor(total).Label(),
	})
}

func parseGameRequest(r *http.Request) (app.GameRequest, error) {
	q := r.URL.Query()
	teacherID, err := strconv.ParseInt(q.Get("teacher"), 10, 64)
	if err != nil || teacherID <= 0 {
		return app.GameRequest{}, domain.NewValidationError("teacher", "must be a positive integer")
	}
	categoryID, err := strconv.ParseInt(q.Get("category"), 10, 64)
	if err != nil || categoryID <= 0 {
		return app.GameRequest{}, domain.NewValidationError("category", "must be a positive integer")
	}
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		return app.GameRequest{}, domain.NewValidationError("count", "must be one of 5, 10 or 15")
	}
	return app.GameRequest{TeacherID: teacherID, CategoryID: categoryID, Count: count}, nil
}
