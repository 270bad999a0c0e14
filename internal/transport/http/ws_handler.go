package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/identity"
)

// WSHandler runs one game per WebSocket connection. Game events are pushed
// as they happen; inbound messages drive the screen flow.
type WSHandler struct {
	service  *app.GameService
	identity *identity.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, ids *identity.Service, checkOrigin func(r *http.Request) bool) *WSHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		service:  service,
		identity: ids,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type namePayload struct {
	Name string `json:"name"`
}

type answerPayload struct {
	Option *int `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := h.identity.Resolve(w, r)
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// The game must outlive the upgrade request's context.
	ctx := context.Background()
	view := h.service.NewGame(ctx, sessionID)
	defer h.service.Close(ctx, view.ID)

	updates, cancel, err := h.service.Subscribe(ctx, view.ID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: toErrorPayload(err)})
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so producers never block on a dead socket
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: ev.Type, Payload: ev.Payload}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, view.ID, inbound); err != nil {
			send <- outboundMessage{Type: "error", Payload: toErrorPayload(err)}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errBadPayload = errors.New("invalid payload")

// dispatch applies one inbound message. Successful actions answer through
// the game's own event stream, so only errors are returned here.
func (h *WSHandler) dispatch(ctx context.Context, gameID string, msg inboundMessage) error {
	switch msg.Type {
	case "continue":
		_, err := h.service.Continue(ctx, gameID)
		return err
	case "name":
		var payload namePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errBadPayload
		}
		_, err := h.service.SubmitName(ctx, gameID, payload.Name)
		return err
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Option == nil {
			return errBadPayload
		}
		_, err := h.service.Answer(ctx, gameID, *payload.Option)
		return err
	case "hint":
		_, err := h.service.Hint(ctx, gameID)
		return err
	case "leaderboard":
		_, err := h.service.ShowLeaderboard(ctx, gameID)
		return err
	case "back":
		_, err := h.service.BackToResults(ctx, gameID)
		return err
	case "playAgain":
		_, err := h.service.PlayAgain(ctx, gameID)
		return err
	default:
		return errUnsupported
	}
}

var errUnsupported = errors.New("unsupported message type")

func toErrorPayload(err error) errorPayload {
	switch {
	case errors.Is(err, errBadPayload):
		return errorPayload{Code: "badPayload", Message: err.Error()}
	case errors.Is(err, errUnsupported):
		return errorPayload{Code: "unsupported", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidName):
		return errorPayload{Code: "invalidName", Message: fmt.Sprintf("please enter your name (up to %d characters)", domain.MaxNameLength)}
	case errors.Is(err, domain.ErrNotEnoughQuestions):
		return errorPayload{Code: "noQuestions", Message: "not enough questions are available right now"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return errorPayload{Code: "invalidTransition", Message: err.Error()}
	case errors.Is(err, domain.ErrQuestionLocked):
		return errorPayload{Code: "locked", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidOption):
		return errorPayload{Code: "invalidOption", Message: err.Error()}
	case errors.Is(err, domain.ErrHintUnavailable):
		return errorPayload{Code: "hintUnavailable", Message: err.Error()}
	case errors.Is(err, domain.ErrSessionFinished):
		return errorPayload{Code: "finished", Message: err.Error()}
	case errors.Is(err, domain.ErrGameNotFound):
		return errorPayload{Code: "gameNotFound", Message: err.Error()}
	default:
		log.Printf("ws action failed: %v", err)
		return errorPayload{Code: "internal", Message: "something went wrong, please try again"}
	}
}
