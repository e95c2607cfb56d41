package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"

	"edugames-service/internal/app"
	"edugames-service/internal/engine"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
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

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type startedPayload struct {
	SessionID string `json:"sessionId"`
	GameID    string `json:"gameId"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Snapshot  any    `json:"snapshot"`
}

type timePayload struct {
	Delta int `json:"delta"`
}

type completedPayload struct {
	Score        int    `json:"score"`
	PointsEarned int    `json:"pointsEarned"`
	TotalPoints  int    `json:"totalPoints"`
	Message      string `json:"message"`
}

// ServePlay upgrades the request to a websocket and runs one play session
// over it: inbound input/reset/quit messages drive the engine, outbound
// state/time/completed messages mirror it back. Completions are recorded
// server-side under a key derived from the session, so a replayed report
// never credits points twice.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	userID := r.URL.Query().Get("userId")
	if gameID == "" || userID == "" {
		http.Error(w, "missing gameId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.service.StartSession(r.Context(), gameID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.EndSession(session.ID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Each "play again" starts a new run; the run number feeds the
	// completion idempotency key so a replayed run credits once and a
	// fresh run credits again.
	var run atomic.Int64

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-session.Events():
				if !ok {
					return
				}
				out := h.translate(r.Context(), session, ev, run.Load())
				select {
				case send <- out:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: startedPayload{
		SessionID: session.ID,
		GameID:    session.Game.ID,
		Title:     session.Game.Title,
		Type:      string(session.Game.Type),
		Snapshot:  session.Snapshot(),
	}}

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "input":
			var in engine.Input
			if err := json.Unmarshal(inbound.Payload, &in); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid input payload"}}
				continue
			}
			session.Apply(in)
			send <- outboundMessage[any]{Type: "state", Payload: session.Snapshot()}
		case "reset":
			run.Add(1)
			session.Reset()
			send <- outboundMessage[any]{Type: "state", Payload: session.Snapshot()}
		case "quit":
			break readLoop
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// translate converts one session event into its wire message. Completion
// is recorded with the session ID plus run number as idempotency key, so
// the credit does not depend on an extra client round trip.
func (h *WSHandler) translate(ctx context.Context, session *app.PlaySession, ev app.Event, run int64) outboundMessage[any] {
	switch ev.Type {
	case app.EventCompleted:
		key := fmt.Sprintf("%s:%d", session.ID, run)
		result, err := h.service.CompleteGame(ctx, session.Game.ID, session.UserID, ev.Score, key)
		if err != nil {
			log.Printf("record completion: %v", err)
			return outboundMessage[any]{Type: "completed", Payload: completedPayload{Score: ev.Score}}
		}
		return outboundMessage[any]{Type: "completed", Payload: completedPayload{
			Score:        ev.Score,
			PointsEarned: result.PointsEarned,
			TotalPoints:  result.TotalPoints,
			Message:      result.Message,
		}}
	default:
		return outboundMessage[any]{Type: "time", Payload: timePayload{Delta: ev.Delta}}
	}
}
