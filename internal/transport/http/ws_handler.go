package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/auth"
	"cricket-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
)

type WSHandler struct {
	sessions    *app.SessionService
	identity    auth.IdentityProvider
	revealDelay time.Duration
	upgrader    websocket.Upgrader
}

// NewWSHandler serves one quiz session per connection. identity may be nil,
// in which case every player is anonymous.
func NewWSHandler(sessions *app.SessionService, identity auth.IdentityProvider, revealDelay time.Duration) *WSHandler {
	return &WSHandler{
		sessions:    sessions,
		identity:    identity,
		revealDelay: revealDelay,
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

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, opens a session and relays commands and views
// until either side goes away. The session is closed when the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		http.Error(w, "missing format", http.StatusBadRequest)
		return
	}
	var principal domain.Principal
	if token := auth.TokenFromRequest(r); token != "" && h.identity != nil {
		p, err := h.identity.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		principal = p
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.sessions.Open(r.Context(), app.SessionParams{
		Brand:       r.URL.Query().Get("brand"),
		Format:      format,
		UserID:      principal.UserID,
		RevealDelay: h.revealDelay,
	})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.sessions.Close(session.ID())

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

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
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
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
		if err := h.dispatch(r, session, inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupportedMessage = errors.New("unsupported message type")

func (h *WSHandler) dispatch(r *http.Request, session *app.QuizSession, msg inboundMessage) error {
	ctx := r.Context()
	switch msg.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		return session.Answer(ctx, payload.Answer)
	case "noBall":
		return session.NoBall(ctx)
	case "skipAd":
		return session.SkipInterstitial(ctx)
	case "adFinished":
		return session.FinishInterstitial(ctx)
	case "afterQuizAdFinished":
		return session.FinishAfterQuizAd(ctx)
	case "review":
		return session.Review(ctx)
	default:
		return errUnsupportedMessage
	}
}
