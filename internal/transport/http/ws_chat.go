package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tutor-game-service/internal/app"
	"tutor-game-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSChatHandler serves a live tutoring conversation over a websocket.
// Each connection is bound to one chat session; history lives in the
// session store, never in a shared process buffer.
type WSChatHandler struct {
	chat     *app.ChatService
	upgrader websocket.Upgrader
}

func NewWSChatHandler(chat *app.ChatService) *WSChatHandler {
	return &WSChatHandler{
		chat: chat,
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

type askPayload struct {
	Question string `json:"question"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and relays ask/answer turns for the session.
func (h *WSChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "ask":
			var payload askPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.writeError(conn, "invalid ask payload")
				continue
			}
			answer, err := h.chat.Ask(r.Context(), sessionID, payload.Question)
			if err != nil {
				if errors.Is(err, domain.ErrUpstreamService) {
					h.writeError(conn, "tutor is unavailable, try again later")
				} else {
					h.writeError(conn, "internal error")
				}
				continue
			}
			if err := conn.WriteJSON(outboundMessage[answerPayload]{Type: "answer", Payload: answerPayload{Answer: answer}}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		default:
			h.writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSChatHandler) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}
