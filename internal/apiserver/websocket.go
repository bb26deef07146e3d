package apiserver

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fightclub/arenacore/input"
	"github.com/fightclub/arenacore/internal/metrics"
)

type handlers struct {
	rooms             RoomProvider
	trustProxyHeaders bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return IsAllowedOrigin(r.Header.Get("Origin"), nil)
	},
}

// clientMessage is the inbound JSON envelope a connected client sends;
// input frames are small and infrequent enough that JSON overhead isn't
// worth a binary codec, unlike the high-frequency outbound snapshot.
type clientMessage struct {
	Seq     uint32  `json:"seq"`
	TargetX float32 `json:"targetX"`
	TargetY float32 `json:"targetY"`
	Space   bool    `json:"space"`
	Eject   bool    `json:"eject"`
}

func (h *handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	dispatcher, ok := h.rooms.Room(roomID)
	if !ok {
		metrics.RecordConnectionRejected("unknown_room")
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[apiserver] websocket upgrade failed: %v", err)
		return
	}

	ip := GetClientIP(r, h.trustProxyHeaders)
	sessionID := r.Header.Get("X-Session-Id")
	if sessionID == "" {
		sessionID = ip + ":" + r.RemoteAddr
	}

	session, ok := dispatcher.Join(sessionID, ip, conn)
	if !ok {
		metrics.RecordConnectionRejected("room_full")
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"room full"}`))
		_ = conn.Close()
		return
	}

	go func() {
		defer dispatcher.Leave(session.ID)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg clientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			dispatcher.HandleInput(session.ID, input.Message{
				Seq:         msg.Seq,
				TargetX:     msg.TargetX,
				TargetY:     msg.TargetY,
				Space:       msg.Space,
				Eject:       msg.Eject,
				SerialBytes: len(data),
			})
		}
	}()
}
