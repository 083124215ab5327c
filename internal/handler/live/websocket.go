package live

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Mayan-101/torc/internal/broadcast"
	sessionService "github.com/Mayan-101/torc/internal/service/session"
	"github.com/Mayan-101/torc/internal/store"
)

// Handler upgrades the realtime connection and binds it to a session.
// While the session's market is active the client receives a liveUpdate
// frame after every completed tick.
type Handler struct {
	svc      *sessionService.Service
	gateway  *broadcast.Gateway
	upgrader websocket.Upgrader
}

// New creates the live channel handler.
func New(svc *sessionService.Service, gateway *broadcast.Gateway) *Handler {
	return &Handler{
		svc:     svc,
		gateway: gateway,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// liveConn serializes writes. The tick publisher, the read loop's acks,
// and the ping loop all write to the same connection.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *liveConn) writePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	lc := &liveConn{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, lc)

	var registeredID string
	defer func() {
		if registeredID != "" {
			h.gateway.Unregister(registeredID, lc)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[live] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			switch msg.Type {
			case "register":
				registeredID = h.handleRegister(ctx, lc, msg.SessionID, registeredID)
			default:
				h.sendError(lc, "unsupported message type: "+msg.Type)
			}
		}
	}
}

// handleRegister binds the connection as the session's live client and
// makes sure its tick loop is scheduled. Re-registering for another
// session moves the binding.
func (h *Handler) handleRegister(ctx context.Context, lc *liveConn, sessionID, previousID string) string {
	if sessionID == "" {
		h.sendError(lc, "sessionId is required")
		return previousID
	}

	if _, err := h.svc.Get(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			h.sendError(lc, "session not found")
		} else {
			log.Printf("[live] register lookup failed session=%s: %v", sessionID, err)
			h.sendError(lc, "registration failed")
		}
		return previousID
	}

	if previousID != "" && previousID != sessionID {
		h.gateway.Unregister(previousID, lc)
	}

	h.gateway.Register(sessionID, lc)
	h.svc.StartLoop(sessionID)

	log.Printf("[live] registered session=%s", sessionID)
	h.sendInfo(lc, sessionID, map[string]any{"type": "registered"})
	return sessionID
}

func (h *Handler) sendInfo(lc *liveConn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := lc.WriteJSON(msg); err != nil {
		log.Printf("[live] write info failed: %v", err)
	}
}

func (h *Handler) sendError(lc *liveConn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := lc.WriteJSON(msg); err != nil {
		log.Printf("[live] write error failed: %v", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, lc *liveConn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lc.writePing(); err != nil {
				return
			}
		}
	}
}

var _ broadcast.Conn = (*liveConn)(nil)
