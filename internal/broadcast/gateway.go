package broadcast

import (
	"log"
	"sync"
)

// Conn is the subset of a live connection the gateway writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Gateway binds at most one live connection per session id and fans tick
// output to it. The simulation is indifferent to whether anyone is
// watching: publishing without a binding is a no-op.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]Conn
}

// NewGateway returns an empty gateway.
func NewGateway() *Gateway {
	return &Gateway{clients: make(map[string]Conn)}
}

// Register binds conn as the live client for the session, replacing any
// prior binding. Last register wins.
func (g *Gateway) Register(sessionID string, conn Conn) {
	g.mu.Lock()
	g.clients[sessionID] = conn
	g.mu.Unlock()
}

// Unregister removes the binding, but only if conn is still the current
// one; a newer registration is left in place.
func (g *Gateway) Unregister(sessionID string, conn Conn) {
	g.mu.Lock()
	if current, ok := g.clients[sessionID]; ok && current == conn {
		delete(g.clients, sessionID)
	}
	g.mu.Unlock()
}

// Publish delivers payload to the session's live client, if any. Write
// failures are logged and swallowed; the next tick supersedes this one.
func (g *Gateway) Publish(sessionID string, payload interface{}) {
	g.mu.RLock()
	conn, ok := g.clients[sessionID]
	g.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(payload); err != nil {
		log.Printf("[broadcast] write failed session=%s: %v", sessionID, err)
	}
}
