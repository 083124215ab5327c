package broadcast

import (
	"errors"
	"testing"
)

type fakeConn struct {
	payloads []interface{}
	err      error
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, v)
	return nil
}

func TestPublishWithoutBindingIsNoOp(t *testing.T) {
	g := NewGateway()
	// must not panic or error
	g.Publish("nobody", map[string]string{"hello": "world"})
}

func TestPublishDeliversToRegisteredConn(t *testing.T) {
	g := NewGateway()
	conn := &fakeConn{}

	g.Register("s1", conn)
	g.Publish("s1", "tick")

	if len(conn.payloads) != 1 || conn.payloads[0] != "tick" {
		t.Fatalf("expected one delivered payload, got %v", conn.payloads)
	}
}

func TestLastRegisterWins(t *testing.T) {
	g := NewGateway()
	first := &fakeConn{}
	second := &fakeConn{}

	g.Register("s1", first)
	g.Register("s1", second)
	g.Publish("s1", "tick")

	if len(first.payloads) != 0 {
		t.Fatalf("replaced conn must not receive payloads, got %v", first.payloads)
	}
	if len(second.payloads) != 1 {
		t.Fatalf("current conn must receive payload, got %v", second.payloads)
	}
}

func TestUnregisterOnlyRemovesCurrentBinding(t *testing.T) {
	g := NewGateway()
	stale := &fakeConn{}
	current := &fakeConn{}

	g.Register("s1", stale)
	g.Register("s1", current)
	g.Unregister("s1", stale)

	g.Publish("s1", "tick")
	if len(current.payloads) != 1 {
		t.Fatalf("stale unregister must not drop the current binding, got %v", current.payloads)
	}

	g.Unregister("s1", current)
	g.Publish("s1", "tick")
	if len(current.payloads) != 1 {
		t.Fatalf("publish after unregister must be a no-op, got %v", current.payloads)
	}
}

func TestPublishSwallowsWriteErrors(t *testing.T) {
	g := NewGateway()
	g.Register("s1", &fakeConn{err: errors.New("closed")})

	// must not panic; the failure stays inside the gateway
	g.Publish("s1", "tick")
}
