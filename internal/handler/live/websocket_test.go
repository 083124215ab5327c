package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Mayan-101/torc/internal/broadcast"
	"github.com/Mayan-101/torc/internal/config"
	"github.com/Mayan-101/torc/internal/service/market"
	"github.com/Mayan-101/torc/internal/service/scoring"
	sessionService "github.com/Mayan-101/torc/internal/service/session"
	"github.com/Mayan-101/torc/internal/store"
)

type liveFixture struct {
	server  *httptest.Server
	svc     *sessionService.Service
	runner  *market.Runner
	gateway *broadcast.Gateway
}

func setupLive(t *testing.T) *liveFixture {
	t.Helper()

	simCfg := config.SimConfig{
		TickInterval:     time.Hour,
		TickMillis:       int(time.Hour / time.Millisecond),
		InitialNetWorth:  10000,
		SalesBaseline:    1000,
		HistoryLimit:     50,
		SalesFloor:       10,
		RegimeThreshold:  0.5,
		ProfitRate:       0.02,
		FlatVolatility:   0.0005,
		ActiveVolatility: 0.03,
		ActiveDrift:      0.005,
	}

	st := store.NewMemoryStore()
	gateway := broadcast.NewGateway()
	runner := market.NewRunner(st, gateway, simCfg)
	t.Cleanup(runner.Close)

	svc := sessionService.NewService(st, runner, scoring.NewEngine(config.ScoringConfig{
		Phase1: config.PhaseOptimum{NumPeople: 30, Confidence: 95, CostPerPerson: 100, ErrorMargin: 0.01},
		Phase2: config.PhaseOptimum{Equity: 20, Valuation: 500000, ErrorMargin: 0.01},
		Phase3: config.PhaseOptimum{Equity: 15, Valuation: 1000000, ErrorMargin: 0.01},
	}), simCfg)

	r := chi.NewRouter()
	New(svc, gateway).RegisterRoutes(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &liveFixture{server: server, svc: svc, runner: runner, gateway: gateway}
}

func (f *liveFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]json.RawMessage
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func frameType(t *testing.T, frame map[string]json.RawMessage) string {
	t.Helper()

	var typ string
	if err := json.Unmarshal(frame["type"], &typ); err != nil {
		t.Fatalf("decode frame type: %v", err)
	}
	return typ
}

func TestRegisterUnknownSession(t *testing.T) {
	f := setupLive(t)
	conn := f.dial(t)

	err := conn.WriteJSON(map[string]string{"type": "register", "sessionId": "nope"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, conn)
	if frameType(t, frame) != "error" {
		t.Fatalf("expected error frame, got %v", frame)
	}
}

func TestRegisterBindsAndStartsLoop(t *testing.T) {
	f := setupLive(t)
	ctx := context.Background()

	session, err := f.svc.Create(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := f.dial(t)
	if err := conn.WriteJSON(map[string]string{"type": "register", "sessionId": session.ID}); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, conn)
	if frameType(t, frame) != "result" {
		t.Fatalf("expected registered ack, got %v", frame)
	}
	if !f.runner.Running(session.ID) {
		t.Fatal("registration must schedule the tick loop")
	}
}

func TestTickReachesLiveClient(t *testing.T) {
	f := setupLive(t)
	ctx := context.Background()

	session, err := f.svc.Create(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	equity, valuation := 20.0, 500000.0
	if _, err := f.svc.SubmitAnswers(ctx, session.ID, 2,
		scoring.Answers{Equity: &equity, Valuation: &valuation},
		json.RawMessage(`{"equity":20,"valuation":500000}`), true); err != nil {
		t.Fatalf("submit answers: %v", err)
	}

	conn := f.dial(t)
	if err := conn.WriteJSON(map[string]string{"type": "register", "sessionId": session.ID}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ := frameType(t, readFrame(t, conn)); typ != "result" {
		t.Fatalf("expected registered ack, got %q", typ)
	}

	f.runner.Tick(ctx, session.ID)

	frame := readFrame(t, conn)
	if frameType(t, frame) != "liveUpdate" {
		t.Fatalf("expected liveUpdate frame, got %v", frame)
	}

	var netWorth float64
	if err := json.Unmarshal(frame["netWorth"], &netWorth); err != nil {
		t.Fatalf("decode netWorth: %v", err)
	}
	if netWorth <= 10000 {
		t.Fatalf("expected a profit tick on the balance, got %v", netWorth)
	}
}

func TestUnsupportedMessageType(t *testing.T) {
	f := setupLive(t)
	conn := f.dial(t)

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	frame := readFrame(t, conn)
	if frameType(t, frame) != "error" {
		t.Fatalf("expected error frame, got %v", frame)
	}
}
