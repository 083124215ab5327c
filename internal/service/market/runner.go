package market

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Mayan-101/torc/internal/broadcast"
	"github.com/Mayan-101/torc/internal/config"
	"github.com/Mayan-101/torc/internal/model/sim"
	"github.com/Mayan-101/torc/internal/store"
)

// LiveUpdate is the frame pushed to the session's live client after each
// completed tick.
type LiveUpdate struct {
	Type      string          `json:"type"`
	NetWorth  float64         `json:"netWorth"`
	SalesData sim.SalesSeries `json:"salesData"`
}

// Runner owns one repeating scheduled task per registered session. Each
// task advances that session's sales curve and net worth on a fixed
// cadence and publishes the result.
//
// A loop, once started, runs until Close; there is no per-session stop.
type Runner struct {
	store   store.Store
	gateway *broadcast.Gateway
	cfg     config.SimConfig

	rootCtx context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	loops map[string]context.CancelFunc
	wg    sync.WaitGroup

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRunner builds a Runner over the given store and gateway.
func NewRunner(st store.Store, gateway *broadcast.Gateway, cfg config.SimConfig) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:   st,
		gateway: gateway,
		cfg:     cfg,
		rootCtx: ctx,
		cancel:  cancel,
		loops:   make(map[string]context.CancelFunc),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartLoop schedules the tick loop for a session. Calling it again for
// the same id is a no-op: at most one loop exists per session.
func (r *Runner) StartLoop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loops[sessionID]; ok {
		return
	}
	if r.rootCtx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.rootCtx)
	r.loops[sessionID] = cancel

	r.wg.Add(1)
	go r.run(ctx, sessionID)
}

// Running reports whether a loop is scheduled for the session.
func (r *Runner) Running(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loops[sessionID]
	return ok
}

// Close stops every loop and waits for them to drain.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, sessionID string) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx, sessionID)
		}
	}
}

// Tick advances the session by one step. A missing session or a store
// failure abandons the tick silently; the next one proceeds on whatever
// state the store holds. Failures never reach another session's loop.
func (r *Runner) Tick(ctx context.Context, sessionID string) {
	var active bool

	session, err := r.store.Update(ctx, sessionID, func(s *sim.Session) {
		// Hard gate: nothing moves until the participant launches.
		active = s.MarketActive
		if !active {
			return
		}

		volatility, drift := r.regime(s.Performance)
		noise := r.noise(volatility)

		newValue := s.Sales.Current * (1 + drift + noise)
		if newValue < r.cfg.SalesFloor {
			newValue = r.cfg.SalesFloor
		}

		// Profit requires performance strictly above the threshold;
		// exactly at it the regime is flat AND the profit is zero.
		if s.Performance > r.cfg.RegimeThreshold {
			s.NetWorth += newValue * r.cfg.ProfitRate
		}

		s.Sales.Current = newValue
		s.Sales.AppendSalesPoint(sim.SalesPoint{
			Time:  time.Since(s.CreatedAt).Milliseconds(),
			Value: newValue,
		}, r.cfg.HistoryLimit)
	})
	if err != nil {
		if ctx.Err() == nil && err != store.ErrSessionNotFound {
			log.Printf("[market] tick persist failed session=%s: %v", sessionID, err)
		}
		return
	}
	if !active {
		return
	}

	r.gateway.Publish(sessionID, LiveUpdate{
		Type:      "liveUpdate",
		NetWorth:  session.NetWorth,
		SalesData: session.Sales,
	})
}

// regime selects the (volatility, drift) pair from the performance value.
// The switch is discrete, not interpolated: below the threshold the curve
// flatlines, at or above it the market moves.
func (r *Runner) regime(performance float64) (volatility, drift float64) {
	if performance < r.cfg.RegimeThreshold {
		return r.cfg.FlatVolatility, r.cfg.FlatDrift
	}
	return r.cfg.ActiveVolatility, r.cfg.ActiveDrift
}

// noise draws uniformly from [-volatility, +volatility].
func (r *Runner) noise(volatility float64) float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return (r.rng.Float64()*2 - 1) * volatility
}
