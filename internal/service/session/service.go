package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Mayan-101/torc/internal/config"
	"github.com/Mayan-101/torc/internal/model/sim"
	"github.com/Mayan-101/torc/internal/service/market"
	"github.com/Mayan-101/torc/internal/service/scoring"
	"github.com/Mayan-101/torc/internal/store"
)

// Service is the session lifecycle controller: creation, phase
// advancement, answer submission, and loop registration bookkeeping.
type Service struct {
	store  store.Store
	runner *market.Runner
	engine *scoring.Engine
	cfg    config.SimConfig
}

// NewService wires the controller over its collaborators.
func NewService(st store.Store, runner *market.Runner, engine *scoring.Engine, cfg config.SimConfig) *Service {
	return &Service{store: st, runner: runner, engine: engine, cfg: cfg}
}

// SubmitResult is returned from SubmitAnswers.
type SubmitResult struct {
	NetWorth float64 `json:"netWorth"`
	Costs    float64 `json:"costs"`
}

// Create provisions a new session seeded with the starting balance and
// baseline sales, then schedules its tick loop.
func (s *Service) Create(ctx context.Context) (sim.Session, error) {
	session := sim.NewSession(uuid.NewString(), s.cfg.InitialNetWorth, s.cfg.SalesBaseline)
	if err := s.store.Create(ctx, session); err != nil {
		return sim.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.runner.StartLoop(session.ID)
	return session.Clone(), nil
}

// Get retrieves a session snapshot by id.
func (s *Service) Get(ctx context.Context, id string) (sim.Session, error) {
	return s.store.Get(ctx, id)
}

// AdvancePhase bumps the session's phase by one. No validation is done on
// submitted answers; a participant can run out the timer and move on.
func (s *Service) AdvancePhase(ctx context.Context, id string) (int, error) {
	session, err := s.store.Update(ctx, id, func(session *sim.Session) {
		session.CurrentPhase++
	})
	if err != nil {
		return 0, err
	}
	return session.CurrentPhase, nil
}

// SubmitAnswers scores a phase submission and updates the session. The
// performance and the raw answer snapshot are stored on every submission;
// the one-time cost is deducted and the market activated only when launch
// is set. Launch is one-way: marketActive never resets.
func (s *Service) SubmitAnswers(ctx context.Context, id string, phase int, answers scoring.Answers, raw json.RawMessage, launch bool) (SubmitResult, error) {
	result := s.engine.Score(phase, answers)

	session, err := s.store.Update(ctx, id, func(session *sim.Session) {
		session.Performance = result.Performance
		session.PhaseAnswers[phase] = append(json.RawMessage(nil), raw...)

		if launch {
			session.NetWorth -= result.Cost
			session.MarketActive = true
		}
	})
	if err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{NetWorth: session.NetWorth, Costs: result.Cost}, nil
}

// StartLoop idempotently schedules the session's tick loop. The live
// channel registration path calls this so a reconnecting client cannot
// leave a launched session without its loop.
func (s *Service) StartLoop(id string) {
	s.runner.StartLoop(id)
}
