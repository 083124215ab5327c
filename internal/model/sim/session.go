package sim

import (
	"encoding/json"
	"time"
)

// SalesPoint is one sampled point of the sales curve. Time is milliseconds
// elapsed since the session was created.
type SalesPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// SalesSeries tracks the simulated sales curve for one session.
type SalesSeries struct {
	Baseline float64      `json:"baseline"`
	Current  float64      `json:"current"`
	History  []SalesPoint `json:"history"`
}

// Session captures one participant's complete simulation state.
type Session struct {
	ID           string                  `json:"sessionId"`
	CurrentPhase int                     `json:"currentPhase"`
	NetWorth     float64                 `json:"netWorth"`
	Performance  float64                 `json:"performance"`
	MarketActive bool                    `json:"marketActive"`
	Sales        SalesSeries             `json:"salesData"`
	PhaseAnswers map[int]json.RawMessage `json:"-"`
	CreatedAt    time.Time               `json:"createdAt"`
}

// NewSession seeds a session with the starting balance and a sales series
// holding a single point at t=0 valued at the baseline.
func NewSession(id string, netWorth, baseline float64) *Session {
	return &Session{
		ID:           id,
		CurrentPhase: 1,
		NetWorth:     netWorth,
		Sales: SalesSeries{
			Baseline: baseline,
			Current:  baseline,
			History:  []SalesPoint{{Time: 0, Value: baseline}},
		},
		PhaseAnswers: make(map[int]json.RawMessage),
		CreatedAt:    time.Now().UTC(),
	}
}

// Clone returns a deep copy safe to hand across goroutines.
func (s *Session) Clone() Session {
	out := *s
	out.Sales.History = append([]SalesPoint(nil), s.Sales.History...)
	out.PhaseAnswers = make(map[int]json.RawMessage, len(s.PhaseAnswers))
	for phase, raw := range s.PhaseAnswers {
		out.PhaseAnswers[phase] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// AppendSalesPoint records a new point, evicting the oldest once the
// history exceeds limit.
func (s *SalesSeries) AppendSalesPoint(p SalesPoint, limit int) {
	s.History = append(s.History, p)
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
}
