package scoring

import (
	"math"

	"github.com/Mayan-101/torc/internal/config"
)

// Answers carries the numeric fields a participant may submit. Pointer
// fields distinguish "absent" from an explicit zero: a submitted 0 is a
// valid answer and is scored, never treated as missing.
type Answers struct {
	NumPeople     *float64 `json:"numPeople"`
	Confidence    *float64 `json:"confidence"`
	AdultDiameter *float64 `json:"adultDiameter"`
	AdultHeight   *float64 `json:"adultHeight"`
	Equity        *float64 `json:"equity"`
	Valuation     *float64 `json:"valuation"`
}

// Result is the outcome of scoring one submission.
type Result struct {
	// Performance lies in [0.1, 1.0]; the floor keeps a stalled market
	// ticking at flatline parameters instead of freezing.
	Performance float64
	// Cost is the one-time cost the caller may deduct on launch.
	Cost float64
}

// Engine scores submissions against configured per-phase optima. Score is
// pure: the same (phase, answers) always yields the same result.
type Engine struct {
	cfg config.ScoringConfig
}

// NewEngine returns an Engine scoring against the supplied optima.
func NewEngine(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// FieldError measures the relative error of one submitted field. A missing
// field is the maximal penalty 1.0; otherwise the relative deviation beyond
// the margin, floored at zero.
func FieldError(actual *float64, expected, margin float64) float64 {
	if actual == nil {
		return 1.0
	}
	errorPercent := math.Abs(*actual-expected) / expected
	return math.Max(0, errorPercent-margin)
}

// Score evaluates answers for the given phase.
//
// Phase 1 combines two independently gated blocks. The second block folds
// into the running total by re-averaging, so it is weighed against the
// combined first block rather than each field equally.
func (e *Engine) Score(phase int, a Answers) Result {
	totalError := 0.0
	cost := 0.0

	switch phase {
	case 1:
		p1 := e.cfg.Phase1
		if a.NumPeople != nil {
			cost += *a.NumPeople * p1.CostPerPerson
			peopleErr := FieldError(a.NumPeople, p1.NumPeople, p1.ErrorMargin)
			confErr := FieldError(a.Confidence, p1.Confidence, p1.ErrorMargin)
			totalError += (peopleErr + confErr) / 2
		}
		if a.AdultDiameter != nil {
			adErr := FieldError(a.AdultDiameter, p1.AdultDiameter, p1.ErrorMargin)
			ahErr := FieldError(a.AdultHeight, p1.AdultHeight, p1.ErrorMargin)
			totalError = (totalError + adErr + ahErr) / 3
		}
	case 2:
		totalError = equityValuationError(a, e.cfg.Phase2)
	case 3:
		totalError = equityValuationError(a, e.cfg.Phase3)
	}

	return Result{
		Performance: math.Max(0.1, 1-totalError),
		Cost:        cost,
	}
}

func equityValuationError(a Answers, opt config.PhaseOptimum) float64 {
	eqErr := FieldError(a.Equity, opt.Equity, opt.ErrorMargin)
	valErr := FieldError(a.Valuation, opt.Valuation, opt.ErrorMargin)
	return (eqErr + valErr) / 2
}
