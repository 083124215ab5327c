package scoring

import (
	"math"
	"testing"

	"github.com/Mayan-101/torc/internal/config"
)

func testEngine() *Engine {
	return NewEngine(config.ScoringConfig{
		Phase1: config.PhaseOptimum{
			NumPeople:     30,
			Confidence:    95,
			CostPerPerson: 100,
			AdultDiameter: 10.4,
			AdultHeight:   0.164,
			ErrorMargin:   0.01,
		},
		Phase2: config.PhaseOptimum{Equity: 20, Valuation: 500000, ErrorMargin: 0.01},
		Phase3: config.PhaseOptimum{Equity: 15, Valuation: 1000000, ErrorMargin: 0.01},
	})
}

func ptr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFieldErrorMissing(t *testing.T) {
	if got := FieldError(nil, 30, 0.01); got != 1.0 {
		t.Fatalf("expected 1.0 for missing field, got %v", got)
	}
}

func TestFieldErrorExplicitZero(t *testing.T) {
	got := FieldError(ptr(0), 30, 0.01)
	if got == 1.0 {
		t.Fatal("explicit zero must be scored, not treated as missing")
	}
	if !almostEqual(got, 0.99) {
		t.Fatalf("expected 0.99, got %v", got)
	}
}

func TestFieldErrorWithinMargin(t *testing.T) {
	// 30.2 vs 30 is 0.67% off, inside the 1% margin.
	if got := FieldError(ptr(30.2), 30, 0.01); got != 0 {
		t.Fatalf("expected 0 inside margin, got %v", got)
	}
}

func TestScorePhase1ExactOptimal(t *testing.T) {
	e := testEngine()
	result := e.Score(1, Answers{NumPeople: ptr(30), Confidence: ptr(95)})

	if result.Performance != 1.0 {
		t.Fatalf("expected performance 1.0, got %v", result.Performance)
	}
	if result.Cost != 3000 {
		t.Fatalf("expected cost 30*100=3000, got %v", result.Cost)
	}
}

func TestScorePhase1SecondBlockFold(t *testing.T) {
	e := testEngine()
	answers := Answers{
		NumPeople:     ptr(30),
		Confidence:    ptr(95),
		AdultDiameter: ptr(20.8), // 100% off: error 1-0.01
		AdultHeight:   ptr(0.164),
	}
	result := e.Score(1, answers)

	// First block is exact (0), then the fold re-averages:
	// (0 + 0.99 + 0) / 3 = 0.33.
	want := 1 - 0.99/3
	if !almostEqual(result.Performance, want) {
		t.Fatalf("expected performance %v, got %v", want, result.Performance)
	}
}

func TestScorePhase1SecondBlockOnly(t *testing.T) {
	e := testEngine()
	result := e.Score(1, Answers{AdultDiameter: ptr(10.4), AdultHeight: ptr(0.164)})

	if result.Cost != 0 {
		t.Fatalf("no people block means no cost, got %v", result.Cost)
	}
	if result.Performance != 1.0 {
		t.Fatalf("expected performance 1.0, got %v", result.Performance)
	}
}

func TestScorePhase2FarOffFloorsAtMinimum(t *testing.T) {
	e := testEngine()
	result := e.Score(2, Answers{Equity: ptr(0), Valuation: ptr(0)})

	if result.Performance != 0.1 {
		t.Fatalf("expected floored performance 0.1, got %v", result.Performance)
	}
}

func TestScorePhase3MissingFieldsMaximalPenalty(t *testing.T) {
	e := testEngine()
	result := e.Score(3, Answers{})

	// Both fields missing: totalError = (1+1)/2 = 1, floored to 0.1.
	if result.Performance != 0.1 {
		t.Fatalf("expected performance 0.1, got %v", result.Performance)
	}
}

func TestScoreIsPure(t *testing.T) {
	e := testEngine()
	answers := Answers{NumPeople: ptr(42), Confidence: ptr(80)}

	first := e.Score(1, answers)
	for i := 0; i < 5; i++ {
		if got := e.Score(1, answers); got != first {
			t.Fatalf("score not deterministic: %v vs %v", got, first)
		}
	}
}

func TestScorePerformanceBounds(t *testing.T) {
	e := testEngine()
	cases := []Answers{
		{},
		{NumPeople: ptr(0), Confidence: ptr(0), AdultDiameter: ptr(0.0001), AdultHeight: ptr(9999)},
		{Equity: ptr(-50), Valuation: ptr(1e12)},
	}
	for phase := 1; phase <= 3; phase++ {
		for _, a := range cases {
			result := e.Score(phase, a)
			if result.Performance < 0.1 || result.Performance > 1.0 {
				t.Fatalf("phase %d performance %v out of [0.1,1.0]", phase, result.Performance)
			}
		}
	}
}
