// Package option prices vanilla calls and puts: a closed-form Black-Scholes
// engine, a binomial engine for early exercise and an implied volatility
// solver that drives either of them.
package option

import (
	"math"
	"strings"
	"time"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/utils"
)

// Type is the option side; its value is the sign applied to (S - K).
type Type int

const (
	Call Type = 1
	Put  Type = -1
)

func (t Type) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return "unknown"
	}
}

// ParseType accepts "call" or "put" in any case.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return Call, nil
	case "put":
		return Put, nil
	default:
		return 0, errs.Domain("option.ParseType", "unknown option type %q", s)
	}
}

// Payoff is a plain vanilla payoff max(side·(S-K), 0).
type Payoff struct {
	Type   Type
	Strike float64
}

// Value returns the intrinsic value at underlying price s.
func (p Payoff) Value(s float64) float64 {
	return math.Max(float64(p.Type)*(s-p.Strike), 0)
}

// ExerciseKind distinguishes the exercise variants.
type ExerciseKind int

const (
	European ExerciseKind = iota
	American
)

func (k ExerciseKind) String() string {
	if k == American {
		return "american"
	}
	return "european"
}

// ParseExerciseKind accepts "european" or "american" in any case; empty
// defaults to european.
func ParseExerciseKind(s string) (ExerciseKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "european":
		return European, nil
	case "american":
		return American, nil
	default:
		return 0, errs.Domain("option.ParseExerciseKind", "unknown exercise style %q", s)
	}
}

// Exercise is European(date) or American(earliest, latest).
type Exercise struct {
	Kind     ExerciseKind
	Earliest time.Time
	Latest   time.Time
}

// NewEuropeanExercise allows exercise on date only.
func NewEuropeanExercise(date time.Time) Exercise {
	return Exercise{Kind: European, Earliest: date, Latest: date}
}

// NewAmericanExercise allows exercise on any date in [earliest, latest].
func NewAmericanExercise(earliest, latest time.Time) (Exercise, error) {
	if latest.Before(earliest) {
		return Exercise{}, errs.Domain("option.NewAmericanExercise", "latest date %s before earliest %s", latest.Format(utils.DateLayout), earliest.Format(utils.DateLayout))
	}
	return Exercise{Kind: American, Earliest: earliest, Latest: latest}, nil
}

// LastDate is the expiry of the exercise window.
func (e Exercise) LastDate() time.Time {
	return e.Latest
}

// VanillaOption pairs a payoff with an exercise.
type VanillaOption struct {
	Payoff   Payoff
	Exercise Exercise
}

// Validate checks the side and strike.
func (o VanillaOption) Validate() error {
	const op = "option.Validate"
	if o.Payoff.Type != Call && o.Payoff.Type != Put {
		return errs.Domain(op, "unknown option type %d", int(o.Payoff.Type))
	}
	if err := errs.RequireFinite(op, []string{"strike"}, o.Payoff.Strike); err != nil {
		return err
	}
	if o.Payoff.Strike < 0 {
		return errs.Domain(op, "strike must be non-negative, got %v", o.Payoff.Strike)
	}
	if o.Exercise.Latest.IsZero() {
		return errs.Domain(op, "exercise date is required")
	}
	return nil
}

// Results holds the value and sensitivities produced by an engine. Engines
// leave the Greeks they do not compute at zero.
type Results struct {
	Value       float64
	Delta       float64
	Gamma       float64
	Vega        float64
	Theta       float64
	Rho         float64
	DividendRho float64
}

// Engine prices a vanilla option against the process it was built with.
type Engine interface {
	Calculate(opt VanillaOption) (Results, error)
	// WithProcess returns an engine of the same kind bound to p.
	WithProcess(p *marketdata.BlackScholesProcess) Engine
}

// NPV prices o with engine.
func (o VanillaOption) NPV(engine Engine) (float64, error) {
	res, err := engine.Calculate(o)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}
