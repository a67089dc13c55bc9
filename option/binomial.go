package option

import (
	"math"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/lattice"
	"github.com/meenmo/moderiv/marketdata"
)

// BinomialEngine prices European and American options on a CRR tree.
type BinomialEngine struct {
	process   *marketdata.BlackScholesProcess
	steps     int
	smoothing bool
}

// BinomialOption configures a BinomialEngine.
type BinomialOption func(*BinomialEngine)

// WithSmoothing averages the N and N+1 step trees, which cancels most of the
// odd/even oscillation of CRR prices.
func WithSmoothing(on bool) BinomialOption {
	return func(e *BinomialEngine) { e.smoothing = on }
}

func NewBinomialEngine(process *marketdata.BlackScholesProcess, steps int, opts ...BinomialOption) *BinomialEngine {
	e := &BinomialEngine{process: process, steps: steps}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *BinomialEngine) WithProcess(p *marketdata.BlackScholesProcess) Engine {
	return &BinomialEngine{process: p, steps: e.steps, smoothing: e.smoothing}
}

func (e *BinomialEngine) Steps() int { return e.steps }

// Calculate returns the tree value together with delta and gamma read off
// the first two slices.
func (e *BinomialEngine) Calculate(opt VanillaOption) (Results, error) {
	const op = "option.BinomialEngine"
	if err := opt.Validate(); err != nil {
		return Results{}, err
	}
	if err := e.process.Validate(); err != nil {
		return Results{}, err
	}
	if e.steps < 1 {
		return Results{}, errs.Domain(op, "number of steps must be at least 1, got %d", e.steps)
	}

	res, err := e.roll(opt, e.steps)
	if err != nil {
		return Results{}, err
	}
	if e.smoothing {
		odd, err := e.roll(opt, e.steps+1)
		if err != nil {
			return Results{}, err
		}
		res.Value = 0.5 * (res.Value + odd.Value)
		res.Delta = 0.5 * (res.Delta + odd.Delta)
		res.Gamma = 0.5 * (res.Gamma + odd.Gamma)
	}

	v, err := errs.EnsureFinite(op, res.Value)
	if err != nil {
		return Results{}, err
	}
	res.Value = v
	return res, nil
}

// MinVolatility is the smallest σ for which the tree probabilities stay
// inside (0, 1). Implied volatility searches start their bracket here.
func (e *BinomialEngine) MinVolatility(opt VanillaOption) float64 {
	p := e.process
	if p.Validate() != nil || e.steps < 1 {
		return 0
	}
	t := p.Volatility.TimeFromReference(opt.Exercise.LastDate())
	if t <= 0 {
		return 0
	}
	drift := p.RiskFree.ZeroRate(t) - p.DividendYield.ZeroRate(t)
	dt := t / float64(e.steps)
	return math.Abs(drift)*math.Sqrt(dt)*(1+1e-6) + 1e-8
}

func (e *BinomialEngine) roll(opt VanillaOption, steps int) (Results, error) {
	const op = "option.BinomialEngine"
	p := e.process
	expiry := opt.Exercise.LastDate()
	t := p.Volatility.TimeFromReference(expiry)
	if t <= 0 {
		return Results{}, errs.Domain(op, "time to maturity must be positive, got %v", t)
	}

	grid, err := lattice.NewTimeGrid(t, steps)
	if err != nil {
		return Results{}, err
	}
	r := p.RiskFree.ZeroRate(t)
	q := p.DividendYield.ZeroRate(t)
	tree, err := lattice.NewCRR(p.Spot.Value(), r-q, p.Volatility.Volatility(t), grid)
	if err != nil {
		return Results{}, err
	}

	// Slices at or after firstExercise allow early exercise.
	firstExercise := steps + 1
	if opt.Exercise.Kind == American {
		start := math.Max(p.Volatility.TimeFromReference(opt.Exercise.Earliest), 0)
		firstExercise = int(math.Ceil(start/grid.Dt() - 1e-9))
	}

	values := make([]float64, steps+1)
	for j := range values {
		values[j] = opt.Payoff.Value(tree.Underlying(steps, j))
	}

	disc := math.Exp(-r * grid.Dt())
	var slice1, slice2 []float64
	for i := steps - 1; i >= 0; i-- {
		values = tree.StepBack(i, values, disc)
		if i >= firstExercise {
			for j := range values {
				values[j] = math.Max(values[j], opt.Payoff.Value(tree.Underlying(i, j)))
			}
		}
		switch i {
		case 2:
			slice2 = values
		case 1:
			slice1 = values
		}
	}

	res := Results{Value: values[0]}
	if slice1 != nil {
		res.Delta = (slice1[1] - slice1[0]) / (tree.Underlying(1, 1) - tree.Underlying(1, 0))
	}
	if slice2 != nil {
		su, sm, sd := tree.Underlying(2, 2), tree.Underlying(2, 1), tree.Underlying(2, 0)
		deltaUp := (slice2[2] - slice2[1]) / (su - sm)
		deltaDown := (slice2[1] - slice2[0]) / (sm - sd)
		res.Gamma = (deltaUp - deltaDown) / (0.5 * (su - sd))
	}
	return res, nil
}
