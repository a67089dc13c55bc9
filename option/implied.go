package option

import (
	"math"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/solver"
)

// ImpliedVolOptions controls the implied volatility search.
type ImpliedVolOptions struct {
	Accuracy       float64
	MaxEvaluations int
	MinVol         float64
	MaxVol         float64
}

// DefaultImpliedVolOptions searches σ in [1e-7, 4] to within 1e-6 using at
// most 100 pricings.
func DefaultImpliedVolOptions() ImpliedVolOptions {
	return ImpliedVolOptions{
		Accuracy:       1e-6,
		MaxEvaluations: 100,
		MinVol:         1e-7,
		MaxVol:         4.0,
	}
}

// volatilityFloor is implemented by engines that cannot price below some σ.
type volatilityFloor interface {
	MinVolatility(opt VanillaOption) float64
}

// ImpliedVolatility returns the σ at which engine prices opt at target.
//
// The engine is rebound once to a copy of process whose volatility is a
// private quote; each trial only moves that quote, so the caller's process
// is never modified. The volatility already on process is the starting guess.
func ImpliedVolatility(opt VanillaOption, process *marketdata.BlackScholesProcess, engine Engine, target float64, opts ImpliedVolOptions) (float64, error) {
	const op = "option.ImpliedVolatility"
	if err := errs.RequireFinite(op, []string{"target price"}, target); err != nil {
		return 0, err
	}
	if target < 0 {
		return 0, errs.Domain(op, "target price must be non-negative, got %v", target)
	}
	if err := opt.Validate(); err != nil {
		return 0, err
	}
	if err := process.Validate(); err != nil {
		return 0, err
	}
	if opts.MaxEvaluations <= 0 {
		opts.MaxEvaluations = DefaultImpliedVolOptions().MaxEvaluations
	}
	if opts.Accuracy <= 0 {
		opts.Accuracy = DefaultImpliedVolOptions().Accuracy
	}

	surface := process.Volatility
	volQuote := marketdata.NewQuote("implied volatility", marketdata.KindVolatility, surface.Quote().Value())
	volTS := marketdata.NewBlackConstantVol(surface.ReferenceDate(), volQuote, surface.DayCount())
	priced := engine.WithProcess(process.WithVolatility(volTS))

	lo, hi := opts.MinVol, opts.MaxVol
	if f, ok := priced.(volatilityFloor); ok {
		lo = math.Max(lo, f.MinVolatility(opt))
	}
	if lo >= hi {
		return 0, errs.Convergence(op, "empty volatility range [%v, %v]", lo, hi)
	}
	guess := math.Min(math.Max(volQuote.Value(), lo), hi)

	objective := func(sigma float64) (float64, error) {
		volQuote.SetValue(sigma)
		res, err := priced.Calculate(opt)
		if err != nil {
			return 0, err
		}
		return res.Value - target, nil
	}

	brent := solver.Brent{Accuracy: opts.Accuracy, MaxEvaluations: opts.MaxEvaluations}
	root, err := brent.Solve(objective, guess, lo, hi)
	if err != nil {
		return 0, err
	}
	return root.Root, nil
}
