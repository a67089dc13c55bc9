package option

import (
	"math"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/marketdata"
)

// AnalyticEngine prices European options in closed form under Black-Scholes.
type AnalyticEngine struct {
	process *marketdata.BlackScholesProcess
}

func NewAnalyticEngine(process *marketdata.BlackScholesProcess) *AnalyticEngine {
	return &AnalyticEngine{process: process}
}

func (e *AnalyticEngine) WithProcess(p *marketdata.BlackScholesProcess) Engine {
	return NewAnalyticEngine(p)
}

// Calculate returns the discounted Black value and its Greeks. Theta is per
// year; vega and the rhos are per unit change of σ, r and q.
func (e *AnalyticEngine) Calculate(opt VanillaOption) (Results, error) {
	const op = "option.AnalyticEngine"
	if err := opt.Validate(); err != nil {
		return Results{}, err
	}
	if opt.Exercise.Kind != European {
		return Results{}, errs.Domain(op, "%s exercise is not supported by the analytic engine", opt.Exercise.Kind)
	}
	p := e.process
	if err := p.Validate(); err != nil {
		return Results{}, err
	}

	expiry := opt.Exercise.LastDate()
	t := p.Volatility.TimeFromReference(expiry)
	if t <= 0 {
		return Results{}, errs.Domain(op, "time to maturity must be positive, got %v", t)
	}
	tr := p.RiskFree.TimeFromReference(expiry)
	tq := p.DividendYield.TimeFromReference(expiry)

	s := p.Spot.Value()
	k := opt.Payoff.Strike
	sigma := p.Volatility.Volatility(t)
	r := p.RiskFree.ZeroRate(tr)
	q := p.DividendYield.ZeroRate(tq)
	rDisc := p.RiskFree.Discount(tr)
	qDisc := p.DividendYield.Discount(tq)
	fwd := s * qDisc / rDisc
	stdDev := math.Sqrt(p.Volatility.BlackVariance(t))
	w := float64(opt.Payoff.Type)

	var res Results
	if stdDev > 0 && k > 0 {
		d1 := math.Log(fwd/k)/stdDev + 0.5*stdDev
		d2 := d1 - stdDev
		nd1 := cumNorm(w * d1)
		nd2 := cumNorm(w * d2)
		res.Value = rDisc * w * (fwd*nd1 - k*nd2)
		res.Delta = w * qDisc * nd1
		res.Gamma = qDisc * normPDF(d1) / (s * stdDev)
		res.Vega = s * qDisc * normPDF(d1) * math.Sqrt(t)
		res.Rho = w * k * tr * rDisc * nd2
		res.DividendRho = -w * tq * s * qDisc * nd1
	} else {
		// Degenerate distribution: the option is worth its discounted forward
		// intrinsic value.
		res.Value = rDisc * opt.Payoff.Value(fwd)
		if res.Value > 0 {
			res.Delta = w * qDisc
			res.Rho = w * k * tr * rDisc
			res.DividendRho = -w * tq * s * qDisc
		}
	}
	res.Theta = r*res.Value - (r-q)*s*res.Delta - 0.5*sigma*sigma*s*s*res.Gamma

	v, err := errs.EnsureFinite(op, res.Value)
	if err != nil {
		return Results{}, err
	}
	res.Value = v
	return res, nil
}

func cumNorm(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
