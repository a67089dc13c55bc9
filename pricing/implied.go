package pricing

import (
	"context"

	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/logger"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/option"
	"github.com/meenmo/moderiv/utils"
)

// ImpliedVolatilityRequest asks for the volatility that reproduces Value.
//
// Rates and volatilities are decimals (0.05 means 5%). Maturity is in years
// and becomes a date round(T·360) days after the valuation date under
// ACT/360.
type ImpliedVolatilityRequest struct {
	TaskID          string  `json:"task_id,omitempty"`
	OptionType      string  `json:"type"`
	TargetPrice     float64 `json:"value"`
	Spot            float64 `json:"underlying"`
	Strike          float64 `json:"strike"`
	DividendYield   float64 `json:"dividend_yield"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
	TimeToMaturity  float64 `json:"maturity"`
	VolatilityGuess float64 `json:"volatility"`
	// ExerciseStyle is european (default) or american.
	ExerciseStyle string `json:"exercise,omitempty"`
	// ValuationDate defaults to today.
	ValuationDate string `json:"valuation_date,omitempty"`
	// LatticeSteps sizes the American tree; zero uses lattice.american_steps.
	LatticeSteps int `json:"steps,omitempty"`
}

type ImpliedVolatilityResult struct {
	ImpliedVolatility float64 `json:"implied_volatility"`
}

// vanillaSetup is the option and market built from a flat request.
type vanillaSetup struct {
	option  option.VanillaOption
	process *marketdata.BlackScholesProcess
}

func buildVanilla(op, typ, style, valuationDate string, spot, strike, q, r, t, sigma float64) (vanillaSetup, error) {
	side, err := option.ParseType(typ)
	if err != nil {
		return vanillaSetup{}, err
	}
	kind, err := option.ParseExerciseKind(style)
	if err != nil {
		return vanillaSetup{}, err
	}
	if err := errs.RequireFinite(op, []string{"underlying", "strike", "dividend yield", "risk-free rate", "maturity", "volatility"},
		spot, strike, q, r, t, sigma); err != nil {
		return vanillaSetup{}, err
	}
	if t <= 0 {
		return vanillaSetup{}, errs.Domain(op, "maturity must be positive, got %v", t)
	}

	valuation := utils.Today()
	if valuationDate != "" {
		if valuation, err = utils.ParseDate(valuationDate); err != nil {
			return vanillaSetup{}, errs.Domain(op, "%v", err)
		}
	}
	days := int(t*360 + 0.5)
	if days < 1 {
		return vanillaSetup{}, errs.Domain(op, "maturity %v years is shorter than a day", t)
	}
	expiry := valuation.AddDate(0, 0, days)

	exercise := option.NewEuropeanExercise(expiry)
	if kind == option.American {
		if exercise, err = option.NewAmericanExercise(valuation, expiry); err != nil {
			return vanillaSetup{}, err
		}
	}

	process := marketdata.NewBlackScholesProcess(
		marketdata.NewQuote("underlying", marketdata.KindSpot, spot),
		marketdata.NewFlatForward(valuation, marketdata.NewQuote("dividend yield", marketdata.KindRate, q), utils.Act360),
		marketdata.NewFlatForward(valuation, marketdata.NewQuote("risk-free rate", marketdata.KindRate, r), utils.Act360),
		marketdata.NewBlackConstantVol(valuation, marketdata.NewQuote("volatility", marketdata.KindVolatility, sigma), utils.Act360),
	)
	if err := process.Validate(); err != nil {
		return vanillaSetup{}, err
	}

	return vanillaSetup{
		option:  option.VanillaOption{Payoff: option.Payoff{Type: side, Strike: strike}, Exercise: exercise},
		process: process,
	}, nil
}

// ImpliedVolatility solves for the volatility of a European option with the
// analytic engine, or of an American option with the binomial engine.
func ImpliedVolatility(ctx context.Context, req ImpliedVolatilityRequest) (ImpliedVolatilityResult, error) {
	const op = "pricing.ImpliedVolatility"
	cfg := config.GetConfig()

	setup, err := buildVanilla(op, req.OptionType, req.ExerciseStyle, req.ValuationDate,
		req.Spot, req.Strike, req.DividendYield, req.RiskFreeRate, req.TimeToMaturity, req.VolatilityGuess)
	if err != nil {
		return ImpliedVolatilityResult{}, err
	}

	var engine option.Engine = option.NewAnalyticEngine(setup.process)
	if setup.option.Exercise.Kind == option.American {
		steps := req.LatticeSteps
		if steps <= 0 {
			steps = cfg.Lattice.AmericanSteps
		}
		engine = option.NewBinomialEngine(setup.process, steps, option.WithSmoothing(cfg.Lattice.Smoothing))
	}

	opts := option.ImpliedVolOptions{
		Accuracy:       cfg.Solver.Accuracy,
		MaxEvaluations: cfg.Solver.MaxEvaluations,
		MinVol:         cfg.Solver.MinVol,
		MaxVol:         cfg.Solver.MaxVol,
	}

	defer logger.LogDuration(ctx, "implied volatility", "type", req.OptionType, "exercise", setup.option.Exercise.Kind.String())()
	vol, err := option.ImpliedVolatility(setup.option, setup.process, engine, req.TargetPrice, opts)
	if err != nil {
		return ImpliedVolatilityResult{}, err
	}
	return ImpliedVolatilityResult{ImpliedVolatility: vol}, nil
}

// EuropeanOptionRequest prices a European option in closed form.
type EuropeanOptionRequest struct {
	TaskID         string  `json:"task_id,omitempty"`
	OptionType     string  `json:"type"`
	Spot           float64 `json:"underlying"`
	Strike         float64 `json:"strike"`
	DividendYield  float64 `json:"dividend_yield"`
	RiskFreeRate   float64 `json:"risk_free_rate"`
	TimeToMaturity float64 `json:"maturity"`
	Volatility     float64 `json:"volatility"`
	ValuationDate  string  `json:"valuation_date,omitempty"`
}

type EuropeanOptionResult struct {
	Value       float64 `json:"value"`
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	Vega        float64 `json:"vega"`
	Theta       float64 `json:"theta"`
	Rho         float64 `json:"rho"`
	DividendRho float64 `json:"dividend_rho"`
}

// Rounded returns r with every field rounded to places decimals.
func (r EuropeanOptionResult) Rounded(places int32) EuropeanOptionResult {
	return EuropeanOptionResult{
		Value:       Round(r.Value, places),
		Delta:       Round(r.Delta, places),
		Gamma:       Round(r.Gamma, places),
		Vega:        Round(r.Vega, places),
		Theta:       Round(r.Theta, places),
		Rho:         Round(r.Rho, places),
		DividendRho: Round(r.DividendRho, places),
	}
}

func EuropeanOption(ctx context.Context, req EuropeanOptionRequest) (EuropeanOptionResult, error) {
	const op = "pricing.EuropeanOption"
	setup, err := buildVanilla(op, req.OptionType, "european", req.ValuationDate,
		req.Spot, req.Strike, req.DividendYield, req.RiskFreeRate, req.TimeToMaturity, req.Volatility)
	if err != nil {
		return EuropeanOptionResult{}, err
	}

	defer logger.LogDuration(ctx, "european option", "type", req.OptionType)()
	res, err := option.NewAnalyticEngine(setup.process).Calculate(setup.option)
	if err != nil {
		return EuropeanOptionResult{}, err
	}
	return EuropeanOptionResult(res), nil
}
