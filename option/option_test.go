package option_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/option"
	"github.com/meenmo/moderiv/utils"
)

var valuation = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

type market struct {
	spot, div, rate, vol *marketdata.Quote
	process              *marketdata.BlackScholesProcess
}

func newMarket(s, q, r, sigma float64) market {
	m := market{
		spot: marketdata.NewQuote("spot", marketdata.KindSpot, s),
		div:  marketdata.NewQuote("q", marketdata.KindRate, q),
		rate: marketdata.NewQuote("r", marketdata.KindRate, r),
		vol:  marketdata.NewQuote("vol", marketdata.KindVolatility, sigma),
	}
	m.process = marketdata.NewBlackScholesProcess(
		m.spot,
		marketdata.NewFlatForward(valuation, m.div, utils.Act365F),
		marketdata.NewFlatForward(valuation, m.rate, utils.Act365F),
		marketdata.NewBlackConstantVol(valuation, m.vol, utils.Act365F),
	)
	return m
}

func european(typ option.Type, strike float64, years int) option.VanillaOption {
	return option.VanillaOption{
		Payoff:   option.Payoff{Type: typ, Strike: strike},
		Exercise: option.NewEuropeanExercise(valuation.AddDate(0, 0, 365*years)),
	}
}

func american(t *testing.T, typ option.Type, strike float64, years int) option.VanillaOption {
	t.Helper()
	ex, err := option.NewAmericanExercise(valuation, valuation.AddDate(0, 0, 365*years))
	require.NoError(t, err)
	return option.VanillaOption{Payoff: option.Payoff{Type: typ, Strike: strike}, Exercise: ex}
}

func TestAnalyticReferenceValues(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.05, 0.2)
	engine := option.NewAnalyticEngine(m.process)

	call, err := european(option.Call, 100, 1).NPV(engine)
	require.NoError(t, err)
	assert.InDelta(t, 10.450583572185565, call, 1e-10)

	put, err := european(option.Put, 100, 1).NPV(engine)
	require.NoError(t, err)
	assert.InDelta(t, 5.573526022256971, put, 1e-10)
}

func TestAnalyticPutCallParityAndBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name              string
		s, k, q, r, sigma float64
	}{
		{"atm", 100, 100, 0, 0.05, 0.2},
		{"itm call with yield", 120, 100, 0.03, 0.02, 0.35},
		{"otm call high vol", 80, 110, 0.01, 0.07, 0.9},
		{"zero rate", 50, 45, 0, 0, 0.15},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := newMarket(tc.s, tc.q, tc.r, tc.sigma)
			engine := option.NewAnalyticEngine(m.process)

			call, err := european(option.Call, tc.k, 1).NPV(engine)
			require.NoError(t, err)
			put, err := european(option.Put, tc.k, 1).NPV(engine)
			require.NoError(t, err)

			parity := tc.s*math.Exp(-tc.q) - tc.k*math.Exp(-tc.r)
			assert.InDelta(t, parity, call-put, 1e-8)

			assert.GreaterOrEqual(t, call, math.Max(tc.s*math.Exp(-tc.q)-tc.k*math.Exp(-tc.r), 0)-1e-12)
			assert.LessOrEqual(t, call, tc.s*math.Exp(-tc.q)+1e-12)
			assert.GreaterOrEqual(t, put, math.Max(tc.k*math.Exp(-tc.r)-tc.s*math.Exp(-tc.q), 0)-1e-12)
			assert.LessOrEqual(t, put, tc.k*math.Exp(-tc.r)+1e-12)
		})
	}
}

func TestAnalyticGreeksMatchBumps(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0.02, 0.05, 0.25)
	engine := option.NewAnalyticEngine(m.process)
	opt := european(option.Call, 95, 1)

	base, err := engine.Calculate(opt)
	require.NoError(t, err)

	bump := func(q *marketdata.Quote, h float64) float64 {
		orig := q.Value()
		defer q.SetValue(orig)
		q.SetValue(orig + h)
		up, err := opt.NPV(engine)
		require.NoError(t, err)
		q.SetValue(orig - h)
		down, err := opt.NPV(engine)
		require.NoError(t, err)
		return (up - down) / (2 * h)
	}

	assert.InDelta(t, bump(m.spot, 0.01), base.Delta, 1e-6)
	assert.InDelta(t, bump(m.vol, 1e-4), base.Vega, 1e-4)
	assert.InDelta(t, bump(m.rate, 1e-5), base.Rho, 1e-4)
	assert.InDelta(t, bump(m.div, 1e-5), base.DividendRho, 1e-4)

	h := 0.01
	m.spot.SetValue(100 + h)
	up, _ := engine.Calculate(opt)
	m.spot.SetValue(100 - h)
	down, _ := engine.Calculate(opt)
	m.spot.SetValue(100)
	assert.InDelta(t, (up.Delta-down.Delta)/(2*h), base.Gamma, 1e-6)
}

func TestAnalyticRejectsBadInput(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.05, 0.2)
	engine := option.NewAnalyticEngine(m.process)

	expired := option.VanillaOption{
		Payoff:   option.Payoff{Type: option.Call, Strike: 100},
		Exercise: option.NewEuropeanExercise(valuation),
	}
	_, err := engine.Calculate(expired)
	assert.True(t, errors.Is(err, errs.ErrDomain))

	_, err = engine.Calculate(american(t, option.Put, 100, 1))
	assert.True(t, errors.Is(err, errs.ErrDomain))

	m.vol.SetValue(-0.1)
	_, err = engine.Calculate(european(option.Call, 100, 1))
	assert.True(t, errors.Is(err, errs.ErrDomain))
}

func TestParseType(t *testing.T) {
	t.Parallel()

	typ, err := option.ParseType(" Call ")
	require.NoError(t, err)
	assert.Equal(t, option.Call, typ)

	typ, err = option.ParseType("put")
	require.NoError(t, err)
	assert.Equal(t, option.Put, typ)

	_, err = option.ParseType("straddle")
	assert.True(t, errors.Is(err, errs.ErrDomain))
}

func TestBinomialConvergesToAnalytic(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.05, 0.2)
	analytic := option.NewAnalyticEngine(m.process)

	for _, typ := range []option.Type{option.Call, option.Put} {
		opt := european(typ, 100, 1)
		want, err := opt.NPV(analytic)
		require.NoError(t, err)

		plain, err := opt.NPV(option.NewBinomialEngine(m.process, 500))
		require.NoError(t, err)
		assert.InDelta(t, want, plain, 5e-3, typ.String())

		smooth, err := opt.NPV(option.NewBinomialEngine(m.process, 500, option.WithSmoothing(true)))
		require.NoError(t, err)
		assert.InDelta(t, want, smooth, 1e-3, typ.String())
	}
}

func TestBinomialDeltaCloseToAnalytic(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0.01, 0.04, 0.3)
	opt := european(option.Call, 100, 1)

	want, err := option.NewAnalyticEngine(m.process).Calculate(opt)
	require.NoError(t, err)
	got, err := option.NewBinomialEngine(m.process, 400, option.WithSmoothing(true)).Calculate(opt)
	require.NoError(t, err)

	assert.InDelta(t, want.Delta, got.Delta, 1e-2)
	assert.InDelta(t, want.Gamma, got.Gamma, 1e-3)
}

func TestAmericanDominatesEuropean(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0.03, 0.06, 0.25)
	engine := option.NewBinomialEngine(m.process, 300)

	for _, strike := range []float64{80, 100, 120} {
		for _, typ := range []option.Type{option.Call, option.Put} {
			eu, err := european(typ, strike, 1).NPV(engine)
			require.NoError(t, err)
			am, err := american(t, typ, strike, 1).NPV(engine)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, am, eu-1e-12)
			assert.GreaterOrEqual(t, am, option.Payoff{Type: typ, Strike: strike}.Value(100)-1e-12)
		}
	}

	// Deep in the money puts are exercised immediately.
	deep, err := american(t, option.Put, 200, 1).NPV(engine)
	require.NoError(t, err)
	assert.InDelta(t, 100, deep, 1e-9)
}

func TestBinomialRejectsArbitrageTree(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.5, 0.01)
	_, err := european(option.Call, 100, 1).NPV(option.NewBinomialEngine(m.process, 10))
	assert.True(t, errors.Is(err, errs.ErrNumerical))
}

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	t.Parallel()

	for _, sigma := range []float64{0.05, 0.2, 0.5, 1.2, 1.9} {
		for _, typ := range []option.Type{option.Call, option.Put} {
			m := newMarket(100, 0.01, 0.05, sigma)
			opt := european(typ, 105, 1)
			engine := option.NewAnalyticEngine(m.process)
			price, err := opt.NPV(engine)
			require.NoError(t, err)

			m.vol.SetValue(0.3)
			opts := option.DefaultImpliedVolOptions()
			got, err := option.ImpliedVolatility(opt, m.process, engine, price, opts)
			require.NoError(t, err)
			assert.InDelta(t, sigma, got, 1e-4)
			assert.Equal(t, 0.3, m.vol.Value(), "caller's quote must be left alone")

			// Repricing at the root reproduces the target up to vega times
			// the volatility accuracy.
			m.vol.SetValue(got)
			res, err := engine.Calculate(opt)
			require.NoError(t, err)
			assert.InDelta(t, price, res.Value, math.Max(opts.Accuracy, res.Vega*opts.Accuracy))
		}
	}
}

func TestImpliedVolatilityAmerican(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.05, 0.3)
	opt := american(t, option.Put, 100, 1)
	engine := option.NewBinomialEngine(m.process, 200)
	price, err := opt.NPV(engine)
	require.NoError(t, err)

	m.vol.SetValue(0.5)
	got, err := option.ImpliedVolatility(opt, m.process, engine, price, option.DefaultImpliedVolOptions())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, got, 1e-4)
}

func TestImpliedVolatilityFailures(t *testing.T) {
	t.Parallel()

	m := newMarket(100, 0, 0.05, 0.2)
	engine := option.NewAnalyticEngine(m.process)
	opt := european(option.Call, 80, 1)

	// Below the no-arbitrage lower bound of about 23.9.
	_, err := option.ImpliedVolatility(opt, m.process, engine, 5, option.DefaultImpliedVolOptions())
	assert.True(t, errors.Is(err, errs.ErrConvergence))

	_, err = option.ImpliedVolatility(opt, m.process, engine, math.NaN(), option.DefaultImpliedVolOptions())
	assert.True(t, errors.Is(err, errs.ErrDomain))

	tight := option.DefaultImpliedVolOptions()
	tight.MaxEvaluations = 3
	price, err := opt.NPV(engine)
	require.NoError(t, err)
	m.vol.SetValue(1.5)
	_, err = option.ImpliedVolatility(opt, m.process, engine, price, tight)
	assert.True(t, errors.Is(err, errs.ErrConvergence))
}
