package marketdata_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/utils"
)

var today = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestQuoteMutationPropagatesToCurves(t *testing.T) {
	t.Parallel()

	rate := marketdata.NewQuote("r", marketdata.KindRate, 0.05)
	curveA := marketdata.NewFlatForward(today, rate, utils.Act365F)
	curveB := marketdata.NewFlatForward(today, rate, utils.Act360)

	assert.InDelta(t, math.Exp(-0.05*2), curveA.Discount(2), 1e-15)

	rate.SetValue(0.01)
	assert.InDelta(t, math.Exp(-0.01*2), curveA.Discount(2), 1e-15)
	assert.InDelta(t, math.Exp(-0.01*2), curveB.Discount(2), 1e-15)
	assert.InDelta(t, math.Exp(-0.01*365.0/360.0), curveB.DiscountAt(today.AddDate(1, 0, 0)), 1e-15)
}

func TestBlackVarianceFollowsQuote(t *testing.T) {
	t.Parallel()

	vol := marketdata.NewQuote("vol", marketdata.KindVolatility, 0.2)
	surface := marketdata.NewBlackConstantVol(today, vol, utils.Act365F)
	assert.InDelta(t, 0.04*0.5, surface.BlackVariance(0.5), 1e-15)

	vol.SetValue(0.3)
	assert.InDelta(t, 0.09*0.5, surface.BlackVariance(0.5), 1e-15)
	assert.Equal(t, 0.3, surface.Volatility(10))
}

func TestQuoteValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		q  *marketdata.Quote
		ok bool
	}{
		{marketdata.NewQuote("s", marketdata.KindSpot, 100), true},
		{marketdata.NewQuote("s", marketdata.KindSpot, 0), false},
		{marketdata.NewQuote("v", marketdata.KindVolatility, -0.1), false},
		{marketdata.NewQuote("r", marketdata.KindRate, math.NaN()), false},
		{marketdata.NewQuote("cs", marketdata.KindSpread, -0.01), true},
		{marketdata.NewQuote("r", marketdata.KindRate, math.Inf(1)), false},
	}
	for _, tc := range cases {
		err := tc.q.Validate()
		if tc.ok {
			assert.NoError(t, err, "%s %v", tc.q.Kind(), tc.q.Value())
			continue
		}
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrDomain))
	}
}

func TestProcessWithVolatilitySharesOtherInputs(t *testing.T) {
	t.Parallel()

	spot := marketdata.NewQuote("spot", marketdata.KindSpot, 100)
	q := marketdata.NewFlatForward(today, marketdata.NewQuote("q", marketdata.KindRate, 0), utils.Act365F)
	r := marketdata.NewFlatForward(today, marketdata.NewQuote("r", marketdata.KindRate, 0.03), utils.Act365F)
	vol := marketdata.NewBlackConstantVol(today, marketdata.NewQuote("vol", marketdata.KindVolatility, 0.2), utils.Act365F)
	p := marketdata.NewBlackScholesProcess(spot, q, r, vol)
	require.NoError(t, p.Validate())

	other := marketdata.NewBlackConstantVol(today, marketdata.NewQuote("vol2", marketdata.KindVolatility, 0.5), utils.Act365F)
	cp := p.WithVolatility(other)
	spot.SetValue(120)

	assert.Equal(t, 120.0, cp.Spot.Value())
	assert.Equal(t, 0.2, p.Volatility.Quote().Value())
	assert.Equal(t, 0.5, cp.Volatility.Quote().Value())

	var empty *marketdata.BlackScholesProcess
	assert.True(t, errors.Is(empty.Validate(), errs.ErrDomain))
}
