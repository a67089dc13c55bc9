package bond

import (
	"math"
	"time"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/lattice"
	"github.com/meenmo/moderiv/marketdata"
	"github.com/meenmo/moderiv/utils"
)

// BinomialConvertibleEngine values a ConvertibleBond on a CRR tree with
// Tsiveriotis-Fernandes credit treatment: each node carries the probability
// that the bond ends up converted, and cash flows are discounted at
// c·r + (1-c)·(r+spread).
type BinomialConvertibleEngine struct {
	process      *marketdata.BlackScholesProcess
	creditSpread *marketdata.Quote
	steps        int
}

func NewBinomialConvertibleEngine(process *marketdata.BlackScholesProcess, creditSpread *marketdata.Quote, steps int) *BinomialConvertibleEngine {
	return &BinomialConvertibleEngine{process: process, creditSpread: creditSpread, steps: steps}
}

// ConvertibleResults is the engine output. Prices are per 100 of face.
type ConvertibleResults struct {
	Value float64
	// BondFloor prices the coupons and redemption without the conversion
	// right or the embedded calls and puts.
	BondFloor float64
	// ConversionValue is ConversionRatio times the current spot.
	ConversionValue float64
	// ConversionProbability is the root-node probability of conversion.
	ConversionProbability float64
	AccruedAmount         float64
	SettlementDate        time.Time
}

type dividendEvent struct {
	t      float64
	amount float64
}

type exerciseEvent struct {
	price float64
	side  Side
}

// nodeEvents collects what happens on each slice of the tree.
type nodeEvents struct {
	coupons   map[int]float64
	exercises map[int][]exerciseEvent
	dividends []dividendEvent
}

// Calculate prices b as of the risk-free curve's reference date. The bond
// settles SettlementDays business days later and all lattice times are
// measured from settlement under the risk-free day count.
func (e *BinomialConvertibleEngine) Calculate(b *ConvertibleBond) (ConvertibleResults, error) {
	const op = "bond.BinomialConvertibleEngine"
	if err := b.Validate(); err != nil {
		return ConvertibleResults{}, err
	}
	p := e.process
	if err := p.Validate(); err != nil {
		return ConvertibleResults{}, err
	}
	if e.creditSpread == nil {
		return ConvertibleResults{}, errs.Domain(op, "credit spread quote is required")
	}
	if err := e.creditSpread.Validate(); err != nil {
		return ConvertibleResults{}, err
	}

	today := p.ReferenceDate()
	settlement := b.SettlementDate(today)
	if !b.MaturityDate.After(settlement) {
		return ConvertibleResults{}, errs.Domain(op, "bond matured on %s, settlement is %s",
			b.MaturityDate.Format(utils.DateLayout), settlement.Format(utils.DateLayout))
	}

	dayCount := p.RiskFree.DayCount()
	maturity := utils.YearFraction(settlement, b.MaturityDate, dayCount)
	grid, err := lattice.NewTimeGrid(maturity, e.steps)
	if err != nil {
		return ConvertibleResults{}, err
	}

	r := p.RiskFree.ZeroRate(maturity)
	q := p.DividendYield.ZeroRate(maturity)
	sigma := p.Volatility.Volatility(maturity)
	spread := e.creditSpread.Value()
	spot := p.Spot.Value()

	// Strip the present value of known dividends from spot.
	s0 := spot
	var divs []dividendEvent
	for _, d := range b.Dividends {
		if d.Date.Before(today) {
			continue
		}
		amount := d.CashAmount(spot)
		s0 -= amount * p.RiskFree.DiscountAt(d.Date)
		divs = append(divs, dividendEvent{t: utils.YearFraction(settlement, d.Date, dayCount), amount: amount})
	}
	if s0 <= 0 {
		return ConvertibleResults{}, errs.Numerical(op, "spot net of dividends is not positive (%v)", s0)
	}

	tree, err := lattice.NewCRR(s0, r-q, sigma, grid)
	if err != nil {
		return ConvertibleResults{}, err
	}

	events, err := e.events(b, grid, settlement, dayCount)
	if err != nil {
		return ConvertibleResults{}, err
	}
	events.dividends = divs

	convertFrom := 0
	if start := utils.YearFraction(settlement, b.IssueDate, dayCount); start > 0 {
		convertFrom = int(math.Ceil(start/grid.Dt() - 1e-9))
	}

	n := grid.Steps
	values := make([]float64, n+1)
	prob := make([]float64, n+1)
	for j := range values {
		values[j] = b.Redemption
	}
	events.apply(tree, n, values, prob, b.ConversionRatio, r, n >= convertFrom)

	dt := grid.Dt()
	for i := n - 1; i >= 0; i-- {
		values, prob = rollback(tree, i, values, prob, r, spread, dt)
		events.apply(tree, i, values, prob, b.ConversionRatio, r, i >= convertFrom)
	}

	value, err := errs.EnsureFinite(op, values[0])
	if err != nil {
		return ConvertibleResults{}, err
	}
	floor, err := b.BondFloor(settlement, dayCount, r, spread)
	if err != nil {
		return ConvertibleResults{}, err
	}
	accrued, err := b.AccruedAmount(settlement)
	if err != nil {
		return ConvertibleResults{}, err
	}

	return ConvertibleResults{
		Value:                 value,
		BondFloor:             floor,
		ConversionValue:       b.ConversionRatio * spot,
		ConversionProbability: prob[0],
		AccruedAmount:         accrued,
		SettlementDate:        settlement,
	}, nil
}

// events snaps coupons and exercise dates after settlement onto the grid.
// Clean exercise prices are made dirty with the coupon accrued on that date.
func (e *BinomialConvertibleEngine) events(b *ConvertibleBond, grid lattice.TimeGrid, settlement time.Time, dayCount string) (*nodeEvents, error) {
	ev := &nodeEvents{coupons: map[int]float64{}, exercises: map[int][]exerciseEvent{}}
	snap := func(d time.Time) float64 {
		return math.Min(utils.YearFraction(settlement, d, dayCount), grid.End)
	}

	cfs, err := b.Cashflows()
	if err != nil {
		return nil, err
	}
	var couponTimes []float64
	var couponAmounts []float64
	for _, cf := range cfs {
		if cf.Coupon == 0 || !cf.Date.After(settlement) {
			continue
		}
		couponTimes = append(couponTimes, snap(cf.Date))
		couponAmounts = append(couponAmounts, cf.Coupon)
	}
	for i, ks := range grid.Indices(couponTimes) {
		for _, k := range ks {
			ev.coupons[i] += couponAmounts[k]
		}
	}

	var exTimes []float64
	var exercises []exerciseEvent
	for _, c := range b.Callability {
		if !c.Date.After(settlement) {
			continue
		}
		price := c.Price
		if c.PriceType == Clean {
			accrued, err := b.AccruedAmount(c.Date)
			if err != nil {
				return nil, err
			}
			price += accrued
		}
		exTimes = append(exTimes, snap(c.Date))
		exercises = append(exercises, exerciseEvent{price: price, side: c.Side})
	}
	for i, ks := range grid.Indices(exTimes) {
		// Puts first so that a call on the same slice caps the put floor.
		for _, side := range []Side{Put, Call} {
			for _, k := range ks {
				if exercises[k].side == side {
					ev.exercises[i] = append(ev.exercises[i], exercises[k])
				}
			}
		}
	}
	return ev, nil
}

// apply runs the slice-i adjustments in order: puts, calls, coupons and
// finally the holder's conversion right.
func (ev *nodeEvents) apply(tree *lattice.Tree, i int, values, prob []float64, ratio, r float64, convertible bool) {
	adjusted := ev.adjustedPrices(tree, i, r)
	for _, x := range ev.exercises[i] {
		switch x.side {
		case Put:
			applyPut(values, prob, x.price)
		case Call:
			applyCall(values, prob, adjusted, x.price, ratio, convertible)
		}
	}
	if c, ok := ev.coupons[i]; ok {
		for j := range values {
			values[j] += c
		}
	}
	if convertible {
		applyConversion(values, prob, adjusted, ratio)
	}
}

// adjustedPrices adds back to each node the value at slice i of dividends
// not yet paid, giving the share price a converting holder receives.
func (ev *nodeEvents) adjustedPrices(tree *lattice.Tree, i int, r float64) []float64 {
	out := tree.Prices(i)
	t := tree.Grid().Time(i)
	for _, d := range ev.dividends {
		if d.t < t-1e-12 {
			continue
		}
		add := d.amount * math.Exp(-r*(d.t-t))
		for j := range out {
			out[j] += add
		}
	}
	return out
}

func applyPut(values, prob []float64, price float64) {
	for j := range values {
		if price > values[j] {
			values[j] = price
			prob[j] = 0
		}
	}
}

// applyCall caps the bond at the call price. While the bond is convertible
// the holder answers a call by converting if that is worth more.
func applyCall(values, prob, adjusted []float64, price, ratio float64, convertible bool) {
	for j := range values {
		floor := price
		converted := false
		if convertible && ratio*adjusted[j] > price {
			floor = ratio * adjusted[j]
			converted = true
		}
		if floor < values[j] {
			values[j] = floor
			if converted {
				prob[j] = 1
			} else {
				prob[j] = 0
			}
		}
	}
}

func applyConversion(values, prob, adjusted []float64, ratio float64) {
	if ratio == 0 {
		return
	}
	for j := range values {
		if conv := ratio * adjusted[j]; conv >= values[j] {
			values[j] = conv
			prob[j] = 1
		}
	}
}

// rollback moves values and conversion probabilities from slice i+1 to i,
// discounting each branch at its node's blended rate r + (1-c)·spread.
func rollback(tree *lattice.Tree, i int, values, prob []float64, r, spread, dt float64) ([]float64, []float64) {
	pu := tree.ProbUp()
	pd := 1 - pu
	nextValues := make([]float64, i+1)
	nextProb := make([]float64, i+1)
	for j := 0; j <= i; j++ {
		up := math.Exp(-(r + (1-prob[j+1])*spread) * dt)
		down := math.Exp(-(r + (1-prob[j])*spread) * dt)
		nextValues[j] = pu*values[j+1]*up + pd*values[j]*down
		nextProb[j] = pu*prob[j+1] + pd*prob[j]
	}
	return nextValues, nextProb
}
