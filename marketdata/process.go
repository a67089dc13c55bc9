package marketdata

import (
	"fmt"
	"time"

	"github.com/meenmo/moderiv/errs"
)

// ErrIncompleteProcess is returned when a process is missing one of its inputs.
var ErrIncompleteProcess = fmt.Errorf("%w: incomplete Black-Scholes process", errs.ErrDomain)

// BlackScholesProcess bundles the spot, dividend yield, risk-free and
// volatility inputs of a one-factor lognormal model.
type BlackScholesProcess struct {
	Spot          *Quote
	DividendYield *FlatForward
	RiskFree      *FlatForward
	Volatility    *BlackConstantVol
}

// NewBlackScholesProcess wires the four inputs together.
func NewBlackScholesProcess(spot *Quote, dividendYield, riskFree *FlatForward, vol *BlackConstantVol) *BlackScholesProcess {
	return &BlackScholesProcess{Spot: spot, DividendYield: dividendYield, RiskFree: riskFree, Volatility: vol}
}

// WithVolatility returns a copy of p sharing every input except the volatility.
func (p *BlackScholesProcess) WithVolatility(vol *BlackConstantVol) *BlackScholesProcess {
	cp := *p
	cp.Volatility = vol
	return &cp
}

// ReferenceDate is the valuation date of the risk-free curve.
func (p *BlackScholesProcess) ReferenceDate() time.Time {
	return p.RiskFree.ReferenceDate()
}

// Validate checks presence and validity of every quote.
func (p *BlackScholesProcess) Validate() error {
	if p == nil || p.Spot == nil || p.DividendYield == nil || p.RiskFree == nil || p.Volatility == nil {
		return ErrIncompleteProcess
	}
	for _, q := range []*Quote{p.Spot, p.DividendYield.Quote(), p.RiskFree.Quote(), p.Volatility.Quote()} {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}
