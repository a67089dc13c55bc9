package bond

import (
	"math"
	"time"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/utils"
)

// PresentValue discounts every cashflow paid after settlement at a flat
// continuously compounded rate, with times measured under dayCount.
func PresentValue(cfs []Cashflow, settlement time.Time, dayCount string, rate float64) float64 {
	pv, _ := priceAndDeriv(rate, cfs, settlement, dayCount)
	return pv
}

// ---------------------------------------------------------------------------
// Newton-Raphson yield solver
// ---------------------------------------------------------------------------

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.50
	yieldCeiling   = 2.00
)

// YieldFromPrice finds the flat continuously compounded yield y at which the
// cashflows paid after settlement are worth dirtyPrice. It also returns the
// number of Newton steps taken.
func YieldFromPrice(cfs []Cashflow, settlement time.Time, dayCount string, dirtyPrice float64) (float64, int, error) {
	const op = "bond.YieldFromPrice"
	if err := errs.RequireFinite(op, []string{"dirty price"}, dirtyPrice); err != nil {
		return 0, 0, err
	}
	if dirtyPrice <= 0 {
		return 0, 0, errs.Domain(op, "dirty price must be positive, got %v", dirtyPrice)
	}
	if pv, _ := priceAndDeriv(0, cfs, settlement, dayCount); pv == 0 {
		return 0, 0, errs.Domain(op, "no cashflows after %s", settlement.Format(utils.DateLayout))
	}

	y := 0.025
	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := priceAndDeriv(y, cfs, settlement, dayCount)
		f := price - dirtyPrice

		if math.Abs(f) < yieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, iter + 1, errs.Convergence(op, "derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return y, yieldMaxIter, errs.Convergence(op, "did not converge after %d iterations", yieldMaxIter)
}

// priceAndDeriv returns (price, dPrice/dy):
//
//	price = Σ CF_k · exp(-y·t_k)
//	dP/dy = Σ -t_k · CF_k · exp(-y·t_k)
func priceAndDeriv(y float64, cfs []Cashflow, settlement time.Time, dayCount string) (float64, float64) {
	var price, deriv float64
	for _, cf := range cfs {
		if !cf.Date.After(settlement) {
			continue
		}
		t := utils.YearFraction(settlement, cf.Date, dayCount)
		pv := cf.Amount() * math.Exp(-y*t)
		price += pv
		deriv += -t * pv
	}
	return price, deriv
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
