package marketdata

import (
	"math"
	"time"

	"github.com/meenmo/moderiv/utils"
)

// FlatForward is a flat continuously compounded yield curve.
type FlatForward struct {
	referenceDate time.Time
	rate          *Quote
	dayCount      string
}

// NewFlatForward wraps rate into a curve anchored at referenceDate.
func NewFlatForward(referenceDate time.Time, rate *Quote, dayCount string) *FlatForward {
	return &FlatForward{referenceDate: referenceDate, rate: rate, dayCount: dayCount}
}

func (c *FlatForward) ReferenceDate() time.Time { return c.referenceDate }
func (c *FlatForward) DayCount() string         { return c.dayCount }
func (c *FlatForward) Quote() *Quote            { return c.rate }

// TimeFromReference converts d into a year fraction from the reference date.
func (c *FlatForward) TimeFromReference(d time.Time) float64 {
	return utils.YearFraction(c.referenceDate, d, c.dayCount)
}

// ZeroRate returns the continuously compounded rate, identical for every t.
func (c *FlatForward) ZeroRate(float64) float64 {
	return c.rate.Value()
}

// Discount returns exp(-r*t).
func (c *FlatForward) Discount(t float64) float64 {
	return math.Exp(-c.rate.Value() * t)
}

// DiscountAt returns the discount factor for a calendar date.
func (c *FlatForward) DiscountAt(d time.Time) float64 {
	return c.Discount(c.TimeFromReference(d))
}

// BlackConstantVol is a flat Black volatility surface.
type BlackConstantVol struct {
	referenceDate time.Time
	vol           *Quote
	dayCount      string
}

// NewBlackConstantVol wraps vol into a surface anchored at referenceDate.
func NewBlackConstantVol(referenceDate time.Time, vol *Quote, dayCount string) *BlackConstantVol {
	return &BlackConstantVol{referenceDate: referenceDate, vol: vol, dayCount: dayCount}
}

func (v *BlackConstantVol) ReferenceDate() time.Time { return v.referenceDate }
func (v *BlackConstantVol) DayCount() string         { return v.dayCount }
func (v *BlackConstantVol) Quote() *Quote            { return v.vol }

// TimeFromReference converts d into a year fraction from the reference date.
func (v *BlackConstantVol) TimeFromReference(d time.Time) float64 {
	return utils.YearFraction(v.referenceDate, d, v.dayCount)
}

// Volatility returns σ for any horizon.
func (v *BlackConstantVol) Volatility(float64) float64 {
	return v.vol.Value()
}

// BlackVariance returns σ²·t.
func (v *BlackConstantVol) BlackVariance(t float64) float64 {
	s := v.vol.Value()
	return s * s * t
}
