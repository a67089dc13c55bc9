package bond

import (
	"sort"
	"time"

	"github.com/meenmo/moderiv/calendar"
	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/schedule"
	"github.com/meenmo/moderiv/utils"
)

// ConvertibleBond is a fixed-coupon bond the holder may exchange for
// ConversionRatio shares on any date between issue and maturity.
type ConvertibleBond struct {
	IssueDate    time.Time
	MaturityDate time.Time

	// Face is the notional per bond and Redemption the amount repaid at
	// maturity, both per 100.
	Face       float64
	Redemption float64

	ConversionRatio float64
	CouponRate      float64
	Frequency       schedule.Frequency
	DayCount        string

	Calendar       calendar.CalendarID
	SettlementDays int

	Dividends   []Dividend
	Callability []Callability
}

// Validate checks the contract terms. Every dividend and callability date
// must lie in [issue, maturity] and each schedule must be strictly increasing.
func (b *ConvertibleBond) Validate() error {
	const op = "bond.ConvertibleBond"
	if b.IssueDate.IsZero() || b.MaturityDate.IsZero() {
		return errs.Domain(op, "issue and maturity dates are required")
	}
	if !b.MaturityDate.After(b.IssueDate) {
		return errs.Domain(op, "maturity %s must be after issue %s", b.MaturityDate.Format(utils.DateLayout), b.IssueDate.Format(utils.DateLayout))
	}
	if err := errs.RequireFinite(op, []string{"face", "redemption", "conversion ratio", "coupon rate"},
		b.Face, b.Redemption, b.ConversionRatio, b.CouponRate); err != nil {
		return err
	}
	if b.Face <= 0 {
		return errs.Domain(op, "face must be positive, got %v", b.Face)
	}
	if b.Redemption < 0 {
		return errs.Domain(op, "redemption must be non-negative, got %v", b.Redemption)
	}
	if b.ConversionRatio < 0 {
		return errs.Domain(op, "conversion ratio must be non-negative, got %v", b.ConversionRatio)
	}
	if b.CouponRate != 0 {
		if _, err := schedule.FrequencyFromCode(int(b.Frequency)); err != nil {
			return errs.Domain(op, "%v", err)
		}
	}
	if b.SettlementDays < 0 {
		return errs.Domain(op, "settlement days must be non-negative, got %d", b.SettlementDays)
	}

	divDates := make([]time.Time, len(b.Dividends))
	for i, d := range b.Dividends {
		if err := b.withinLife(op, "dividend", d.Date); err != nil {
			return err
		}
		if err := errs.RequireFinite(op, []string{"dividend amount"}, d.Amount); err != nil {
			return err
		}
		divDates[i] = d.Date
	}
	if !utils.StrictlyIncreasing(divDates) {
		return errs.Domain(op, "dividend dates must be strictly increasing")
	}

	// Calls and puts are separate schedules and may share a date.
	bySide := map[Side][]time.Time{}
	for _, c := range b.Callability {
		if err := b.withinLife(op, c.Side.String(), c.Date); err != nil {
			return err
		}
		if err := errs.RequireFinite(op, []string{c.Side.String() + " price"}, c.Price); err != nil {
			return err
		}
		bySide[c.Side] = append(bySide[c.Side], c.Date)
	}
	for _, side := range []Side{Call, Put} {
		if !utils.StrictlyIncreasing(bySide[side]) {
			return errs.Domain(op, "%s dates must be strictly increasing", side)
		}
	}
	return nil
}

func (b *ConvertibleBond) withinLife(op, what string, d time.Time) error {
	if d.Before(b.IssueDate) || d.After(b.MaturityDate) {
		return errs.Domain(op, "%s date %s outside [%s, %s]", what, d.Format(utils.DateLayout),
			b.IssueDate.Format(utils.DateLayout), b.MaturityDate.Format(utils.DateLayout))
	}
	return nil
}

// Schedule returns the coupon accrual periods, generated backward from
// maturity and rolled Following on the bond calendar.
func (b *ConvertibleBond) Schedule() ([]schedule.Period, error) {
	freq := b.Frequency
	if freq == 0 {
		freq = schedule.Annual
	}
	return schedule.Generate(b.IssueDate, b.MaturityDate, schedule.Rule{
		Frequency:             freq,
		Calendar:              b.Calendar,
		Convention:            calendar.Following,
		TerminationConvention: calendar.Following,
	})
}

// Cashflows returns every coupon followed by the redemption, sorted by date.
func (b *ConvertibleBond) Cashflows() ([]Cashflow, error) {
	periods, err := b.Schedule()
	if err != nil {
		return nil, errs.Domain("bond.Cashflows", "%v", err)
	}
	cfs := make([]Cashflow, 0, len(periods))
	for _, p := range periods {
		if b.CouponRate == 0 {
			break
		}
		cfs = append(cfs, Cashflow{
			Date:   p.EndDate,
			Coupon: b.Face * b.CouponRate * utils.YearFraction(p.StartDate, p.EndDate, b.DayCount),
		})
	}
	redemptionDate := periods[len(periods)-1].EndDate
	if n := len(cfs); n > 0 && cfs[n-1].Date.Equal(redemptionDate) {
		cfs[n-1].Principal = b.Redemption
	} else {
		cfs = append(cfs, Cashflow{Date: redemptionDate, Principal: b.Redemption})
	}
	sort.SliceStable(cfs, func(i, j int) bool { return cfs[i].Date.Before(cfs[j].Date) })
	return cfs, nil
}

// AccruedAmount returns the coupon accrued at d inside the period that
// contains it; it is zero on a payment date.
func (b *ConvertibleBond) AccruedAmount(d time.Time) (float64, error) {
	if b.CouponRate == 0 {
		return 0, nil
	}
	periods, err := b.Schedule()
	if err != nil {
		return 0, errs.Domain("bond.AccruedAmount", "%v", err)
	}
	for _, p := range periods {
		if !d.Before(p.StartDate) && d.Before(p.EndDate) {
			return b.Face * b.CouponRate * utils.YearFraction(p.StartDate, d, b.DayCount), nil
		}
	}
	return 0, nil
}

// SettlementDate rolls today forward by SettlementDays business days.
func (b *ConvertibleBond) SettlementDate(today time.Time) time.Time {
	return calendar.AddBusinessDays(b.Calendar, today, b.SettlementDays)
}

// BondFloor is the value of the coupons and redemption alone, discounted at
// rate + spread from settlement.
func (b *ConvertibleBond) BondFloor(settlement time.Time, dayCount string, rate, spread float64) (float64, error) {
	cfs, err := b.Cashflows()
	if err != nil {
		return 0, err
	}
	return PresentValue(cfs, settlement, dayCount, rate+spread), nil
}
