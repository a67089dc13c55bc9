// Package schedule generates coupon date schedules for fixed-rate bonds.
package schedule

import (
	"fmt"
	"time"

	"github.com/meenmo/moderiv/calendar"
	"github.com/meenmo/moderiv/utils"
)

// Frequency is the number of coupon periods per year.
type Frequency int

const (
	Annual           Frequency = 1
	Semiannual       Frequency = 2
	EveryFourthMonth Frequency = 3
	Quarterly        Frequency = 4
	Bimonthly        Frequency = 6
	Monthly          Frequency = 12
)

// FrequencyFromCode validates a coupon frequency code (periods per year).
func FrequencyFromCode(code int) (Frequency, error) {
	switch f := Frequency(code); f {
	case Annual, Semiannual, EveryFourthMonth, Quarterly, Bimonthly, Monthly:
		return f, nil
	default:
		return 0, fmt.Errorf("FrequencyFromCode: unsupported coupon frequency %d", code)
	}
}

// Months returns the length of one period in months.
func (f Frequency) Months() int {
	return 12 / int(f)
}

// Period is one accrual period of a schedule. Dates are business-day adjusted.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
}

// Rule holds the date generation settings of a schedule.
type Rule struct {
	Frequency             Frequency
	Calendar              calendar.CalendarID
	Convention            calendar.BusinessDayConvention
	TerminationConvention calendar.BusinessDayConvention
}

// Generate builds the accrual periods between effective and maturity rolling
// backward from maturity, so any stub falls at the front.
//
// Unadjusted dates are maturity - k*months (end of month preserved like
// EDATE); the effective date always opens the first period.
func Generate(effective, maturity time.Time, rule Rule) ([]Period, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("schedule.Generate: maturity %s must be after effective %s", maturity.Format(utils.DateLayout), effective.Format(utils.DateLayout))
	}
	if _, err := FrequencyFromCode(int(rule.Frequency)); err != nil {
		return nil, fmt.Errorf("schedule.Generate: %w", err)
	}

	months := rule.Frequency.Months()
	unadjusted := []time.Time{maturity}
	for k := 1; ; k++ {
		d := utils.AddMonth(maturity, -k*months)
		if !d.After(effective) {
			break
		}
		unadjusted = append([]time.Time{d}, unadjusted...)
	}
	unadjusted = append([]time.Time{effective}, unadjusted...)

	adjusted := make([]time.Time, len(unadjusted))
	last := len(unadjusted) - 1
	for i, d := range unadjusted {
		conv := rule.Convention
		if i == last {
			conv = rule.TerminationConvention
		}
		adjusted[i] = calendar.Adjust(rule.Calendar, d, conv)
	}

	periods := make([]Period, 0, last)
	for i := 0; i < last; i++ {
		if !adjusted[i+1].After(adjusted[i]) {
			continue
		}
		periods = append(periods, Period{StartDate: adjusted[i], EndDate: adjusted[i+1]})
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("schedule.Generate: no periods between %s and %s", effective.Format(utils.DateLayout), maturity.Format(utils.DateLayout))
	}
	return periods, nil
}

// Dates returns the period boundaries, effective date first.
func Dates(periods []Period) []time.Time {
	if len(periods) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(periods)+1)
	out = append(out, periods[0].StartDate)
	for _, p := range periods {
		out = append(out, p.EndDate)
	}
	return out
}
