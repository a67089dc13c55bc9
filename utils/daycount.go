package utils

import (
	"fmt"
	"time"
)

// Day count conventions understood by YearFraction.
const (
	Act360     = "ACT/360"
	Act365F    = "ACT/365F"
	ActAct     = "ACT/ACT"
	Thirty360  = "30/360"
	Thirty360E = "30E/360"
	OneDay     = "1/1"
	Simple     = "SIMPLE"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, ACT/ACT (ISDA), 30E/360, 30/360 (US bond basis), 1/1, SIMPLE
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Act365F:
		return Days(start, end) / 365.0
	case ActAct:
		return actActISDA(start, end)
	case Thirty360E:
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	case Thirty360:
		return float64(thirty360US(start, end)) / 360.0
	case OneDay:
		if end.Before(start) {
			return -1
		}
		return 1
	case Simple:
		return simpleFraction(start, end)
	default:
		return Days(start, end) / 365.0
	}
}

// DayCountFromBasis maps the numeric basis codes used by the R front end
// onto a convention name.
//
//	0 ACT/360, 1 ACT/365F, 2 ACT/ACT, 4 1/1, 5 SIMPLE, anything else 30/360
//
// Code 3 (Business/252) needs a business-day calendar and is rejected.
func DayCountFromBasis(code int) (string, error) {
	switch code {
	case 0:
		return Act360, nil
	case 1:
		return Act365F, nil
	case 2:
		return ActAct, nil
	case 3:
		return "", fmt.Errorf("DayCountFromBasis: Business/252 (code 3) is not supported")
	case 4:
		return OneDay, nil
	case 5:
		return Simple, nil
	default:
		return Thirty360, nil
	}
}

// thirty360US counts days under the US (bond basis) 30/360 rule.
func thirty360US(start, end time.Time) int {
	dd1, dd2 := start.Day(), end.Day()
	mm1, mm2 := int(start.Month()), int(end.Month())
	yy1, yy2 := start.Year(), end.Year()
	if dd2 == 31 && dd1 < 30 {
		dd2 = 1
		mm2++
	}
	return 360*(yy2-yy1) + 30*(mm2-mm1-1) + max(0, 30-dd1) + min(30, dd2)
}

func actActISDA(start, end time.Time) float64 {
	if start.Equal(end) {
		return 0
	}
	if end.Before(start) {
		return -actActISDA(end, start)
	}
	y1, y2 := start.Year(), end.Year()
	if y1 == y2 {
		return Days(start, end) / daysInYear(y1)
	}
	frac := Days(start, time.Date(y1+1, 1, 1, 0, 0, 0, 0, start.Location())) / daysInYear(y1)
	frac += float64(y2 - y1 - 1)
	frac += Days(time.Date(y2, 1, 1, 0, 0, 0, 0, end.Location()), end) / daysInYear(y2)
	return frac
}

// simpleFraction returns whole months / 12 when both dates share a day of
// month (or both are month ends), and falls back to 30/360 otherwise.
func simpleFraction(start, end time.Time) float64 {
	sameDay := start.Day() == end.Day()
	bothEOM := isMonthEnd(start) && isMonthEnd(end)
	if sameDay || bothEOM || (isMonthEnd(start) && start.Day() < end.Day()) {
		months := 12*(end.Year()-start.Year()) + int(end.Month()) - int(start.Month())
		return float64(months) / 12.0
	}
	return float64(thirty360US(start, end)) / 360.0
}

func isMonthEnd(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}

func daysInYear(y int) float64 {
	if (y%4 == 0 && y%100 != 0) || y%400 == 0 {
		return 366
	}
	return 365
}
