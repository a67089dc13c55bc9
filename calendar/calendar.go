// Package calendar answers business-day questions for schedule generation
// and settlement lags. Holiday sets are supplied by the caller through
// SetHolidays; nothing here derives holidays from rules.
package calendar

import (
	"sync"
	"time"
)

// CalendarID identifies a holiday calendar.
//
// NullCalendar treats every day as a business day, WeekendsOnly closes
// Saturdays and Sundays, and the named calendars add a supplied holiday set.
type CalendarID string

const (
	NullCalendar     CalendarID = "NULL"
	WeekendsOnly     CalendarID = "WEEKENDS"
	TARGET           CalendarID = "TARGET"
	USGovernmentBond CalendarID = "USGOVTBOND"
)

// BusinessDayConvention selects how a non-business day is rolled.
type BusinessDayConvention string

const (
	Unadjusted        BusinessDayConvention = "UNADJUSTED"
	Following         BusinessDayConvention = "FOLLOWING"
	ModifiedFollowing BusinessDayConvention = "MODIFIED_FOLLOWING"
)

var (
	mu       sync.RWMutex
	holidays = map[CalendarID]map[string]struct{}{}
)

// SetHolidays replaces the holiday set of cal.
func SetHolidays(cal CalendarID, dates []time.Time) {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.Format("2006-01-02")] = struct{}{}
	}
	mu.Lock()
	holidays[cal] = set
	mu.Unlock()
}

func isHoliday(cal CalendarID, t time.Time) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := holidays[cal][t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust rolls t according to conv.
func Adjust(cal CalendarID, t time.Time, conv BusinessDayConvention) time.Time {
	switch conv {
	case Unadjusted:
		return t
	case ModifiedFollowing:
		return AdjustModifiedFollowing(cal, t)
	default:
		return AdjustFollowing(cal, t)
	}
}

// AdjustModifiedFollowing applies Modified Following.
func AdjustModifiedFollowing(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
