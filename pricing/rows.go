// Package pricing turns flat request records into priced results. It owns
// input validation and schedule-row ingestion; the models live in option
// and bond.
package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/logger"
	"github.com/meenmo/moderiv/utils"
)

// ScheduleRow is one raw (date, amount) pair of a dividend or callability
// schedule. In JSON it is either {"date": ..., "amount": ...} or a two
// element array; the amount may be a number or a string. A row of any other
// shape still decodes, and is skipped when the schedule is parsed.
type ScheduleRow struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`

	err error
}

func (r *ScheduleRow) UnmarshalJSON(b []byte) error {
	*r = ScheduleRow{}
	b = bytes.TrimSpace(b)
	switch {
	case len(b) > 0 && b[0] == '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(b, &pair); err != nil {
			r.err = err
			return nil
		}
		if len(pair) != 2 {
			r.err = fmt.Errorf("row must have 2 fields, got %d", len(pair))
			return nil
		}
		r.Date, r.Amount = rawString(pair[0]), rawString(pair[1])
	case len(b) > 0 && b[0] == '{':
		var obj struct {
			Date   json.RawMessage `json:"date"`
			Amount json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			r.err = err
			return nil
		}
		r.Date, r.Amount = rawString(obj.Date), rawString(obj.Amount)
	default:
		r.err = fmt.Errorf("row must be an object or a [date, amount] pair, got %s", b)
	}
	return nil
}

// rawString returns a JSON string's contents or any other literal verbatim.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

type datedAmount struct {
	Date   time.Time
	Amount float64
}

// parseSchedule keeps the well-formed rows of a schedule. A row is dropped
// when its date or amount does not parse, when its date falls outside
// [issue, maturity], or when it does not come after the previous kept row.
// Each dropped row is logged at warn level and counted.
func parseSchedule(name string, rows []ScheduleRow, issue, maturity time.Time) ([]datedAmount, int) {
	out := make([]datedAmount, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		entry, err := parseRow(name, i, row, issue, maturity)
		if err == nil && len(out) > 0 && !entry.Date.After(out[len(out)-1].Date) {
			err = errs.ScheduleParse("pricing."+name, "row %d: date %s not after %s", i,
				entry.Date.Format(utils.DateLayout), out[len(out)-1].Date.Format(utils.DateLayout))
		}
		if err != nil {
			logger.Get().Warn("skipping schedule row", "schedule", name, "row", i, "error", err)
			skipped++
			continue
		}
		out = append(out, entry)
	}
	return out, skipped
}

func parseRow(name string, i int, row ScheduleRow, issue, maturity time.Time) (datedAmount, error) {
	op := "pricing." + name
	if row.err != nil {
		return datedAmount{}, errs.ScheduleParse(op, "row %d: %v", i, row.err)
	}
	d, err := utils.ParseDate(row.Date)
	if err != nil {
		return datedAmount{}, errs.ScheduleParse(op, "row %d: %v", i, err)
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(row.Amount), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return datedAmount{}, errs.ScheduleParse(op, "row %d: invalid amount %q", i, row.Amount)
	}
	if d.Before(issue) || d.After(maturity) {
		return datedAmount{}, errs.ScheduleParse(op, "row %d: date %s outside [%s, %s]", i,
			d.Format(utils.DateLayout), issue.Format(utils.DateLayout), maturity.Format(utils.DateLayout))
	}
	return datedAmount{Date: d, Amount: amount}, nil
}
