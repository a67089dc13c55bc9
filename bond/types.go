package bond

import (
	"strings"
	"time"

	"github.com/meenmo/moderiv/errs"
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are price-per-100 of face, matching how call and put prices are
// quoted.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// DividendKind tells whether a dividend is a cash amount or a fraction of spot.
type DividendKind int

const (
	FixedDividend DividendKind = iota
	ProportionalDividend
)

func (k DividendKind) String() string {
	if k == ProportionalDividend {
		return "proportional"
	}
	return "fixed"
}

// Dividend is a dividend paid by the underlying stock.
type Dividend struct {
	Date   time.Time
	Amount float64
	Kind   DividendKind
}

// CashAmount returns the dividend in currency for the given spot.
func (d Dividend) CashAmount(spot float64) float64 {
	if d.Kind == ProportionalDividend {
		return d.Amount * spot
	}
	return d.Amount
}

// Side is the holder of an embedded option on the bond.
type Side int

const (
	// Call lets the issuer redeem at the call price.
	Call Side = iota
	// Put lets the holder sell back at the put price.
	Put
)

func (s Side) String() string {
	if s == Put {
		return "put"
	}
	return "call"
}

// PriceType says whether an exercise price includes accrued interest.
type PriceType int

const (
	Clean PriceType = iota
	Dirty
)

// ParsePriceType accepts "clean" or "dirty"; empty means clean.
func ParsePriceType(s string) (PriceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clean":
		return Clean, nil
	case "dirty":
		return Dirty, nil
	default:
		return 0, errs.Domain("bond.ParsePriceType", "unknown price type %q", s)
	}
}

// Callability is one dated issuer call or holder put.
type Callability struct {
	Date      time.Time
	Price     float64
	Side      Side
	PriceType PriceType
}
