// Package marketdata holds the observable market inputs of a pricing call:
// mutable quotes and the flat curves built on top of them.
//
// Curves keep a *Quote they do not own and re-read it on every query, so
// changing a quote is immediately visible to every curve, process and
// engine wired to it.
package marketdata

import (
	"math"

	"github.com/meenmo/moderiv/errs"
)

// QuoteKind tells Validate which sign constraints apply.
type QuoteKind int

const (
	KindSpot QuoteKind = iota
	KindRate
	KindVolatility
	KindSpread
)

func (k QuoteKind) String() string {
	switch k {
	case KindSpot:
		return "spot"
	case KindRate:
		return "rate"
	case KindVolatility:
		return "volatility"
	case KindSpread:
		return "spread"
	default:
		return "unknown"
	}
}

// Quote is a named scalar shared by pointer between its consumers.
type Quote struct {
	name  string
	kind  QuoteKind
	value float64
}

// NewQuote returns a quote initialised to value.
func NewQuote(name string, kind QuoteKind, value float64) *Quote {
	return &Quote{name: name, kind: kind, value: value}
}

func (q *Quote) Name() string    { return q.name }
func (q *Quote) Kind() QuoteKind { return q.kind }
func (q *Quote) Value() float64  { return q.value }

// SetValue overwrites the quote in place.
func (q *Quote) SetValue(v float64) {
	q.value = v
}

// Validate checks that the value is finite and, except for spreads, that
// rates and volatilities are non-negative and spots positive.
func (q *Quote) Validate() error {
	if math.IsNaN(q.value) || math.IsInf(q.value, 0) {
		return errs.Domain("Quote.Validate", "%s quote %q is not finite (%v)", q.kind, q.name, q.value)
	}
	switch q.kind {
	case KindSpot:
		if q.value <= 0 {
			return errs.Domain("Quote.Validate", "spot quote %q must be positive, got %v", q.name, q.value)
		}
	case KindRate, KindVolatility:
		if q.value < 0 {
			return errs.Domain("Quote.Validate", "%s quote %q must be non-negative, got %v", q.kind, q.name, q.value)
		}
	}
	return nil
}
