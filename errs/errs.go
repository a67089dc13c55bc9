// Package errs defines the failure categories shared by every pricer.
//
// Operations wrap one of the sentinels with fmt.Errorf("%w") so callers can
// classify a failure with errors.Is regardless of the message.
package errs

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDomain marks an invalid or out-of-range input (negative volatility,
	// unknown option side, non-positive time to maturity, non-finite number).
	ErrDomain = errors.New("domain error")

	// ErrNumerical marks inputs that are valid individually but produce an
	// arbitrage-inconsistent lattice or a non-finite result.
	ErrNumerical = errors.New("numerical error")

	// ErrConvergence marks a root finder that could not bracket a root or ran
	// out of evaluations.
	ErrConvergence = errors.New("convergence error")

	// ErrScheduleParse marks a single malformed schedule row.
	ErrScheduleParse = errors.New("schedule parse error")
)

// Domain wraps ErrDomain with the failing operation and a message.
func Domain(op, format string, args ...any) error {
	return wrap(ErrDomain, op, format, args...)
}

// Numerical wraps ErrNumerical.
func Numerical(op, format string, args ...any) error {
	return wrap(ErrNumerical, op, format, args...)
}

// Convergence wraps ErrConvergence.
func Convergence(op, format string, args ...any) error {
	return wrap(ErrConvergence, op, format, args...)
}

// ScheduleParse wraps ErrScheduleParse.
func ScheduleParse(op, format string, args ...any) error {
	return wrap(ErrScheduleParse, op, format, args...)
}

func wrap(kind error, op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
}

// RequireFinite returns a domain error naming the first non-finite value.
// names and values are matched by position.
func RequireFinite(op string, names []string, values ...float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			name := fmt.Sprintf("argument %d", i)
			if i < len(names) {
				name = names[i]
			}
			return Domain(op, "%s is not finite (%v)", name, v)
		}
	}
	return nil
}

// EnsureFinite converts a NaN or infinite result into a numerical error.
func EnsureFinite(op string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, Numerical(op, "result is not finite (%v)", v)
	}
	return v, nil
}
