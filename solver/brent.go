// Package solver finds roots of scalar functions under an evaluation budget.
package solver

import (
	"math"

	"github.com/meenmo/moderiv/errs"
)

const epsilon = 2.220446049250313e-16

// Brent is a bracketing root finder combining bisection, secant and inverse
// quadratic interpolation.
type Brent struct {
	// Accuracy is the absolute tolerance on the root.
	Accuracy float64
	// MaxEvaluations caps the number of calls to f, bracket checks included.
	MaxEvaluations int
}

// Result reports the root and how many times f was called.
type Result struct {
	Root        float64
	Evaluations int
}

// Solve finds x in [lo, hi] with f(x) = 0 starting from guess.
//
// f(lo) and f(hi) must have opposite signs, otherwise the root is not
// bracketed and a convergence error is returned. Errors returned by f abort
// the search unchanged.
func (b Brent) Solve(f func(float64) (float64, error), guess, lo, hi float64) (Result, error) {
	const op = "solver.Brent"
	if err := errs.RequireFinite(op, []string{"guess", "lower bound", "upper bound"}, guess, lo, hi); err != nil {
		return Result{}, err
	}
	if lo >= hi {
		return Result{}, errs.Domain(op, "invalid range: lower bound %v >= upper bound %v", lo, hi)
	}
	if b.Accuracy <= 0 {
		return Result{}, errs.Domain(op, "accuracy must be positive, got %v", b.Accuracy)
	}

	evals := 0
	eval := func(x float64) (float64, error) {
		evals++
		y, err := f(x)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, errs.Numerical(op, "objective is not finite at x=%v", x)
		}
		return y, nil
	}

	xMin, xMax := lo, hi
	fxMin, err := eval(xMin)
	if err != nil {
		return Result{}, err
	}
	if fxMin == 0 {
		return Result{Root: xMin, Evaluations: evals}, nil
	}
	fxMax, err := eval(xMax)
	if err != nil {
		return Result{}, err
	}
	if fxMax == 0 {
		return Result{Root: xMax, Evaluations: evals}, nil
	}
	if fxMin*fxMax > 0 {
		return Result{Evaluations: evals}, errs.Convergence(op, "root not bracketed: f(%v)=%v, f(%v)=%v", xMin, fxMin, xMax, fxMax)
	}

	root := guess
	if root <= xMin || root >= xMax {
		root = 0.5 * (xMin + xMax)
	}
	froot, err := eval(root)
	if err != nil {
		return Result{}, err
	}

	// Keep root on one side of the bracket and both xMin, xMax on the other.
	if froot*fxMin < 0 {
		xMax, fxMax = xMin, fxMin
	} else {
		xMin, fxMin = xMax, fxMax
	}
	d := root - xMax
	e := d

	for evals <= b.MaxEvaluations {
		if (froot > 0 && fxMax > 0) || (froot < 0 && fxMax < 0) {
			// rename xMin, root, xMax and adjust the bounds
			xMax, fxMax = xMin, fxMin
			d = root - xMin
			e = d
		}
		if math.Abs(fxMax) < math.Abs(froot) {
			xMin, root, xMax = root, xMax, root
			fxMin, froot, fxMax = froot, fxMax, froot
		}

		xAcc1 := 2*epsilon*math.Abs(root) + 0.5*b.Accuracy
		xMid := (xMax - root) / 2
		if math.Abs(xMid) <= xAcc1 || froot == 0 {
			return Result{Root: root, Evaluations: evals}, nil
		}

		if math.Abs(e) >= xAcc1 && math.Abs(fxMin) > math.Abs(froot) {
			var p, q, r float64
			s := froot / fxMin
			if xMin == xMax {
				p = 2 * xMid * s
				q = 1 - s
			} else {
				q = fxMin / fxMax
				r = froot / fxMax
				p = s * (2*xMid*q*(q-r) - (root-xMin)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(xAcc1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}

		xMin, fxMin = root, froot
		if math.Abs(d) > xAcc1 {
			root += d
		} else {
			root += math.Copysign(xAcc1, xMid)
		}
		froot, err = eval(root)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{Root: root, Evaluations: evals}, errs.Convergence(op, "maximum number of function evaluations (%d) exceeded", b.MaxEvaluations)
}
