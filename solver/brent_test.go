package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/moderiv/errs"
	"github.com/meenmo/moderiv/solver"
)

func TestBrentFindsRoots(t *testing.T) {
	t.Parallel()

	b := solver.Brent{Accuracy: 1e-10, MaxEvaluations: 100}
	cases := []struct {
		name   string
		f      func(float64) (float64, error)
		guess  float64
		lo, hi float64
		want   float64
	}{
		{"sqrt2", func(x float64) (float64, error) { return x*x - 2, nil }, 1, 0, 3, math.Sqrt2},
		{"cos", func(x float64) (float64, error) { return math.Cos(x) - x, nil }, 0.5, 0, 1, 0.7390851332151607},
		{"cubic guess outside", func(x float64) (float64, error) { return x*x*x - x - 1, nil }, 10, 1, 2, 1.324717957244746},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := b.Solve(tc.f, tc.guess, tc.lo, tc.hi)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, res.Root, 1e-9)
			assert.LessOrEqual(t, res.Evaluations, 100)
		})
	}
}

func TestBrentNotBracketed(t *testing.T) {
	t.Parallel()

	b := solver.Brent{Accuracy: 1e-8, MaxEvaluations: 100}
	_, err := b.Solve(func(x float64) (float64, error) { return x*x + 1, nil }, 0.5, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConvergence))
}

func TestBrentBudgetExhausted(t *testing.T) {
	t.Parallel()

	b := solver.Brent{Accuracy: 1e-14, MaxEvaluations: 4}
	_, err := b.Solve(func(x float64) (float64, error) { return math.Exp(x) - 3, nil }, 0.1, 0, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConvergence))
}

func TestBrentPropagatesObjectiveErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	b := solver.Brent{Accuracy: 1e-8, MaxEvaluations: 10}
	_, err := b.Solve(func(x float64) (float64, error) { return 0, boom }, 0.5, 0, 1)
	assert.ErrorIs(t, err, boom)

	_, err = b.Solve(func(x float64) (float64, error) { return x, nil }, 0.5, 1, 0)
	assert.True(t, errors.Is(err, errs.ErrDomain))
}
