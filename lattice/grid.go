// Package lattice provides the recombining binomial tree shared by the
// vanilla and convertible engines.
//
// A tree with N steps has N+1 time slices; slice i holds i+1 nodes stored in
// a flat slice indexed by the number of up moves.
package lattice

import (
	"math"

	"github.com/meenmo/moderiv/errs"
)

// TimeGrid is a uniform grid of Steps intervals over [0, End].
type TimeGrid struct {
	End   float64
	Steps int
}

// NewTimeGrid validates end > 0 and steps >= 1.
func NewTimeGrid(end float64, steps int) (TimeGrid, error) {
	if math.IsNaN(end) || math.IsInf(end, 0) || end <= 0 {
		return TimeGrid{}, errs.Domain("lattice.NewTimeGrid", "time to maturity must be positive, got %v", end)
	}
	if steps < 1 {
		return TimeGrid{}, errs.Domain("lattice.NewTimeGrid", "number of steps must be at least 1, got %d", steps)
	}
	return TimeGrid{End: end, Steps: steps}, nil
}

// Dt is the length of one step.
func (g TimeGrid) Dt() float64 {
	return g.End / float64(g.Steps)
}

// Time returns the time of slice i.
func (g TimeGrid) Time(i int) float64 {
	if i == g.Steps {
		return g.End
	}
	return float64(i) * g.Dt()
}

// Index snaps t to the closest slice, clamped to [0, Steps].
//
// Snapping moves an event by at most Dt/2; this is the usual first-order
// lattice approximation of event dates.
func (g TimeGrid) Index(t float64) int {
	i := int(math.Round(t / g.Dt()))
	if i < 0 {
		return 0
	}
	if i > g.Steps {
		return g.Steps
	}
	return i
}

// Indices snaps every time in ts and returns the set of slice indices hit.
// Times outside [0, End] by more than half a step are ignored.
func (g TimeGrid) Indices(ts []float64) map[int][]int {
	out := make(map[int][]int, len(ts))
	half := 0.5 * g.Dt()
	for k, t := range ts {
		if t < -half || t > g.End+half {
			continue
		}
		i := g.Index(t)
		out[i] = append(out[i], k)
	}
	return out
}
