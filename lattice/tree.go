package lattice

import (
	"math"

	"github.com/meenmo/moderiv/errs"
)

// Tree is a Cox-Ross-Rubinstein recombining binomial tree.
type Tree struct {
	grid TimeGrid
	x0   float64
	dx   float64
	up   float64
	down float64
	pu   float64
}

// NewCRR builds a CRR tree for an asset starting at x0 with risk-neutral
// drift (r - q) and volatility sigma:
//
//	u = exp(σ√Δt), d = 1/u, p = (exp((r-q)Δt) - d) / (u - d)
//
// p must lie strictly inside (0, 1).
func NewCRR(x0, drift, sigma float64, grid TimeGrid) (*Tree, error) {
	const op = "lattice.NewCRR"
	if err := errs.RequireFinite(op, []string{"spot", "drift", "volatility"}, x0, drift, sigma); err != nil {
		return nil, err
	}
	if x0 <= 0 {
		return nil, errs.Domain(op, "underlying must be positive, got %v", x0)
	}
	if sigma < 0 {
		return nil, errs.Domain(op, "volatility must be non-negative, got %v", sigma)
	}

	dt := grid.Dt()
	dx := sigma * math.Sqrt(dt)
	up := math.Exp(dx)
	down := 1 / up
	pu := (math.Exp(drift*dt) - down) / (up - down)
	if math.IsNaN(pu) || math.IsInf(pu, 0) || pu <= 0 || pu >= 1 {
		return nil, errs.Numerical(op, "transition probability %v outside (0,1) for drift=%v sigma=%v dt=%v", pu, drift, sigma, dt)
	}

	return &Tree{grid: grid, x0: x0, dx: dx, up: up, down: down, pu: pu}, nil
}

func (t *Tree) Grid() TimeGrid { return t.grid }
func (t *Tree) Steps() int     { return t.grid.Steps }
func (t *Tree) Up() float64    { return t.up }
func (t *Tree) Down() float64  { return t.down }

// ProbUp is the risk-neutral probability of an up move.
func (t *Tree) ProbUp() float64 { return t.pu }

// Size returns the number of nodes on slice i.
func (t *Tree) Size(i int) int { return i + 1 }

// Underlying returns the asset value at slice i after j up moves.
func (t *Tree) Underlying(i, j int) float64 {
	return t.x0 * math.Exp(float64(2*j-i)*t.dx)
}

// Prices returns every asset value on slice i.
func (t *Tree) Prices(i int) []float64 {
	out := make([]float64, i+1)
	for j := range out {
		out[j] = t.Underlying(i, j)
	}
	return out
}

// StepBack rolls values from slice i+1 to slice i with a single discount
// factor per step.
func (t *Tree) StepBack(i int, values []float64, disc float64) []float64 {
	out := make([]float64, i+1)
	pd := 1 - t.pu
	for j := range out {
		out[j] = disc * (t.pu*values[j+1] + pd*values[j])
	}
	return out
}
