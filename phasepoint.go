// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "math"

// DualValue bundles a scalar value with its gradient, the cached shape used
// throughout the package for both the log-density and the kinetic
// log-density — the same role optimize.Location plays for (F, Gradient)
// pairs in gonum's optimize package.
type DualValue struct {
	Value    float64
	Gradient []float64
}

func isFiniteSlice(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// PhasePoint is a cached (θ, r, ℓπ, ℓκ) bundle flowing through the
// trajectory engine by value. ℓπ is always the log-density and gradient at
// θ; ℓκ is the cached negative kinetic energy and its momentum-gradient at
// (r, metric). PhasePoint is immutable: every transformation (leapfrog step,
// refresh) produces a new PhasePoint rather than mutating one in place.
type PhasePoint struct {
	Theta []float64
	R     []float64
	LogP  DualValue // ℓπ
	LogK  DualValue // ℓκ
}

// Valid reports whether every finite-valued field of z is in fact finite. An
// invalid PhasePoint is divergent: it may still flow through the pipeline,
// but its Hamiltonian is treated as +∞ (energy) / −∞ (log-density).
func (z PhasePoint) Valid() bool {
	return isFiniteSlice(z.Theta) && isFiniteSlice(z.R) &&
		!math.IsNaN(z.LogP.Value) && !math.IsInf(z.LogP.Value, 0) &&
		!math.IsNaN(z.LogK.Value) && !math.IsInf(z.LogK.Value, 0)
}

// Energy returns H(z) = −ℓπ.Value − ℓκ.Value. A divergent phase point has
// Energy = +∞.
func (z PhasePoint) Energy() float64 {
	if !z.Valid() {
		return math.Inf(1)
	}
	return -z.LogP.Value - z.LogK.Value
}

// Hamiltonian combines a Metric with a Target: it is pure, and mutation only
// ever happens via Update, which returns a new Hamiltonian sharing the same
// target — adaptation replaces a Hamiltonian's metric wholesale rather than
// mutating it, keeping the value immutable for reversibility and
// determinism testing (spec.md §8 properties 3 and 5).
type Hamiltonian struct {
	Metric *Metric
	Target Target
}

// NewHamiltonian pairs a metric with a target. NewHamiltonian panics if
// their dimensions disagree — a mid-run dimension mismatch is a programmer
// error per spec.md §7, not a recoverable condition.
func NewHamiltonian(metric *Metric, target Target) *Hamiltonian {
	if metric.Dim() != target.Dim() {
		panic(ErrDimensionMismatch)
	}
	return &Hamiltonian{Metric: metric, Target: target}
}

// Update returns a new Hamiltonian using metric in place of h.Metric,
// sharing h's target. Update panics on a dimension mismatch, the same
// invariant NewHamiltonian enforces.
func (h *Hamiltonian) Update(metric *Metric) *Hamiltonian {
	return NewHamiltonian(metric, h.Target)
}

// PhasePoint evaluates the target's log-density at theta and the metric's
// kinetic log-density at r, returning the cached PhasePoint bundling both.
func (h *Hamiltonian) PhasePoint(theta, r []float64) PhasePoint {
	logp, grad := h.Target.LogDensity(theta)
	logk, kgrad := h.Metric.kineticLogDensity(r)
	return PhasePoint{
		Theta: theta,
		R:     r,
		LogP:  DualValue{Value: logp, Gradient: grad},
		LogK:  DualValue{Value: logk, Gradient: kgrad},
	}
}

// Refresh redraws r ~ N(0, M) for z under h, returning a new PhasePoint with
// a fresh ℓκ cache but an identical θ and ℓπ cache — no extra log-density
// evaluation is performed, matching spec.md §4.1.
func (h *Hamiltonian) Refresh(rng RNG, z PhasePoint) PhasePoint {
	r := make([]float64, h.Metric.Dim())
	h.Metric.sampleMomentum(rng, r)
	logk, kgrad := h.Metric.kineticLogDensity(r)
	return PhasePoint{
		Theta: z.Theta,
		R:     r,
		LogP:  z.LogP,
		LogK:  DualValue{Value: logk, Gradient: kgrad},
	}
}
