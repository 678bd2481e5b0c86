// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// integratorKind tags the closed set of leapfrog variants, the same
// tagged-dispatch shape as metricKind.
type integratorKind int

const (
	plainLeapfrog integratorKind = iota
	jitteredLeapfrog
	temperedLeapfrog
)

// Integrator is a symplectic leapfrog integrator and its jittered and
// tempered variants. Integrators are immutable; WithStepSize returns a new
// Integrator rather than mutating the receiver, so that step-size
// adaptation can rebuild the integrator between windows without aliasing
// the one in use by an in-flight trajectory.
type Integrator struct {
	kind   integratorKind
	eps    float64
	jitter float64 // JitteredLeapfrog only
	alpha  float64 // TemperedLeapfrog only
}

// NewLeapfrog returns a plain leapfrog integrator with constant step size
// eps. NewLeapfrog panics if eps is not positive.
func NewLeapfrog(eps float64) *Integrator {
	requirePositive(eps)
	return &Integrator{kind: plainLeapfrog, eps: eps}
}

// NewJitteredLeapfrog returns a leapfrog integrator whose step size is
// multiplied by 1 + jitter·U(−1,1), redrawn once per Step call (not once per
// leap), so that different trajectories use different but internally
// constant step sizes.
func NewJitteredLeapfrog(eps, jitter float64) *Integrator {
	requirePositive(eps)
	return &Integrator{kind: jitteredLeapfrog, eps: eps, jitter: jitter}
}

// NewTemperedLeapfrog returns a leapfrog integrator that scales momentum by
// √α over the first half of each trajectory and by 1/√α over the second
// half, per spec.md §4.2.
func NewTemperedLeapfrog(eps, alpha float64) *Integrator {
	requirePositive(eps)
	if alpha <= 0 {
		panic("hmc: tempering factor must be positive")
	}
	return &Integrator{kind: temperedLeapfrog, eps: eps, alpha: alpha}
}

// requirePositive panics with ErrNegativeStepSize if eps is not a positive
// step size; every call site in this file validates a step size, so the
// sentinel is always the right error to report.
func requirePositive(eps float64) {
	if !(eps > 0) {
		panic(ErrNegativeStepSize)
	}
}

// StepSize returns the integrator's current (un-jittered, un-tempered) ϵ.
func (lf *Integrator) StepSize() float64 { return lf.eps }

// WithStepSize returns a copy of lf with step size eps, used by the
// step-size adaptor to rebuild the integrator at the end of each adaptation
// round and at warmup finalization.
func (lf *Integrator) WithStepSize(eps float64) *Integrator {
	requirePositive(eps)
	cp := *lf
	cp.eps = eps
	return &cp
}

// Step performs |nSteps| symplectic half-full-half leapfrog updates
// starting from z, under Hamiltonian h. The sign of nSteps controls the
// direction of integration (supporting backward integration for the NUTS
// tree). If any intermediate phase point becomes non-finite, Step breaks
// early and returns the last valid point together with divergent = true.
func (lf *Integrator) Step(rng RNG, h *Hamiltonian, z PhasePoint, nSteps int) (next PhasePoint, divergent bool) {
	if nSteps == 0 {
		return z, false
	}
	n := nSteps
	sign := 1.0
	if n < 0 {
		sign = -1
		n = -n
	}

	eps := lf.eps
	if lf.kind == jitteredLeapfrog && lf.jitter != 0 {
		eps *= 1 + lf.jitter*signedUniform(rng)
	}
	stepEps := sign * eps

	cur := z
	for i := 1; i <= n; i++ {
		preScale, postScale := 1.0, 1.0
		if lf.kind == temperedLeapfrog {
			preScale, postScale = temperedScales(i, n, lf.alpha)
		}
		nextZ, ok := leapfrogOnce(h, cur, stepEps, preScale, postScale)
		if !ok {
			return cur, true
		}
		cur = nextZ
	}
	return cur, false
}

// temperedScales returns the (pre-kick, post-kick) momentum scale factors
// for leap i of n under tempering factor alpha, per spec.md §4.2: the first
// half of the trajectory is boosted by √α, the second half cooled by 1/√α,
// and for odd n the midpoint leap receives the pre-kick boost but not the
// post-kick boost (so its net scaling is a single √α, not 1).
func temperedScales(i, n int, alpha float64) (pre, post float64) {
	sqrtAlpha := math.Sqrt(alpha)
	half := n / 2 // floor(n/2)
	ceilHalf := (n + 1) / 2

	if i <= ceilHalf {
		pre = sqrtAlpha
	} else {
		pre = 1 / sqrtAlpha
	}

	switch {
	case i <= half:
		post = sqrtAlpha
	case i > ceilHalf:
		post = 1 / sqrtAlpha
	default:
		// Only reachable when n is odd and i is the midpoint leap.
		post = 1
	}
	return pre, post
}

// leapfrogOnce performs one symplectic half-full-half update of z with step
// size eps (already signed for direction) and optional tempering scales
// applied immediately after each momentum half-kick. It returns ok = false
// if the resulting phase point is non-finite, without otherwise touching z.
func leapfrogOnce(h *Hamiltonian, z PhasePoint, eps, preScale, postScale float64) (PhasePoint, bool) {
	d := len(z.Theta)

	rHalf := make([]float64, d)
	copy(rHalf, z.R)
	floats.AddScaled(rHalf, 0.5*eps, z.LogP.Gradient)
	if preScale != 1 {
		floats.Scale(preScale, rHalf)
	}

	vel := h.Metric.mInvDot(rHalf)
	thetaNew := make([]float64, d)
	copy(thetaNew, z.Theta)
	floats.AddScaled(thetaNew, eps, vel)

	logp, grad := h.Target.LogDensity(thetaNew)
	if math.IsNaN(logp) || math.IsInf(logp, 0) || !isFiniteSlice(grad) {
		return PhasePoint{}, false
	}

	rNew := make([]float64, d)
	copy(rNew, rHalf)
	floats.AddScaled(rNew, 0.5*eps, grad)
	if postScale != 1 {
		floats.Scale(postScale, rNew)
	}

	logk, kgrad := h.Metric.kineticLogDensity(rNew)
	next := PhasePoint{
		Theta: thetaNew,
		R:     rNew,
		LogP:  DualValue{Value: logp, Gradient: grad},
		LogK:  DualValue{Value: logk, Gradient: kgrad},
	}
	if !next.Valid() {
		return PhasePoint{}, false
	}
	return next, true
}
