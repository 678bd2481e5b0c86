// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "math"

// DualAveraging adapts an integrator's step size toward a target
// acceptance rate via Nesterov dual averaging, per Hoffman & Gelman
// §3.2.1 and spec.md §4.7.
type DualAveraging struct {
	Delta float64 // target acceptance rate δ
	Gamma float64 // γ, default 0.05
	T0    float64 // t₀, default 10
	Kappa float64 // κ, default 0.75

	mu      float64
	hBar    float64
	logEBar float64
	m       int
}

// NewDualAveraging returns a dual-averaging adaptor targeting acceptance
// rate delta, initialized from step size eps0. NewDualAveraging
// panics if delta is not in (0, 1).
func NewDualAveraging(delta, eps0 float64) *DualAveraging {
	if !(delta > 0 && delta < 1) {
		panic(ErrInvalidTargetAcceptance)
	}
	d := &DualAveraging{Delta: delta, Gamma: 0.05, T0: 10, Kappa: 0.75}
	d.reset(eps0)
	return d
}

// reset reinitializes μ to log(10·eps0) and zeroes the recursion state,
// used both at construction and whenever the Stan warmup scheduler closes a
// mass-matrix window (spec.md §4.8).
func (d *DualAveraging) reset(eps0 float64) {
	d.mu = math.Log(10 * eps0)
	d.hBar = 0
	d.logEBar = 0
	d.m = 0
}

// Adapt folds one acceptance statistic alpha into the dual-averaging
// recursion and returns the step size to use during adaptation,
// exp(logϵ). Non-finite alpha is coerced to 0, per spec.md §4.7.
func (d *DualAveraging) Adapt(alpha float64) float64 {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		alpha = 0
	}
	d.m++
	m := float64(d.m)

	eta := 1 / (m + d.T0)
	d.hBar = (1-eta)*d.hBar + eta*(d.Delta-alpha)

	logEps := d.mu - (math.Sqrt(m)/d.Gamma)*d.hBar

	mPowKappa := math.Pow(m, -d.Kappa)
	d.logEBar = mPowKappa*logEps + (1-mPowKappa)*d.logEBar

	return math.Exp(logEps)
}

// FinalStepSize returns exp(logϵ̄ₘ), the step size committed at warmup
// finalization.
func (d *DualAveraging) FinalStepSize() float64 {
	return math.Exp(d.logEBar)
}
