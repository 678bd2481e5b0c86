// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

// Target is an un-normalized log-density on R^D together with its gradient.
// The core samplers never differentiate a Target themselves — that is the
// job of an external automatic-differentiation backend — they only call
// LogDensity and trust it to be deterministic and pure from the sampler's
// point of view.
type Target interface {
	// LogDensity returns log π(θ) (up to an additive constant) and its
	// gradient ∇log π(θ). The returned gradient slice must have length
	// Dim(). The sampler keeps it in the PhasePoint it builds, so each call
	// must return a slice that the implementation does not reuse.
	LogDensity(theta []float64) (logp float64, grad []float64)

	// Dim returns D, the dimension of θ.
	Dim() int
}

// ValueOnlyTarget is a Target variant that can only evaluate the
// log-density, delegating differentiation to an external AD backend.
// NewTarget wraps a ValueOnlyTarget plus an externally supplied gradient function into
// a full Target.
type ValueOnlyTarget interface {
	LogDensityValue(theta []float64) float64
	Dim() int
}

// GradientFunc computes ∇log π(θ) given θ and the value returned by a
// ValueOnlyTarget, writing into grad (which has length Dim()).
type GradientFunc func(theta []float64, logp float64, grad []float64)

// gradTarget adapts a ValueOnlyTarget and an externally supplied gradient
// function into a Target.
type gradTarget struct {
	value ValueOnlyTarget
	grad  GradientFunc
}

// NewTarget combines a value-only target with an external gradient function
// into a full Target, for callers whose automatic differentiation backend
// is easier to express as a standalone function than as a method set.
func NewTarget(value ValueOnlyTarget, grad GradientFunc) Target {
	return &gradTarget{value: value, grad: grad}
}

func (t *gradTarget) Dim() int { return t.value.Dim() }

func (t *gradTarget) LogDensity(theta []float64) (float64, []float64) {
	logp := t.value.LogDensityValue(theta)
	grad := make([]float64, len(theta))
	t.grad(theta, logp, grad)
	return logp, grad
}
