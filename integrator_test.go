// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
)

func gaussianHamiltonian(dim int) *Hamiltonian {
	mean := make([]float64, dim)
	sigma2 := make([]float64, dim)
	for i := range sigma2 {
		sigma2[i] = 1
	}
	return NewHamiltonian(NewUnitMetric(dim), newDiagMvNormalTarget(mean, sigma2))
}

// TestLeapfrogReversible checks spec.md §8 property 3: integrating n steps
// forward then n steps backward (negating momentum) returns to the start,
// up to floating-point round-off, for the plain (unjittered, untempered)
// leapfrog integrator.
func TestLeapfrogReversible(t *testing.T) {
	h := gaussianHamiltonian(3)
	rng := rand.New(rand.NewPCG(1, 1))
	lf := NewLeapfrog(0.01)

	theta0 := []float64{0.3, -1.2, 0.8}
	r0 := []float64{0.5, 0.1, -0.4}
	z0 := h.PhasePoint(theta0, r0)

	const n = 20
	forward, div := lf.Step(rng, h, z0, n)
	if div {
		t.Fatal("unexpected divergence integrating forward")
	}

	negR := make([]float64, len(forward.R))
	for i, r := range forward.R {
		negR[i] = -r
	}
	flipped := h.PhasePoint(forward.Theta, negR)

	back, div := lf.Step(rng, h, flipped, n)
	if div {
		t.Fatal("unexpected divergence integrating backward")
	}

	for i := range theta0 {
		if math.Abs(back.Theta[i]-theta0[i]) > 1e-8 {
			t.Errorf("theta[%d]: reversed = %v, want %v", i, back.Theta[i], theta0[i])
		}
		if math.Abs(-back.R[i]-r0[i]) > 1e-8 {
			t.Errorf("r[%d]: reversed = %v, want %v", i, -back.R[i], r0[i])
		}
	}
}

// TestLeapfrogEnergyConservation checks spec.md §8 property 4: the energy
// error after one trajectory of fixed total length scales as O(ϵ²), by
// comparing the error at ϵ and at ϵ/2.
func TestLeapfrogEnergyConservation(t *testing.T) {
	h := gaussianHamiltonian(2)
	rng := rand.New(rand.NewPCG(2, 2))

	theta0 := []float64{0.5, -0.3}
	r0 := []float64{0.2, 0.4}
	z0 := h.PhasePoint(theta0, r0)
	h0 := z0.Energy()

	const totalTime = 1.0

	errAt := func(eps float64) float64 {
		n := int(math.Round(totalTime / eps))
		lf := NewLeapfrog(eps)
		z1, div := lf.Step(rng, h, z0, n)
		if div {
			t.Fatalf("unexpected divergence at eps=%v", eps)
		}
		return math.Abs(z1.Energy() - h0)
	}

	errCoarse := errAt(0.05)
	errFine := errAt(0.025)

	if errCoarse == 0 {
		t.Skip("coarse-step error degenerate to zero, cannot check scaling")
	}
	ratio := errCoarse / errFine
	// Halving eps should reduce the error by roughly 4x (O(eps^2)); allow
	// generous slack since this is a finite-sample, nonlinear check.
	if ratio < 2 {
		t.Errorf("energy error did not shrink quadratically: coarse=%v fine=%v ratio=%v", errCoarse, errFine, ratio)
	}
}

// TestRNGDeterminism checks spec.md §8 property 5: identical seeds produce
// identical trajectories.
func TestRNGDeterminism(t *testing.T) {
	h := gaussianHamiltonian(4)
	theta0 := []float64{0.1, 0.2, -0.1, 0.4}

	run := func(seed1, seed2 uint64) []Transition {
		rng := rand.New(rand.NewPCG(seed1, seed2))
		integrator := NewJitteredLeapfrog(0.1, 0.2)
		nuts := NewNUTS(integrator, 8, GeneralizedTermination(), MultinomialSampler())
		out, err := Sample(context.Background(), rng, h, nuts, theta0, 10, nil, 0)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		return out
	}

	a := run(42, 7)
	b := run(42, 7)

	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		for j := range a[i].Z.Theta {
			if a[i].Z.Theta[j] != b[i].Z.Theta[j] {
				t.Errorf("sample %d, dim %d: %v != %v", i, j, a[i].Z.Theta[j], b[i].Z.Theta[j])
			}
		}
	}
}
