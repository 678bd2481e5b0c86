// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

// Stats records per-iteration diagnostics, mirroring the fields optimize.Stats
// records for an optimization run, but for one sampling transition.
type Stats struct {
	NSteps            int     // number of leapfrog steps taken (tree's leaf count for NUTS)
	IsAccept          bool    // whether the proposal was accepted (always true for NUTS)
	AcceptanceRate    float64 // average min(1, exp(-ΔH)) across the transition's leaves
	LogDensity        float64 // log π(θ) at the returned point
	HamiltonianEnergy float64 // H(z) at the returned point
	NumericalError    bool    // true if any leaf of the transition diverged
	StepSize          float64 // step size in effect during the transition
	NomStepSize       float64 // adaptor's step size after this iteration's adaptation (warmup iterations only; 0 otherwise)
	TreeDepth         int     // depth reached (NUTS only; 0 for static kernels)
}

// Transition is one sampling step's output: the new phase point together
// with its diagnostics.
type Transition struct {
	Z    PhasePoint
	Stat Stats
}
