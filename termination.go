// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DeltaMax is the maximum tolerated energy error (relative to the initial
// energy of a trajectory) before a leaf is declared divergent, per spec.md
// §4.3.
const DeltaMax = 1000.0

// terminationKind tags the closed set of no-U-turn criteria.
type terminationKind int

const (
	classicTermination terminationKind = iota
	generalizedTermination
)

// Termination is the no-U-turn test over a subtree's endpoints and
// accumulated momentum. Classic compares raw momentum to the position
// difference; Generalized compares M⁻¹-transformed momentum, which remains
// correct under a non-identity metric.
type Termination struct {
	kind terminationKind
}

// ClassicTermination returns the classic no-U-turn criterion:
// (θ⁺−θ⁻)·r⁻ < 0 ∨ (θ⁺−θ⁻)·r⁺ < 0.
func ClassicTermination() Termination { return Termination{kind: classicTermination} }

// GeneralizedTermination returns the generalized no-U-turn criterion:
// r_sum·M⁻¹r⁻ < 0 ∨ r_sum·M⁻¹r⁺ < 0, which uses the summed momentum in place
// of the position difference and stays correct for diagonal and dense metrics.
func GeneralizedTermination() Termination { return Termination{kind: generalizedTermination} }

// uTurn reports whether the subtree spanning zMinus..zPlus, with
// accumulated momentum rSum, has turned. metric is only consulted by the
// generalized criterion.
func (t Termination) uTurn(metric *Metric, zMinus, zPlus PhasePoint, rSum []float64) bool {
	switch t.kind {
	case classicTermination:
		diff := make([]float64, len(zPlus.Theta))
		floats.SubTo(diff, zPlus.Theta, zMinus.Theta)
		return floats.Dot(diff, zMinus.R) < 0 || floats.Dot(diff, zPlus.R) < 0
	case generalizedTermination:
		mInvMinus := metric.mInvDot(zMinus.R)
		mInvPlus := metric.mInvDot(zPlus.R)
		return floats.Dot(rSum, mInvMinus) < 0 || floats.Dot(rSum, mInvPlus) < 0
	}
	panic("hmc: unreachable termination kind")
}

// divergent reports whether z's energy error relative to the trajectory's
// initial energy h0 exceeds DeltaMax, or z is itself non-finite.
func divergent(z PhasePoint, h0 float64) bool {
	if !z.Valid() {
		return true
	}
	return math.Abs(z.Energy()-h0) > DeltaMax || math.IsNaN(z.Energy())
}
