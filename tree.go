// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// treeState is a NUTS trajectory-in-progress: the tree node of spec.md §3.
// zLeft and zRight are the extreme phase points reached so far; rSum is the
// sum of momenta over every leaf; logWeight is the trajectory sampler's
// accumulator (logsumexp(−H) for Multinomial, log(count) for Slice).
type treeState struct {
	zLeft, zRight, zCandidate PhasePoint
	logWeight                 float64
	rSum                      []float64
	nLeaves                   int
	turned                    bool
	divergent                 bool
	sumAcceptProb             float64
	nProposals                int
}

// leafTree builds the depth-0 base case: a single leapfrog step from z in
// direction dir.
func leafTree(rng RNG, integrator *Integrator, h *Hamiltonian, sampler TrajectorySampler, z PhasePoint, dir int, h0 float64) treeState {
	next, stepDivergent := integrator.Step(rng, h, z, dir)
	isDiv := stepDivergent || divergent(next, h0)

	acceptProb := 0.0
	if e := next.Energy(); !isDiv {
		d := h0 - e
		acceptProb = expClamped(d)
	}

	rSum := make([]float64, len(next.R))
	copy(rSum, next.R)

	// A divergent leaf contributes zero weight (log-weight −∞).
	logWeight := sampler.initLeafWeight(next, h0)
	if isDiv {
		logWeight = math.Inf(-1)
	}

	return treeState{
		zLeft:         next,
		zRight:        next,
		zCandidate:    next,
		logWeight:     logWeight,
		rSum:          rSum,
		nLeaves:       1,
		turned:        isDiv,
		divergent:     isDiv,
		sumAcceptProb: acceptProb,
		nProposals:    1,
	}
}

func expClamped(x float64) float64 {
	if x >= 0 {
		return 1
	}
	v := expSafe(x)
	if v > 1 {
		return 1
	}
	return v
}

// combineTrees merges an existing tree-so-far (old) with a freshly built
// subtree (add), which extends the trajectory in direction dir, implementing
// the biased progressive sampling and generalized termination check of
// spec.md §4.4 step 4: the combined tree's termination is the OR of both
// halves' termination, the single full-span check over the new endpoints
// and total momentum sum, and two cross-tree checks mirrored on both
// halves — the old extreme against the new subtree's near (inner) endpoint,
// and the old tree's own inner endpoint against the new subtree's far
// (outer) endpoint. This catches U-turns that span the join without
// requiring an O(n) check over every pair of leaves.
func combineTrees(rng RNG, metric *Metric, term Termination, sampler TrajectorySampler, old, add treeState, dir int) treeState {
	rSum := make([]float64, len(old.rSum))
	copy(rSum, old.rSum)
	floats.Add(rSum, add.rSum)

	var zLeft, zRight, oldExtreme, oldInner, newInner, newExtreme PhasePoint
	if dir > 0 {
		zLeft, zRight = old.zLeft, add.zRight
		oldExtreme, oldInner = old.zLeft, old.zRight
		newInner, newExtreme = add.zLeft, add.zRight
	} else {
		zLeft, zRight = add.zLeft, old.zRight
		oldExtreme, oldInner = old.zRight, old.zLeft
		newInner, newExtreme = add.zRight, add.zLeft
	}

	// uTurn takes its endpoints in left-to-right order, so the cross-tree
	// pairs are swapped when the new subtree extends to the left.
	crossA1, crossA2 := oldExtreme, newInner
	crossB1, crossB2 := oldInner, newExtreme
	if dir < 0 {
		crossA1, crossA2 = newInner, oldExtreme
		crossB1, crossB2 = newExtreme, oldInner
	}

	turned := old.turned || add.turned ||
		term.uTurn(metric, zLeft, zRight, rSum) ||
		term.uTurn(metric, crossA1, crossA2, rSum) ||
		term.uTurn(metric, crossB1, crossB2, rSum)

	logWeight := sampler.combineWeight(old.logWeight, add.logWeight)
	candidate := old.zCandidate
	if !add.turned && sampler.acceptNewCandidate(rng, old.logWeight, add.logWeight) {
		candidate = add.zCandidate
	}

	return treeState{
		zLeft:         zLeft,
		zRight:        zRight,
		zCandidate:    candidate,
		logWeight:     logWeight,
		rSum:          rSum,
		nLeaves:       old.nLeaves + add.nLeaves,
		turned:        turned,
		divergent:     old.divergent || add.divergent,
		sumAcceptProb: old.sumAcceptProb + add.sumAcceptProb,
		nProposals:    old.nProposals + add.nProposals,
	}
}

// buildTree recursively builds a depth-j subtree extending from z in
// direction dir, per spec.md §4.4. The base case (depth 0) is a single
// leapfrog step; the recursive case builds two depth-(j-1) subtrees and
// combines them.
func buildTree(rng RNG, integrator *Integrator, h *Hamiltonian, term Termination, sampler TrajectorySampler, z PhasePoint, dir, depth int, h0 float64) treeState {
	if depth == 0 {
		return leafTree(rng, integrator, h, sampler, z, dir, h0)
	}

	first := buildTree(rng, integrator, h, term, sampler, z, dir, depth-1, h0)
	if first.turned || first.divergent {
		return first
	}

	var tip PhasePoint
	if dir > 0 {
		tip = first.zRight
	} else {
		tip = first.zLeft
	}
	second := buildTree(rng, integrator, h, term, sampler, tip, dir, depth-1, h0)

	return combineTrees(rng, h.Metric, term, sampler, first, second, dir)
}
