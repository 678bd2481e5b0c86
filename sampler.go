// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "math"

// samplerKind tags the closed set of trajectory samplers.
type samplerKind int

const (
	endPointSampler samplerKind = iota
	sliceSampler
	multinomialSampler
)

// TrajectorySampler selects a candidate phase point across a trajectory's
// points as the NUTS tree is doubled (spec.md §4.4). Weights are carried in
// log space throughout: for Multinomial, logWeight is logsumexp(−H) over the
// subtree's leaves; for Slice, logWeight is log(count of slice-accepted
// leaves); for EndPoint, logWeight is unused and the newest leaf always
// wins. leafTree sets a divergent leaf's log-weight to −∞ — the
// Open Question in spec.md §9(b) is resolved in favor of contributing zero
// weight, the only reading consistent with spec.md §4.3's convention that a
// divergent phase point has Hamiltonian +∞ (so exp(−∞) = 0 naturally).
type TrajectorySampler struct {
	kind  samplerKind
	logU  float64 // Slice only: log of the slice threshold u, drawn once per trajectory
}

// EndPointSampler always selects the most recently added leaf as the
// trajectory's candidate, ignoring weights entirely.
func EndPointSampler() TrajectorySampler { return TrajectorySampler{kind: endPointSampler} }

// MultinomialSampler selects among a trajectory's leaves with probability
// proportional to exp(−H_i), accumulated via logsumexp as the tree grows.
func MultinomialSampler() TrajectorySampler { return TrajectorySampler{kind: multinomialSampler} }

// NewSliceSampler draws the slice threshold u ~ Uniform(0, exp(−h0)) once,
// at the start of a trajectory with initial energy h0, and returns a Slice
// sampler instance carrying log(u).
func NewSliceSampler(rng RNG, h0 float64) TrajectorySampler {
	// -log(v) ~ Exponential(1) for v ~ Uniform(0,1); log(u) = -h0 + log(v).
	v := rng.Float64()
	for v <= 0 {
		v = rng.Float64()
	}
	return TrajectorySampler{kind: sliceSampler, logU: -h0 + math.Log(v)}
}

// initLeafWeight returns the log-weight contribution of a single leaf z,
// reached from a trajectory whose initial energy was h0.
func (s TrajectorySampler) initLeafWeight(z PhasePoint, h0 float64) float64 {
	switch s.kind {
	case endPointSampler:
		return 0
	case multinomialSampler:
		return -z.Energy() // logsumexp accumulator component; -Inf if z is non-finite
	case sliceSampler:
		if s.logU <= -z.Energy() {
			return 0 // log(1): this leaf is in the slice
		}
		return math.Inf(-1) // log(0): excluded
	}
	panic("hmc: unreachable sampler kind")
}

// combineWeight merges the log-weight accumulators of two disjoint subtrees
// (or of a subtree and a new leaf) into their union's accumulator.
func (s TrajectorySampler) combineWeight(left, right float64) float64 {
	if s.kind == endPointSampler {
		return right
	}
	return logAddExp(left, right)
}

// acceptNewCandidate reports whether the candidate carried by the subtree
// with log-weight newWeight should replace the combined tree's current
// candidate, which has log-weight oldWeight, using a draw from rng. This is
// the biased progressive sampling step of spec.md §4.4: accept with
// probability min(1, exp(newWeight − oldWeight)).
func (s TrajectorySampler) acceptNewCandidate(rng RNG, oldWeight, newWeight float64) bool {
	if s.kind == endPointSampler {
		return true
	}
	logAccept := newWeight - oldWeight
	if logAccept >= 0 {
		return true
	}
	return math.Log(rng.Float64()) < logAccept
}

// expSafe returns exp(x), coerced to 0 for NaN inputs (which only arise from
// subtracting two infinite energies), matching spec.md §4.7's rule that a
// non-finite acceptance statistic is coerced to 0.
func expSafe(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Exp(x)
}

// logAddExp returns log(exp(a) + exp(b)) computed without overflow, the
// scalar building block logsumexp accumulation over a tree reduces to.
func logAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a > b {
		return a + math.Log1p(math.Exp(b-a))
	}
	return b + math.Log1p(math.Exp(a-b))
}
