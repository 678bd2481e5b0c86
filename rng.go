// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "math/rand/v2"

// RNG is the sole source of non-determinism consumed by this package. Every
// randomized operation — momentum refresh, integrator jitter, NUTS direction
// choice, biased-progressive-sampling and Metropolis acceptance draws — takes
// an RNG explicitly so that a run is fully reproducible given a seed.
type RNG interface {
	// Float64 returns a pseudo-random number in [0, 1).
	Float64() float64
	// NormFloat64 returns a pseudo-random number from the standard normal
	// distribution.
	NormFloat64() float64
}

// NewSource wraps a math/rand/v2 source as an RNG, matching the
// rand.Source/rand.Rand pairing stat/distmv.Normal uses internally.
func NewSource(src rand.Source) RNG {
	return rand.New(src)
}

// signedUniform draws u ~ U(-1, 1) from r, used for jittered step sizes.
func signedUniform(r RNG) float64 {
	return -1 + 2*r.Float64()
}

// uniformDirection draws v in {-1, +1} with equal probability, used to pick
// which side of the trajectory a NUTS doubling step extends.
func uniformDirection(r RNG) int {
	if r.Float64() < 0.5 {
		return -1
	}
	return 1
}
