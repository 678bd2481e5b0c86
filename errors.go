// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "errors"

// Configuration errors, used as panic values by constructors. These are programmer
// mistakes the caller can correct before running; they are never produced
// mid-sampling.
var (
	ErrInvalidTargetAcceptance = errors.New("hmc: target acceptance rate must be in (0, 1)")
	ErrNegativeStepSize        = errors.New("hmc: step size must be positive")
	ErrInvalidMaxDepth         = errors.New("hmc: max depth must be >= 1")
	ErrInvalidLeapfrogSteps    = errors.New("hmc: number of leapfrog steps must be >= 1")
	ErrDimensionMismatch       = errors.New("hmc: dimension mismatch between metric and target")
)

// errSingularMassMatrix is logged by mass-matrix finalization when the dense
// estimate is not positive-definite; the adaptor downgrades it to a warning
// and keeps the prior metric rather than aborting the run, per spec: a
// singular mass matrix at finalize refuses the update, it doesn't fail it.
var errSingularMassMatrix = errors.New("hmc: mass matrix estimate is not positive-definite")
