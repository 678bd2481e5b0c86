// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hmc implements Hamiltonian Monte Carlo and its adaptive variants,
// including the No-U-Turn Sampler (NUTS) with multinomial trajectory
// sampling and a generalized U-turn termination criterion, together with
// window-based dual-averaging step-size adaptation and online mass-matrix
// estimation.
//
// The package is organized around three interlocking subsystems: a
// trajectory engine (Integrator, Termination, TrajectorySampler, the NUTS
// tree doubling in buildTree), an adaptation engine (VarEstimator,
// CovEstimator, DualAveraging, StanWindowedAdaptor), and a sampling driver
// (Sample, Hamiltonian, PhasePoint). Automatic differentiation, progress
// reporting, and result-sink adapters are external collaborators specified
// only at their interface (Target, RNG, Sample's progress callback).
package hmc
