// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "math"

// Kernel proposes the next phase point given the current one, the small
// closed set of fixed-length, fixed-time, and NUTS tree-doubling
// transitions described in spec.md §4.5/§4.4. Kernel is the package's
// analogue of optimize.Method: a tiny interface dispatched over a closed
// set of tagged implementations rather than open polymorphism.
type Kernel interface {
	// Transition proposes and (for static kernels) Metropolis-accepts a new
	// phase point starting from z under Hamiltonian h.
	Transition(rng RNG, h *Hamiltonian, z PhasePoint) Transition

	// WithIntegrator returns a copy of the kernel using integrator in place
	// of its current one, used by the driver to rebuild the kernel after a
	// step-size (or mass-matrix) adaptation round.
	WithIntegrator(integrator *Integrator) Kernel

	// Integrator returns the kernel's current integrator.
	Integrator() *Integrator
}

// StaticTrajectory integrates forward exactly NLeapfrog steps and
// Metropolis-Hastings accepts the endpoint with probability
// min(1, exp(H0 - H1)); on reject it returns the original phase point.
type StaticTrajectory struct {
	NLeapfrog  int
	integrator *Integrator
}

// NewStaticTrajectory returns a StaticTrajectory kernel. It panics if
// nLeapfrog < 1.
func NewStaticTrajectory(integrator *Integrator, nLeapfrog int) *StaticTrajectory {
	if nLeapfrog < 1 {
		panic(ErrInvalidLeapfrogSteps)
	}
	return &StaticTrajectory{NLeapfrog: nLeapfrog, integrator: integrator}
}

func (k *StaticTrajectory) Integrator() *Integrator { return k.integrator }

func (k *StaticTrajectory) WithIntegrator(integrator *Integrator) Kernel {
	cp := *k
	cp.integrator = integrator
	return &cp
}

func (k *StaticTrajectory) Transition(rng RNG, h *Hamiltonian, z PhasePoint) Transition {
	return mhStaticTransition(rng, h, k.integrator, z, k.NLeapfrog)
}

// HMCDA integrates for n = max(1, round(Lambda/ϵ)) steps, the trajectory
// length Hoffman & Gelman's "HMC with dual averaging" derives from a fixed
// target simulation time Lambda and the integrator's current step size;
// otherwise identical to StaticTrajectory.
type HMCDA struct {
	Lambda     float64
	integrator *Integrator
}

// NewHMCDA returns an HMCDA kernel targeting simulation length lambda.
func NewHMCDA(integrator *Integrator, lambda float64) *HMCDA {
	if !(lambda > 0) {
		panic("hmc: HMCDA trajectory length must be positive")
	}
	return &HMCDA{Lambda: lambda, integrator: integrator}
}

func (k *HMCDA) Integrator() *Integrator { return k.integrator }

func (k *HMCDA) WithIntegrator(integrator *Integrator) Kernel {
	cp := *k
	cp.integrator = integrator
	return &cp
}

func (k *HMCDA) Transition(rng RNG, h *Hamiltonian, z PhasePoint) Transition {
	n := int(math.Round(k.Lambda / k.integrator.StepSize()))
	if n < 1 {
		n = 1
	}
	return mhStaticTransition(rng, h, k.integrator, z, n)
}

// mhStaticTransition is shared by StaticTrajectory and HMCDA: integrate n
// steps forward, then Metropolis-accept the endpoint.
func mhStaticTransition(rng RNG, h *Hamiltonian, integrator *Integrator, z PhasePoint, n int) Transition {
	h0 := z.Energy()
	proposal, isDivergent := integrator.Step(rng, h, z, n)
	h1 := proposal.Energy()

	acceptProb := expClamped(h0 - h1)
	accept := rng.Float64() < acceptProb

	result := z
	if accept {
		result = proposal
	}
	return Transition{
		Z: result,
		Stat: Stats{
			NSteps:            n,
			IsAccept:          accept,
			AcceptanceRate:    acceptProb,
			LogDensity:        result.LogP.Value,
			HamiltonianEnergy: result.Energy(),
			NumericalError:    isDivergent,
			StepSize:          integrator.StepSize(),
		},
	}
}

// NUTS is the No-U-Turn Sampler: it doubles a binary trajectory tree, up to
// MaxDepth, choosing a uniformly random direction at each doubling and using
// Sampler for biased progressive candidate selection and Termination for
// the U-turn check, per spec.md §4.4.
type NUTS struct {
	MaxDepth    int
	Termination Termination
	Sampler     TrajectorySampler
	integrator  *Integrator
}

// NewNUTS returns a NUTS kernel. It panics if maxDepth < 1.
func NewNUTS(integrator *Integrator, maxDepth int, term Termination, sampler TrajectorySampler) *NUTS {
	if maxDepth < 1 {
		panic(ErrInvalidMaxDepth)
	}
	return &NUTS{MaxDepth: maxDepth, Termination: term, Sampler: sampler, integrator: integrator}
}

func (k *NUTS) Integrator() *Integrator { return k.integrator }

func (k *NUTS) WithIntegrator(integrator *Integrator) Kernel {
	cp := *k
	cp.integrator = integrator
	return &cp
}

func (k *NUTS) Transition(rng RNG, h *Hamiltonian, z PhasePoint) Transition {
	h0 := z.Energy()
	sampler := k.Sampler
	if sampler.kind == sliceSampler {
		// Slice sampler state (the threshold log(u)) is trajectory-local:
		// draw it fresh for this transition rather than reusing whatever
		// threshold a previous call happened to carry.
		sampler = NewSliceSampler(rng, h0)
	}

	rSum := make([]float64, len(z.R))
	copy(rSum, z.R)
	tree := treeState{
		zLeft: z, zRight: z, zCandidate: z,
		logWeight: sampler.initLeafWeight(z, h0),
		rSum:      rSum,
	}

	depth := 0
	for ; depth < k.MaxDepth; depth++ {
		dir := uniformDirection(rng)
		var tip PhasePoint
		if dir > 0 {
			tip = tree.zRight
		} else {
			tip = tree.zLeft
		}
		subtree := buildTree(rng, k.integrator, h, k.Termination, sampler, tip, dir, depth, h0)
		tree = combineTrees(rng, h.Metric, k.Termination, sampler, tree, subtree, dir)
		if tree.turned || tree.divergent {
			depth++
			break
		}
	}

	acceptRate := 0.0
	if tree.nProposals > 0 {
		acceptRate = tree.sumAcceptProb / float64(tree.nProposals)
	}

	return Transition{
		Z: tree.zCandidate,
		Stat: Stats{
			NSteps:            tree.nLeaves,
			IsAccept:          true,
			AcceptanceRate:    acceptRate,
			LogDensity:        tree.zCandidate.LogP.Value,
			HamiltonianEnergy: tree.zCandidate.Energy(),
			NumericalError:    tree.divergent,
			StepSize:          k.integrator.StepSize(),
			TreeDepth:         depth,
		},
	}
}
