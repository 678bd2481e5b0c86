// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// metricKind tags the closed set of Metric variants. Metric is a closed sum
// type — Unit, Diag, Dense — dispatched on this tag rather than through open
// polymorphism, the same way gonum's mat.Symmetric implementations are a
// small closed set rather than an arbitrary interface hierarchy.
type metricKind int

const (
	unitMetric metricKind = iota
	diagMetric
	denseMetric
)

// Metric parameterizes the kinetic energy and the momentum distribution: it
// is the mass matrix (or its diagonal, or the identity) used by a
// Hamiltonian. Construct with NewUnitMetric, NewDiagMetric, or
// NewDenseMetric; Metric values are immutable and are replaced, never
// mutated, when adaptation closes a window.
type Metric struct {
	kind metricKind
	dim  int

	// Diag: mInv holds m⁻¹, the diagonal inverse mass matrix. Invariant:
	// every entry is strictly positive and finite.
	mInv []float64

	// Dense: mInvMat is M⁻¹ (symmetric positive-definite) and chol is the
	// Cholesky factor of its inverse, i.e. of M itself — used to sample
	// momentum. r·M⁻¹·r is computed from mInvMat directly.
	mInvMat *mat.SymDense
	chol    mat.Cholesky
}

// NewUnitMetric returns the D-dimensional identity metric.
func NewUnitMetric(dim int) *Metric {
	if dim <= 0 {
		panic("hmc: non-positive metric dimension")
	}
	return &Metric{kind: unitMetric, dim: dim}
}

// NewDiagMetric returns a diagonal metric with inverse-mass-matrix diagonal
// mInv. NewDiagMetric panics if any entry is not strictly positive and
// finite, mirroring mat's own panic-on-invariant-violation convention.
func NewDiagMetric(mInv []float64) *Metric {
	for _, v := range mInv {
		if !(v > 0) || math.IsInf(v, 0) {
			panic("hmc: diagonal metric entries must be strictly positive and finite")
		}
	}
	cp := make([]float64, len(mInv))
	copy(cp, mInv)
	return &Metric{kind: diagMetric, dim: len(mInv), mInv: cp}
}

// NewDenseMetric returns a dense metric with inverse mass matrix mInv.
// NewDenseMetric panics if mInv is not symmetric positive-definite — the
// Cholesky factorization that the momentum sampler depends on would not
// exist otherwise.
func NewDenseMetric(mInv *mat.SymDense) *Metric {
	m, ok := tryNewDenseMetric(mInv)
	if !ok {
		panic("hmc: dense metric inverse mass matrix is not positive-definite")
	}
	return m
}

// tryNewDenseMetric is NewDenseMetric without the panic, used by the
// mass-matrix adaptor at finalize: spec.md §7 requires a singular estimate
// there to be refused (keeping the prior metric and logging a warning)
// rather than aborting the run.
func tryNewDenseMetric(mInv *mat.SymDense) (*Metric, bool) {
	dim := mInv.SymmetricDim()
	m := &Metric{kind: denseMetric, dim: dim}
	m.mInvMat = mat.NewSymDense(dim, nil)
	m.mInvMat.CopySym(mInv)

	// cholM must be the Cholesky factor of M = (M⁻¹)⁻¹, not of M⁻¹ itself:
	// momentum is drawn from N(0, M), so factorizing the inverse of mInv
	// gives the covariance's own Cholesky factor directly.
	var cholInv mat.Cholesky
	if ok := cholInv.Factorize(mInv); !ok {
		return nil, false
	}
	var mDense mat.SymDense
	if err := cholInv.InverseTo(&mDense); err != nil {
		return nil, false
	}
	if ok := m.chol.Factorize(&mDense); !ok {
		return nil, false
	}
	return m, true
}

// Dim returns D.
func (m *Metric) Dim() int { return m.dim }

// kineticLogDensity returns (−½ rᵀM⁻¹r, ∇) where ∇ = −M⁻¹r, the negative
// kinetic energy and its gradient with respect to momentum, cached into a
// PhasePoint's ℓκ field.
func (m *Metric) kineticLogDensity(r []float64) (float64, []float64) {
	grad := make([]float64, len(r))
	switch m.kind {
	case unitMetric:
		var quad float64
		for i, ri := range r {
			quad += ri * ri
			grad[i] = -ri
		}
		return -0.5 * quad, grad
	case diagMetric:
		var quad float64
		for i, ri := range r {
			mi := m.mInv[i]
			quad += ri * ri * mi
			grad[i] = -mi * ri
		}
		return -0.5 * quad, grad
	case denseMetric:
		rv := mat.NewVecDense(len(r), r)
		var mInvR mat.VecDense
		mInvR.MulVec(m.mInvMat, rv)
		var quad float64
		for i, ri := range r {
			mi := mInvR.AtVec(i)
			quad += ri * mi
			grad[i] = -mi
		}
		return -0.5 * quad, grad
	}
	panic("hmc: unreachable metric kind")
}

// mInvDot returns M⁻¹v for the generalized no-U-turn criterion, which needs
// r_sum·M⁻¹r at the tree endpoints rather than the bare dot product the
// classic criterion uses.
func (m *Metric) mInvDot(v []float64) []float64 {
	out := make([]float64, len(v))
	switch m.kind {
	case unitMetric:
		copy(out, v)
	case diagMetric:
		for i, vi := range v {
			out[i] = m.mInv[i] * vi
		}
	case denseMetric:
		vv := mat.NewVecDense(len(v), v)
		var res mat.VecDense
		res.MulVec(m.mInvMat, vv)
		for i := range out {
			out[i] = res.AtVec(i)
		}
	}
	return out
}

// sampleMomentum draws r ~ N(0, M) using r, an RNG, and writes into out
// (length D). For Unit and Diag this is a simple per-component scale of a
// standard normal draw; for Dense it replays the Cholesky transform
// distmv.Normal.Rand performs (z ~ N(0,I), r = Uᵀz where M = UᵀU is the
// Cholesky factorization of M) without constructing a distmv.Normal, since that type binds
// its RNG at construction while this package threads an RNG through every
// call explicitly (see DESIGN.md).
func (m *Metric) sampleMomentum(rng RNG, out []float64) {
	switch m.kind {
	case unitMetric:
		for i := range out {
			out[i] = rng.NormFloat64()
		}
	case diagMetric:
		for i := range out {
			// Momentum covariance is M = diag(1/mInv); stddev = sqrt(1/mInv).
			out[i] = rng.NormFloat64() * math.Sqrt(1/m.mInv[i])
		}
	case denseMetric:
		z := make([]float64, m.dim)
		for i := range z {
			z[i] = rng.NormFloat64()
		}
		zv := mat.NewVecDense(m.dim, z)
		ov := mat.NewVecDense(m.dim, out)
		ov.MulVec(m.chol.RawU().T(), zv)
	}
}
