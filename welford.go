// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// regularizationShrinkage is the shrinkage target (scaled identity) blended
// into every Welford estimate once n ≥ 2, per spec.md §4.6. Stan's own
// adaptation uses 1e-3; this implementation matches it exactly, since the
// spec calls the regularization "critical" and does not offer an
// alternative constant.
const regularizationShrinkage = 1e-3

// VarEstimator is an online (Welford) estimator of a D-dimensional
// variance, grounded on the running-accumulator shape of
// stat/running.Mean's Accum method generalized from a scalar mean to a
// vector one.
type VarEstimator struct {
	dim int
	n   int
	m   []float64 // running mean
	s   []float64 // running sum of squared deviations
}

// NewVarEstimator returns an empty D-dimensional variance estimator.
func NewVarEstimator(dim int) *VarEstimator {
	return &VarEstimator{dim: dim, m: make([]float64, dim), s: make([]float64, dim)}
}

// Push folds x into the running estimate: n += 1; δ = x − m; m += δ/n;
// s += δ ⊙ (x − m).
func (v *VarEstimator) Push(x []float64) {
	v.n++
	delta := make([]float64, v.dim)
	floats.SubTo(delta, x, v.m)
	floats.AddScaled(v.m, 1/float64(v.n), delta)
	delta2 := make([]float64, v.dim)
	floats.SubTo(delta2, x, v.m)
	for i := range v.s {
		v.s[i] += delta[i] * delta2[i]
	}
}

// N returns the number of samples folded into the estimator.
func (v *VarEstimator) N() int { return v.n }

// Reset clears the estimator back to its empty state, used between
// adaptation windows.
func (v *VarEstimator) Reset() {
	v.n = 0
	for i := range v.m {
		v.m[i] = 0
		v.s[i] = 0
	}
}

// Estimate returns the regularized variance estimate: the identity (ones)
// when n < 2 (used during cold start), otherwise w·Σ̂ + (1−w)·10⁻³ with
// w = n/(n+5), matching Stan's own mass-matrix regularization.
func (v *VarEstimator) Estimate() []float64 {
	out := make([]float64, v.dim)
	if v.n < 2 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	w := float64(v.n) / float64(v.n+5)
	for i := range out {
		sampleVar := v.s[i] / float64(v.n-1)
		out[i] = w*sampleVar + (1-w)*regularizationShrinkage
	}
	return out
}

// CovEstimator is an online (Welford) estimator of a D×D covariance matrix,
// accumulating the rank-one outer product update instead of VarEstimator's
// elementwise one. S is stored dense (not via mat.SymDense's packed storage)
// since the update touches every entry on every push; Estimate packs the
// regularized result into a mat.SymDense for consumption by NewDenseMetric.
type CovEstimator struct {
	dim int
	n   int
	m   []float64
	s   *mat.Dense // D×D running sum of outer products of deviations
}

// NewCovEstimator returns an empty D-dimensional covariance estimator.
func NewCovEstimator(dim int) *CovEstimator {
	return &CovEstimator{dim: dim, m: make([]float64, dim), s: mat.NewDense(dim, dim, nil)}
}

// Push folds x into the running estimate using the same Welford recursion
// as VarEstimator.Push, generalized to the rank-one outer-product update
// s += δ ⊗ (x − m).
func (c *CovEstimator) Push(x []float64) {
	c.n++
	delta := make([]float64, c.dim)
	floats.SubTo(delta, x, c.m)
	floats.AddScaled(c.m, 1/float64(c.n), delta)
	delta2 := make([]float64, c.dim)
	floats.SubTo(delta2, x, c.m)
	for i := 0; i < c.dim; i++ {
		for j := 0; j < c.dim; j++ {
			c.s.Set(i, j, c.s.At(i, j)+delta[i]*delta2[j])
		}
	}
}

// N returns the number of samples folded into the estimator.
func (c *CovEstimator) N() int { return c.n }

// Reset clears the estimator back to its empty state.
func (c *CovEstimator) Reset() {
	c.n = 0
	for i := range c.m {
		c.m[i] = 0
	}
	c.s.Zero()
}

// Estimate returns the regularized covariance estimate as a symmetric
// matrix: the identity when n < 2, otherwise w·Σ̂ + (1−w)·10⁻³·I with
// w = n/(n+5), matching VarEstimator's regularization.
func (c *CovEstimator) Estimate() *mat.SymDense {
	out := mat.NewSymDense(c.dim, nil)
	if c.n < 2 {
		for i := 0; i < c.dim; i++ {
			out.SetSym(i, i, 1)
		}
		return out
	}
	w := float64(c.n) / float64(c.n+5)
	for i := 0; i < c.dim; i++ {
		for j := i; j < c.dim; j++ {
			sij := 0.5 * (c.s.At(i, j) + c.s.At(j, i)) / float64(c.n-1)
			v := w * sij
			if i == j {
				v += (1 - w) * regularizationShrinkage
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}
