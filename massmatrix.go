// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "log"

// massMatrixKind mirrors metricKind's tag, restricted to the two variants a
// mass-matrix adaptor can estimate online (Unit carries nothing to adapt).
type massMatrixKind int

const (
	diagMassMatrix massMatrixKind = iota
	denseMassMatrix
)

// MassMatrixAdaptor accumulates samples into a Welford estimator and
// produces a replacement Metric at window close, per spec.md §4.6/§4.8. It
// wraps VarEstimator for a diagonal metric or CovEstimator for a dense one.
type MassMatrixAdaptor struct {
	kind massMatrixKind
	vars *VarEstimator
	cov  *CovEstimator
}

// NewDiagMassMatrixAdaptor returns an adaptor that estimates a diagonal
// mass matrix for a D-dimensional target.
func NewDiagMassMatrixAdaptor(dim int) *MassMatrixAdaptor {
	return &MassMatrixAdaptor{kind: diagMassMatrix, vars: NewVarEstimator(dim)}
}

// NewDenseMassMatrixAdaptor returns an adaptor that estimates a full
// covariance mass matrix for a D-dimensional target.
func NewDenseMassMatrixAdaptor(dim int) *MassMatrixAdaptor {
	return &MassMatrixAdaptor{kind: denseMassMatrix, cov: NewCovEstimator(dim)}
}

// Push folds a newly accepted θ into the running estimate.
func (a *MassMatrixAdaptor) Push(theta []float64) {
	switch a.kind {
	case diagMassMatrix:
		a.vars.Push(theta)
	case denseMassMatrix:
		a.cov.Push(theta)
	}
}

// Reset clears the estimator, called when a warmup window closes.
func (a *MassMatrixAdaptor) Reset() {
	switch a.kind {
	case diagMassMatrix:
		a.vars.Reset()
	case denseMassMatrix:
		a.cov.Reset()
	}
}

// Finalize returns a new Metric built from the current estimate. The
// estimate itself is the inverse mass matrix (the metric's m⁻¹), since the
// Welford estimators track the target's posterior variance/covariance and
// the optimal mass matrix is the inverse of that quantity (Stan's own
// convention — see spec.md §4.6). If the dense estimate is not
// positive-definite (only possible from adversarial or pathological input,
// since the regularization in VarEstimator/CovEstimator already guards
// against n < 2 degeneracy), Finalize logs a warning and returns ok = false;
// the caller must keep its prior metric rather than abort, per spec.md §7.
func (a *MassMatrixAdaptor) Finalize() (metric *Metric, ok bool) {
	switch a.kind {
	case diagMassMatrix:
		return NewDiagMetric(a.vars.Estimate()), true
	case denseMassMatrix:
		est := a.cov.Estimate()
		m, ok := tryNewDenseMetric(est)
		if !ok {
			log.Printf("%v, keeping prior metric", errSingularMassMatrix)
			return nil, false
		}
		return m, true
	}
	panic("hmc: unreachable mass matrix kind")
}
