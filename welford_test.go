// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// naiveVariance computes the unregularized per-dimension sample variance of
// xs by a direct two-pass formula, the reference VarEstimator is checked
// against.
func naiveVariance(xs [][]float64, dim int) []float64 {
	n := float64(len(xs))
	mean := make([]float64, dim)
	for _, x := range xs {
		floats.Add(mean, x)
	}
	floats.Scale(1/n, mean)

	out := make([]float64, dim)
	for _, x := range xs {
		for i := range out {
			d := x[i] - mean[i]
			out[i] += d * d
		}
	}
	floats.Scale(1/(n-1), out)
	return out
}

func TestVarEstimatorMatchesNaiveTwoPass(t *testing.T) {
	const dim = 3
	rng := rand.New(rand.NewPCG(1, 2))
	xs := make([][]float64, 500)
	for i := range xs {
		xs[i] = []float64{rng.NormFloat64(), 2 * rng.NormFloat64(), 0.5 * rng.NormFloat64()}
	}

	want := naiveVariance(xs, dim)

	est := NewVarEstimator(dim)
	for _, x := range xs {
		est.Push(x)
	}

	// Recover the unregularized sample variance from Estimate's regularized
	// output: Estimate returns w·var + (1−w)·shrinkage with w = n/(n+5).
	n := float64(est.N())
	w := n / (n + 5)
	got := est.Estimate()
	for i := range got {
		unreg := (got[i] - (1-w)*regularizationShrinkage) / w
		if math.Abs(unreg-want[i]) > 1e-10 {
			t.Errorf("dim %d: unregularized variance = %v, want %v", i, unreg, want[i])
		}
	}
}

func TestVarEstimatorConvergence(t *testing.T) {
	const dim = 2
	rng := rand.New(rand.NewPCG(7, 11))
	sigma := []float64{1, 4} // variances
	est := NewVarEstimator(dim)
	for i := 0; i < 100000; i++ {
		x := []float64{math.Sqrt(sigma[0]) * rng.NormFloat64(), math.Sqrt(sigma[1]) * rng.NormFloat64()}
		est.Push(x)
	}
	got := est.Estimate()
	for i := range got {
		if math.Abs(got[i]-sigma[i]) > 0.1*sigma[i] {
			t.Errorf("dim %d: estimated variance %v, want close to %v", i, got[i], sigma[i])
		}
	}
}

func TestCovEstimatorConvergence(t *testing.T) {
	const dim = 2
	rng := rand.New(rand.NewPCG(13, 17))
	// Target covariance [[1, 0.5], [0.5, 2]].
	cov := [][]float64{{1, 0.5}, {0.5, 2}}
	est := NewCovEstimator(dim)
	for i := 0; i < 100000; i++ {
		z0, z1 := rng.NormFloat64(), rng.NormFloat64()
		x0 := z0
		x1 := 0.5*z0 + math.Sqrt(2-0.25)*z1
		est.Push([]float64{x0, x1})
	}
	got := est.Estimate()
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			v := got.At(i, j)
			want := cov[i][j]
			tol := 0.1 * math.Max(math.Abs(want), 1)
			if math.Abs(v-want) > tol {
				t.Errorf("cov[%d][%d] = %v, want close to %v", i, j, v, want)
			}
		}
	}
}
