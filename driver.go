// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import "context"

// ProgressFunc is invoked at the end of each iteration with the 1-based
// iteration index and that iteration's Transition. It may inspect but must
// not mutate the transition or any driver state, per spec.md §6.
type ProgressFunc func(iteration int, t Transition)

// driverConfig holds Sample's optional behavior, configured via
// DriverOption functional options rather than a struct literal with many
// zero-value-sensitive fields — the same functional-options shape
// core.WithWeighted() uses for graph construction in the broader retrieval
// pack.
type driverConfig struct {
	progress   ProgressFunc
	dropWarmup bool
}

// DriverOption configures a call to Sample.
type DriverOption func(*driverConfig)

// WithProgress registers a callback invoked once per iteration.
func WithProgress(fn ProgressFunc) DriverOption {
	return func(c *driverConfig) { c.progress = fn }
}

// WithKeepWarmup disables the default behavior of dropping the first
// n_adapts samples from the returned result.
func WithKeepWarmup() DriverOption {
	return func(c *driverConfig) { c.dropWarmup = false }
}

// Sample runs the per-iteration refresh → transition → adapt loop of
// spec.md §4.9: it refreshes momentum, proposes a transition via k, and,
// for the first nAdapts iterations, feeds the adaptor and rebuilds k's
// integrator from the adaptor's freshly adapted step size every iteration —
// dual averaging recomputes ε on every call (spec.md §4.7: "during
// adaptation, the integrator uses exp(logϵ)"), so the kernel must track it
// every iteration, not only at a mass-matrix window close. h's metric is
// rebuilt only when the adaptor actually replaces it, i.e. at a window
// close, or (once, at the start) if it does not already match
// len(theta0) — the one point at which a dimension mismatch is tolerated,
// per spec.md §7; any mismatch discovered mid-run is a programmer error and
// is not this function's concern, since h and k are only ever replaced here
// with dimension-matched values. ctx is checked once per outer iteration
// (never mid-trajectory, per spec.md §5); if it is done, Sample returns the
// samples gathered so far together with ctx.Err().
func Sample(ctx context.Context, rng RNG, h *Hamiltonian, k Kernel, theta0 []float64, nSamples int, adaptor *StanWindowedAdaptor, nAdapts int, opts ...DriverOption) ([]Transition, error) {
	cfg := driverConfig{dropWarmup: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if h.Metric.Dim() != len(theta0) {
		h = h.Update(NewUnitMetric(len(theta0)))
	}

	r0 := make([]float64, h.Metric.Dim())
	z := h.PhasePoint(theta0, r0)
	t := Transition{Z: z}

	out := make([]Transition, 0, nSamples)
	for i := 1; i <= nSamples; i++ {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		refreshed := h.Refresh(rng, t.Z)
		t = k.Transition(rng, h, refreshed)

		if adaptor != nil && i <= nAdapts {
			metricChanged := adaptor.Adapt(i, t.Z.Theta, t.Stat.AcceptanceRate)
			t.Stat.NomStepSize = adaptor.Integrator().StepSize()
			k = k.WithIntegrator(adaptor.Integrator())
			if metricChanged {
				h = h.Update(adaptor.Metric())
			}
		}

		out = append(out, t)
		if cfg.progress != nil {
			cfg.progress(i, t)
		}
	}

	if cfg.dropWarmup {
		if nAdapts >= len(out) {
			return out[:0], nil
		}
		out = out[nAdapts:]
	}
	return out, nil
}

// Samples is an in-memory collector of Transitions, the minimal "result
// sink" spec.md §6 requires without depending on an external tabular-chain
// package (out of scope per spec.md §1).
type Samples []Transition

// Theta returns the collected draws as a dense [N][D] slice.
func (s Samples) Theta() [][]float64 {
	out := make([][]float64, len(s))
	for i, t := range s {
		out[i] = t.Z.Theta
	}
	return out
}

// Collector returns a ProgressFunc that appends every transition it
// observes to dst.
func Collector(dst *Samples) ProgressFunc {
	return func(_ int, t Transition) {
		*dst = append(*dst, t)
	}
}
