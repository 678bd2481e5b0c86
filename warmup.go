// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

// WarmupSchedule is the three-phase window schedule of spec.md §4.8: an
// init buffer of step-size-only adaptation, a sequence of doubling
// mass-matrix windows, and a term buffer of step-size-only adaptation. The
// schedule is computed once at initialization from n_adapts alone.
type WarmupSchedule struct {
	InitBuffer int
	TermBuffer int
	WindowStart int
	WindowEnd   int
	// WindowEnds holds the sample index at which each mass-matrix window
	// closes, in increasing order; the last entry always equals WindowEnd.
	WindowEnds []int
}

// NewWarmupSchedule computes the Stan-style warmup schedule for nAdapts
// adaptation iterations. The normal case uses init_buffer=75, term_buffer=50,
// and a doubling window starting at width 25; if there isn't room for even
// one window (init_buffer + window + term_buffer > nAdapts), it collapses
// to the degenerate single-window schedule of spec.md §4.8.
func NewWarmupSchedule(nAdapts int) WarmupSchedule {
	const (
		defaultInitBuffer = 75
		defaultTermBuffer = 50
		defaultWindow     = 25
	)

	if defaultInitBuffer+defaultWindow+defaultTermBuffer > nAdapts {
		initBuffer := int(0.15 * float64(nAdapts))
		termBuffer := int(0.1 * float64(nAdapts))
		windowEnd := nAdapts - termBuffer
		return WarmupSchedule{
			InitBuffer:  initBuffer,
			TermBuffer:  termBuffer,
			WindowStart: initBuffer + 1,
			WindowEnd:   windowEnd,
			WindowEnds:  []int{windowEnd},
		}
	}

	initBuffer := defaultInitBuffer
	termBuffer := defaultTermBuffer
	windowEnd := nAdapts - termBuffer
	windowStart := initBuffer + 1

	var ends []int
	width := defaultWindow
	boundary := windowStart + width - 1
	for {
		nextWidth := width * 2
		if boundary+nextWidth >= windowEnd {
			ends = append(ends, windowEnd)
			break
		}
		ends = append(ends, boundary)
		width = nextWidth
		boundary += width
	}

	return WarmupSchedule{
		InitBuffer:  initBuffer,
		TermBuffer:  termBuffer,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		WindowEnds:  ends,
	}
}

// StanWindowedAdaptor composes step-size dual averaging with online
// mass-matrix estimation under the three-phase Stan schedule, the
// "composite adaptor" of spec.md §4.8/§9: a state machine over (init,
// mass-window, term, done) keyed on the iteration index, though here it is
// expressed directly against WarmupSchedule rather than as an explicit
// transition table.
type StanWindowedAdaptor struct {
	schedule WarmupSchedule
	nAdapts  int

	da *DualAveraging
	mm *MassMatrixAdaptor

	metric     *Metric
	integrator *Integrator
	windowIdx  int
}

// NewStanWindowedAdaptor returns a composite adaptor targeting acceptance
// rate delta over nAdapts iterations, starting from integrator and
// initialMetric and using massMatrixAdaptor (a Diag or Dense
// MassMatrixAdaptor matching initialMetric's kind) to estimate the mass
// matrix.
func NewStanWindowedAdaptor(nAdapts int, delta float64, integrator *Integrator, massMatrixAdaptor *MassMatrixAdaptor, initialMetric *Metric) *StanWindowedAdaptor {
	return &StanWindowedAdaptor{
		schedule:   NewWarmupSchedule(nAdapts),
		nAdapts:    nAdapts,
		da:         NewDualAveraging(delta, integrator.StepSize()),
		mm:         massMatrixAdaptor,
		metric:     initialMetric,
		integrator: integrator,
	}
}

// Schedule returns the adaptor's computed window schedule.
func (a *StanWindowedAdaptor) Schedule() WarmupSchedule { return a.schedule }

// Metric returns the adaptor's current metric (the last one committed at a
// window close, or the initial metric before the first window closes).
func (a *StanWindowedAdaptor) Metric() *Metric { return a.metric }

// Integrator returns the adaptor's current integrator.
func (a *StanWindowedAdaptor) Integrator() *Integrator { return a.integrator }

// Adapt folds one iteration's (θ, acceptance statistic) into the adaptor.
// i is the 1-based sample index within the warmup period (1..nAdapts). The
// integrator's step size is recomputed on every call (Integrator always
// reflects the latest exp(logϵ), per spec.md §4.7) and the caller must pull
// it every iteration, not just when Adapt returns true. Adapt's return value
// reports only whether the metric was replaced this iteration — true when a
// mass-matrix window closed — signaling that the caller must rebuild its
// Hamiltonian from Metric().
func (a *StanWindowedAdaptor) Adapt(i int, theta []float64, alpha float64) bool {
	eps := a.da.Adapt(alpha)
	a.integrator = a.integrator.WithStepSize(eps)
	metricChanged := false

	if i > a.schedule.InitBuffer && i <= a.schedule.WindowEnd {
		a.mm.Push(theta)
	}

	if a.windowIdx < len(a.schedule.WindowEnds) && i == a.schedule.WindowEnds[a.windowIdx] {
		if m, ok := a.mm.Finalize(); ok {
			a.metric = m
			metricChanged = true
		}
		a.mm.Reset()
		a.da.reset(a.integrator.StepSize())
		a.windowIdx++
	}

	if i == a.nAdapts {
		a.integrator = a.integrator.WithStepSize(a.da.FinalStepSize())
	}

	return metricChanged
}
