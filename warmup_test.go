// Copyright ©2024 The go-hmc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmc

import (
	"reflect"
	"testing"
)

// TestWarmupScheduleExample checks spec.md §8 property 8: the documented
// n_adapts=1000 example produces exactly the stated window boundaries.
func TestWarmupScheduleExample(t *testing.T) {
	s := NewWarmupSchedule(1000)

	wantEnds := []int{100, 150, 250, 450, 950}
	if !reflect.DeepEqual(s.WindowEnds, wantEnds) {
		t.Errorf("WindowEnds = %v, want %v", s.WindowEnds, wantEnds)
	}
	if s.WindowStart != 76 {
		t.Errorf("WindowStart = %d, want 76", s.WindowStart)
	}
	if s.WindowEnd != 950 {
		t.Errorf("WindowEnd = %d, want 950", s.WindowEnd)
	}
	if s.InitBuffer != 75 {
		t.Errorf("InitBuffer = %d, want 75", s.InitBuffer)
	}
	if s.TermBuffer != 50 {
		t.Errorf("TermBuffer = %d, want 50", s.TermBuffer)
	}
}

// TestWarmupScheduleDegenerate checks spec.md §8 property 9: a small
// n_adapts collapses to a single valid window without panicking.
func TestWarmupScheduleDegenerate(t *testing.T) {
	s := NewWarmupSchedule(100)

	if len(s.WindowEnds) != 1 {
		t.Fatalf("WindowEnds = %v, want exactly one window", s.WindowEnds)
	}
	if s.WindowStart > s.WindowEnd {
		t.Errorf("WindowStart %d > WindowEnd %d", s.WindowStart, s.WindowEnd)
	}
	if s.WindowEnds[0] != s.WindowEnd {
		t.Errorf("WindowEnds[0] = %d, want %d (= WindowEnd)", s.WindowEnds[0], s.WindowEnd)
	}
	if s.WindowEnd > 100 {
		t.Errorf("WindowEnd = %d exceeds nAdapts = 100", s.WindowEnd)
	}
}
