// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchpage

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	// Stop prevents the callback from running if it has not started.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer heap.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// slot is one named timer of the page. Each arm bumps the generation so a
// callback that already fired but has not yet taken the page lock can tell
// it was superseded.
type slot struct {
	timer Timer
	gen   uint64
}

// arm cancels the current timer and returns the generation for the next one.
func (s *slot) arm() uint64 {
	s.cancel()
	return s.gen
}

// cancel stops the current timer and invalidates any callback in flight.
func (s *slot) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// current reports whether gen is still the live generation and, if so,
// clears the slot.
func (s *slot) current(gen uint64) bool {
	if gen != s.gen {
		return false
	}
	s.timer = nil
	return true
}
