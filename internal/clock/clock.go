// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package clock abstracts wall time and one-shot timers so session refresh
// scheduling can be driven by a simulated clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Cancel stops a scheduled callback. Calling it after the callback ran, or twice, is a no-op.
type Cancel func()

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	Clock
	Schedule(delay time.Duration, fn func()) Cancel
}

// System is the real clock backed by time.AfterFunc.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Schedule runs fn on its own goroutine after delay. Negative delays run immediately.
func (System) Schedule(delay time.Duration, fn func()) Cancel {
	if delay < 0 {
		delay = 0
	}
	t := time.AfterFunc(delay, fn)
	var once sync.Once
	return func() {
		once.Do(func() { t.Stop() })
	}
}
