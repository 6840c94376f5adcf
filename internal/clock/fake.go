// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Scheduler. Callbacks run synchronously on the
// goroutine that calls Advance, in deadline order.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

type fakeTimer struct {
	id       int
	deadline time.Time
	fn       func()
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Schedule(delay time.Duration, fn func()) Cancel {
	if delay < 0 {
		delay = 0
	}
	f.mu.Lock()
	f.seq++
	t := &fakeTimer{id: f.seq, deadline: f.now.Add(delay), fn: fn}
	f.pending = append(f.pending, t)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, p := range f.pending {
			if p.id == t.id {
				f.pending = append(f.pending[:i], f.pending[i+1:]...)
				return
			}
		}
	}
}

// Advance moves time forward by d, firing every callback whose deadline is reached.
// Callbacks scheduled by fired callbacks also fire if they fall within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		sort.SliceStable(f.pending, func(i, j int) bool {
			return f.pending[i].deadline.Before(f.pending[j].deadline)
		})
		if len(f.pending) == 0 || f.pending[0].deadline.After(target) {
			f.now = target
			f.mu.Unlock()
			return
		}
		next := f.pending[0]
		f.pending = f.pending[1:]
		if next.deadline.After(f.now) {
			f.now = next.deadline
		}
		f.mu.Unlock()

		next.fn()
	}
}

// Set jumps the clock to t without firing timers, e.g. to simulate a suspended process.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Pending returns the number of scheduled callbacks that have not fired or been cancelled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// NextDeadline returns the earliest pending deadline.
func (f *Fake) NextDeadline() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return time.Time{}, false
	}
	earliest := f.pending[0].deadline
	for _, p := range f.pending[1:] {
		if p.deadline.Before(earliest) {
			earliest = p.deadline
		}
	}
	return earliest, true
}
