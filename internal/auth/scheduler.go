// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"log/slog"
	"sync"
	"time"

	"chainledger/cli/internal/clock"
)

// SchedulerState is the phase of the proactive refresh timer.
type SchedulerState int

const (
	// SchedulerIdle means no timer is pending.
	SchedulerIdle SchedulerState = iota
	// SchedulerArmed means a refresh is scheduled for FireAt.
	SchedulerArmed
	// SchedulerFiring means the timer has fired and its refresh is running.
	SchedulerFiring
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerArmed:
		return "armed"
	case SchedulerFiring:
		return "firing"
	default:
		return "unknown"
	}
}

// SchedulerStatus describes the refresh timer for display and tests.
type SchedulerStatus struct {
	State  SchedulerState
	FireAt time.Time
}

// refreshScheduler owns at most one pending timer. Each arm replaces the
// previous timer; callbacks of replaced timers are ignored.
type refreshScheduler struct {
	clk      clock.Scheduler
	skew     time.Duration
	maxDelay time.Duration
	log      *slog.Logger
	fire     func(gen uint64)

	mu     sync.Mutex
	state  SchedulerState
	fireAt time.Time
	gen    uint64
	seq    uint64
	cancel clock.Cancel
}

func newRefreshScheduler(clk clock.Scheduler, skew, maxDelay time.Duration, log *slog.Logger, fire func(gen uint64)) *refreshScheduler {
	return &refreshScheduler{
		clk:      clk,
		skew:     skew,
		maxDelay: maxDelay,
		log:      log,
		fire:     fire,
	}
}

// arm schedules a refresh skew before expiresAt for session generation gen.
// A zero expiresAt means the token never expires and leaves the scheduler idle.
func (s *refreshScheduler) arm(gen uint64, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if expiresAt.IsZero() {
		s.log.Debug("access token has no expiry, refresh not scheduled")
		return
	}
	s.state = SchedulerArmed
	s.gen = gen
	s.fireAt = expiresAt.Add(-s.skew)
	s.scheduleLocked()
	s.log.Debug("refresh scheduled", "fire_at", s.fireAt, "expires_at", expiresAt)
}

// scheduleLocked starts a timer for the remaining wait, capped at maxDelay.
// A fireAt in the past gives a zero delay.
func (s *refreshScheduler) scheduleLocked() {
	delay := s.fireAt.Sub(s.clk.Now())
	if delay < 0 {
		delay = 0
	}
	if s.maxDelay > 0 && delay > s.maxDelay {
		delay = s.maxDelay
	}
	s.seq++
	seq := s.seq
	s.cancel = s.clk.Schedule(delay, func() { s.onTimer(seq) })
}

func (s *refreshScheduler) onTimer(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.state != SchedulerArmed {
		s.mu.Unlock()
		return
	}
	// capped waits end early; wait out the remainder
	if s.clk.Now().Before(s.fireAt) {
		s.scheduleLocked()
		s.mu.Unlock()
		return
	}
	s.state = SchedulerFiring
	s.cancel = nil
	gen := s.gen
	s.mu.Unlock()

	s.fire(gen)
}

// stop cancels any pending timer and returns to idle.
func (s *refreshScheduler) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *refreshScheduler) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.state = SchedulerIdle
	s.fireAt = time.Time{}
}

// settle returns a firing scheduler to idle when its refresh ended without
// re-arming, e.g. because the fire was dropped.
func (s *refreshScheduler) settle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SchedulerFiring && s.gen == gen {
		s.state = SchedulerIdle
		s.fireAt = time.Time{}
	}
}

func (s *refreshScheduler) status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{State: s.state, FireAt: s.fireAt}
}
