// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth manages the CLI session: the access/refresh token pair, the
// claims read from the access token, proactive refresh ahead of expiry, and the
// logout cascade.
//
// A Manager is the single owner of one session. The token pair lives in a
// TokenStore (the OS keychain in production); everything else is derived from
// it and rebuilt when the Manager is constructed. Consumers read immutable State
// snapshots and call the action methods; they never parse tokens themselves.
//
// At most one refresh request is in flight per Manager. Manual refreshes, the
// refresh timer and token-source lookups all join the same request.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/claims"
	"chainledger/cli/internal/clock"
	apperrors "chainledger/cli/internal/errors"
	"chainledger/cli/internal/logging"
	"chainledger/cli/internal/metrics"
)

const (
	// DefaultSkew is how long before expiry the refresh fires.
	DefaultSkew = 60 * time.Second
	// DefaultMaxTimerDelay caps one timer wait; longer waits are chained.
	DefaultMaxTimerDelay = 24 * time.Hour
	// DefaultRefreshTimeout bounds a refresh round trip.
	DefaultRefreshTimeout = 30 * time.Second
)

// Refresh triggers, used as metric labels.
const (
	triggerManual   = "manual"
	triggerTimer    = "timer"
	triggerOnDemand = "on_demand"
)

// Logout reasons, used as metric labels.
const (
	reasonUser               = "user"
	reasonExpired            = "expired"
	reasonMalformed          = "malformed"
	reasonRefreshFailed      = "refresh_failed"
	reasonCredentialsChanged = "credentials_changed"
)

// ErrClosed is returned by operations on a closed Manager.
var ErrClosed = errors.New("auth: session manager closed")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options configures a Manager. Store and Issuer are required.
type Options struct {
	Store  TokenStore
	Issuer backend.API
	// Scheduler supplies time and timers. Defaults to the system clock.
	Scheduler clock.Scheduler
	Logger    *slog.Logger
	Metrics   *metrics.Metrics

	Skew           time.Duration
	MaxTimerDelay  time.Duration
	RefreshTimeout time.Duration

	// OnChange receives every published snapshot in mutation order, starting
	// with the loading snapshot during New. It runs synchronously and must not
	// call Login, Logout, Refresh or UpdateProfile.
	OnChange func(State)
	// OnSessionEnded is called after a failed refresh has logged the user out.
	OnSessionEnded func(reason error)
}

// Manager owns one session.
type Manager struct {
	store          TokenStore
	issuer         backend.API
	clk            clock.Scheduler
	log            *slog.Logger
	metrics        *metrics.Metrics
	skew           time.Duration
	refreshTimeout time.Duration
	onChange       func(State)
	onSessionEnded func(error)

	sched *refreshScheduler
	sf    singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}

	// notifyMu orders OnChange calls; it is taken before mu is released.
	notifyMu sync.Mutex

	mu sync.Mutex
	// gen identifies the installed session. Login and logout bump it; refresh keeps it.
	gen       uint64
	state     State
	logins    int
	loginDone chan struct{}
	closed    bool
}

// New builds a Manager and restores the stored session before returning.
// A stored session whose access token is expired or unreadable is logged out.
func New(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("auth: token store is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("auth: issuer is required")
	}

	m := &Manager{
		store:          opts.Store,
		issuer:         opts.Issuer,
		clk:            opts.Scheduler,
		log:            opts.Logger,
		metrics:        opts.Metrics,
		skew:           opts.Skew,
		refreshTimeout: opts.RefreshTimeout,
		onChange:       opts.OnChange,
		onSessionEnded: opts.OnSessionEnded,
		state:          State{Loading: true},
		ready:          make(chan struct{}),
	}
	if m.clk == nil {
		m.clk = clock.System{}
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	m.log = m.log.With("component", "session")
	if m.metrics == nil {
		m.metrics = metrics.NewNop()
	}
	if m.skew <= 0 {
		m.skew = DefaultSkew
	}
	if m.refreshTimeout <= 0 {
		m.refreshTimeout = DefaultRefreshTimeout
	}
	maxDelay := opts.MaxTimerDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxTimerDelay
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.sched = newRefreshScheduler(m.clk, m.skew, maxDelay, m.log, m.onTimer)

	if m.onChange != nil {
		m.onChange(m.state.clone())
	}
	m.restore()
	return m, nil
}

func (m *Manager) restore() {
	m.mu.Lock()

	pair, err := m.store.Load()
	if err != nil {
		m.log.Warn("could not read stored session, starting logged out", "error", err)
	}
	if pair != nil {
		c, err := claims.Decode(pair.Access)
		switch {
		case err != nil || c == nil:
			m.log.Warn("stored access token is unreadable, logging out", "error", err)
			m.clearLocked(reasonMalformed)
		case c.ExpiredAt(m.clk.Now()):
			m.log.Info("stored session has expired, logging out", "expired_at", c.Expires())
			m.clearLocked(reasonExpired)
		default:
			m.installLocked(*pair, c, false, true)
			m.log.Debug("restored session", "subject", c.Subject(), "expires_at", c.Expires(),
				"token", logging.TokenFingerprint(pair.Access))
		}
	}

	m.state.Loading = false
	m.commitAndUnlock()
	close(m.ready)
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Ready is closed once the stored session has been restored.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// SchedulerStatus reports the refresh timer phase.
func (m *Manager) SchedulerStatus() SchedulerStatus {
	return m.sched.status()
}

// Guard applies CanAccess to the current snapshot.
func (m *Manager) Guard(requiredRole string) Decision {
	return CanAccess(m.State(), requiredRole)
}

// Login exchanges credentials for a token pair and installs it.
// A rejected or failed login leaves any existing session in place.
func (m *Manager) Login(ctx context.Context, creds backend.Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return apperrors.Wrap(apperrors.Validation, "username and password are required", err)
	}
	if err := m.beginLogin(); err != nil {
		return err
	}
	defer m.endLogin()

	access, refresh, err := m.issuer.IssueTokens(ctx, creds)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.InvalidCredentials {
			m.metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
			m.log.Info("login rejected", "username", creds.Username)
			return err
		}
		m.metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		m.log.Warn("login failed", "username", creds.Username, "error", logging.Mask(err.Error()))
		return asServiceError(err)
	}

	c, err := claims.Decode(access)
	if err != nil || c == nil {
		m.metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return apperrors.Wrap(apperrors.AuthService, "issuer returned an unreadable access token", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.installLocked(TokenPair{Access: access, Refresh: refresh}, c, true, true)
	m.metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	m.log.Info("logged in", "subject", c.Subject(), "role", c.Role(), "expires_at", c.Expires(),
		"token", logging.TokenFingerprint(access))
	m.commitAndUnlock()
	return nil
}

func (m *Manager) beginLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.logins == 0 {
		m.loginDone = make(chan struct{})
	}
	m.logins++
	return nil
}

func (m *Manager) endLogin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins--
	if m.logins == 0 {
		close(m.loginDone)
		m.loginDone = nil
	}
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers share
// one issuer request. Any failure ends the session and is returned as an
// AuthService error; without a session it returns NotAuthenticated.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, triggerManual)
}

func (m *Manager) refresh(ctx context.Context, trigger string) error {
	leader := false
	ch := m.sf.DoChan("refresh", func() (any, error) {
		leader = true
		return nil, m.runRefresh(trigger)
	})
	select {
	case res := <-ch:
		if !leader {
			m.metrics.RefreshesTotal.WithLabelValues(trigger, metrics.ResultJoined).Inc()
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) runRefresh(trigger string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if !m.state.Authenticated() {
		m.mu.Unlock()
		return apperrors.New(apperrors.NotAuthenticated, "no session to refresh")
	}
	gen := m.gen
	current := *m.state.Tokens
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(m.ctx, m.refreshTimeout)
	defer cancel()

	start := time.Now()
	access, refresh, err := m.issuer.RefreshToken(ctx, current.Refresh)
	m.metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	var c *claims.Claims
	if err != nil {
		err = asServiceError(err)
	} else {
		c, err = claims.Decode(access)
		switch {
		case err != nil:
			err = apperrors.Wrap(apperrors.AuthService, "refresh returned an unreadable access token", err)
		case c == nil:
			err = apperrors.New(apperrors.AuthService, "refresh returned no access token")
		case c.ExpiredAt(m.clk.Now()):
			err = apperrors.New(apperrors.AuthService, "refresh returned an expired access token")
		case !m.clk.Now().Before(c.Expires().Add(-m.skew)):
			// installing it would re-arm the timer in the past and refresh again at once
			err = apperrors.New(apperrors.AuthService, "refresh returned an access token that expires within the refresh margin")
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if gen != m.gen {
		m.mu.Unlock()
		m.log.Debug("session changed during refresh, discarding result", "trigger", trigger)
		return err
	}

	if err != nil {
		m.metrics.RefreshesTotal.WithLabelValues(trigger, metrics.ResultFailure).Inc()
		m.log.Warn("refresh failed, ending session", "trigger", trigger, "error", logging.Mask(err.Error()))
		m.clearLocked(reasonRefreshFailed)
		m.commitAndUnlock()
		if m.onSessionEnded != nil {
			m.onSessionEnded(err)
		}
		return err
	}

	if refresh == "" {
		refresh = current.Refresh
	}
	m.installLocked(TokenPair{Access: access, Refresh: refresh}, c, true, false)
	m.metrics.RefreshesTotal.WithLabelValues(trigger, metrics.ResultSuccess).Inc()
	m.log.Info("session refreshed", "trigger", trigger, "expires_at", c.Expires(),
		"token", logging.TokenFingerprint(access), "rotated", refresh != current.Refresh)
	m.commitAndUnlock()
	return nil
}

// onTimer runs when the scheduler fires for session gen.
func (m *Manager) onTimer(gen uint64) {
	defer m.sched.settle(gen)

	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	wait := m.loginDone
	m.mu.Unlock()

	// a login in flight installs its own session and timer; wait for it
	if wait != nil {
		m.log.Debug("refresh timer fired during login, waiting")
		select {
		case <-wait:
		case <-m.ctx.Done():
			return
		}
		m.mu.Lock()
		stale := m.closed || gen != m.gen
		m.mu.Unlock()
		if stale {
			m.metrics.RefreshesTotal.WithLabelValues(triggerTimer, metrics.ResultSuppressed).Inc()
			return
		}
	}

	_ = m.refresh(m.ctx, triggerTimer)
}

// Logout ends the session: the timer is cancelled, the store cleared and the
// state reset. It is safe to call at any time, including without a session.
func (m *Manager) Logout() {
	m.mu.Lock()
	if !m.clearLocked(reasonUser) {
		m.mu.Unlock()
		return
	}
	m.log.Info("logged out")
	m.commitAndUnlock()
}

// UpdateProfile applies a partial profile change using the current access token
// and merges the result into State.Profile. A password change logs out after
// the update succeeds. On failure the state is unchanged.
func (m *Manager) UpdateProfile(ctx context.Context, update backend.ProfileUpdate) (*Profile, error) {
	if update == (backend.ProfileUpdate{}) {
		return nil, apperrors.New(apperrors.Validation, "nothing to update")
	}
	if err := validate.Struct(update); err != nil {
		return nil, apperrors.Wrap(apperrors.Validation, "invalid profile update", err)
	}

	m.mu.Lock()
	if !m.state.Authenticated() {
		m.mu.Unlock()
		return nil, apperrors.New(apperrors.NotAuthenticated, "log in before updating the profile")
	}
	gen := m.gen
	access := m.state.Tokens.Access
	m.mu.Unlock()

	p, err := m.issuer.UpdateProfile(ctx, access, update)
	if err != nil {
		m.metrics.ProfileUpdatesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		m.log.Warn("profile update failed", "error", logging.Mask(err.Error()))
		return nil, asServiceError(err)
	}
	m.metrics.ProfileUpdatesTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return mergeProfile(nil, p), nil
	}
	if update.ChangesCredentials() {
		m.log.Info("password changed, ending session")
		m.clearLocked(reasonCredentialsChanged)
		m.commitAndUnlock()
		return mergeProfile(nil, p), nil
	}
	// echoed fields win over what was sent
	merged := mergeProfile(m.state.Profile, &Profile{Username: update.Username, Email: update.Email})
	merged = mergeProfile(merged, p)
	m.state.Profile = merged
	m.commitAndUnlock()
	return mergeProfile(nil, merged), nil
}

// Close stops the refresh timer and cancels a timer-driven refresh in flight.
// The stored session is kept for the next process. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.sched.stop()
	m.cancel()
	return nil
}

// installLocked replaces the session with pair and re-arms the timer.
// newSession bumps the generation; persist writes the pair to the store.
func (m *Manager) installLocked(pair TokenPair, c *claims.Claims, persist, newSession bool) {
	if newSession {
		m.gen++
	}
	if persist {
		if err := m.store.Save(pair); err != nil {
			m.log.Warn("could not persist session, it will not survive a restart", "error", err)
		}
	}
	m.state = State{
		Tokens:  &pair,
		Claims:  c,
		Profile: profileFromClaims(c),
		Loading: m.state.Loading,
	}
	m.sched.arm(m.gen, c.Expires())
}

// clearLocked runs the logout cascade and reports whether a session was installed.
func (m *Manager) clearLocked(reason string) bool {
	had := m.state.Authenticated()
	m.gen++
	m.sched.stop()
	if err := m.store.Clear(); err != nil {
		m.log.Warn("could not clear stored session", "error", err)
	}
	m.state = State{Loading: m.state.Loading}
	if had || reason != reasonUser {
		m.metrics.LogoutsTotal.WithLabelValues(reason).Inc()
	}
	return had
}

// commitAndUnlock publishes the current state and releases mu.
func (m *Manager) commitAndUnlock() {
	snap := m.state.clone()
	if snap.Authenticated() {
		m.metrics.SessionAuthenticated.Set(1)
		if exp := snap.Claims.Expires(); !exp.IsZero() {
			m.metrics.SessionExpiry.Set(float64(exp.Unix()))
		} else {
			m.metrics.SessionExpiry.Set(0)
		}
	} else {
		m.metrics.SessionAuthenticated.Set(0)
		m.metrics.SessionExpiry.Set(0)
	}

	if m.onChange == nil {
		m.mu.Unlock()
		return
	}
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()
	m.onChange(snap)
}

func asServiceError(err error) error {
	if apperrors.KindOf(err) != "" {
		return err
	}
	return apperrors.Wrap(apperrors.AuthService, "issuer request failed", err)
}
