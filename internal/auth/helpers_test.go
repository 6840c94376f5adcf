// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"

	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/clock"
	apperrors "chainledger/cli/internal/errors"
	"chainledger/cli/internal/keychain"
	"chainledger/cli/internal/metrics"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func mintToken(t *testing.T, subject, role string, exp time.Time) string {
	t.Helper()
	c := jwt.MapClaims{
		"sub":        subject,
		"username":   subject,
		"email":      subject + "@example.com",
		"role":       role,
		"currency":   42,
		"public_key": "pk-" + subject,
		"exp":        exp.Unix(),
		"iat":        exp.Add(-time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("issuer-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newTestStore() *KeychainStore {
	return NewKeychainStore(keychain.NewWithRing(keyring.NewArrayKeyring(nil), nil), nil)
}

// fakeIssuer is a scripted backend.API. Nil hooks fall back to success.
type fakeIssuer struct {
	t   *testing.T
	clk clock.Clock

	mu           sync.Mutex
	issueCalls   int
	refreshCalls int
	updateCalls  int
	lastRefresh  string
	lastBearer   string

	issue   func(ctx context.Context, creds backend.Credentials) (string, string, error)
	refresh func(ctx context.Context, refresh string) (string, string, error)
	update  func(ctx context.Context, access string, u backend.ProfileUpdate) (*backend.Profile, error)
}

func newFakeIssuer(t *testing.T, clk clock.Clock) *fakeIssuer {
	return &fakeIssuer{t: t, clk: clk}
}

func (f *fakeIssuer) IssueTokens(ctx context.Context, creds backend.Credentials) (string, string, error) {
	f.mu.Lock()
	f.issueCalls++
	hook := f.issue
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, creds)
	}
	return mintToken(f.t, creds.Username, "user", f.clk.Now().Add(time.Hour)), "R-" + creds.Username, nil
}

func (f *fakeIssuer) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.lastRefresh = refresh
	hook := f.refresh
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, refresh)
	}
	return mintToken(f.t, "alice", "user", f.clk.Now().Add(time.Hour)), "", nil
}

func (f *fakeIssuer) UpdateProfile(ctx context.Context, access string, u backend.ProfileUpdate) (*backend.Profile, error) {
	f.mu.Lock()
	f.updateCalls++
	f.lastBearer = access
	hook := f.update
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, access, u)
	}
	return &backend.Profile{Username: u.Username, Email: u.Email}, nil
}

func (f *fakeIssuer) counts() (issue, refresh, update int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueCalls, f.refreshCalls, f.updateCalls
}

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Load() (*TokenPair, error) {
	return nil, apperrors.New(apperrors.Storage, "keychain locked")
}
func (brokenStore) Save(TokenPair) error { return apperrors.New(apperrors.Storage, "keychain locked") }
func (brokenStore) Clear() error         { return apperrors.New(apperrors.Storage, "keychain locked") }

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.snaps...)
}

type harness struct {
	clk     *clock.Fake
	store   TokenStore
	issuer  *fakeIssuer
	metrics *metrics.Metrics
	rec     *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.NewFake(t0)
	return &harness{
		clk:     clk,
		store:   newTestStore(),
		issuer:  newFakeIssuer(t, clk),
		metrics: metrics.NewNop(),
		rec:     &recorder{},
	}
}

func (h *harness) options() Options {
	return Options{
		Store:     h.store,
		Issuer:    h.issuer,
		Scheduler: h.clk,
		Metrics:   h.metrics,
		OnChange:  h.rec.record,
	}
}

func (h *harness) manager(t *testing.T) *Manager {
	t.Helper()
	return h.managerWith(t, h.options())
}

func (h *harness) managerWith(t *testing.T, opts Options) *Manager {
	t.Helper()
	m, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func (h *harness) seed(t *testing.T, pair TokenPair) {
	t.Helper()
	if err := h.store.Save(pair); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

func (h *harness) stored(t *testing.T) *TokenPair {
	t.Helper()
	p, err := h.store.Load()
	if err != nil {
		t.Fatalf("store Load() error = %v", err)
	}
	return p
}

func (h *harness) login(t *testing.T, m *Manager) {
	t.Helper()
	if err := m.Login(context.Background(), backend.Credentials{Username: "alice", Password: "p1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
}
