// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	apperrors "chainledger/cli/internal/errors"
)

func TestTokenSource(t *testing.T) {
	h := newHarness(t)
	m := h.manager(t)

	if _, err := m.TokenSource().Token(); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("Token() without session error = %v, want NotAuthenticated", err)
	}

	h.login(t, m)
	tok, err := m.TokenSource().Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != m.State().Tokens.Access || tok.TokenType != "Bearer" {
		t.Errorf("token = %+v", tok)
	}
	if !tok.Expiry.Equal(t0.Add(time.Hour)) {
		t.Errorf("expiry = %v, want %v", tok.Expiry, t0.Add(time.Hour))
	}
	if _, refreshes, _ := h.issuer.counts(); refreshes != 0 {
		t.Errorf("refresh calls = %d, want 0 for a fresh token", refreshes)
	}
}

func TestTokenSourceRefreshesInsideSkew(t *testing.T) {
	h := newHarness(t)
	m := h.manager(t)
	h.login(t, m)
	old := m.State().Tokens.Access

	// move into the refresh window without letting the timer run
	h.clk.Set(t0.Add(time.Hour - 30*time.Second))
	tok, err := m.TokenSource().Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken == old {
		t.Error("token source handed out a token inside the refresh window")
	}
	if _, refreshes, _ := h.issuer.counts(); refreshes != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshes)
	}
}

func TestTokenSourceWithOAuth2Client(t *testing.T) {
	h := newHarness(t)
	m := h.manager(t)
	h.login(t, m)
	want := "Bearer " + m.State().Tokens.Access

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != want {
			t.Errorf("Authorization = %q, want %q", got, want)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := oauth2.NewClient(context.Background(), m.TokenSource())
	resp, err := client.Get(srv.URL + "/api/ledger")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
