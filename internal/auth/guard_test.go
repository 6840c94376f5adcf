// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"testing"

	"chainledger/cli/internal/claims"
)

func TestCanAccess(t *testing.T) {
	session := func(role string, staff bool) State {
		return State{
			Tokens: &TokenPair{Access: "a", Refresh: "r"},
			Claims: &claims.Claims{UserRole: role, IsStaff: staff},
		}
	}

	tests := []struct {
		name string
		st   State
		role string
		want Decision
	}{
		{name: "loading is pending", st: State{Loading: true}, role: "", want: Pending},
		{name: "loading with session is still pending", st: State{Loading: true, Tokens: &TokenPair{}, Claims: &claims.Claims{}}, role: "admin", want: Pending},
		{name: "no session", st: State{}, role: "", want: Deny},
		{name: "any session", st: session("user", false), role: "", want: Allow},
		{name: "matching role", st: session("admin", false), role: "admin", want: Allow},
		{name: "wrong role", st: session("user", false), role: "admin", want: Deny},
		{name: "staff derives admin", st: session("", true), role: "admin", want: Allow},
		{name: "tokens without claims", st: State{Tokens: &TokenPair{}}, role: "", want: Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.st, tt.role); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManagerGuard(t *testing.T) {
	h := newHarness(t)
	m := h.manager(t)

	if got := m.Guard(""); got != Deny {
		t.Errorf("Guard() before login = %v, want deny", got)
	}
	h.login(t, m)
	if got := m.Guard(""); got != Allow {
		t.Errorf("Guard() after login = %v, want allow", got)
	}
	if got := m.Guard(claims.RoleAdmin); got != Deny {
		t.Errorf("Guard(admin) for a user = %v, want deny", got)
	}
}
