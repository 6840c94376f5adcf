// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/claims"
)

// Profile holds the user-facing account fields shown by the CLI.
type Profile = backend.Profile

// State is a snapshot of the session. Values handed out by the Manager are
// copies; mutating them has no effect on the Manager.
type State struct {
	Tokens  *TokenPair
	Claims  *claims.Claims
	Profile *Profile
	// Loading is true until the Manager has finished reading the stored session.
	Loading bool
}

// Authenticated reports whether a session is installed.
func (s State) Authenticated() bool {
	return s.Tokens != nil && s.Claims != nil
}

// Subject returns the claims subject, or "" without a session.
func (s State) Subject() string {
	if s.Claims == nil {
		return ""
	}
	return s.Claims.Subject()
}

// Role returns the claims role, or "" without a session.
func (s State) Role() string {
	if s.Claims == nil {
		return ""
	}
	return s.Claims.Role()
}

func (s State) clone() State {
	out := State{Loading: s.Loading}
	if s.Tokens != nil {
		t := *s.Tokens
		out.Tokens = &t
	}
	if s.Claims != nil {
		c := *s.Claims
		out.Claims = &c
	}
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return out
}

// profileFromClaims seeds the display profile from the access token.
func profileFromClaims(c *claims.Claims) *Profile {
	return &Profile{
		Username:  c.Username,
		Email:     c.Email,
		PublicKey: c.PublicKey,
		Currency:  c.Currency,
	}
}

// mergeProfile overlays the non-empty fields of update onto base.
func mergeProfile(base *Profile, update *Profile) *Profile {
	out := Profile{}
	if base != nil {
		out = *base
	}
	if update == nil {
		return &out
	}
	if update.Username != "" {
		out.Username = update.Username
	}
	if update.Email != "" {
		out.Email = update.Email
	}
	if update.PublicKey != "" {
		out.PublicKey = update.PublicKey
	}
	if update.Currency != 0 {
		out.Currency = update.Currency
	}
	return &out
}
