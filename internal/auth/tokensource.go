// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"

	"golang.org/x/oauth2"

	apperrors "chainledger/cli/internal/errors"
)

// TokenSource returns an oauth2.TokenSource backed by the session, for
// authenticating calls to domain APIs with oauth2.NewClient. A token inside the
// refresh window is refreshed first, sharing any refresh already in flight.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{m: m}
}

type sessionTokenSource struct {
	m *Manager
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	st := s.m.State()
	if !st.Authenticated() {
		return nil, apperrors.New(apperrors.NotAuthenticated, "no session")
	}

	exp := st.Claims.Expires()
	if !exp.IsZero() && !s.m.clk.Now().Before(exp.Add(-s.m.skew)) {
		ctx, cancel := context.WithTimeout(s.m.ctx, s.m.refreshTimeout)
		defer cancel()
		if err := s.m.refresh(ctx, triggerOnDemand); err != nil {
			return nil, err
		}
		st = s.m.State()
		if !st.Authenticated() {
			return nil, apperrors.New(apperrors.NotAuthenticated, "session ended during refresh")
		}
		exp = st.Claims.Expires()
	}

	return &oauth2.Token{
		AccessToken: st.Tokens.Access,
		TokenType:   "Bearer",
		Expiry:      exp,
	}, nil
}
