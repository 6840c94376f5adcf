// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend is the client for the token issuer and the profile endpoint.
// It defines the API contract the session manager depends on and an HTTP
// implementation of it. Callers receive *errors.E values: InvalidCredentials for
// a rejected login, AuthService for everything else that is not a success.
package backend

import "context"

// Credentials are exchanged for a token pair at the token endpoint.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is a partial profile change. Empty fields are not sent.
type ProfileUpdate struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=150"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// ChangesCredentials reports whether the update replaces the password.
func (u ProfileUpdate) ChangesCredentials() bool {
	return u.Password != ""
}

// Profile is the user-facing snapshot returned by the profile endpoint.
type Profile struct {
	Username  string  `json:"username,omitempty"`
	Email     string  `json:"email,omitempty"`
	PublicKey string  `json:"public_key,omitempty"`
	Currency  float64 `json:"currency,omitempty"`
}

// API defines issuer operations the session manager depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// IssueTokens exchanges credentials for an access/refresh pair.
	IssueTokens(ctx context.Context, creds Credentials) (accessToken string, refreshToken string, err error)
	// RefreshToken exchanges a refresh token for a new access token.
	// The returned refresh token is empty when the issuer does not rotate it.
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, newRefreshToken string, err error)
	// UpdateProfile applies a partial profile change on behalf of accessToken.
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*Profile, error)
}
