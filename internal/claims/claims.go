// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package claims decodes the payload of an access token into a structured claim set.
//
// Decoding is structural only. Signatures are NOT verified: the issuer owns key
// material and verification, and the client reads claims purely to drive display
// and routing decisions. Never use these claims for a security decision on a server.
package claims

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "chainledger/cli/internal/errors"
)

// Roles derived from the access token.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims is the claim set carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID    any     `json:"user_id,omitempty"`
	Username  string  `json:"username,omitempty"`
	Email     string  `json:"email,omitempty"`
	UserRole  string  `json:"role,omitempty"`
	IsStaff   bool    `json:"is_staff,omitempty"`
	PublicKey string  `json:"public_key,omitempty"`
	Currency  float64 `json:"currency,omitempty"`
}

// Subject returns the subject claim, falling back to username and then user id.
func (c *Claims) Subject() string {
	if c.RegisteredClaims.Subject != "" {
		return c.RegisteredClaims.Subject
	}
	if c.Username != "" {
		return c.Username
	}
	return c.userIDString()
}

// AccountID returns the user id as a string. Issuers emit it as either a number or a string.
func (c *Claims) AccountID() string {
	return c.userIDString()
}

func (c *Claims) userIDString() string {
	switch v := c.UserID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Role returns the explicit role claim, or admin/user derived from is_staff.
func (c *Claims) Role() string {
	if c.UserRole != "" {
		return c.UserRole
	}
	if c.IsStaff {
		return RoleAdmin
	}
	return RoleUser
}

// Expires returns the expiration time, or the zero time when the token carries none.
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued-at time, or the zero time.
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiredAt reports whether the token is expired at now. Tokens without exp never expire.
func (c *Claims) ExpiredAt(now time.Time) bool {
	exp := c.Expires()
	return !exp.IsZero() && !now.Before(exp)
}

var parser = jwt.NewParser()

// Decode parses token into Claims without verifying its signature.
// An empty token yields (nil, nil) so callers can probe optimistically.
func Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var c Claims
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return nil, apperrors.Wrap(apperrors.MalformedToken, "decode token", err)
	}
	return &c, nil
}
