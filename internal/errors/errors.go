// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Session code returns *E values so callers can branch on the Kind (invalid
// credentials vs. an unreachable issuer) without string matching, while the
// wrapped cause is kept for logs.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MalformedToken indicates a token that is not a well-formed signed structure.
	MalformedToken Kind = "malformed_token"
	// InvalidCredentials indicates the issuer rejected the supplied username/password.
	InvalidCredentials Kind = "invalid_credentials"
	// AuthService indicates a network failure or unexpected issuer/profile status.
	AuthService Kind = "auth_service"
	// Storage indicates the persistent token slot could not be read or written.
	Storage Kind = "storage"
	// NotAuthenticated indicates an operation that needs a session was called without one.
	NotAuthenticated Kind = "not_authenticated"
	// Validation indicates caller input failed validation before any network call.
	Validation Kind = "validation"
)

// Sentinels for errors.Is checks. Matching is by Kind only.
var (
	ErrMalformedToken     = New(MalformedToken, "malformed token")
	ErrInvalidCredentials = New(InvalidCredentials, "invalid credentials")
	ErrAuthService        = New(AuthService, "auth service error")
	ErrStorage            = New(Storage, "storage error")
	ErrNotAuthenticated   = New(NotAuthenticated, "not authenticated")
	ErrValidation         = New(Validation, "validation failed")
)

// E wraps an error with kind and human-friendly message.
// Status carries the HTTP status for service errors; zero means no response was received.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *E) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same Kind.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithStatus builds a service error carrying the HTTP status that produced it.
func WithStatus(kind Kind, msg string, status int) *E {
	return &E{Kind: kind, Message: msg, Status: status}
}

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf returns the HTTP status recorded on err, or 0.
func StatusOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}
