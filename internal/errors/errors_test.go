// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same kind",
			err:    New(InvalidCredentials, "bad password"),
			target: ErrInvalidCredentials,
			want:   true,
		},
		{
			name:   "different kind",
			err:    New(AuthService, "boom"),
			target: ErrInvalidCredentials,
			want:   false,
		},
		{
			name:   "wrapped with fmt",
			err:    fmt.Errorf("login: %w", WithStatus(AuthService, "token endpoint", 503)),
			target: ErrAuthService,
			want:   true,
		},
		{
			name:   "plain error",
			err:    io.EOF,
			target: ErrStorage,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stderrors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	err := Wrap(Storage, "read session slot", io.ErrUnexpectedEOF)
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected wrapped cause to be reachable")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{
			name: "message only",
			err:  New(NotAuthenticated, "no active session"),
			want: "not_authenticated: no active session",
		},
		{
			name: "with status",
			err:  WithStatus(AuthService, "refresh rejected", 401),
			want: "auth_service: refresh rejected (status 401)",
		},
		{
			name: "with cause",
			err:  Wrap(MalformedToken, "decode access token", io.EOF),
			want: "malformed_token: decode access token: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindAndStatusOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", WithStatus(AuthService, "profile update", 500))
	if got := KindOf(err); got != AuthService {
		t.Errorf("KindOf() = %q, want %q", got, AuthService)
	}
	if got := StatusOf(err); got != 500 {
		t.Errorf("StatusOf() = %d, want 500", got)
	}
	if got := KindOf(io.EOF); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
}
