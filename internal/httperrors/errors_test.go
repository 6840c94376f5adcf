// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	apperrors "chainledger/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: CategoryNone},
		{name: "deadline", err: fmt.Errorf("refresh: %w", context.DeadlineExceeded), want: CategoryTimeout},
		{name: "dns", err: &url.Error{Op: "Post", URL: "https://x", Err: &net.DNSError{Err: "no such host", Name: "x"}}, want: CategoryDNS},
		{name: "refused", err: apperrors.Wrap(apperrors.AuthService, "token endpoint unreachable", refused), want: CategoryRefused},
		{name: "tls", err: errors.New("x509: certificate signed by unknown authority"), want: CategoryTLS},
		{name: "5xx status", err: apperrors.WithStatus(apperrors.AuthService, "token endpoint", 502), want: CategoryServer},
		{name: "4xx status", err: apperrors.WithStatus(apperrors.InvalidCredentials, "rejected", 401), want: CategoryNone},
		{name: "plain error", err: errors.New("boom"), want: CategoryNone},
		{name: "other url error", err: &url.Error{Op: "Get", URL: "https://x", Err: errors.New("EOF")}, want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatNetworkErrorWraps(t *testing.T) {
	cause := context.DeadlineExceeded
	err := FormatNetworkError(cause, "logging in", "ledger.example.com")
	if !errors.Is(err, cause) {
		t.Errorf("FormatNetworkError() = %v, want wrapping %v", err, cause)
	}
	if FormatNetworkError(nil, "x", "y") != nil {
		t.Error("FormatNetworkError(nil) != nil")
	}
}

func TestExtractHostFromURL(t *testing.T) {
	tests := map[string]string{
		"https://ledger.example.com/api": "ledger.example.com",
		"http://localhost:8000":          "localhost:8000",
		"not a url":                      "server",
	}
	for in, want := range tests {
		if got := ExtractHostFromURL(in); got != want {
			t.Errorf("ExtractHostFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
