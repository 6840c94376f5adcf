// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package claims

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "chainledger/cli/internal/errors"
)

func mint(t *testing.T, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("issuer-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestDecodeEmptyTokenYieldsNoClaims(t *testing.T) {
	for _, in := range []string{"", "   "} {
		c, err := Decode(in)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", in, err)
		}
		if c != nil {
			t.Fatalf("Decode(%q) = %+v, want nil", in, c)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	tests := []struct {
		name  string
		token string
	}{
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "abc.def"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "payload not base64", token: header + ".!!!.sig"},
		{name: "payload not json", token: header + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(tt.token)
			if err == nil {
				t.Fatalf("expected error, got claims %+v", c)
			}
			if !errors.Is(err, apperrors.ErrMalformedToken) {
				t.Errorf("error kind = %q, want %q", apperrors.KindOf(err), apperrors.MalformedToken)
			}
		})
	}
}

func TestDecodeIgnoresSignatureAndExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := mint(t, jwt.MapClaims{
		"sub":      "alice",
		"username": "alice",
		"exp":      exp.Unix(),
	})
	// Corrupt the signature: decoding must not care.
	token = token[:len(token)-4] + "AAAA"

	c, err := Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := c.Expires(); !got.Equal(exp) {
		t.Errorf("Expires() = %v, want %v", got, exp)
	}
	if !c.ExpiredAt(time.Now()) {
		t.Error("ExpiredAt(now) = false, want true")
	}
}

func TestDecodeFields(t *testing.T) {
	tests := []struct {
		name        string
		claims      jwt.MapClaims
		wantSubject string
		wantRole    string
		wantID      string
	}{
		{
			name:        "explicit role",
			claims:      jwt.MapClaims{"sub": "alice", "role": "user", "user_id": "u-1"},
			wantSubject: "alice",
			wantRole:    RoleUser,
			wantID:      "u-1",
		},
		{
			name:        "staff maps to admin",
			claims:      jwt.MapClaims{"username": "bob", "is_staff": true, "user_id": 42},
			wantSubject: "bob",
			wantRole:    RoleAdmin,
			wantID:      "42",
		},
		{
			name:        "default user role and numeric id subject",
			claims:      jwt.MapClaims{"user_id": 7},
			wantSubject: "7",
			wantRole:    RoleUser,
			wantID:      "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(mint(t, tt.claims))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got := c.Subject(); got != tt.wantSubject {
				t.Errorf("Subject() = %q, want %q", got, tt.wantSubject)
			}
			if got := c.Role(); got != tt.wantRole {
				t.Errorf("Role() = %q, want %q", got, tt.wantRole)
			}
			if got := c.AccountID(); got != tt.wantID {
				t.Errorf("AccountID() = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestDomainFields(t *testing.T) {
	c, err := Decode(mint(t, jwt.MapClaims{
		"sub":        "alice",
		"public_key": "-----BEGIN PUBLIC KEY-----abc",
		"currency":   125.5,
		"email":      "alice@example.com",
	}))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if c.PublicKey != "-----BEGIN PUBLIC KEY-----abc" {
		t.Errorf("PublicKey = %q", c.PublicKey)
	}
	if c.Currency != 125.5 {
		t.Errorf("Currency = %v, want 125.5", c.Currency)
	}
	if c.Email != "alice@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if !c.Expires().IsZero() || c.ExpiredAt(time.Now()) {
		t.Error("token without exp must not report an expiry")
	}
}
