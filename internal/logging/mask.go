// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging builds the CLI's structured logger and keeps secrets out of
// anything it prints.
//
// Tokens, passwords and refresh credentials must never reach a log line or an
// error shown to the user. Mask redacts them from free text; TokenFingerprint
// gives a stable, non-reversible handle for correlating a token across log lines.
package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var (
	rePassword = regexp.MustCompile(`(?i)("?password"?\s*[=:]\s*"?)([^\s";,}]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reJSONTok  = regexp.MustCompile(`(?i)("(?:access|refresh)(?:_token)?"\s*:\s*")([^"]+)`)
	reJWT      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONTok.ReplaceAllString(out, "$1***")
	out = reJWT.ReplaceAllString(out, "***")
	return out
}

// TokenFingerprint returns the first 12 hex chars of the token's SHA-256, or "" for an empty token.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:12]
}
