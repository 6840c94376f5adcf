// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "chainledger/cli/internal/errors"
)

// IssueTokens posts {username, password} to the token endpoint.
// 200 yields the pair; 401 is InvalidCredentials; anything else is AuthService.
func (h *HTTP) IssueTokens(ctx context.Context, creds Credentials) (string, string, error) {
	resp, err := h.doJSON(ctx, http.MethodPost, h.endpoints.Token, creds, "")
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.AuthService, "token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", "", statusError(apperrors.InvalidCredentials, "token endpoint rejected credentials", resp)
	default:
		return "", "", statusError(apperrors.AuthService, "token endpoint", resp)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", apperrors.Wrap(apperrors.AuthService, "decode token response", err)
	}
	access, refresh := extractAccessToken(result), extractRefreshToken(result)
	if access == "" || refresh == "" {
		return "", "", apperrors.New(apperrors.AuthService, "token response is missing access or refresh token")
	}
	return access, refresh, nil
}

// RefreshToken posts {refresh} to the refresh endpoint and returns a new access token
// and, when the issuer rotates it, a new refresh token.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	body := map[string]string{
		"refresh": refreshToken,
	}
	resp, err := h.doJSON(ctx, http.MethodPost, h.endpoints.Refresh, body, "")
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.AuthService, "refresh endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", statusError(apperrors.AuthService, "refresh rejected", resp)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", apperrors.Wrap(apperrors.AuthService, "decode refresh response", err)
	}

	newAccessToken := extractAccessToken(result)
	if newAccessToken == "" {
		return "", "", apperrors.New(apperrors.AuthService, "no access token in refresh response")
	}
	return newAccessToken, extractRefreshToken(result), nil
}

// extractAccessToken extracts the access token from the response payload.
// It tries multiple common field names to be resilient to different response formats.
func extractAccessToken(result map[string]any) string {
	for _, k := range []string{"access", "access_token", "accessToken", "token"} {
		if v, ok := result[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// extractRefreshToken extracts the refresh token from the response payload.
// Returns empty string if no refresh token is present (the issuer may not rotate it).
func extractRefreshToken(result map[string]any) string {
	for _, k := range []string{"refresh", "refresh_token", "refreshToken"} {
		if v, ok := result[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
