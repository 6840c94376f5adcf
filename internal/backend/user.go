// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "chainledger/cli/internal/errors"
)

// UpdateProfile sends PATCH to the profile endpoint with Authorization: Bearer <token>.
// Any 2xx is success; the decoded body is the updated profile snapshot.
func (h *HTTP) UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (*Profile, error) {
	resp, err := h.doJSON(ctx, http.MethodPatch, h.endpoints.Profile, update, accessToken)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.AuthService, "profile endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(apperrors.AuthService, "profile update failed", resp)
	}

	var p Profile
	if resp.StatusCode == http.StatusNoContent {
		return &p, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperrors.Wrap(apperrors.AuthService, "decode profile response", err)
	}
	return &p, nil
}
