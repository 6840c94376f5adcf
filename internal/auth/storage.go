// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"

	apperrors "chainledger/cli/internal/errors"
	"chainledger/cli/internal/keychain"
	"chainledger/cli/internal/logging"
)

// TokenPair is the access/refresh pair issued together by the token endpoint.
// It is persisted and replaced as a unit.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (p TokenPair) complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// TokenStore is the durable home of the session. It is the only session state
// that survives a process restart.
type TokenStore interface {
	// Load returns the stored pair, or nil when there is none or it cannot be used.
	Load() (*TokenPair, error)
	// Save replaces the stored pair in one write.
	Save(pair TokenPair) error
	// Clear removes the stored pair. Clearing an empty store is not an error.
	Clear() error
}

// KeychainStore keeps the pair as one JSON item in the OS keychain.
type KeychainStore struct {
	km  *keychain.Manager
	key string
	log *slog.Logger
}

// NewKeychainStore returns a store using the session_tokens slot of km.
func NewKeychainStore(km *keychain.Manager, log *slog.Logger) *KeychainStore {
	if log == nil {
		log = logging.Discard()
	}
	return &KeychainStore{km: km, key: keychain.KeySessionTokens, log: log.With("component", "token_store")}
}

// Load reads the stored pair. Missing, empty, malformed or half-populated items
// all read as "no session" with a nil error; only a backend read failure is
// returned, as a Storage error.
func (s *KeychainStore) Load() (*TokenPair, error) {
	data, err := s.km.Get(s.key)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			s.log.Debug("no stored session")
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.Storage, "read stored session", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		s.log.Warn("stored session is not valid JSON, ignoring it", "bytes", len(data), "error", err)
		return nil, nil
	}
	if !pair.complete() {
		s.log.Warn("stored session is missing a token, ignoring it",
			"has_access", pair.Access != "", "has_refresh", pair.Refresh != "")
		return nil, nil
	}
	return &pair, nil
}

// Save writes the whole pair as a single keychain item.
func (s *KeychainStore) Save(pair TokenPair) error {
	if !pair.complete() {
		return apperrors.New(apperrors.Storage, "refusing to store an incomplete token pair")
	}
	b, err := json.Marshal(pair)
	if err != nil {
		return apperrors.Wrap(apperrors.Storage, "encode session", err)
	}
	if err := s.km.Set(s.key, b); err != nil {
		return apperrors.Wrap(apperrors.Storage, "write session", err)
	}
	return nil
}

// Clear removes the stored pair.
func (s *KeychainStore) Clear() error {
	if err := s.km.Remove(s.key); err != nil {
		return apperrors.Wrap(apperrors.Storage, "clear session", err)
	}
	return nil
}
