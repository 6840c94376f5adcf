// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"

	apperrors "chainledger/cli/internal/errors"
	"chainledger/cli/internal/keychain"
)

func TestKeychainStoreRoundTrip(t *testing.T) {
	s := newTestStore()

	if p, err := s.Load(); p != nil || err != nil {
		t.Fatalf("Load() on empty store = %+v, %v", p, err)
	}
	if err := s.Save(TokenPair{Access: "A1", Refresh: "R1"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(TokenPair{Access: "A2", Refresh: "R2"}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	p, err := s.Load()
	if err != nil || p == nil || *p != (TokenPair{Access: "A2", Refresh: "R2"}) {
		t.Fatalf("Load() = %+v, %v", p, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() on empty store error = %v", err)
	}
	if p, _ := s.Load(); p != nil {
		t.Errorf("Load() after Clear = %+v", p)
	}
}

func TestKeychainStoreRefusesIncompletePair(t *testing.T) {
	s := newTestStore()
	err := s.Save(TokenPair{Access: "A1"})
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("Save() error = %v, want Storage", err)
	}
}

// lockedRing fails reads with an error other than "not found".
type lockedRing struct {
	keyring.Keyring
}

func (lockedRing) Get(string) (keyring.Item, error) {
	return keyring.Item{}, errors.New("user interaction is not allowed")
}

func TestKeychainStoreReadFailure(t *testing.T) {
	s := NewKeychainStore(keychain.NewWithRing(lockedRing{keyring.NewArrayKeyring(nil)}, nil), nil)
	p, err := s.Load()
	if p != nil {
		t.Errorf("Load() = %+v, want nil", p)
	}
	if !errors.Is(err, apperrors.ErrStorage) {
		t.Errorf("Load() error = %v, want Storage", err)
	}
}
