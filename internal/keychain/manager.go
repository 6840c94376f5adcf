// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS keychain/credential store
// for chainledger secrets.
//
// Each secret lives in one named item. Writes replace the whole item in a single
// backend call, so a reader never sees half of a value. Supported backends are
// macOS Keychain (native `security` tool or the keyring library), Windows Credential
// Manager, Secret Service, pass, and an encrypted file store for headless hosts.
package keychain

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"chainledger/cli/internal/logging"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "chainledger"

// KeySessionTokens is the single slot holding the serialized access/refresh pair.
const KeySessionTokens = "session_tokens"

// ErrNotFound is returned by Get when the item does not exist.
var ErrNotFound = errors.New("keychain item not found")

// Backend names accepted by Options.Backend.
const (
	BackendAuto          = "auto"
	BackendKeychain      = "keychain"
	BackendWinCred       = "wincred"
	BackendSecretService = "secret-service"
	BackendPass          = "pass"
	BackendFile          = "file"
)

// keychainBackend defines the interface for native keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Options configures NewManager.
type Options struct {
	// Backend selects the storage backend; empty means BackendAuto.
	Backend string
	// FileDir is the directory for the file backend.
	FileDir string
	// FilePassword unlocks the file backend. Empty prompts on the terminal.
	FilePassword string
	Logger       *slog.Logger
}

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	log     *slog.Logger
}

// NewManager opens the keychain selected by opts.
func NewManager(opts Options) (*Manager, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("component", "keychain")

	backend := opts.Backend
	if backend == "" {
		backend = BackendAuto
	}

	// Native security tool first on macOS; fall through to the keyring library on failure.
	if runtime.GOOS == "darwin" && backend == BackendAuto {
		native, err := newSecurityBackend(log)
		if err == nil {
			return &Manager{backend: native, log: log}, nil
		}
		log.Debug("native security backend unavailable", "error", err)
	}

	ring, err := openRing(backend, opts)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring, log: log}, nil
}

// NewWithRing wraps an already opened keyring, e.g. keyring.NewArrayKeyring in tests.
func NewWithRing(ring keyring.Keyring, log *slog.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{ring: ring, log: log.With("component", "keychain")}
}

func allowedBackends(name string) ([]keyring.BackendType, error) {
	switch name {
	case BackendKeychain:
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case BackendWinCred:
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case BackendSecretService:
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case BackendPass:
		return []keyring.BackendType{keyring.PassBackend}, nil
	case BackendFile:
		return []keyring.BackendType{keyring.FileBackend}, nil
	case BackendAuto:
		switch runtime.GOOS {
		case "darwin":
			// pass is the fallback on macOS releases where the Keychain API is restricted
			return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}, nil
		case "windows":
			return []keyring.BackendType{keyring.WinCredBackend}, nil
		default:
			return []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend, keyring.FileBackend}, nil
		}
	default:
		return nil, fmt.Errorf("unknown keyring backend %q", name)
	}
}

// openRing opens the OS keyring restricted to the requested backends.
func openRing(name string, opts Options) (keyring.Keyring, error) {
	allowed, err := allowedBackends(name)
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		FileDir:         opts.FileDir,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	} else {
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass' (brew install pass gnupg && pass init <gpg-key-id>) or set keyring_backend to file")
		}
		return nil, fmt.Errorf("open keyring (%s): %w", name, err)
	}
	return ring, nil
}

// Set stores data under key, replacing any previous value.
func (m *Manager) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, string(data))
	}
	return m.ring.Set(keyring.Item{Key: key, Data: data, Label: ServiceName + " " + key})
}

// Get retrieves the value stored under key. Missing or empty items yield ErrNotFound.
func (m *Manager) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return nil, err
		}
		if v == "" {
			return nil, ErrNotFound
		}
		return []byte(v), nil
	}

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(it.Data) == 0 {
		return nil, ErrNotFound
	}
	return it.Data, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
