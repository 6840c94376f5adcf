// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// securityBackend implements keychain operations using the macOS security command.
type securityBackend struct {
	log *slog.Logger
}

// newSecurityBackend creates a new macOS security command backend.
func newSecurityBackend(log *slog.Logger) (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{log: log.With("backend", "security")}, nil
}

// Set stores a key-value pair in the macOS keychain, replacing any existing item.
func (s *securityBackend) Set(key, value string) error {
	s.log.Debug("set item", "key", key, "length", len(value))

	// -U updates in place, so the item is never absent between delete and add
	cmd := exec.Command("security", "add-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w", value,
		"-U",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// Get retrieves a value from the macOS keychain.
func (s *securityBackend) Get(key string) (string, error) {
	cmd := exec.Command("security", "find-generic-password",
		"-a", ServiceName,
		"-s", key,
		"-w",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			s.log.Debug("item not found", "key", key)
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	result := strings.TrimSpace(stdout.String())
	s.log.Debug("get item", "key", key, "length", len(result))
	return result, nil
}

// Delete removes a key from the macOS keychain. Missing items are ignored.
func (s *securityBackend) Delete(key string) error {
	cmd := exec.Command("security", "delete-generic-password",
		"-a", ServiceName,
		"-s", key,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "could not be found") {
			return nil
		}
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
