// Package xdg resolves XDG Base Directory paths for chainledger.
// Directories are created with private permissions on first use, since both
// hold material tied to the user's session.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "chainledger"

// ConfigDir returns the config directory, falling back to ~/.config/chainledger
// when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the state directory, falling back to ~/.local/state/chainledger
// when XDG_STATE_HOME is unset. The file keyring backend stores its items here.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, homeRel string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
