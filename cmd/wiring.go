// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chainledger/cli/internal/auth"
	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/config"
	"chainledger/cli/internal/httperrors"
	"chainledger/cli/internal/keychain"
	"chainledger/cli/internal/logging"
	"chainledger/cli/internal/metrics"
	"chainledger/cli/internal/xdg"
)

// session bundles the configured collaborators a command works with.
type session struct {
	cfg      config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	mgr      *auth.Manager
}

// sessionOptions customizes openSession for commands that watch the session.
type sessionOptions struct {
	onChange func(auth.State)
}

// openSession loads configuration and builds the session manager, restoring
// any stored session. Callers must Close the returned session.
func openSession(cmd *cobra.Command, opts sessionOptions) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Println(logging.PresentError("Could not load configuration", err))
		return nil, reported(err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Format: cfg.LogFormat, Writer: cmd.ErrOrStderr()})

	fileDir := cfg.KeyringFileDir
	if fileDir == "" && cfg.KeyringBackend != keychain.BackendKeychain {
		if dir, err := xdg.StateDir(); err == nil {
			fileDir = dir
		}
	}
	km, err := keychain.NewManager(keychain.Options{
		Backend:      cfg.KeyringBackend,
		FileDir:      fileDir,
		FilePassword: cfg.KeyringPassword,
		Logger:       log,
	})
	if err != nil {
		pterm.Error.Println(logging.PresentError("Could not open the OS keychain", err))
		return nil, reported(err)
	}

	issuer := backend.New(cfg.IssuerURL, backend.Endpoints{
		Token:   cfg.TokenPath,
		Refresh: cfg.RefreshPath,
		Profile: cfg.ProfilePath,
	}, cfg.RequestTimeout(), userAgent())

	registry := prometheus.NewRegistry()
	mgr, err := auth.New(auth.Options{
		Store:          auth.NewKeychainStore(km, log),
		Issuer:         issuer,
		Logger:         log,
		Metrics:        metrics.New(registry, "chainledger"),
		Skew:           cfg.RefreshSkew(),
		MaxTimerDelay:  cfg.MaxTimerDelay(),
		RefreshTimeout: cfg.RequestTimeout(),
		OnChange:       opts.onChange,
		OnSessionEnded: logging.PresentSessionEnded,
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, log: log, registry: registry, mgr: mgr}, nil
}

func (s *session) Close() {
	_ = s.mgr.Close()
}

// issuerHost names the configured server in user-facing messages.
func (s *session) issuerHost() string {
	return httperrors.ExtractHostFromURL(s.cfg.IssuerURL)
}
