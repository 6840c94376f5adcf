// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Chainledger CLI.
// It implements subcommands for signing in, inspecting and refreshing the
// session, updating the profile, and calling ledger APIs with the session's
// bearer token, using the Cobra CLI framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	verbose     bool
)

// errReported marks an error whose explanation was already printed.
var errReported = errors.New("reported")

// reported wraps err so Execute exits non-zero without printing it again.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "chainledger",
	Short:         "Chainledger CLI for the token-authenticated ledger service",
	Long:          `Chainledger signs you in to the ledger service, keeps the session fresh in the background, and calls ledger APIs on your behalf.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion()
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Interrupts cancel the command context.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
