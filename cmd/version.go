// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

// userAgent identifies the CLI to the issuer and ledger APIs.
func userAgent() string {
	return fmt.Sprintf("chainledger-cli/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

func printVersion() {
	fmt.Printf("chainledger %s %s/%s\n", Version, runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
