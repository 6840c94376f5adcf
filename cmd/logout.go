// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd ends the session and removes the stored tokens.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session tokens",
	Long: `The logout command ends the current session: the scheduled refresh is cancelled
and the access and refresh tokens are removed from the OS keychain.

Running it without a session is harmless.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		s.mgr.Logout()
		fmt.Println("✅ Session tokens have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
