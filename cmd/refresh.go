// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	apperrors "chainledger/cli/internal/errors"
)

// refreshCmd exchanges the refresh token for a new pair right away.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the session tokens now",
	Long: `The refresh command exchanges the stored refresh token for a new access token
immediately instead of waiting for the scheduled refresh.

If the server rejects the refresh token the session is ended and you need to
log in again; there is no retry.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		stopSpinner := startInlineSpinner(os.Stdout, "Refreshing session", spinnerFrames, 120*time.Millisecond)
		err = s.mgr.Refresh(cmd.Context())
		stopSpinner()

		switch {
		case errors.Is(err, apperrors.ErrNotAuthenticated):
			printNotLoggedIn()
			return reported(err)
		case err != nil && sessionEndedNoticeShown(err, s.mgr.State().Authenticated()):
			return reported(err)
		case err != nil:
			return reportError("refresh the session", s.issuerHost(), err)
		}

		st := s.mgr.State()
		if !st.Authenticated() {
			printNotLoggedIn()
			return nil
		}
		fmt.Printf("✅ Session refreshed, access token now expires %s\n", formatExpiry(st.Claims.Expires(), time.Now()))
		return nil
	},
}

// sessionEndedNoticeShown reports whether a failed refresh already ended the
// session, in which case OnSessionEnded has told the user.
func sessionEndedNoticeShown(err error, authenticated bool) bool {
	return apperrors.KindOf(err) == apperrors.AuthService && !authenticated
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
