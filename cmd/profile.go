// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/terminal"
)

var (
	profileUsername       string
	profileEmail          string
	profileChangePassword bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your account profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile of the current account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		st := s.mgr.State()
		if !st.Authenticated() {
			printNotLoggedIn()
			return nil
		}
		p := st.Profile
		rows := pterm.TableData{
			{"Username", p.Username},
			{"Email", p.Email},
			{"Public key", p.PublicKey},
			{"Balance", strconv.FormatFloat(p.Currency, 'f', -1, 64)},
			{"Role", st.Role()},
		}
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change username, email or password",
	Long: `The update command sends a partial profile change to the server. Only the
fields you pass are changed.

Changing the password ends the current session once the server accepts the
change; log in again with the new password afterwards.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		update := backend.ProfileUpdate{Username: profileUsername, Email: profileEmail}
		if profileChangePassword {
			pw, err := readNewPassword()
			if err != nil {
				return err
			}
			update.Password = pw
		}

		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		stopSpinner := startInlineSpinner(os.Stdout, "Updating profile", spinnerFrames, 120*time.Millisecond)
		p, err := s.mgr.UpdateProfile(cmd.Context(), update)
		stopSpinner()
		if err != nil {
			return reportError("update the profile", s.issuerHost(), err)
		}

		if update.ChangesCredentials() {
			pterm.Success.Println("Password changed.")
			fmt.Println("You have been logged out. Run 'chainledger login' with the new password.")
			return nil
		}
		pterm.Success.Printf("Profile updated for %s\n", p.Username)
		return nil
	},
}

func readNewPassword() (string, error) {
	r := bufio.NewReader(os.Stdin)
	first, err := terminal.ReadSecret(r, "New password: ")
	if err != nil {
		return "", err
	}
	second, err := terminal.ReadSecret(r, "Repeat new password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileUsername, "username", "", "New username")
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "New email address")
	profileUpdateCmd.Flags().BoolVar(&profileChangePassword, "password", false, "Prompt for a new password")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
