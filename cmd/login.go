// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"chainledger/cli/internal/backend"
	"chainledger/cli/internal/terminal"
)

var (
	loginUsername string
	loginForce    bool
)

// loginCmd exchanges a username and password for a session.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in with your username and password",
	Long: `The login command exchanges your username and password for an access/refresh
token pair and stores it in the OS keychain. The password is read without echo
when stdin is a terminal, or as one line from stdin when piped.

If you are already logged in, the command reports the current account unless
--force is given. A failed login never ends an existing session.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if st := s.mgr.State(); st.Authenticated() && !loginForce {
			fmt.Printf("Already logged in as %s\n", st.Subject())
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		username := loginUsername
		if username == "" {
			promptText := "Username: "
			username, err = terminal.Prompt(reader, promptText)
			if err != nil {
				return err
			}
			terminal.ClearPreviousLines(len(promptText) + len(username))
		}
		password, err := terminal.ReadSecret(reader, "Password: ")
		if err != nil {
			return err
		}

		stopSpinner := startInlineSpinner(os.Stdout, "Signing in", spinnerFrames, 120*time.Millisecond)
		err = s.mgr.Login(cmd.Context(), backend.Credentials{Username: username, Password: password})
		stopSpinner()
		if err != nil {
			return reportError("log in", s.issuerHost(), err)
		}

		st := s.mgr.State()
		fmt.Println(getRandomLoginGreeting(st.Subject()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Sign in again even when a session exists")
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"💫 Successfully authenticated as %s",
		"⚡ Logged in as %s - let's go!",
		"🔓 Access granted! Welcome %s!",
	}
	return fmt.Sprintf(greetings[rand.IntN(len(greetings))], identifier)
}
