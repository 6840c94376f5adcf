package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// whoamiCmd shows the account behind the current session.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show current authenticated account",
	Long: `The whoami command displays the account read from the current access token:
subject, role, and when the token expires. It works offline; the claims are read
locally and are not verified against the server.`,

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

		fmt.Printf("👤 Current user: %s\n", st.Subject())
		if verbose {
			c := st.Claims
			rows := pterm.TableData{
				{"Role", c.Role()},
				{"User ID", c.AccountID()},
				{"Email", c.Email},
				{"Expires", formatExpiry(c.Expires(), time.Now())},
				{"Next refresh", formatExpiry(s.mgr.SchedulerStatus().FireAt, time.Now())},
			}
			return pterm.DefaultTable.WithData(rows).Render()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
