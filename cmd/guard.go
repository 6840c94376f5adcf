package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"chainledger/cli/internal/auth"
)

var guardRole string

// guardCmd checks access for scripts: exit status 0 on allow, 1 otherwise.
var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Check whether the session may access a role-restricted area",
	Long: `The guard command applies the same access check the CLI uses before
role-restricted commands. It prints allow or deny and exits non-zero on deny,
so it can gate shell scripts:

  chainledger guard --role admin && ./admin-task.sh`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		<-s.mgr.Ready()
		d := s.mgr.Guard(guardRole)
		fmt.Println(d)
		if d != auth.Allow {
			return reported(fmt.Errorf("access %s", d))
		}
		return nil
	},
}

func init() {
	guardCmd.Flags().StringVar(&guardRole, "role", "", "Required role, e.g. admin (empty only requires a session)")
	rootCmd.AddCommand(guardCmd)
}
