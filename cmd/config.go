// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chainledger/cli/internal/config"
	"chainledger/cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `The show command prints the configuration after defaults, config.json, .env
and CHAINLEDGER_* environment variables have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			pterm.Error.Println(logging.PresentError("Could not load configuration", err))
			return reported(err)
		}
		rows := pterm.TableData{
			{"Key", "Value"},
			{"issuer_url", cfg.IssuerURL},
			{"token_path", cfg.TokenPath},
			{"refresh_path", cfg.RefreshPath},
			{"profile_path", cfg.ProfilePath},
			{"refresh_skew_seconds", strconv.Itoa(cfg.RefreshSkewSeconds)},
			{"max_timer_delay_seconds", strconv.Itoa(cfg.MaxTimerDelaySeconds)},
			{"request_timeout_seconds", strconv.Itoa(cfg.RequestTimeoutSeconds)},
			{"log_level", cfg.LogLevel},
			{"log_format", cfg.LogFormat},
			{"keyring_backend", cfg.KeyringBackend},
			{"keyring_file_dir", cfg.KeyringFileDir},
			{"keyring password set", yesNo(cfg.KeyringPassword != "")},
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in config.json",
	Long: `The set command validates and writes one setting to config.json in the user
config directory. The keyring password is never written to disk; provide it with
CHAINLEDGER_KEYRING_PASSWORD instead. Environment overrides that are active
while it runs are not written to the file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Stored()
		if err != nil {
			pterm.Error.Println(logging.PresentError("Could not load configuration", err))
			return reported(err)
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			pterm.Error.Println(logging.PresentError("Could not save configuration", err))
			return reported(err)
		}
		pterm.Success.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
