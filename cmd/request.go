// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	apperrors "chainledger/cli/internal/errors"
)

var (
	requestMethod string
	requestData   string
)

// requestCmd calls a ledger API path with the session's bearer token.
var requestCmd = &cobra.Command{
	Use:   "request <path>",
	Short: "Call a ledger API endpoint with your session",
	Long: `The request command sends an HTTP request to a path on the ledger service,
authenticated with the current access token. A token close to expiry is
refreshed before the request is sent.

  chainledger request /api/blockchain/chain/
  chainledger request /api/transactions/ --method POST --data '{"amount": 5}'`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, sessionOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		if !s.mgr.State().Authenticated() {
			printNotLoggedIn()
			return reported(apperrors.ErrNotAuthenticated)
		}

		ctx := cmd.Context()
		var body io.Reader
		if requestData != "" {
			body = strings.NewReader(requestData)
		}
		target := strings.TrimRight(s.cfg.IssuerURL, "/") + "/" + strings.TrimLeft(args[0], "/")
		req, err := http.NewRequestWithContext(ctx, strings.ToUpper(requestMethod), target, body)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		client := oauth2.NewClient(ctx, s.mgr.TokenSource())
		client.Timeout = s.cfg.RequestTimeout()
		resp, err := client.Do(req)
		if err != nil {
			return reportError("call "+args[0], s.issuerHost(), err)
		}
		defer resp.Body.Close()

		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			pterm.Error.Printf("%s %s: %s\n", req.Method, args[0], resp.Status)
		} else {
			pterm.Debug.Printf("%s %s: %s\n", req.Method, args[0], resp.Status)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", "  "); err == nil {
			out = pretty.Bytes()
		}
		fmt.Println(string(out))
		if resp.StatusCode >= 400 {
			return reported(fmt.Errorf("server answered %s", resp.Status))
		}
		return nil
	},
}

func init() {
	requestCmd.Flags().StringVarP(&requestMethod, "method", "X", http.MethodGet, "HTTP method")
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
	rootCmd.AddCommand(requestCmd)
}
