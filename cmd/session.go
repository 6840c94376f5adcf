// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atomicgo.dev/cursor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chainledger/cli/internal/auth"
)

var watchMetricsAddr string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect the running session",
}

// sessionWatchCmd keeps a manager alive so scheduled refreshes happen, and
// renders its state live until interrupted.
var sessionWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session alive and show its state live",
	Long: `The watch command keeps the session open in the foreground. The access token is
refreshed automatically shortly before it expires, and the status area shows
the account, the expiry and the next scheduled refresh. Press Ctrl+C to stop.

With --metrics-addr, session metrics are served in Prometheus format at
/metrics on that address.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		changes := make(chan auth.State, 16)
		s, err := openSession(cmd, sessionOptions{onChange: func(st auth.State) {
			select {
			case changes <- st:
			default:
			}
		}})
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if watchMetricsAddr != "" {
			srv := &http.Server{Addr: watchMetricsAddr, Handler: metricsMux(s), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("metrics server stopped", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			s.log.Info("serving metrics", "addr", watchMetricsAddr)
		}

		if !s.mgr.State().Authenticated() {
			printNotLoggedIn()
			return nil
		}

		cursor.Hide()
		defer cursor.Show()
		area, err := pterm.DefaultArea.WithRemoveWhenDone(false).Start()
		if err != nil {
			return err
		}
		defer func() { _ = area.Stop() }()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			st := s.mgr.State()
			area.Update(renderSessionStatus(st, s.mgr.SchedulerStatus(), time.Now()))
			if !st.Authenticated() {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
			case <-ticker.C:
			}
		}
	},
}

func metricsMux(s *session) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func renderSessionStatus(st auth.State, sched auth.SchedulerStatus, now time.Time) string {
	var b strings.Builder
	if !st.Authenticated() {
		b.WriteString(pterm.Yellow("● logged out"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(pterm.Green("● active"))
	fmt.Fprintf(&b, "  %s (%s)\n", pterm.Bold.Sprint(st.Subject()), st.Role())
	fmt.Fprintf(&b, "  access token expires  %s\n", formatExpiry(st.Claims.Expires(), now))
	switch sched.State {
	case auth.SchedulerArmed:
		fmt.Fprintf(&b, "  next refresh          %s\n", formatExpiry(sched.FireAt, now))
	default:
		fmt.Fprintf(&b, "  refresh               %s\n", sched.State)
	}
	b.WriteString(pterm.Gray("  Ctrl+C to stop"))
	return b.String()
}

func init() {
	sessionWatchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	sessionCmd.AddCommand(sessionWatchCmd)
	rootCmd.AddCommand(sessionCmd)
}
