package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"chainledger/cli/internal/httperrors"
	"chainledger/cli/internal/logging"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner shows rotating frames followed by text on a single line of w
// until the returned stop function is called. Stopping clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// reportError prints a session failure: transport problems get a network
// diagnosis, everything else the kind-specific auth message. action is an
// infinitive such as "log in".
func reportError(action, host string, err error) error {
	if httperrors.IsNetworkError(err) {
		return reported(httperrors.FormatNetworkError(err, "trying to "+action, host))
	}
	logging.PresentAuthError(action, err)
	return reported(err)
}

func printNotLoggedIn() {
	fmt.Println("🔒 You're not logged in yet!")
	fmt.Println("   Run 'chainledger login' to get started.")
}

func formatExpiry(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	left := t.Sub(now).Round(time.Second)
	if left <= 0 {
		return fmt.Sprintf("%s (expired)", t.Local().Format(time.RFC1123))
	}
	return fmt.Sprintf("%s (in %s)", t.Local().Format(time.RFC1123), left)
}

func yesNo(b bool) string {
	if b {
		return pterm.Green("yes")
	}
	return pterm.Red("no")
}
