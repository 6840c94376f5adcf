// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	apperrors "chainledger/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatAuthError renders a session error for the terminal, choosing guidance by error kind.
func FormatAuthError(action string, err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder

	switch apperrors.KindOf(err) {
	case apperrors.InvalidCredentials:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Invalid credentials"))
		b.WriteString("\n\nThe username or password was not accepted. Your existing session, if any, is unchanged.\n")
	case apperrors.NotAuthenticated:
		b.WriteString(pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Not logged in"))
		b.WriteString("\n\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'chainledger login' first"))
		b.WriteString("\n")
	case apperrors.Validation:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Invalid input"))
		b.WriteString("\n\n")
		b.WriteString(Mask(err.Error()))
		b.WriteString("\n")
	case apperrors.AuthService:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("Could not %s", action))
		b.WriteString("\n\n")
		if status := apperrors.StatusOf(err); status != 0 {
			b.WriteString(fmt.Sprintf("The server answered with status %d.\n", status))
		} else {
			b.WriteString("The server could not be reached.\n")
		}
	default:
		b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("Could not %s", action))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}

// PresentAuthError prints FormatAuthError surrounded by blank lines.
func PresentAuthError(action string, err error) {
	pterm.Println()
	pterm.Println(FormatAuthError(action, err))
	pterm.Println()
}

// PresentSessionEnded tells the user a background refresh failed and the session is gone.
func PresentSessionEnded(reason error) {
	pterm.Warning.Println("Your session ended and you have been logged out.")
	if reason != nil {
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("Reason: " + Mask(reason.Error())))
	}
	pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'chainledger login' to sign in again"))
}
