// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for failed round trips
// to the issuer and ledger APIs.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	apperrors "chainledger/cli/internal/errors"
)

// Category classifies a transport failure.
type Category int

const (
	CategoryNone Category = iota
	CategoryTimeout
	CategoryDNS
	CategoryRefused
	CategoryTLS
	CategoryServer
	CategoryOther
)

// Classify inspects err and its chain. Service errors that carry an HTTP status
// below 500, and session errors other than AuthService, are CategoryNone: the
// caller should report those as they are.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}
	if status := apperrors.StatusOf(err); status != 0 {
		if status >= 500 {
			return CategoryServer
		}
		return CategoryNone
	}
	switch apperrors.KindOf(err) {
	case "", apperrors.AuthService:
	default:
		return CategoryNone
	}
	switch {
	case isTimeoutError(err):
		return CategoryTimeout
	case isDNSError(err):
		return CategoryDNS
	case isConnectionRefusedError(err):
		return CategoryRefused
	case isSSLError(err):
		return CategoryTLS
	case isServerError(err.Error()):
		return CategoryServer
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return CategoryOther
	}
	return CategoryNone
}

// IsNetworkError reports whether err is a transport failure worth diagnosing
// with FormatNetworkError.
func IsNetworkError(err error) bool {
	return Classify(err) != CategoryNone
}

// FormatNetworkError prints a diagnosis of err for the user and returns it
// wrapped. action describes what was being attempted ("trying to log in") and host
// names the server.
func FormatNetworkError(err error, action, host string) error {
	if err == nil {
		return nil
	}

	switch Classify(err) {
	case CategoryTimeout:
		showTimeoutError(action)
	case CategoryDNS:
		showDNSError(action, host)
	case CategoryRefused:
		showConnectionRefusedError(action, host)
	case CategoryTLS:
		showSSLError(action)
	case CategoryServer:
		showServerError(action, host)
	default:
		showGenericError(action, host, err.Error())
	}

	return fmt.Errorf("network error: %w", err)
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	return strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout")
}

func showTimeoutError(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The server took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • Server is under heavy load")
	pterm.Println("  • request_timeout_seconds is set too low")
	pterm.Println()
	pterm.Println("Please try again in a few moments.")
	pterm.Println()
}

func showDNSError(action, host string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", action)
	pterm.Println()
	pterm.Printf("Unable to look up %s. Please check:\n", host)
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • issuer_url is spelled correctly (chainledger config show)")
	pterm.Println("  • No DNS-level blocking (corporate firewall, VPN)")
	pterm.Println()
}

func showConnectionRefusedError(action, host string) {
	pterm.Printf("🚫 Connection refused while %s\n", action)
	pterm.Println()
	pterm.Printf("%s is not accepting connections. This could mean:\n", host)
	pterm.Println("  • The ledger service is not running")
	pterm.Println("  • Wrong server address or port in issuer_url")
	pterm.Println("  • Firewall is blocking the connection")
	pterm.Println()
}

func showSSLError(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. This could mean:")
	pterm.Println("  • SSL/TLS certificate issue")
	pterm.Println("  • Network proxy interfering with HTTPS")
	pterm.Println("  • System clock is incorrect")
	pterm.Println()
}

func showServerError(action, host string) {
	pterm.Printf("⚠️  Server error while %s\n", action)
	pterm.Println()
	pterm.Printf("%s encountered an internal error.\n", host)
	pterm.Println("This is not a problem with your setup. Please try again in a few minutes.")
	pterm.Println()
}

func showGenericError(action, host, errDetails string) {
	pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • Firewall settings that might block the request")
	pterm.Println()

	if errDetails != "" {
		shortErr := errDetails
		if len(shortErr) > 100 {
			shortErr = shortErr[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", shortErr)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
