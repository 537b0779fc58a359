// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures of the datastore and completion
// endpoints into short troubleshooting text.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Cause is the detected reason of a network failure.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseTimeout
	CauseDNS
	CauseRefused
	CauseTLS
	CauseServer
)

// Classify detects why a connection failed.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseUnknown
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseRefused
	case isSSLError(err):
		return CauseTLS
	case isServerError(err.Error()):
		return CauseServer
	}
	return CauseUnknown
}

// FormatNetworkError renders a troubleshooting message for a failure that
// happened while doing action against host.
func FormatNetworkError(err error, action, host string) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	line := func(s string) { b.WriteString(s + "\n") }

	switch Classify(err) {
	case CauseTimeout:
		line(fmt.Sprintf("⏱️  Connection timeout while %s", action))
		line("")
		line(fmt.Sprintf("%s took too long to respond. This could mean:", host))
		line("  • Slow network connection")
		line("  • The server is under heavy load")
		line("  • A firewall is silently dropping the connection")
	case CauseDNS:
		line(fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action))
		line("")
		line("Please check:")
		line("  • The host name in DATAORCH_DB_HOST")
		line("  • Your DNS settings")
	case CauseRefused:
		line(fmt.Sprintf("🚫 Connection refused while %s", action))
		line("")
		line(fmt.Sprintf("%s is not accepting connections. This could mean:", host))
		line("  • The server is not running")
		line("  • Wrong port in the endpoint")
		line("  • A firewall is blocking the connection")
	case CauseTLS:
		line(fmt.Sprintf("🔒 Secure connection failed while %s", action))
		line("")
		line("Cannot establish a TLS connection. Try:")
		line("  • ws:// instead of wss:// for a local server")
		line("  • Checking your system date and time")
		line("  • Checking proxy settings")
	case CauseServer:
		line(fmt.Sprintf("⚠️  Server error while %s", action))
		line("")
		line(fmt.Sprintf("%s reported an internal error. Please try again in a few minutes.", host))
	default:
		line(fmt.Sprintf("❌ Cannot reach %s while %s", host, action))
		line("")
		line("Please check:")
		line("  • Your network connection")
		line("  • Whether the endpoint is accessible from your network")
	}

	details := err.Error()
	if len(details) > 160 {
		details = details[:160] + "..."
	}
	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + details))
	return b.String()
}

// isTimeoutError checks if the error is a timeout error.
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
	if errors.As(err, &dnsErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such host")
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
		strings.Contains(errStr, "certificate")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	return strings.Contains(lower, "500 internal") ||
		strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "504") ||
		strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the server"
	}
	return u.Host
}
