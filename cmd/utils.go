package cmd

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/soundseeker/seekerctl/internal/types"
)

// resolveServerURL turns a host:port or URL into a base URL. Bare loopback
// targets default to http, anything else to https.
func resolveServerURL(target string) (string, error) {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "://") {
		u, err := url.Parse(target)
		if err != nil {
			return "", fmt.Errorf("invalid server %q: %v", target, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported scheme %q (use http or https)", u.Scheme)
		}
		if u.Host == "" {
			return "", fmt.Errorf("invalid server %q: missing host", target)
		}
		return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimRight(u.Path, "/")), nil
	}

	scheme := "https"
	if isLoopbackHost(hostnameFromTarget(target)) {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, strings.TrimRight(target, "/")), nil
}

func hostnameFromTarget(target string) string {
	if host, _, err := net.SplitHostPort(target); err == nil {
		return host
	}
	return target
}

func isLoopbackHost(host string) bool {
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func printEntries(w io.Writer, entries []types.LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(w, e.String())
	}
}

// firstError returns the first ERROR entry, if any.
func firstError(entries []types.LogEntry) (types.LogEntry, bool) {
	for _, e := range entries {
		if e.Level == types.LevelError {
			return e, true
		}
	}
	return types.LogEntry{}, false
}
