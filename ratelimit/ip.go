package ratelimit

import (
	"net"
	"strings"
)

// ClientIP resolves the caller address for IP-scoped keys: the first entry
// of the forwarded-for header if present, else the real-IP header, else the
// transport-level peer address with any port stripped.
func ClientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first := forwardedFor
		if idx := strings.IndexByte(forwardedFor, ','); idx >= 0 {
			first = forwardedFor[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP != "" {
		return strings.TrimSpace(realIP)
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
