// Package apiserver wires the HTTP/WebSocket surface onto a room
// dispatcher: connection accept, origin/IP rate limiting, and request
// metrics. Grounded on the teacher's internal/api package: a pure
// NewRouter(cfg) constructor with no side effects, a chi middleware
// stack (Recoverer, rate limiter, CORS) built before any route is
// registered, and GetClientIP's proxy-header handling.
package apiserver

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client address for rate-limiting purposes.
// X-Forwarded-For/X-Real-IP are only trusted when trustProxyHeaders is
// set — accepting them unconditionally lets any direct client spoof
// its own rate-limit identity by setting the header itself.
func GetClientIP(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx >= 0 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AllowedOrigins is the default CORS/WebSocket origin allow-list.
var AllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// IsAllowedOrigin reports whether origin may open a WebSocket connection
// or make a cross-origin request, matching the teacher's
// IsAllowedOrigin: exact list plus a localhost-any-port carve-out for
// local development.
func IsAllowedOrigin(origin string, extra []string) bool {
	if origin == "" {
		return false
	}
	for _, host := range []string{"http://localhost", "http://127.0.0.1"} {
		if origin == host || strings.HasPrefix(origin, host+":") {
			return true
		}
	}
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	for _, allowed := range extra {
		if origin == allowed {
			return true
		}
	}
	return false
}
