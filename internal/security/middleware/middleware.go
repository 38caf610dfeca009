package middleware

import (
	"net"
	"net/http"
	"strings"

	"log/slog"

	"github.com/yourorg/toolshare/internal/security/audit"
	"github.com/yourorg/toolshare/internal/security/ratelimit"
)

// skipLimit exempts health, readiness, and metrics probes from rate limiting
func skipLimit(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

// RateLimitMiddleware applies the sliding-window limiter keyed by client IP
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipLimit(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(clientIP(r)) {
				log.Warn("rate limit exceeded",
					slog.String("path", r.URL.Path),
					slog.String("client", clientIP(r)),
				)
				http.Error(w, `{"success":false,"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating request before it is handled
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				auditLog.LogAction(r.Context(), strings.ToLower(r.Method), "api", r.URL.Path, "initiated", "")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller address, preferring X-Forwarded-For when a
// proxy sits in front
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
