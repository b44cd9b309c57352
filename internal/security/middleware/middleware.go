package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/calculadrink/platform/internal/security/audit"
	"github.com/calculadrink/platform/internal/security/auth"
	"github.com/calculadrink/platform/internal/security/ratelimit"
)

// ClaimsContextKey carries the validated session claims.
type ClaimsContextKey struct{}

// SessionVerifier checks whether a token's session version is still current.
// A nil verifier disables revocation checks.
type SessionVerifier interface {
	CurrentVersion(ctx context.Context, companyID string) (int64, error)
}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics" ||
		strings.HasPrefix(path, "/api/auth/")
}

// JWTMiddleware authenticates every non-public request. The websocket event
// feed cannot set headers, so it may carry the token in a query parameter.
func JWTMiddleware(tm *auth.TokenManager, sessions SessionVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				t, err := auth.ExtractToken(authHeader)
				if err != nil {
					http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
					return
				}
				tokenString = t
			} else if r.URL.Path == "/ws/events" {
				tokenString = r.URL.Query().Get("token")
			}

			if tokenString == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			if sessions != nil {
				current, err := sessions.CurrentVersion(r.Context(), claims.CompanyID)
				if err != nil {
					log.Error("session version check failed", slog.String("error", err.Error()))
				} else if claims.SessionVersion < current {
					http.Error(w, `{"error":"session revoked"}`, http.StatusUnauthorized)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MasterOnlyMiddleware gates the admin console and the event feed behind the
// platform master session.
func MasterOnlyMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/admin/") && r.URL.Path != "/ws/events" {
				next.ServeHTTP(w, r)
				return
			}

			claims := GetClaimsFromContext(r.Context())
			if claims == nil || !claims.Master {
				operator := ""
				if claims != nil {
					operator = claims.CompanyID
				}
				auditLog.LogDenied(r.Context(), operator, "admin console requires master account")
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies a strict per-address limit to the auth
// endpoints and the default per-company limit everywhere else.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/auth/") {
				if !limiter.AllowStrict(remoteAddr(r), 10, time.Minute) {
					log.Warn("auth rate limit exceeded", slog.String("addr", remoteAddr(r)))
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			companyID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				companyID = claims.CompanyID
			}

			if !limiter.Allow(companyID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records every mutating admin call before it executes.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/admin/") && r.Method != http.MethodGet {
				operator := ""
				if claims := GetClaimsFromContext(r.Context()); claims != nil {
					operator = claims.CompanyID
				}
				auditLog.LogAction(r.Context(), operator, strings.ToLower(r.Method), "admin", r.URL.Path, "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the session claims, or nil outside a session.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func remoteAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
