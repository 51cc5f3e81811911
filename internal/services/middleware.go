package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"nailsxlauren/internal/metrics"

	"github.com/rs/zerolog"
	goahttp "goa.design/goa/v3/http"
)

// Gated path prefixes
const (
	AdminPagePrefix = "/adminpage"
	AdminAPIPrefix  = "/api/admin/"
	LoginPath       = "/api/admin/login"
	LogoutPath      = "/api/admin/logout"
)

type principalKey struct{}

// SessionVerifier resolves a session cookie value to an admin
type SessionVerifier interface {
	Verify(ctx context.Context, value string) (*Principal, error)
}

// SessionGate guards the admin page and admin API behind the session cookie
type SessionGate struct {
	verifier   SessionVerifier
	cookieName string
	log        zerolog.Logger
}

// NewSessionGate creates a session gate
func NewSessionGate(verifier SessionVerifier, cookieName string, log zerolog.Logger) *SessionGate {
	return &SessionGate{verifier: verifier, cookieName: cookieName, log: log}
}

// Middleware redirects unauthenticated page requests to "/" and answers
// unauthenticated admin API requests with 401. Other paths pass through.
func (g *SessionGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, api := gatedPath(r.URL.Path)
		if !page && !api {
			next.ServeHTTP(w, r)
			return
		}

		principal, ok := g.authenticate(r)
		if ok {
			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if page {
			metrics.RecordGateDenial("redirect")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		metrics.RecordGateDenial("unauthorized")
		enc := goahttp.ResponseEncoder(r.Context(), w)
		w.WriteHeader(http.StatusUnauthorized)
		_ = enc.Encode(map[string]string{"error": "Unauthorized"})
	})
}

// authenticate never surfaces verification errors; every failure is "no session".
func (g *SessionGate) authenticate(r *http.Request) (*Principal, bool) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	principal, err := g.verifier.Verify(r.Context(), cookie.Value)
	if err != nil || principal == nil {
		g.log.Debug().Err(err).Str("path", r.URL.Path).Msg("session rejected")
		return nil, false
	}
	return principal, true
}

// gatedPath reports whether path is an admin page or a protected admin API path.
func gatedPath(path string) (page, api bool) {
	if strings.HasPrefix(path, AdminPagePrefix) {
		return true, false
	}
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed == LoginPath || trimmed == LogoutPath {
		return false, false
	}
	if strings.HasPrefix(path, AdminAPIPrefix) || trimmed == strings.TrimSuffix(AdminAPIPrefix, "/") {
		return false, true
	}
	return false, false
}

// PrincipalFromContext returns the admin the gate let through
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// NewSessionCookie builds the admin session cookie
func NewSessionCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds a cookie that removes the admin session
func ClearSessionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
