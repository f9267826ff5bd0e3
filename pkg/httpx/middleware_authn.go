package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatforge/console/pkg/jwtx"
	"github.com/chatforge/console/pkg/slogx"
)

// SessionCookieName carries the session token for browser navigation where
// an Authorization header is unavailable.
const SessionCookieName = "console_session"

// AuthnMiddleware verifies the session token from the Authorization header
// or the session cookie and injects the principal into the request context.
// Requests without a valid token get a 401.
func AuthnMiddleware(v *jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := ExtractSessionToken(r)
			if raw == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("session token verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}

// ExtractSessionToken pulls the raw session token from the Authorization
// header, falling back to the session cookie.
func ExtractSessionToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ContextWithClaims injects the verified claims for downstream handlers.
func ContextWithClaims(ctx context.Context, c *jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClientID, c.ClientID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// ClaimsFromContext returns the verified session claims, if present.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	if c, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims); ok {
		return c
	}
	return nil
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
