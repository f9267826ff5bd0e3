package http

import (
	"net/http"
	"net/url"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/pkg/httpx"
	"github.com/chatforge/console/pkg/jwtx"
)

// Role landing pages.
const (
	AdminHome  = "/dashboard"
	ClientHome = "/client/dashboard"
	SignInPath = "/signin"
)

// Gate enforces role-based access. Page routes get browser redirects; API
// routes get JSON errors. An unresolvable role is always a deny.
type Gate struct {
	Verifier *jwtx.Verifier
	Identity *service.IdentityService
}

// resolve authenticates the request and walks the role-resolution chain.
// Returns RoleNone for anonymous requests and for principals with no role.
func (g *Gate) resolve(r *http.Request) (*jwtx.Claims, domain.Role, string) {
	raw := httpx.ExtractSessionToken(r)
	if raw == "" {
		return nil, domain.RoleNone, ""
	}
	claims, err := g.Verifier.Verify(raw)
	if err != nil {
		return nil, domain.RoleNone, ""
	}
	if err := claims.ValidateExpiry(); err != nil {
		return nil, domain.RoleNone, ""
	}
	role, clientID := g.Identity.ResolveRole(r.Context(), claims)
	return claims, role, clientID
}

// RequirePage gates a browser route. Anonymous visitors are sent to the
// sign-in page with the original path preserved; signed-in visitors with
// the wrong role land on their own home instead.
func (g *Gate) RequirePage(allowed ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, role, clientID := g.resolve(r)
			if claims == nil || role == domain.RoleNone {
				target := SignInPath + "?redirect=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			if claims.PasswordChangeRequired {
				// Temporary-passphrase sessions go back through sign-in,
				// where the password-change step is presented.
				http.Redirect(w, r, SignInPath, http.StatusSeeOther)
				return
			}
			if !roleAllowed(role, allowed) {
				http.Redirect(w, r, roleHome(role), http.StatusSeeOther)
				return
			}
			ctx := httpx.ContextWithClaims(r.Context(), claims)
			ctx = withResolvedRole(ctx, role, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPI gates a JSON route: 401 for anonymous, 403 for wrong role.
func (g *Gate) RequireAPI(allowed ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, role, clientID := g.resolve(r)
			if claims == nil {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}
			if claims.PasswordChangeRequired {
				// The password-change endpoint itself sits outside the gate,
				// so the session can still complete the forced change.
				httpx.WriteError(w, http.StatusForbidden, "password_change_required",
					"Set a new password before using the console")
				return
			}
			if role == domain.RoleNone || !roleAllowed(role, allowed) {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "Insufficient role")
				return
			}
			ctx := httpx.ContextWithClaims(r.Context(), claims)
			ctx = withResolvedRole(ctx, role, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func roleHome(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return AdminHome
	case domain.RoleClient:
		return ClientHome
	default:
		return SignInPath
	}
}
