package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/internal/console/store/drivers/sqlite"
	"github.com/chatforge/console/pkg/httpx"
	"github.com/chatforge/console/pkg/jwtx"
)

func newTestGate(t *testing.T) (*Gate, *jwtx.Signer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)

	identity := &service.IdentityService{
		Store:      st,
		Signer:     signer,
		Issuer:     "console-test",
		SessionTTL: time.Hour,
	}
	return &Gate{Verifier: signer.Verifier("console-test"), Identity: identity}, signer
}

func mintToken(t *testing.T, signer *jwtx.Signer, role, clientID string, ttl time.Duration) string {
	t.Helper()

	claims := jwtx.NewSessionClaims("user-1", "user@example.com", role, clientID,
		[]string{"pwd"}, ttl, "console-test", time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequirePage(t *testing.T) {
	gate, signer := newTestGate(t)
	handler := httpx.Chain(okHandler(), gate.RequirePage(domain.RoleAdmin))

	t.Run("anonymous visitors bounce to sign-in with the path preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=clients", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/signin?redirect=%2Fdashboard%3Ftab%3Dclients", rec.Header().Get("Location"))
	})

	t.Run("expired sessions count as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{
			Name:  httpx.SessionCookieName,
			Value: mintToken(t, signer, "admin", "", -time.Minute),
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), SignInPath+"?redirect=")
	})

	t.Run("the wrong role lands on its own home", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{
			Name:  httpx.SessionCookieName,
			Value: mintToken(t, signer, "client", "client-1", time.Hour),
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, ClientHome, rec.Header().Get("Location"))
	})

	t.Run("the right role passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{
			Name:  httpx.SessionCookieName,
			Value: mintToken(t, signer, "admin", "", time.Hour),
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAPI(t *testing.T) {
	gate, signer := newTestGate(t)

	var seenRole domain.Role
	var seenClientID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRole = callerRole(r.Context())
		seenClientID = callerClientID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := httpx.Chain(inner, gate.RequireAPI(domain.RoleAdmin))

	t.Run("anonymous requests get 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("a tampered token gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signer, "admin", "", time.Hour)+"x")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("the wrong role gets 403", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signer, "client", "client-1", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("an unresolvable role gets 403", func(t *testing.T) {
		// Valid signature, but the role claim is empty and no store record
		// backs the subject: the chain ends at deny.
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signer, "", "", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("an allowed role reaches the handler with its binding", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signer, "admin", "", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, domain.RoleAdmin, seenRole)
		require.Empty(t, seenClientID)
	})
}

func TestGateHoldsPasswordChangeSessions(t *testing.T) {
	gate, signer := newTestGate(t)

	claims := jwtx.NewSessionClaims("user-1", "user@example.com", "client", "client-1",
		[]string{"pwd"}, time.Hour, "console-test", time.Now().UTC())
	claims.PasswordChangeRequired = true
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	t.Run("api routes refuse until the password is changed", func(t *testing.T) {
		handler := httpx.Chain(okHandler(), gate.RequireAPI(domain.RoleAdmin, domain.RoleClient))
		req := httptest.NewRequest(http.MethodGet, "/v1/clients/client-1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "password_change_required")
	})

	t.Run("pages bounce back to sign-in", func(t *testing.T) {
		handler := httpx.Chain(okHandler(), gate.RequirePage(domain.RoleClient))
		req := httptest.NewRequest(http.MethodGet, "/client/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, SignInPath, rec.Header().Get("Location"))
	})
}

func TestCanAccessClient(t *testing.T) {
	t.Parallel()

	base := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	t.Run("admins may act on any account", func(t *testing.T) {
		ctx := withResolvedRole(base, domain.RoleAdmin, "")
		require.True(t, canAccessClient(ctx, "client-1"))
	})

	t.Run("clients only on their own", func(t *testing.T) {
		ctx := withResolvedRole(base, domain.RoleClient, "client-1")
		require.True(t, canAccessClient(ctx, "client-1"))
		require.False(t, canAccessClient(ctx, "client-2"))
		require.False(t, canAccessClient(ctx, ""))
	})

	t.Run("anonymous never", func(t *testing.T) {
		require.False(t, canAccessClient(base, "client-1"))
	})
}
