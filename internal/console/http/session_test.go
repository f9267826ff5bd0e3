package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/pkg/httpx"
)

func TestWhoAmIEndpoint(t *testing.T) {
	gate, signer := newTestGate(t)
	h := &SessionHandler{IdentityService: gate.Identity}
	handler := httpx.Chain(http.HandlerFunc(h.HandleWhoAmI),
		gate.RequireAPI(domain.RoleAdmin, domain.RoleClient))

	t.Run("echoes the resolved principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, signer, "client", "client-1", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp principalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "user-1", resp.UserID)
		require.Equal(t, "user@example.com", resp.Email)
		require.Equal(t, "client", resp.Role)
		require.Equal(t, "client-1", resp.ClientID)
		require.Greater(t, resp.ExpiresAt, time.Now().Unix())
	})

	t.Run("anonymous requests get 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
