package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/mail"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/internal/console/store/drivers/sqlite"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/httpx"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/jwtx"
)

func newSetupHandler(t *testing.T) (*SetupHandler, store.Store, string) {
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
	invitations := &service.InvitationService{
		Store:   st,
		Mailer:  mail.Noop{},
		BaseURL: "https://console.example",
	}

	handler := &SetupHandler{
		InvitationService: invitations,
		IdentityService:   identity,
		Sessions:          &SessionHandler{IdentityService: identity},
	}

	// Seed a client and a pending invitation with a known token.
	now := time.Now().UTC()
	client := domain.ClientAccount{
		ID:           idx.New().String(),
		Name:         "Acme",
		ContactEmail: "owner@acme.example",
		AgentSlug:    "acme",
		Widget:       domain.DefaultWidgetConfig(),
		Status:       domain.ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Clients().CreateClient(context.Background(), client))

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		ClientID:  client.ID,
		Email:     "owner@acme.example",
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}))

	return handler, st, token
}

func TestSetupVerifyEndpoint(t *testing.T) {
	handler, _, token := newSetupHandler(t)

	t.Run("valid token returns the invitation email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/setup?token="+token, nil)
		rec := httptest.NewRecorder()
		handler.HandleVerify(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp setupVerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "owner@acme.example", resp.Email)
		require.NotEmpty(t, resp.ClientID)
	})

	t.Run("bad token gets a uniform 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/setup?token=garbage", nil)
		rec := httptest.NewRecorder()
		handler.HandleVerify(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSetupRedeemEndpoint(t *testing.T) {
	handler, st, token := newSetupHandler(t)

	body := `{"token":"` + token + `","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/setup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleRedeem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "client", resp.Role)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, ClientHome, resp.RedirectTo)

	t.Run("the session cookie is set", func(t *testing.T) {
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, httpx.SessionCookieName, cookies[0].Name)
		require.Equal(t, resp.Token, cookies[0].Value)
		require.True(t, cookies[0].HttpOnly)
	})

	t.Run("the account exists with the client role", func(t *testing.T) {
		user, err := st.Users().GetUserByEmail(context.Background(), "owner@acme.example")
		require.NoError(t, err)

		rec, err := st.Users().GetRoleRecord(context.Background(), user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleClient, rec.Role)
	})

	t.Run("redeeming again with the wrong password is a 404", func(t *testing.T) {
		body := `{"token":"` + token + `","password":"guessed"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/setup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleRedeem(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
