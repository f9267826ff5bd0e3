package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/jwtx"
)

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	admin := seedUser(t, st, "admin@example.com", "admin password", "", domain.RoleAdmin)

	t.Run("valid credentials issue a session", func(t *testing.T) {
		sess, err := svc.SignIn(ctx, "admin@example.com", "admin password", "")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, sess.Role)
		require.Equal(t, admin.ID, sess.User.ID)
		require.NotEmpty(t, sess.Token)
		require.True(t, sess.ExpiresAt.After(time.Now()))

		claims, err := signer.Verifier("console-test").Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, admin.ID, claims.Subject)
		require.Equal(t, "admin", claims.Role)
		require.Equal(t, []string{"pwd"}, claims.AMR)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "admin@example.com", "not the password", "")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("unknown email rejected with the same error", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@example.com", "whatever", "")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("empty credentials rejected", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "", "", "")
		require.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestSignInRoleResolutionChain(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")

	t.Run("contact email match falls back to the client role", func(t *testing.T) {
		// No user_roles record, but the email matches the client account.
		seedUser(t, st, "owner@acme.example", "legacy password", client.ID, domain.RoleNone)

		sess, err := svc.SignIn(ctx, "owner@acme.example", "legacy password", "")
		require.NoError(t, err)
		require.Equal(t, domain.RoleClient, sess.Role)
		require.Equal(t, client.ID, sess.ClientID)
	})

	t.Run("no resolvable role denies the session", func(t *testing.T) {
		seedUser(t, st, "stray@example.com", "some password", "", domain.RoleNone)

		_, err := svc.SignIn(ctx, "stray@example.com", "some password", "")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("deleted client accounts stop matching by email", func(t *testing.T) {
		gone := seedClient(t, st, "Gone Corp", "gone@example.com")
		seedUser(t, st, "gone@example.com", "some password", gone.ID, domain.RoleNone)

		now := time.Now().UTC()
		require.NoError(t, st.Clients().ScheduleDeletion(ctx, gone.ID, now, now.Add(time.Hour)))

		_, err := svc.SignIn(ctx, "gone@example.com", "some password", "")
		require.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestSignInWithMFA(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	user := seedUser(t, st, "admin@example.com", "admin password", "", domain.RoleAdmin)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "console-test", AccountName: user.Email})
	require.NoError(t, err)
	require.NoError(t, st.Users().UpdateMFASecret(ctx, user.ID, key.Secret()))
	require.NoError(t, st.Users().EnableMFA(ctx, user.ID))

	t.Run("password alone is not enough", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "admin@example.com", "admin password", "")
		require.ErrorIs(t, err, ErrMFARequired)
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "admin@example.com", "admin password", "000000")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("valid code completes sign-in with otp in amr", func(t *testing.T) {
		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		sess, err := svc.SignIn(ctx, "admin@example.com", "admin password", code)
		require.NoError(t, err)

		claims, err := signer.Verifier("console-test").Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, []string{"pwd", "otp"}, claims.AMR)
	})
}

func TestSignInWithTemporaryPassphrase(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")

	hash, err := cryptox.HashPassword("temp passphrase")
	require.NoError(t, err)
	now := time.Now().UTC()
	user := domain.User{
		ID:                     idx.New().String(),
		Email:                  "owner@acme.example",
		PasswordHash:           hash,
		ClientID:               client.ID,
		PasswordChangeRequired: true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	require.NoError(t, st.Users().UpsertRoleRecord(ctx, domain.RoleRecord{
		UserID:   user.ID,
		Role:     domain.RoleClient,
		ClientID: client.ID,
	}))

	sess, err := svc.SignIn(ctx, "owner@acme.example", "temp passphrase", "")
	require.NoError(t, err)
	require.True(t, sess.User.PasswordChangeRequired)

	claims, err := signer.Verifier("console-test").Verify(sess.Token)
	require.NoError(t, err)
	require.True(t, claims.PasswordChangeRequired)

	t.Run("the mark clears once the password is changed", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "temp passphrase", "a real password"))

		sess, err := svc.SignIn(ctx, "owner@acme.example", "a real password", "")
		require.NoError(t, err)

		claims, err := signer.Verifier("console-test").Verify(sess.Token)
		require.NoError(t, err)
		require.False(t, claims.PasswordChangeRequired)
	})
}

func TestResolveRole(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	t.Run("nil claims resolve to no role", func(t *testing.T) {
		role, clientID := svc.ResolveRole(ctx, nil)
		require.Equal(t, domain.RoleNone, role)
		require.Empty(t, clientID)
	})

	t.Run("a valid role claim wins without a store lookup", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("ghost", "ghost@example.com", "admin", "",
			[]string{"pwd"}, time.Hour, "console-test", time.Now().UTC())

		role, _ := svc.ResolveRole(ctx, &claims)
		require.Equal(t, domain.RoleAdmin, role)
	})

	t.Run("a client binding resolves without a role claim", func(t *testing.T) {
		// Older tokens may carry only the client binding; that alone
		// identifies the principal as that client, no store lookup.
		claims := jwtx.NewSessionClaims("ghost", "ghost@example.com", "", "client-42",
			[]string{"pwd"}, time.Hour, "console-test", time.Now().UTC())

		role, clientID := svc.ResolveRole(ctx, &claims)
		require.Equal(t, domain.RoleClient, role)
		require.Equal(t, "client-42", clientID)
	})

	t.Run("unknown role claim falls through to the store and denies", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("ghost", "ghost@example.com", "superuser", "",
			[]string{"pwd"}, time.Hour, "console-test", time.Now().UTC())

		role, _ := svc.ResolveRole(ctx, &claims)
		require.Equal(t, domain.RoleNone, role)
	})

	t.Run("empty role claim resolves from the role record", func(t *testing.T) {
		client := seedClient(t, st, "Acme Pty Ltd", "owner@acme.example")
		user := seedUser(t, st, "owner@acme.example", "pw", client.ID, domain.RoleClient)

		claims := jwtx.NewSessionClaims(user.ID, user.Email, "", "",
			[]string{"pwd"}, time.Hour, "console-test", time.Now().UTC())

		role, clientID := svc.ResolveRole(ctx, &claims)
		require.Equal(t, domain.RoleClient, role)
		require.Equal(t, client.ID, clientID)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	signer, err := jwtx.NewSigner("test-1")
	require.NoError(t, err)
	svc := &IdentityService{Store: st, Signer: signer, Issuer: "console-test", SessionTTL: time.Hour}

	user := seedUser(t, st, "admin@example.com", "old password", "", domain.RoleAdmin)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "not the password", "new password")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("empty new password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "old password", "")
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("change takes effect and clears the forced-change flag", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "old password", "new password"))

		stored, err := st.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.False(t, stored.PasswordChangeRequired)

		_, err = svc.SignIn(ctx, "admin@example.com", "old password", "")
		require.ErrorIs(t, err, ErrBadCredentials)

		sess, err := svc.SignIn(ctx, "admin@example.com", "new password", "")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, sess.Role)
	})
}
