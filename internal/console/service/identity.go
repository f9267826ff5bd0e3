package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/jwtx"
	"github.com/chatforge/console/pkg/slogx"
)

var (
	// ErrBadCredentials covers unknown email, wrong password and bad TOTP
	// codes alike so the sign-in form never confirms which part failed.
	ErrBadCredentials = errors.New("invalid email or password")

	// ErrMFARequired is returned when the password checked out but a TOTP
	// code is needed to finish sign-in.
	ErrMFARequired = errors.New("one-time code required")
)

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	User      domain.User
	Role      domain.Role
	ClientID  string
	ExpiresAt time.Time
}

// IdentityService authenticates users, resolves their role and mints
// session tokens.
type IdentityService struct {
	Store      store.Store
	Signer     *jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

func (s *IdentityService) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.SessionTTL
}

// SignIn verifies the credentials and returns a signed session. Accounts
// with MFA enabled must supply a current TOTP code.
func (s *IdentityService) SignIn(ctx context.Context, email, password, otpCode string) (Session, error) {
	log := slogx.FromContext(ctx)

	if email == "" || password == "" {
		return Session{}, ErrBadCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so unknown emails are not distinguishable
			// by latency.
			_ = cryptox.VerifyPassword(password, burnHash)
			return Session{}, ErrBadCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("sign-in with wrong password", slog.String("user_id", user.ID))
		return Session{}, ErrBadCredentials
	}

	amr := []string{"pwd"}
	if user.MFAEnabled != nil {
		if otpCode == "" {
			return Session{}, ErrMFARequired
		}
		if user.MFASecret == nil || !totp.Validate(otpCode, *user.MFASecret) {
			log.Warn("sign-in with invalid otp code", slog.String("user_id", user.ID))
			return Session{}, ErrBadCredentials
		}
		amr = append(amr, "otp")
	}

	return s.issueSession(ctx, user, amr)
}

func (s *IdentityService) issueSession(ctx context.Context, user domain.User, amr []string) (Session, error) {
	log := slogx.FromContext(ctx)

	role, clientID := s.resolveFromStore(ctx, user)
	if role == domain.RoleNone {
		// An account with no resolvable role gets no session at all.
		log.Warn("sign-in by user with no resolvable role", slog.String("user_id", user.ID))
		return Session{}, ErrBadCredentials
	}

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(
		user.ID, user.Email, string(role), clientID,
		amr, s.sessionTTL(), s.Issuer, now,
	)
	// Temporary-passphrase sessions are marked so the gates hold them at the
	// password-change step until a real password is set.
	claims.PasswordChangeRequired = user.PasswordChangeRequired

	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("session issued",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)

	return Session{
		Token:     token,
		User:      user,
		Role:      role,
		ClientID:  clientID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SessionForUser issues a session for an already-authenticated user, e.g.
// straight after invitation redemption.
func (s *IdentityService) SessionForUser(ctx context.Context, user domain.User) (Session, error) {
	return s.issueSession(ctx, user, []string{"pwd"})
}

// ResolveRole walks the resolution chain for a request principal:
//
//  1. a valid role claim in the session token wins,
//  2. otherwise a client_id claim identifies the principal as that client,
//  3. otherwise the user_roles record,
//  4. otherwise an email match against a client account's contact email,
//  5. otherwise no role, which every gate treats as deny.
func (s *IdentityService) ResolveRole(ctx context.Context, claims *jwtx.Claims) (domain.Role, string) {
	if claims == nil {
		return domain.RoleNone, ""
	}

	if role := domain.ParseRole(claims.Role); role != domain.RoleNone {
		return role, claims.ClientID
	}
	if claims.ClientID != "" {
		return domain.RoleClient, claims.ClientID
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		return domain.RoleNone, ""
	}
	return s.resolveFromStore(ctx, user)
}

func (s *IdentityService) resolveFromStore(ctx context.Context, user domain.User) (domain.Role, string) {
	rec, err := s.Store.Users().GetRoleRecord(ctx, user.ID)
	if err == nil && rec.Role != domain.RoleNone {
		return rec.Role, rec.ClientID
	}

	// Legacy accounts may predate user_roles; a contact-email match still
	// identifies them as the client principal.
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return domain.RoleNone, ""
	}
	for _, c := range clients {
		if !c.Deleted() && c.ContactEmail == user.Email {
			return domain.RoleClient, c.ID
		}
	}

	return domain.RoleNone, ""
}

// ChangePassword verifies the current password and replaces it. It also
// clears the password_change_required flag set by admin provisioning.
func (s *IdentityService) ChangePassword(ctx context.Context, userID, current, next string) error {
	log := slogx.FromContext(ctx)

	if next == "" {
		return ErrInvalidRequest
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBadCredentials
		}
		return err
	}
	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrBadCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		log.Error("failed to update password hash", slog.Any("error", err))
		return err
	}

	log.Info("password changed", slog.String("user_id", userID))
	return nil
}

// burnHash is a valid argon2id encoding used to equalize timing on unknown
// emails. The underlying password is random and thrown away.
const burnHash = "$argon2id$v=19$m=65536,t=3,p=4$AAAAAAAAAAAAAAAAAAAAAA$Z2t1bXF3ZXJ0eXVpb3Bhc2RmZ2hqa2x6eGN2Ym5t"
