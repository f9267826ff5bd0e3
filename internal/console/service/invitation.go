package service

import (
	"context"
	"errors"
	"log/slog"
	netmail "net/mail"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/mail"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/slogx"
)

var (
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvitationInvalid deliberately covers unknown, expired and
	// already-used tokens alike so the setup endpoint never leaks which
	// case applied.
	ErrInvitationInvalid = errors.New("invitation link is invalid or has expired")

	ErrEmailTaken = errors.New("email already has an account")
)

// validEmail accepts only a bare RFC 5322 address, no display name. Checked
// before anything is stored or mailed.
func validEmail(s string) bool {
	addr, err := netmail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// DefaultInviteTTL is the invitation lifetime when none is configured.
const DefaultInviteTTL = 168 * time.Hour // 7 days

// InvitationService owns the account-setup token lifecycle: issue, resend,
// verify and redeem.
type InvitationService struct {
	Store    store.Store
	Mailer   mail.Mailer
	Activity *ActivityService
	BaseURL  string // console base URL used to build setup links
	TTL      time.Duration
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInviteTTL
	}
	return s.TTL
}

// Issue creates a pending invitation for the client's contact email and
// sends the setup link. A mail failure does not fail the operation: the
// invitation stays valid with notified_at unset and can be resent.
func (s *InvitationService) Issue(ctx context.Context, clientID, email string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	if clientID == "" || !validEmail(email) {
		return domain.Invitation{}, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation requested for unknown client",
				slog.String("client_id", clientID),
			)
			return domain.Invitation{}, ErrInvalidRequest
		}
		log.Error("failed to fetch client", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	if client.Deleted() {
		log.Warn("invitation requested for client scheduled for deletion",
			slog.String("client_id", clientID),
		)
		return domain.Invitation{}, ErrInvalidRequest
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate setup token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		TokenHash: cryptox.FingerprintToken(token),
		ClientID:  clientID,
		Email:     email,
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation",
			slog.String("client_id", clientID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	s.deliver(ctx, &inv, client, token)

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    clientID,
		Kind:        domain.ActivityInvitationSent,
		Description: "Setup invitation sent",
		Metadata:    domain.ActivityMetadata{InvitationID: inv.ID, Email: email},
	})

	log.Info("invitation issued",
		slog.String("invitation_id", inv.ID),
		slog.String("client_id", clientID),
		slog.Bool("notified", inv.NotifiedAt != nil),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return inv, nil
}

// Resend rotates the token on a pending invitation and emails a fresh setup
// link. The old link stops working immediately.
func (s *InvitationService) Resend(ctx context.Context, invitationID string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationInvalid
		}
		log.Error("failed to fetch invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}
	if inv.Status != domain.InvitationStatusPending {
		return domain.Invitation{}, ErrInvitationInvalid
	}

	client, err := s.Store.Clients().GetClientByID(ctx, inv.ClientID)
	if err != nil {
		log.Error("failed to fetch client for resend", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate setup token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv.TokenHash = cryptox.FingerprintToken(token)
	inv.ExpiresAt = time.Now().UTC().Add(s.ttl())
	inv.NotifiedAt = nil

	if err := s.Store.Invitations().RotateToken(ctx, inv.ID, inv.TokenHash, inv.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationInvalid
		}
		log.Error("failed to rotate invitation token",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return domain.Invitation{}, err
	}

	s.deliver(ctx, &inv, client, token)

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    inv.ClientID,
		Kind:        domain.ActivityInvitationSent,
		Description: "Setup invitation resent",
		Metadata:    domain.ActivityMetadata{InvitationID: inv.ID, Email: inv.Email},
	})

	log.Info("invitation resent",
		slog.String("invitation_id", inv.ID),
		slog.Bool("notified", inv.NotifiedAt != nil),
	)

	return inv, nil
}

// deliver emails the setup link and stamps notified_at on success. Failure
// only logs: the invitation stays redeemable and resendable.
func (s *InvitationService) deliver(ctx context.Context, inv *domain.Invitation, client domain.ClientAccount, token string) {
	log := slogx.FromContext(ctx)

	subject, htmlBody, textBody, err := mail.RenderInvitation(mail.InvitationData{
		ClientName: client.DisplayName(),
		SetupURL:   s.BaseURL + "/setup?token=" + token,
		ExpiresAt:  inv.ExpiresAt,
	})
	if err != nil {
		log.Error("failed to render invitation email", slog.Any("error", err))
		return
	}

	if err := s.Mailer.Send(ctx, []string{inv.Email}, subject, htmlBody, textBody); err != nil {
		log.Warn("invitation email delivery failed, invitation left unnotified",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return
	}

	now := time.Now().UTC()
	if err := s.Store.Invitations().MarkNotified(ctx, inv.ID, now); err != nil {
		log.Error("failed to stamp notified_at",
			slog.String("invitation_id", inv.ID),
			slog.Any("error", err),
		)
		return
	}
	inv.NotifiedAt = &now
}

// Verify checks a setup token without consuming it, for the setup page to
// render the form or a rejection. All failure modes collapse into
// ErrInvitationInvalid.
func (s *InvitationService) Verify(ctx context.Context, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrInvitationInvalid
	}

	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationInvalid
		}
		return domain.Invitation{}, err
	}
	if !inv.Redeemable(time.Now().UTC()) {
		return domain.Invitation{}, ErrInvitationInvalid
	}
	return inv, nil
}

// Redeem consumes a setup token and provisions the client user. The
// conditional claim decides the winner under concurrent redemption; the
// user and role record are created in the same transaction so a lost race
// never leaves a consumed token without an account.
//
// A redeem against an already-accepted invitation falls back to verifying
// the supplied password against the provisioned account, so double-clicking
// the emailed link behaves like a sign-in instead of an error.
func (s *InvitationService) Redeem(ctx context.Context, token, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" || password == "" {
		return domain.User{}, ErrInvalidRequest
	}

	fingerprint := cryptox.FingerprintToken(token)
	now := time.Now().UTC()

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().ClaimInvitation(ctx, fingerprint, now)
		if err != nil {
			return err
		}

		user = domain.User{
			ID:           idx.New().String(),
			Email:        inv.Email,
			PasswordHash: passwordHash,
			ClientID:     inv.ClientID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}

		return tx.Users().UpsertRoleRecord(ctx, domain.RoleRecord{
			UserID:   user.ID,
			Role:     domain.RoleClient,
			ClientID: inv.ClientID,
		})
	})

	switch {
	case err == nil:
		log.Info("invitation redeemed",
			slog.String("user_id", user.ID),
			slog.String("client_id", user.ClientID),
		)
		return user, nil

	case errors.Is(err, store.ErrNotFound):
		return s.redeemAsSignIn(ctx, fingerprint, password)

	case errors.Is(err, store.ErrAlreadyExists):
		log.Warn("invitation redeemed for an email that already has an account")
		return domain.User{}, ErrEmailTaken

	default:
		log.Error("failed to redeem invitation", slog.Any("error", err))
		return domain.User{}, err
	}
}

// redeemAsSignIn handles the losing side of a double redemption: if the
// invitation was already accepted and the password matches the provisioned
// account, the caller gets signed in rather than rejected.
func (s *InvitationService) redeemAsSignIn(ctx context.Context, fingerprint, password string) (domain.User, error) {
	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, fingerprint)
	if err != nil {
		return domain.User{}, ErrInvitationInvalid
	}
	if inv.Status != domain.InvitationStatusAccepted {
		return domain.User{}, ErrInvitationInvalid
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, inv.Email)
	if err != nil {
		return domain.User{}, ErrInvitationInvalid
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvitationInvalid
	}
	return user, nil
}

// ListByClient returns a client's invitations, newest first.
func (s *InvitationService) ListByClient(ctx context.Context, clientID string) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListInvitationsByClient(ctx, clientID)
}

// ProvisionWithTemporaryPassword is the admin alternative to the invitation
// flow: the account is created immediately with a generated passphrase that
// must be changed on first sign-in.
func (s *InvitationService) ProvisionWithTemporaryPassword(ctx context.Context, clientID, email string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if clientID == "" || !validEmail(email) {
		return domain.User{}, ErrInvalidRequest
	}

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidRequest
		}
		return domain.User{}, err
	}

	passphrase, err := cryptox.GeneratePassphrase()
	if err != nil {
		log.Error("failed to generate passphrase", slog.Any("error", err))
		return domain.User{}, err
	}
	passwordHash, err := cryptox.HashPassword(passphrase)
	if err != nil {
		log.Error("failed to hash passphrase", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:                     idx.New().String(),
		Email:                  email,
		PasswordHash:           passwordHash,
		ClientID:               clientID,
		PasswordChangeRequired: true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Users().UpsertRoleRecord(ctx, domain.RoleRecord{
			UserID:   user.ID,
			Role:     domain.RoleClient,
			ClientID: clientID,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		log.Error("failed to provision user", slog.Any("error", err))
		return domain.User{}, err
	}

	subject, htmlBody, textBody, err := mail.RenderPassphrase(mail.PassphraseData{
		ClientName: client.DisplayName(),
		SignInURL:  s.BaseURL + "/signin",
		Passphrase: passphrase,
	})
	if err == nil {
		err = s.Mailer.Send(ctx, []string{email}, subject, htmlBody, textBody)
	}
	if err != nil {
		log.Warn("temporary passphrase email delivery failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	log.Info("user provisioned with temporary passphrase",
		slog.String("user_id", user.ID),
		slog.String("client_id", clientID),
	)

	return user, nil
}
