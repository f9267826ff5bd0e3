package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pquerna/otp/totp"

	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/slogx"
)

var (
	ErrMFAAlreadyEnabled = errors.New("mfa is already enabled")
	ErrMFANotEnrolled    = errors.New("no pending mfa enrollment")
	ErrMFACodeInvalid    = errors.New("one-time code did not verify")
)

// Enrollment is the secret material handed to the authenticator app.
type Enrollment struct {
	Secret     string
	ProvingURL string // otpauth:// URL for QR rendering
}

// MFAService manages optional TOTP enrollment for console accounts.
type MFAService struct {
	Store  store.Store
	Issuer string
}

// BeginEnrollment generates a TOTP secret and stores it unconfirmed. MFA
// only switches on once ConfirmEnrollment sees a valid code, so a lost QR
// cannot lock the account.
func (s *MFAService) BeginEnrollment(ctx context.Context, userID string) (Enrollment, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return Enrollment{}, err
	}
	if user.MFAEnabled != nil {
		return Enrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		log.Error("failed to generate totp key", slog.Any("error", err))
		return Enrollment{}, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		log.Error("failed to store mfa secret", slog.Any("error", err))
		return Enrollment{}, err
	}

	return Enrollment{
		Secret:     key.Secret(),
		ProvingURL: key.URL(),
	}, nil
}

// ConfirmEnrollment validates the first code against the pending secret and
// switches MFA on.
func (s *MFAService) ConfirmEnrollment(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.MFAEnabled != nil {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, *user.MFASecret) {
		return ErrMFACodeInvalid
	}

	if err := s.Store.Users().EnableMFA(ctx, userID); err != nil {
		log.Error("failed to enable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa enabled", slog.String("user_id", userID))
	return nil
}

// Disable turns MFA off after re-verifying the password.
func (s *MFAService) Disable(ctx context.Context, userID, password string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return ErrBadCredentials
	}

	if err := s.Store.Users().DisableMFA(ctx, userID); err != nil {
		log.Error("failed to disable mfa", slog.Any("error", err))
		return err
	}

	log.Info("mfa disabled", slog.String("user_id", userID))
	return nil
}
