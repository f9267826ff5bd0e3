package domain

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	ClientID     string // bound client account; empty for admins

	// PasswordChangeRequired is set for accounts provisioned with a
	// temporary passphrase.
	PasswordChangeRequired bool

	MFAEnabled *time.Time // when TOTP was enabled (nullable)
	MFASecret  *string    // TOTP secret, base32 (nullable)

	CreatedAt time.Time
	UpdatedAt time.Time
}
