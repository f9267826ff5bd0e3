package domain

import "time"

// Invitation statuses. "expired" is a derived read-time state: any
// invitation past ExpiresAt is dead regardless of the stored status, so the
// column only ever records pending or accepted.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
)

// Invitation is a pending account-setup grant. The opaque token itself is a
// capability handed to the recipient; only its fingerprint is stored.
type Invitation struct {
	ID        string
	TokenHash string
	ClientID  string
	Email     string
	Status    string
	ExpiresAt time.Time

	// AcceptedAt records the consumption timestamp.
	AcceptedAt *time.Time

	// NotifiedAt is nil while the invitation email has not been delivered:
	// the "issued but unnotified" state that a resend clears.
	NotifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redeemable reports whether the invitation can still be consumed at now.
func (i Invitation) Redeemable(now time.Time) bool {
	return i.Status == InvitationStatusPending && !now.After(i.ExpiresAt)
}
