package domain

import "time"

// RecoveryToken is a time-limited grant to undo a scheduled client
// deletion. Same shape as an invitation token, separate namespace.
type RecoveryToken struct {
	ID        string
	TokenHash string
	ClientID  string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Redeemable reports whether the token can still be consumed at now.
func (t RecoveryToken) Redeemable(now time.Time) bool {
	return t.UsedAt == nil && !now.After(t.ExpiresAt)
}
