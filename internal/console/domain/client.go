package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Client lifecycle statuses.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

var ErrInvalidAgentName = errors.New("domain: agent name has no usable characters")

// ClientAccount is a tenant of the console: one chatbot customer with an
// embeddable widget and its own content sources and metrics.
type ClientAccount struct {
	ID           string
	Name         string
	ContactEmail string
	Company      string
	Description  string

	// AgentSlug is the sanitized form of the bot name. Display and
	// embed-snippet use only; it is never used to address storage.
	AgentSlug string

	Widget WidgetConfig
	Status string

	// DeletionScheduledAt and PurgeAfter are set together on soft delete.
	// Accounts are only ever hard-deleted by housekeeping after PurgeAfter.
	DeletionScheduledAt *time.Time
	PurgeAfter          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted reports whether the account is soft-deleted.
func (c ClientAccount) Deleted() bool { return c.DeletionScheduledAt != nil }

// DisplayName returns the client name with a neutral placeholder for
// records that lack one.
func (c ClientAccount) DisplayName() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Your Company"
	}
	return c.Name
}

// SanitizeAgentSlug lowercases the agent name and replaces every
// non-alphanumeric rune with an underscore. The result is a display slug
// only.
func SanitizeAgentSlug(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "", ErrInvalidAgentName
	}
	return slug, nil
}
