package domain

import (
	"fmt"
	"time"
)

// ActivityKind is the closed set of loggable client activities.
type ActivityKind string

const (
	ActivityClientCreated     ActivityKind = "client_created"
	ActivityClientUpdated     ActivityKind = "client_updated"
	ActivityInvitationSent    ActivityKind = "invitation_sent"
	ActivitySourceAdded       ActivityKind = "source_added"
	ActivitySourceRemoved     ActivityKind = "source_removed"
	ActivityDeletionScheduled ActivityKind = "deletion_scheduled"
	ActivityClientRecovered   ActivityKind = "client_recovered"
)

// ActivityMetadata carries the structured payload for an activity. Which
// fields may be set depends on the kind; Validate enforces that instead of
// letting arbitrary blobs through.
type ActivityMetadata struct {
	SourceURL    string `json:"source_url,omitempty"`
	SourceKind   string `json:"source_kind,omitempty"`
	InvitationID string `json:"invitation_id,omitempty"`
	Email        string `json:"email,omitempty"`
}

// Activity is one append-only log entry for a client account.
type Activity struct {
	ID          string
	ClientID    string
	ActorID     string // user id of the principal acting, if any
	Kind        ActivityKind
	Description string
	Metadata    ActivityMetadata
	CreatedAt   time.Time
}

// Validate checks kind membership and that metadata fields match the kind.
func (a Activity) Validate() error {
	switch a.Kind {
	case ActivityClientCreated, ActivityClientUpdated,
		ActivityDeletionScheduled, ActivityClientRecovered:
		if a.Metadata.SourceURL != "" || a.Metadata.SourceKind != "" {
			return fmt.Errorf("domain: %s activity cannot carry source metadata", a.Kind)
		}
	case ActivitySourceAdded, ActivitySourceRemoved:
		if a.Metadata.SourceURL == "" {
			return fmt.Errorf("domain: %s activity requires source_url", a.Kind)
		}
	case ActivityInvitationSent:
		if a.Metadata.Email == "" {
			return fmt.Errorf("domain: %s activity requires email", a.Kind)
		}
	default:
		return fmt.Errorf("domain: unknown activity kind %q", a.Kind)
	}
	return nil
}
