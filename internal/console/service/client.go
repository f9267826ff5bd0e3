package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/mail"
	"github.com/chatforge/console/internal/console/notify"
	"github.com/chatforge/console/internal/console/storage"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/cryptox"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/slogx"
)

var (
	ErrClientNotFound = errors.New("client not found")

	// ErrClientDeleted rejects writes against accounts scheduled for deletion.
	ErrClientDeleted = errors.New("client is scheduled for deletion")

	// ErrRecoveryInvalid covers unknown, expired and used recovery tokens.
	ErrRecoveryInvalid = errors.New("recovery link is invalid or has expired")
)

// DefaultRecoveryTTL is how long a deleted account can be restored.
const DefaultRecoveryTTL = 720 * time.Hour // 30 days

// ClientService manages client accounts: CRUD, widget configuration, soft
// deletion and recovery.
type ClientService struct {
	Store       store.Store
	Mailer      mail.Mailer
	Notifier    notify.Notifier
	Logos       storage.LogoStore
	Activity    *ActivityService
	BaseURL     string
	RecoveryTTL time.Duration
}

func (s *ClientService) recoveryTTL() time.Duration {
	if s.RecoveryTTL <= 0 {
		return DefaultRecoveryTTL
	}
	return s.RecoveryTTL
}

// CreateParams are the admin-supplied fields for a new client account.
type CreateParams struct {
	Name         string
	ContactEmail string
	Company      string
	Description  string
}

// Create provisions a client account with a derived agent slug and default
// widget configuration.
func (s *ClientService) Create(ctx context.Context, actorID string, p CreateParams) (domain.ClientAccount, error) {
	log := slogx.FromContext(ctx)

	if p.Name == "" || !validEmail(p.ContactEmail) {
		return domain.ClientAccount{}, ErrInvalidRequest
	}

	slug, err := domain.SanitizeAgentSlug(p.Name)
	if err != nil {
		return domain.ClientAccount{}, ErrInvalidRequest
	}

	now := time.Now().UTC()
	client := domain.ClientAccount{
		ID:           idx.New().String(),
		Name:         p.Name,
		ContactEmail: p.ContactEmail,
		Company:      p.Company,
		Description:  p.Description,
		AgentSlug:    slug,
		Widget:       domain.DefaultWidgetConfig(),
		Status:       domain.ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Same name sanitizes to the same slug; disambiguate with the id tail.
			client.AgentSlug = fmt.Sprintf("%s_%s", slug, client.ID[len(client.ID)-6:])
			if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
				log.Error("failed to create client", slog.Any("error", err))
				return domain.ClientAccount{}, err
			}
		} else {
			log.Error("failed to create client", slog.Any("error", err))
			return domain.ClientAccount{}, err
		}
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    client.ID,
		ActorID:     actorID,
		Kind:        domain.ActivityClientCreated,
		Description: "Client account created",
	})
	s.hint(ctx, "clients", client.ID)

	log.Info("client created",
		slog.String("client_id", client.ID),
		slog.String("agent_slug", client.AgentSlug),
	)
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (domain.ClientAccount, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ClientAccount{}, ErrClientNotFound
		}
		return domain.ClientAccount{}, err
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context) ([]domain.ClientAccount, error) {
	return s.Store.Clients().ListClients(ctx)
}

// CountActive excludes accounts scheduled for deletion.
func (s *ClientService) CountActive(ctx context.Context) (int64, error) {
	return s.Store.Clients().CountActiveClients(ctx)
}

// UpdateParams are the editable profile fields. The agent slug is fixed at
// creation so embedded widgets keep working.
type UpdateParams struct {
	Name         string
	ContactEmail string
	Company      string
	Description  string
}

func (s *ClientService) Update(ctx context.Context, actorID, id string, p UpdateParams) (domain.ClientAccount, error) {
	log := slogx.FromContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return domain.ClientAccount{}, err
	}
	if client.Deleted() {
		return domain.ClientAccount{}, ErrClientDeleted
	}
	if p.Name == "" || !validEmail(p.ContactEmail) {
		return domain.ClientAccount{}, ErrInvalidRequest
	}

	client.Name = p.Name
	client.ContactEmail = p.ContactEmail
	client.Company = p.Company
	client.Description = p.Description

	if err := s.Store.Clients().UpdateClient(ctx, client); err != nil {
		log.Error("failed to update client", slog.String("client_id", id), slog.Any("error", err))
		return domain.ClientAccount{}, err
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    id,
		ActorID:     actorID,
		Kind:        domain.ActivityClientUpdated,
		Description: "Client profile updated",
	})
	s.hint(ctx, "clients", id)

	return s.Get(ctx, id)
}

// UpdateWidget validates and stores a new widget configuration.
func (s *ClientService) UpdateWidget(ctx context.Context, actorID, id string, cfg domain.WidgetConfig) (domain.WidgetConfig, error) {
	log := slogx.FromContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return domain.WidgetConfig{}, err
	}
	if client.Deleted() {
		return domain.WidgetConfig{}, ErrClientDeleted
	}

	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return domain.WidgetConfig{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := s.Store.Clients().UpdateWidgetConfig(ctx, id, cfg); err != nil {
		log.Error("failed to update widget config", slog.String("client_id", id), slog.Any("error", err))
		return domain.WidgetConfig{}, err
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    id,
		ActorID:     actorID,
		Kind:        domain.ActivityClientUpdated,
		Description: "Widget configuration updated",
	})
	s.hint(ctx, "clients", id)

	return cfg, nil
}

// UploadLogo stores the widget logo and records its public URL in the
// widget configuration.
func (s *ClientService) UploadLogo(ctx context.Context, actorID, id, contentType string, body io.Reader) (string, error) {
	log := slogx.FromContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if client.Deleted() {
		return "", ErrClientDeleted
	}

	url, err := s.Logos.Upload(ctx, id, contentType, body)
	if err != nil {
		log.Error("failed to upload logo", slog.String("client_id", id), slog.Any("error", err))
		return "", err
	}

	cfg := client.Widget
	cfg.LogoURL = url
	if err := s.Store.Clients().UpdateWidgetConfig(ctx, id, cfg); err != nil {
		log.Error("failed to store logo url", slog.String("client_id", id), slog.Any("error", err))
		return "", err
	}

	s.hint(ctx, "clients", id)
	return url, nil
}

// EmbedSnippet renders the script tag a client pastes into their site.
func (s *ClientService) EmbedSnippet(ctx context.Context, id string) (string, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`<script src="%s/widget.js" data-agent="%s" async></script>`,
		s.BaseURL, client.AgentSlug,
	), nil
}

// ScheduleDeletion soft-deletes the account and emails a recovery link to
// the contact address. Data stays intact until purge_after passes.
func (s *ClientService) ScheduleDeletion(ctx context.Context, actorID, id string) (domain.ClientAccount, error) {
	log := slogx.FromContext(ctx)

	client, err := s.Get(ctx, id)
	if err != nil {
		return domain.ClientAccount{}, err
	}
	if client.Deleted() {
		return domain.ClientAccount{}, ErrClientDeleted
	}

	now := time.Now().UTC()
	purgeAfter := now.Add(s.recoveryTTL())

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate recovery token", slog.Any("error", err))
		return domain.ClientAccount{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Clients().ScheduleDeletion(ctx, id, now, purgeAfter); err != nil {
			return err
		}
		return tx.RecoveryTokens().CreateRecoveryToken(ctx, domain.RecoveryToken{
			ID:        idx.New().String(),
			TokenHash: cryptox.FingerprintToken(token),
			ClientID:  id,
			ExpiresAt: purgeAfter,
			CreatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ClientAccount{}, ErrClientDeleted
		}
		log.Error("failed to schedule deletion", slog.String("client_id", id), slog.Any("error", err))
		return domain.ClientAccount{}, err
	}

	subject, htmlBody, textBody, renderErr := mail.RenderDeletion(mail.DeletionData{
		ClientName:  client.DisplayName(),
		RecoveryURL: s.BaseURL + "/recover?token=" + token,
		PurgeAfter:  purgeAfter,
	})
	if renderErr == nil {
		renderErr = s.Mailer.Send(ctx, []string{client.ContactEmail}, subject, htmlBody, textBody)
	}
	if renderErr != nil {
		log.Warn("deletion notice delivery failed",
			slog.String("client_id", id),
			slog.Any("error", renderErr),
		)
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    id,
		ActorID:     actorID,
		Kind:        domain.ActivityDeletionScheduled,
		Description: "Account scheduled for deletion",
	})
	s.hint(ctx, "clients", id)

	log.Info("client deletion scheduled",
		slog.String("client_id", id),
		slog.Time("purge_after", purgeAfter),
	)
	return s.Get(ctx, id)
}

// Recover consumes a recovery token and restores the account. The
// conditional claim makes the token single-use even under concurrent
// attempts.
func (s *ClientService) Recover(ctx context.Context, token string) (domain.ClientAccount, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.ClientAccount{}, ErrRecoveryInvalid
	}

	fingerprint := cryptox.FingerprintToken(token)
	now := time.Now().UTC()

	var clientID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.RecoveryTokens().ClaimRecoveryToken(ctx, fingerprint, now)
		if err != nil {
			return err
		}
		clientID = rec.ClientID
		return tx.Clients().CancelDeletion(ctx, clientID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ClientAccount{}, ErrRecoveryInvalid
		}
		log.Error("failed to recover client", slog.Any("error", err))
		return domain.ClientAccount{}, err
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    clientID,
		Kind:        domain.ActivityClientRecovered,
		Description: "Account restored from scheduled deletion",
	})
	s.hint(ctx, "clients", clientID)

	log.Info("client recovered", slog.String("client_id", clientID))
	return s.Get(ctx, clientID)
}

func (s *ClientService) hint(ctx context.Context, table, clientID string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.TableChanged(ctx, table, clientID); err != nil {
		slogx.FromContext(ctx).Debug("change hint dropped",
			slog.String("table", table),
			slog.Any("error", err),
		)
	}
}
