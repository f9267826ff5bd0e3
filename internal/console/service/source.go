package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/idx"
	"github.com/chatforge/console/pkg/slogx"
)

var (
	ErrInvalidSourceURL = errors.New("source url must be a valid http(s) address")

	// ErrDriveNotShared means the Drive file exists but is not accessible
	// to the ingestion pipeline, usually because link sharing is off.
	ErrDriveNotShared = errors.New("drive file is not shared for link access")

	ErrSourceNotFound = errors.New("source not found")
)

// DriveChecker verifies a Drive file is readable before it is accepted as a
// content source.
type DriveChecker interface {
	CheckAccess(ctx context.Context, fileID string) error
}

// SourceService manages the website and Drive content sources that feed a
// client's chatbot knowledge base.
type SourceService struct {
	Store    store.Store
	Drive    DriveChecker
	Activity *ActivityService

	// IngestWebhookURL, when set, gets a POST after every source change so
	// the crawler can re-index promptly instead of waiting for its schedule.
	IngestWebhookURL string
	HTTPClient       *http.Client
}

// AddWebsite registers a website crawl source.
func (s *SourceService) AddWebsite(ctx context.Context, actorID, clientID, rawURL string, refreshRate int) (domain.ContentSource, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.ContentSource{}, ErrInvalidSourceURL
	}
	return s.add(ctx, actorID, clientID, domain.SourceKindWebsite, u.String(), refreshRate)
}

// AddDrive registers a Google Drive source after verifying the file is
// shared for link access.
func (s *SourceService) AddDrive(ctx context.Context, actorID, clientID, link string, refreshRate int) (domain.ContentSource, error) {
	log := slogx.FromContext(ctx)

	fileID, err := domain.DriveFileID(strings.TrimSpace(link))
	if err != nil {
		return domain.ContentSource{}, err
	}

	if s.Drive != nil {
		if err := s.Drive.CheckAccess(ctx, fileID); err != nil {
			log.Warn("drive source rejected",
				slog.String("client_id", clientID),
				slog.Any("error", err),
			)
			return domain.ContentSource{}, ErrDriveNotShared
		}
	}

	return s.add(ctx, actorID, clientID, domain.SourceKindDrive, link, refreshRate)
}

func (s *SourceService) add(ctx context.Context, actorID, clientID, kind, srcURL string, refreshRate int) (domain.ContentSource, error) {
	log := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ContentSource{}, ErrClientNotFound
		}
		return domain.ContentSource{}, err
	}
	if client.Deleted() {
		return domain.ContentSource{}, ErrClientDeleted
	}

	if refreshRate < 0 {
		refreshRate = 0
	}

	src := domain.ContentSource{
		ID:          idx.New().String(),
		ClientID:    clientID,
		Kind:        kind,
		URL:         srcURL,
		RefreshRate: refreshRate,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Sources().CreateSource(ctx, src); err != nil {
		log.Error("failed to create source",
			slog.String("client_id", clientID),
			slog.Any("error", err),
		)
		return domain.ContentSource{}, err
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    clientID,
		ActorID:     actorID,
		Kind:        domain.ActivitySourceAdded,
		Description: "Content source added",
		Metadata: domain.ActivityMetadata{
			SourceURL:  srcURL,
			SourceKind: kind,
		},
	})
	s.kickIngest(ctx, clientID)

	log.Info("content source added",
		slog.String("source_id", src.ID),
		slog.String("client_id", clientID),
		slog.String("kind", kind),
	)
	return src, nil
}

// List returns a client's sources, newest first.
func (s *SourceService) List(ctx context.Context, clientID string) ([]domain.ContentSource, error) {
	return s.Store.Sources().ListSourcesByClient(ctx, clientID)
}

// Remove deletes a source. The clientID must match so a client principal
// cannot remove another tenant's source by id.
func (s *SourceService) Remove(ctx context.Context, actorID, clientID, sourceID string) error {
	log := slogx.FromContext(ctx)

	src, err := s.Store.Sources().GetSourceByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSourceNotFound
		}
		return err
	}
	if src.ClientID != clientID {
		log.Warn("cross-tenant source removal blocked",
			slog.String("source_id", sourceID),
			slog.String("client_id", clientID),
		)
		return ErrSourceNotFound
	}

	if err := s.Store.Sources().DeleteSource(ctx, sourceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSourceNotFound
		}
		return err
	}

	s.Activity.Record(ctx, domain.Activity{
		ClientID:    clientID,
		ActorID:     actorID,
		Kind:        domain.ActivitySourceRemoved,
		Description: "Content source removed",
		Metadata: domain.ActivityMetadata{
			SourceURL:  src.URL,
			SourceKind: src.Kind,
		},
	})
	s.kickIngest(ctx, clientID)

	return nil
}

// kickIngest pokes the ingestion webhook, best effort. Source changes are
// already durable; a missed kick only delays re-indexing.
func (s *SourceService) kickIngest(ctx context.Context, clientID string) {
	if s.IngestWebhookURL == "" {
		return
	}
	log := slogx.FromContext(ctx)

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.IngestWebhookURL, strings.NewReader(`{"client_id":"`+clientID+`"}`))
	if err != nil {
		log.Debug("ingest kick skipped", slog.Any("error", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Debug("ingest kick failed", slog.Any("error", err))
		return
	}
	_ = resp.Body.Close()
}
