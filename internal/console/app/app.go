package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/chatforge/console/internal/console/http"
	"github.com/chatforge/console/internal/console/mail"
	"github.com/chatforge/console/internal/console/notify"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/internal/console/storage"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/internal/console/store/drivers/sqlite"
	"github.com/chatforge/console/pkg/jwtx"
	"github.com/chatforge/console/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the console service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.Signer
	mailer   mail.Mailer
	notifier notify.Notifier
	logos    storage.LogoStore

	identityService     *service.IdentityService
	invitationService   *service.InvitationService
	clientService       *service.ClientService
	sourceService       *service.SourceService
	statsService        *service.StatsService
	activityService     *service.ActivityService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. Optional
// collaborators (SMTP, S3, NATS, Drive) degrade to no-op or in-memory
// implementations when unconfigured, so a bare binary still runs.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "console",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewSigner("console-1")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.signer = signer

	app.initCollaborators()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("console starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down console...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.notifier.Close(); err != nil {
		app.logger.Error("error closing notifier", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("console stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initCollaborators() {
	if app.cfg.SMTPHost != "" {
		app.mailer = mail.NewSMTPMailer(mail.Config{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUser,
			Password: app.cfg.SMTPPass,
			From:     app.cfg.SMTPFrom,
		})
	} else {
		app.logger.Warn("SMTP not configured, invitation emails will be dropped")
		app.mailer = mail.Noop{}
	}

	if app.cfg.NATSURL != "" {
		n, err := notify.Connect(app.cfg.NATSURL)
		if err != nil {
			app.logger.Warn("NATS unavailable, change hints disabled", "error", err)
			app.notifier = notify.Noop{}
		} else {
			app.notifier = n
		}
	} else {
		app.notifier = notify.Noop{}
	}

	if app.cfg.S3Endpoint != "" {
		app.logos = storage.NewS3LogoStore(storage.S3Config{
			Endpoint:  app.cfg.S3Endpoint,
			Region:    app.cfg.S3Region,
			Bucket:    app.cfg.S3Bucket,
			KeyID:     app.cfg.S3KeyID,
			Secret:    app.cfg.S3Secret,
			PublicURL: app.cfg.S3PublicURL,
		})
	} else {
		app.logger.Warn("object storage not configured, logos held in memory")
		app.logos = storage.NewMemory()
	}
}

func (app *Application) initServices() {
	app.identityService = &service.IdentityService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.activityService = &service.ActivityService{Store: app.db}

	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Mailer:   app.mailer,
		Activity: app.activityService,
		BaseURL:  app.cfg.BaseURL,
		TTL:      app.cfg.InviteTTL,
	}

	app.clientService = &service.ClientService{
		Store:       app.db,
		Mailer:      app.mailer,
		Notifier:    app.notifier,
		Logos:       app.logos,
		Activity:    app.activityService,
		BaseURL:     app.cfg.BaseURL,
		RecoveryTTL: app.cfg.RecoveryTTL,
	}

	app.sourceService = &service.SourceService{
		Store:            app.db,
		Activity:         app.activityService,
		IngestWebhookURL: app.cfg.IngestWebhookURL,
	}
	if app.cfg.DriveAPIKey != "" {
		checker, err := service.NewGoogleDriveChecker(context.Background(), app.cfg.DriveAPIKey)
		if err != nil {
			app.logger.Warn("drive checker unavailable, drive links accepted unchecked", "error", err)
		} else {
			app.sourceService.Drive = checker
		}
	}

	app.statsService = &service.StatsService{
		Store:    app.db,
		Notifier: app.notifier,
	}

	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	secureCookies := app.cfg.Env != "dev"

	app.router = httpapi.NewRouter(
		app.signer.Verifier(app.cfg.Issuer),
		BuildVersion,
		secureCookies,
		app.db,
		app.logger,
	)
	app.router.IdentityService = app.identityService
	app.router.InvitationService = app.invitationService
	app.router.ClientService = app.clientService
	app.router.SourceService = app.sourceService
	app.router.StatsService = app.statsService
	app.router.ActivityService = app.activityService
	app.router.MFAService = app.mfaService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
