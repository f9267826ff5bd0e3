package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chatforge/console/internal/console/domain"
	"github.com/chatforge/console/internal/console/service"
	"github.com/chatforge/console/internal/console/store"
	"github.com/chatforge/console/pkg/httpx"
	"github.com/chatforge/console/pkg/jwtx"
	"github.com/chatforge/console/pkg/slogx"

	_ "github.com/chatforge/console/api/console" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	secure       bool

	store             store.Store
	IdentityService   *service.IdentityService
	InvitationService *service.InvitationService
	ClientService     *service.ClientService
	SourceService     *service.SourceService
	StatsService      *service.StatsService
	ActivityService   *service.ActivityService
	MFAService        *service.MFAService
}

func NewRouter(
	verifier *jwtx.Verifier,
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		secure:       secureCookies,
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	gate := &Gate{Verifier: r.verifier, Identity: r.IdentityService}

	r.registerPages(gate)
	r.registerSession(gate)
	r.registerSetup()
	r.registerClients(gate)
	r.registerInvitations(gate)
	r.registerWidget(gate)
	r.registerSources(gate)
	r.registerStats(gate)
	r.registerMFA(gate)
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Chatbot Admin Console API
//	@version		0.1.0
//	@description	Multi-tenant administration console for AI chatbot deployments: client accounts,
//	@description	setup invitations, widget configuration, content sources and usage statistics.
//
//	@contact.name				ChatForge Team
//	@contact.url				https://github.com/chatforge/console
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}". Browsers use the session cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// registerPages wires the gated browser routes. Anonymous visitors to a
// gated page bounce to /signin with the original path preserved; signed-in
// visitors with the wrong role land on their own dashboard.
func (r *Router) registerPages(gate *Gate) {
	r.Mux.Handle("GET /{$}", http.RedirectHandler(SignInPath, http.StatusSeeOther))
	r.Mux.Handle("GET "+SignInPath, servePage("Sign In", "signin"))
	r.Mux.Handle("GET /setup", servePage("Account Setup", "setup"))
	r.Mux.Handle("GET /recover", servePage("Restore Account", "recover"))

	r.Mux.Handle("GET "+AdminHome,
		httpx.Chain(servePage("Dashboard", "admin_dashboard"),
			gate.RequirePage(domain.RoleAdmin),
		),
	)
	r.Mux.Handle("GET "+ClientHome,
		httpx.Chain(servePage("Your Dashboard", "client_dashboard"),
			gate.RequirePage(domain.RoleClient),
		),
	)
}

func (r *Router) registerSession(gate *Gate) {
	h := &SessionHandler{IdentityService: r.IdentityService, Secure: r.secure}

	r.Mux.Handle("GET /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleWhoAmI),
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// POST /v1/session - strict rate limit by IP (credential attempts)
	r.Mux.Handle("POST /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleSignIn),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("DELETE /v1/session",
		httpx.Chain(http.HandlerFunc(h.HandleSignOut),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Password change requires an authenticated session.
	r.Mux.Handle("POST /v1/session/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSetup() {
	sessions := &SessionHandler{IdentityService: r.IdentityService, Secure: r.secure}
	h := &SetupHandler{
		InvitationService: r.InvitationService,
		IdentityService:   r.IdentityService,
		Sessions:          sessions,
	}

	// Both endpoints are public but carry secrets, so strict IP limits.
	r.Mux.Handle("GET /v1/setup",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/setup",
		httpx.Chain(http.HandlerFunc(h.HandleRedeem),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	recovery := &RecoveryHandler{ClientService: r.ClientService}
	r.Mux.Handle("POST /v1/recover",
		httpx.Chain(http.HandlerFunc(recovery.HandleRecover),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerClients(gate *Gate) {
	h := &ClientsHandler{ClientService: r.ClientService}

	adminOnly := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	anyRole := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/clients", adminOnly(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/clients", adminOnly(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/clients/count", adminOnly(http.HandlerFunc(h.HandleCount)))
	r.Mux.Handle("DELETE /v1/clients/{id}", adminOnly(http.HandlerFunc(h.HandleDelete)))

	// Reads and profile updates are allowed for the owning client too;
	// the handlers check the client binding.
	r.Mux.Handle("GET /v1/clients/{id}", anyRole(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/clients/{id}", anyRole(http.HandlerFunc(h.HandleUpdate)))
}

func (r *Router) registerInvitations(gate *Gate) {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	adminOnly := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/invitations", adminOnly(http.HandlerFunc(h.HandleIssue)))
	r.Mux.Handle("GET /v1/invitations", adminOnly(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/invitations/{id}/resend", adminOnly(http.HandlerFunc(h.HandleResend)))
	r.Mux.Handle("POST /v1/users/provision", adminOnly(http.HandlerFunc(h.HandleProvision)))
}

func (r *Router) registerWidget(gate *Gate) {
	h := &WidgetHandler{ClientService: r.ClientService}

	anyRole := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/clients/{id}/widget", anyRole(http.HandlerFunc(h.HandleGetConfig)))
	r.Mux.Handle("PUT /v1/clients/{id}/widget", anyRole(http.HandlerFunc(h.HandleUpdateConfig)))
	r.Mux.Handle("POST /v1/clients/{id}/widget/logo", anyRole(http.HandlerFunc(h.HandleUploadLogo)))
	r.Mux.Handle("GET /v1/clients/{id}/widget/embed", anyRole(http.HandlerFunc(h.HandleEmbed)))
}

func (r *Router) registerSources(gate *Gate) {
	h := &SourcesHandler{SourceService: r.SourceService}

	anyRole := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/clients/{id}/sources", anyRole(http.HandlerFunc(h.HandleAdd)))
	r.Mux.Handle("GET /v1/clients/{id}/sources", anyRole(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/clients/{id}/sources/{source_id}", anyRole(http.HandlerFunc(h.HandleRemove)))
}

func (r *Router) registerStats(gate *Gate) {
	h := &StatsHandler{StatsService: r.StatsService}
	activities := &ActivitiesHandler{ActivityService: r.ActivityService}

	anyRole := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/clients/{id}/stats", anyRole(http.HandlerFunc(h.HandleStats)))
	r.Mux.Handle("GET /v1/clients/{id}/activities", anyRole(http.HandlerFunc(activities.HandleList)))

	// Widget ingest is public and high volume.
	r.Mux.Handle("POST /v1/widget/interactions",
		httpx.Chain(http.HandlerFunc(h.HandleIngest),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerMFA(gate *Gate) {
	h := &MFAHandler{MFAService: r.MFAService}

	authed := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			gate.RequireAPI(domain.RoleAdmin, domain.RoleClient),
			httpx.RateLimitByUser(httpx.StrictLimit),
		)
	}

	r.Mux.Handle("POST /v1/mfa/totp/enroll", authed(http.HandlerFunc(h.HandleEnroll)))
	r.Mux.Handle("POST /v1/mfa/totp/confirm", authed(http.HandlerFunc(h.HandleConfirm)))
	r.Mux.Handle("DELETE /v1/mfa/totp", authed(http.HandlerFunc(h.HandleDisable)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
