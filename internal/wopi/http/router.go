package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"

	_ "github.com/immor75/MeetingsDecisions/api/wopi" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxFileSize bounds PutFile and artifact upload bodies.
const DefaultMaxFileSize int64 = 100 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	apiKey       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	artifacts   store.Artifacts
	sessions    store.Sessions
	maxFileSize int64

	Dispatcher     *service.Dispatcher
	SessionFactory *service.SessionFactory
	Locks          *service.LockManager

	// MaxSessions is reported by /readyz.
	MaxSessions int
}

func NewRouter(
	artifacts store.Artifacts,
	sessions store.Sessions,
	apiKey, buildVersion string,
	maxFileSize int64,
	logger *slog.Logger,
) *Router {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		apiKey:       apiKey,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		artifacts:    artifacts,
		sessions:     sessions,
		maxFileSize:  maxFileSize,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerWOPI()
	r.registerSessions()
	r.registerArtifacts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MeetingsDecisions WOPI Host API
//	@version		0.1.0
//	@description	WOPI host serving generated decision documents to Collabora Online.
//	@description
//	@description				The /wopi/files endpoints implement the WOPI protocol and authenticate with the access_token query parameter.
//	@description				The /v1 management API authenticates with the integration API key.
//
//	@contact.name				MeetingsDecisions Team
//	@contact.url				https://github.com/immor75/MeetingsDecisions
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
//	@description				Integration API key. Format: "Bearer {key}".
//
//	@securityDefinitions.apikey	AccessToken
//	@in							query
//	@name						access_token
//	@description				WOPI access token issued with the session.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerWOPI() {
	h := &WopiHandler{
		Dispatcher:  r.Dispatcher,
		MaxFileSize: r.maxFileSize,
	}

	// Limiters are shared by all file routes: one bucket per client caps the
	// total, one per client and file keeps a busy document from starving
	// the others.
	perClient := httpx.RateLimitByIP(httpx.WopiClientLimit)
	perFile := httpx.RateLimitByIPAndPath(httpx.WopiLimit, "fileId")

	limited := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, perClient, perFile)
	}

	r.Mux.Handle("GET /wopi/files/{fileId}", limited(h.HandleCheckFileInfo))
	r.Mux.Handle("GET /wopi/files/{fileId}/contents", limited(h.HandleGetFile))
	r.Mux.Handle("POST /wopi/files/{fileId}/contents", limited(h.HandlePutFile))
	r.Mux.Handle("POST /wopi/files/{fileId}", limited(h.HandleFileOverride))
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{
		Factory:  r.SessionFactory,
		Sessions: r.sessions,
		Locks:    r.Locks,
	}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIP(httpx.AdminLimit),
		)
	}

	r.Mux.Handle("POST /v1/sessions", secured(h.HandleCreate))
	r.Mux.Handle("GET /v1/sessions", secured(h.HandleList))
	r.Mux.Handle("POST /v1/sessions/{fileId}/tokens", secured(h.HandleJoin))
	r.Mux.Handle("DELETE /v1/sessions/{fileId}", secured(h.HandleDelete))
}

func (r *Router) registerArtifacts() {
	h := &ArtifactsHandler{
		Artifacts:   r.artifacts,
		MaxFileSize: r.maxFileSize,
	}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.RequireAPIKey(r.apiKey),
			httpx.RateLimitByIP(httpx.AdminLimit),
		)
	}

	r.Mux.Handle("PUT /v1/artifacts/{documentId}", secured(h.HandlePut))
	r.Mux.Handle("GET /v1/artifacts", secured(h.HandleList))
	r.Mux.Handle("DELETE /v1/artifacts/{documentId}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health check endpoints - probes may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.artifacts, r.sessions, r.Dispatcher, r.MaxSessions),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
