package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/service"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/pkg/httpx"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus"
)

// Router holds shared dependencies for the admissions HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	gatherer     prometheus.Gatherer

	IssuerService    *service.IssuerService
	VerifierService  *service.VerifierService
	DirectoryService *service.DirectoryService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	metrics *metricsx.Collector,
	gatherer prometheus.Gatherer,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		gatherer:     gatherer,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if metrics != nil {
		r.middlewares = append(r.middlewares, metrics.HTTPMiddleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSSO()
	r.registerLogin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSSO() {
	// POST /sso/generate - called by the authenticated admissions frontend.
	generateHandler := &GenerateHandler{IssuerService: r.IssuerService}
	r.Mux.Handle("POST /sso/generate",
		httpx.Chain(generateHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /sso/verify - called server-to-server by the LMS backend, never by
	// a browser. Strict limit: failed probes here are attack traffic.
	verifyHandler := &VerifyHandler{VerifierService: r.VerifierService}
	r.Mux.Handle("POST /sso/verify",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerLogin() {
	loginHandler := &LoginHandler{DirectoryService: r.DirectoryService}
	r.Mux.Handle("POST /api/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
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
	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", metricsx.Handler(r.gatherer))
	}
}
