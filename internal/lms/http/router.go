package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/scl-platform/ssobridge/internal/lms/service"
	"github.com/scl-platform/ssobridge/internal/lms/store"
	"github.com/scl-platform/ssobridge/pkg/httpx"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"

	"github.com/prometheus/client_golang/prometheus"
)

// Router holds shared dependencies for the LMS HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	gatherer     prometheus.Gatherer

	VerifyClient *ssoapi.VerifyClient
	Reconciler   *service.ReconcilerService
	Sessions     *service.SessionService
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
	r.registerPages()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSSO() {
	// GET /sso/login - browser landing for admissions redirects. Strict
	// limit: a burst of bad tokens here is probing, not real logins.
	loginHandler := &SSOLoginHandler{
		VerifyClient: r.VerifyClient,
		Reconciler:   r.Reconciler,
		Sessions:     r.Sessions,
	}
	r.Mux.Handle("GET /sso/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPages() {
	r.Mux.Handle("GET /my",
		httpx.Chain(&HomeHandler{Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /admin",
		httpx.Chain(&AdminHandler{Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /login",
		httpx.Chain(&LoginPageHandler{},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /logout",
		httpx.Chain(&LogoutHandler{Sessions: r.Sessions},
			httpx.RateLimitByIP(httpx.LenientLimit),
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
