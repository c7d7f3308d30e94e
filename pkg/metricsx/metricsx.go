// Package metricsx provides Prometheus collectors for the SSO bridge and an
// HTTP handler for scrape endpoints.
package metricsx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification / reconciliation outcome labels.
const (
	ResultOK        = "ok"
	ResultForbidden = "forbidden"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// Collector gathers bridge metrics. Both services share the collector type;
// each registers only the series it actually drives.
type Collector struct {
	tokensIssued    prometheus.Counter
	verifications   *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ssobridge_tokens_issued_total",
			Help: "SSO tokens minted by the issuer.",
		}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssobridge_verifications_total",
			Help: "Token verification attempts by outcome.",
		}, []string{"result"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssobridge_reconciliations_total",
			Help: "Identity reconciliations by outcome.",
		}, []string{"result"}),
		// Status is the only label: the status space is bounded, while raw
		// request paths are attacker-chosen and would grow the series set
		// without limit.
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ssobridge_http_request_duration_seconds",
			Help:    "HTTP request latency by status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.tokensIssued,
		c.verifications,
		c.reconciliations,
		c.httpDuration,
	)

	return c
}

// RecordTokenIssued counts a successful issuance.
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordVerification counts a verification attempt with its outcome.
func (c *Collector) RecordVerification(result string) {
	c.verifications.WithLabelValues(result).Inc()
}

// RecordReconciliation counts a reconciliation attempt with its outcome.
func (c *Collector) RecordReconciliation(result string) {
	c.reconciliations.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus scrape handler for the gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// HTTPMiddleware observes request latency per status code.
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		c.httpDuration.
			WithLabelValues(strconv.Itoa(rw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter

	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
