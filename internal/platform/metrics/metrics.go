package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados usados como label "result".
const (
	ResultCreated       = "created"
	ResultReleased      = "released"
	ResultConflict      = "conflict"
	ResultNotFound      = "not_found"
	ResultInconsistency = "inconsistency"
	ResultError         = "error"
)

// Metrics agrupa las métricas del ledger. Se registran en el Registerer que reciba New
// (uno por router, así los tests no chocan con el registry global).
type Metrics struct {
	Registrations          *prometheus.CounterVec
	Releases               *prometheus.CounterVec
	Inconsistencies        prometheus.Counter
	CacheInvalidationFails prometheus.Counter
	WriteDuration          *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guardianship_registrations_total",
			Help: "Register attempts by result",
		}, []string{"result"}),
		Releases: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guardianship_releases_total",
			Help: "Unregister attempts by result",
		}, []string{"result"}),
		Inconsistencies: f.NewCounter(prometheus.CounterOpts{
			Name: "guardianship_inconsistencies_total",
			Help: "Observed row counts that violate the single-active-guardian invariant",
		}),
		CacheInvalidationFails: f.NewCounter(prometheus.CounterOpts{
			Name: "guardianship_cache_invalidation_failures_total",
			Help: "Cache invalidations that failed after a successful ledger write",
		}),
		WriteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guardianship_ledger_write_duration_ms",
			Help:    "Latency of ledger conditional writes in milliseconds",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "guardianship_http_requests_total",
			Help: "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guardianship_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Noop devuelve métricas registradas en un registry descartable.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
