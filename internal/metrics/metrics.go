package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SwipesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homimatch_swipes_total",
			Help: "Total swipes recorded, by action",
		},
		[]string{"action"},
	)

	MatchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homimatch_matches_created_total",
			Help: "Total matches created",
		},
	)

	MatchTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homimatch_match_transitions_total",
			Help: "Total match status transitions, by resulting status",
		},
		[]string{"to"},
	)

	MessageRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homimatch_message_requests_total",
			Help: "Total message requests, by result",
		},
		[]string{"result"},
	)

	InviteCodesIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homimatch_invite_codes_issued_total",
			Help: "Total invitation codes issued",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homimatch_http_requests_total",
			Help: "Total HTTP requests, by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homimatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Register registers all collectors with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		SwipesTotal,
		MatchesCreatedTotal,
		MatchTransitionsTotal,
		MessageRequestsTotal,
		InviteCodesIssuedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
