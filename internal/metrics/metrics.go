package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_login_total",
			Help: "Total number of successful logins",
		},
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_register_total",
			Help: "Total number of user registrations",
		},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // login_failure, invalid_token, refresh_failure
	)

	InvitationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenants_invitations_total",
			Help: "Total number of owner invitation lifecycle events",
		},
		[]string{"event"}, // created, duplicate, accepted, expired
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by path, method and status",
		},
		[]string{"path", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		AuthErrorCounter,
		InvitationCounter,
		HTTPRequestCounter,
	)
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
