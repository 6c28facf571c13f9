package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evex_upstream_requests_total",
			Help: "Requests sent to the Evex backend",
		},
		[]string{"method", "status"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evex_upstream_request_duration_seconds",
			Help:    "Latency of requests to the Evex backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	tokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evex_token_refreshes_total",
			Help: "Access token refresh attempts",
		},
		[]string{"result"},
	)

	forcedLogouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evex_forced_logouts_total",
			Help: "Sessions ended because the refresh token was rejected",
		},
	)

	portalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evex_portal_requests_total",
			Help: "Requests served by the portal",
		},
		[]string{"route", "status"},
	)

	portalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evex_portal_request_duration_seconds",
			Help:    "Portal handler latency",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"route"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evex_active_sessions",
			Help: "Browser sessions held by this portal instance",
		},
	)

	openSockets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evex_open_websockets",
			Help: "Websocket connections attached to the hub",
		},
	)
)

// Monitor is the apiclient.Observer for the portal and the CLI.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) ObserveRequest(method string, status int, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	upstreamDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Monitor) ObserveRefresh(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	tokenRefreshes.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackForcedLogout() {
	forcedLogouts.Inc()
}

func (m *Monitor) TrackPortalRequest(route string, status int, elapsed time.Duration) {
	portalRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	portalDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Collect samples the gauges every interval until ctx is done.
func (m *Monitor) Collect(ctx context.Context, interval time.Duration, sessions, sockets func() int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.sample(sessions, sockets)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) sample(sessions, sockets func() int) {
	if sessions != nil {
		activeSessions.Set(float64(sessions()))
	}
	if sockets != nil {
		openSockets.Set(float64(sockets()))
	}
}
