package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vanthaita/Orca-CLI-sub000/internal/core"
)

// Recorder is the recording surface handed to services and middleware.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Device authorization metrics
	DeviceCodesIssuedTotal      *prometheus.CounterVec
	DeviceCodesApprovedTotal    prometheus.Counter
	DeviceCodeApprovalDuration  prometheus.Histogram
	DevicePollsTotal            *prometheus.CounterVec
	DeviceAuthorizationsLive    prometheus.Gauge
	DeviceAuthorizationsPending prometheus.Gauge

	// CLI token metrics
	CliTokensIssuedTotal     prometheus.Counter
	CliTokensRevokedTotal    prometheus.Counter
	CliTokenValidationsTotal *prometheus.CounterVec
	CliTokensActive          prometheus.Gauge

	// Browser session metrics
	SessionsIssuedTotal   prometheus.Counter
	SessionRotationsTotal *prometheus.CounterVec
	SessionLogoutsTotal   prometheus.Counter

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics registered on the default registry
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// newMetrics creates all metrics and registers them with reg
func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DeviceCodesIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_device_codes_issued_total",
				Help: "Total number of device authorization requests",
			},
			[]string{"result"}, // success, rate_limited, error
		),
		DeviceCodesApprovedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_device_codes_approved_total",
				Help: "Total number of device codes approved by a signed-in user",
			},
		),
		DeviceCodeApprovalDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orca_device_code_approval_duration_seconds",
				Help:    "Time between issuing a device code and its approval",
				Buckets: []float64{5, 10, 30, 60, 120, 300, 600},
			},
		),
		DevicePollsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_device_polls_total",
				Help: "Total number of device polls by outcome",
			},
			[]string{"status"}, // pending, slow_down, expired, ok, error
		),
		DeviceAuthorizationsLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_device_authorizations_live",
				Help: "Current number of unexpired device authorizations",
			},
		),
		DeviceAuthorizationsPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_device_authorizations_pending",
				Help: "Current number of unexpired device authorizations awaiting approval",
			},
		),

		CliTokensIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_cli_tokens_issued_total",
				Help: "Total number of CLI tokens issued",
			},
		),
		CliTokensRevokedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_cli_tokens_revoked_total",
				Help: "Total number of CLI tokens revoked",
			},
		),
		CliTokenValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_cli_token_validations_total",
				Help: "Total number of CLI token validations by result",
			},
			[]string{"result"}, // valid, invalid, revoked, expired
		),
		CliTokensActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orca_cli_tokens_active",
				Help: "Current number of active CLI tokens",
			},
		),

		SessionsIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_sessions_issued_total",
				Help: "Total number of browser sessions issued",
			},
		),
		SessionRotationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orca_session_rotations_total",
				Help: "Total number of refresh token rotations",
			},
			[]string{"result"}, // success, failure
		),
		SessionLogoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orca_session_logouts_total",
				Help: "Total number of logouts",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_cli_tokens, count_device_authorizations
		),
	}
}
