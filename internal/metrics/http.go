package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Type assert to concrete Metrics for Prometheus access; NoopMetrics and
	// unknown implementations get a pass-through handler
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath returns the route pattern (e.g., "/cli-tokens/:id") or
// "unknown" for unmatched requests, keeping label cardinality bounded
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordDeviceCodeIssued records a device authorization request outcome
func (m *Metrics) RecordDeviceCodeIssued(result string) {
	m.DeviceCodesIssuedTotal.WithLabelValues(result).Inc()
}

// RecordDeviceCodeApproved records an approval and how long it took
func (m *Metrics) RecordDeviceCodeApproved(timeToApprove time.Duration) {
	m.DeviceCodesApprovedTotal.Inc()
	m.DeviceCodeApprovalDuration.Observe(timeToApprove.Seconds())
}

// RecordDevicePoll records the status returned to a polling CLI
func (m *Metrics) RecordDevicePoll(status string) {
	m.DevicePollsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordCliTokenIssued() {
	m.CliTokensIssuedTotal.Inc()
}

func (m *Metrics) RecordCliTokenRevoked() {
	m.CliTokensRevokedTotal.Inc()
}

// RecordCliTokenValidation records a bearer check (valid, invalid, revoked, expired)
func (m *Metrics) RecordCliTokenValidation(result string) {
	m.CliTokenValidationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSessionIssued() {
	m.SessionsIssuedTotal.Inc()
}

// RecordSessionRotation records a refresh token rotation attempt
func (m *Metrics) RecordSessionRotation(success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.SessionRotationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordLogout() {
	m.SessionLogoutsTotal.Inc()
}

// SetActiveCliTokensCount sets the current number of active CLI tokens
func (m *Metrics) SetActiveCliTokensCount(count int) {
	m.CliTokensActive.Set(float64(count))
}

// SetDeviceAuthorizationsCount sets the live and pending device authorization gauges
func (m *Metrics) SetDeviceAuthorizationsCount(total, pending int) {
	m.DeviceAuthorizationsLive.Set(float64(total))
	m.DeviceAuthorizationsPending.Set(float64(pending))
}

// RecordDatabaseQueryError records a failed store call
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
