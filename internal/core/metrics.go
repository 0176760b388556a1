package core

import (
	"context"
	"time"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Device authorization
	RecordDeviceCodeIssued(result string)
	RecordDeviceCodeApproved(timeToApprove time.Duration)
	RecordDevicePoll(status string)

	// CLI tokens
	RecordCliTokenIssued()
	RecordCliTokenRevoked()
	RecordCliTokenValidation(result string)

	// Browser sessions
	RecordSessionIssued()
	RecordSessionRotation(success bool)
	RecordLogout()

	// Gauge Setters (for periodic updates)
	SetActiveCliTokensCount(count int)
	SetDeviceAuthorizationsCount(total, pending int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by CacheWrapper.
type MetricsStore interface {
	CountActiveCliTokens(ctx context.Context, now time.Time) (int64, error)
	CountLiveDeviceAuthorizations(ctx context.Context, now time.Time) (int64, error)
	CountPendingDeviceAuthorizations(ctx context.Context, now time.Time) (int64, error)
}
