package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Device authorization - noop implementations
func (n *NoopMetrics) RecordDeviceCodeIssued(result string)                  {}
func (n *NoopMetrics) RecordDeviceCodeApproved(timeToApprove time.Duration) {}
func (n *NoopMetrics) RecordDevicePoll(status string)                       {}

// CLI tokens - noop implementations
func (n *NoopMetrics) RecordCliTokenIssued()                   {}
func (n *NoopMetrics) RecordCliTokenRevoked()                  {}
func (n *NoopMetrics) RecordCliTokenValidation(result string) {}

// Browser sessions - noop implementations
func (n *NoopMetrics) RecordSessionIssued()               {}
func (n *NoopMetrics) RecordSessionRotation(success bool) {}
func (n *NoopMetrics) RecordLogout()                      {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetActiveCliTokensCount(count int)              {}
func (n *NoopMetrics) SetDeviceAuthorizationsCount(total, pending int) {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
