package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAlertRaised is a no-op.
func (n *NoopRecorder) IncAlertRaised() {}

// IncAlertDelivery is a no-op.
func (n *NoopRecorder) IncAlertDelivery(channel string, ok bool) {}

// IncReminderEnqueued is a no-op.
func (n *NoopRecorder) IncReminderEnqueued(count int) {}

// IncReminderDelivery is a no-op.
func (n *NoopRecorder) IncReminderDelivery(status string) {}

// ObserveReminderBatchDuration is a no-op.
func (n *NoopRecorder) ObserveReminderBatchDuration(duration time.Duration) {}

// SetReminderQueueDepth is a no-op.
func (n *NoopRecorder) SetReminderQueueDepth(depth int64) {}

// IncHealthTipsCache is a no-op.
func (n *NoopRecorder) IncHealthTipsCache(result string) {}

// ObserveUpstreamDuration is a no-op.
func (n *NoopRecorder) ObserveUpstreamDuration(duration time.Duration) {}

// IncVoiceCommand is a no-op.
func (n *NoopRecorder) IncVoiceCommand(intent string) {}
