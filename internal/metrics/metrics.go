// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Alert delivery channels.
const (
	ChannelEmail     = "email"
	ChannelSMS       = "sms"
	ChannelAmbulance = "ambulance"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Emergency alert metrics
	IncAlertRaised()
	IncAlertDelivery(channel string, ok bool)

	// Reminder pipeline metrics
	IncReminderEnqueued(count int)
	IncReminderDelivery(status string) // status: "sent", "failed", "exhausted"
	ObserveReminderBatchDuration(duration time.Duration)
	SetReminderQueueDepth(depth int64)

	// Health tips metrics
	IncHealthTipsCache(result string) // result: "hit", "miss", "fallback"
	ObserveUpstreamDuration(duration time.Duration)

	// Voice command metrics
	IncVoiceCommand(intent string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
