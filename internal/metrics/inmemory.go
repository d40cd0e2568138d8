package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AlertsRaised            uint64
	AlertDeliveries         map[string]uint64 // key: "<channel>:<sent|failed>"
	RemindersEnqueued       uint64
	ReminderDeliveries      map[string]uint64 // key: status
	ReminderBatchCount      uint64
	ReminderBatchTotalNs    int64
	ReminderQueueDepth      int64
	HealthTipsCache         map[string]uint64 // key: hit, miss, fallback
	UpstreamDurationCount   uint64
	UpstreamDurationTotalNs int64
	VoiceCommands           map[string]uint64 // key: intent
}

// labeledCounter is a set of counters keyed by label value.
type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (c *labeledCounter) inc(label string, n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = make(map[string]uint64)
	}
	c.values[label] += n
}

func (c *labeledCounter) snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and tests.
type InMemoryRecorder struct {
	alertsRaised            uint64
	alertDeliveries         labeledCounter
	remindersEnqueued       uint64
	reminderDeliveries      labeledCounter
	reminderBatchCount      uint64
	reminderBatchTotalNs    int64
	reminderQueueDepth      int64
	healthTipsCache         labeledCounter
	upstreamDurationCount   uint64
	upstreamDurationTotalNs int64
	voiceCommands           labeledCounter
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AlertsRaised:            atomic.LoadUint64(&m.alertsRaised),
		AlertDeliveries:         m.alertDeliveries.snapshot(),
		RemindersEnqueued:       atomic.LoadUint64(&m.remindersEnqueued),
		ReminderDeliveries:      m.reminderDeliveries.snapshot(),
		ReminderBatchCount:      atomic.LoadUint64(&m.reminderBatchCount),
		ReminderBatchTotalNs:    atomic.LoadInt64(&m.reminderBatchTotalNs),
		ReminderQueueDepth:      atomic.LoadInt64(&m.reminderQueueDepth),
		HealthTipsCache:         m.healthTipsCache.snapshot(),
		UpstreamDurationCount:   atomic.LoadUint64(&m.upstreamDurationCount),
		UpstreamDurationTotalNs: atomic.LoadInt64(&m.upstreamDurationTotalNs),
		VoiceCommands:           m.voiceCommands.snapshot(),
	}
}

// IncAlertRaised increments the raised alert counter.
func (m *InMemoryRecorder) IncAlertRaised() {
	atomic.AddUint64(&m.alertsRaised, 1)
}

// IncAlertDelivery counts one alert delivery attempt on channel.
func (m *InMemoryRecorder) IncAlertDelivery(channel string, ok bool) {
	status := "failed"
	if ok {
		status = "sent"
	}
	m.alertDeliveries.inc(channel+":"+status, 1)
}

// IncReminderEnqueued adds count newly queued reminders.
func (m *InMemoryRecorder) IncReminderEnqueued(count int) {
	if count > 0 {
		atomic.AddUint64(&m.remindersEnqueued, uint64(count))
	}
}

// IncReminderDelivery counts one reminder delivery outcome.
func (m *InMemoryRecorder) IncReminderDelivery(status string) {
	m.reminderDeliveries.inc(status, 1)
}

// ObserveReminderBatchDuration records one worker batch.
func (m *InMemoryRecorder) ObserveReminderBatchDuration(duration time.Duration) {
	atomic.AddUint64(&m.reminderBatchCount, 1)
	atomic.AddInt64(&m.reminderBatchTotalNs, duration.Nanoseconds())
}

// SetReminderQueueDepth records the number of due reminders.
func (m *InMemoryRecorder) SetReminderQueueDepth(depth int64) {
	atomic.StoreInt64(&m.reminderQueueDepth, depth)
}

// IncHealthTipsCache counts a health tips lookup result.
func (m *InMemoryRecorder) IncHealthTipsCache(result string) {
	m.healthTipsCache.inc(result, 1)
}

// ObserveUpstreamDuration records one MyHealthfinder request.
func (m *InMemoryRecorder) ObserveUpstreamDuration(duration time.Duration) {
	atomic.AddUint64(&m.upstreamDurationCount, 1)
	atomic.AddInt64(&m.upstreamDurationTotalNs, duration.Nanoseconds())
}

// IncVoiceCommand counts a processed voice command by intent.
func (m *InMemoryRecorder) IncVoiceCommand(intent string) {
	m.voiceCommands.inc(intent, 1)
}

// SortedKeys returns the keys of a labeled snapshot in stable order.
func SortedKeys(values map[string]uint64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
