package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/evansachie/lifeguard/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "lifeguard_alerts_raised_total %d\n", snap.AlertsRaised)
	for _, key := range metrics.SortedKeys(snap.AlertDeliveries) {
		channel, status, _ := strings.Cut(key, ":")
		writeMetric(w, "lifeguard_alert_deliveries_total{channel=%q,status=%q} %d\n", channel, status, snap.AlertDeliveries[key])
	}

	writeMetric(w, "lifeguard_reminders_enqueued_total %d\n", snap.RemindersEnqueued)
	for _, status := range metrics.SortedKeys(snap.ReminderDeliveries) {
		writeMetric(w, "lifeguard_reminder_deliveries_total{status=%q} %d\n", status, snap.ReminderDeliveries[status])
	}
	writeMetric(w, "lifeguard_reminder_queue_depth %d\n", snap.ReminderQueueDepth)
	writeMetric(w, "lifeguard_reminder_batch_duration_seconds_count %d\n", snap.ReminderBatchCount)
	writeMetric(w, "lifeguard_reminder_batch_duration_seconds_sum %.6f\n", float64(snap.ReminderBatchTotalNs)/1e9)

	for _, result := range metrics.SortedKeys(snap.HealthTipsCache) {
		writeMetric(w, "lifeguard_health_tips_cache_total{result=%q} %d\n", result, snap.HealthTipsCache[result])
	}
	writeMetric(w, "lifeguard_upstream_duration_seconds_count %d\n", snap.UpstreamDurationCount)
	writeMetric(w, "lifeguard_upstream_duration_seconds_sum %.6f\n", float64(snap.UpstreamDurationTotalNs)/1e9)

	for _, intent := range metrics.SortedKeys(snap.VoiceCommands) {
		writeMetric(w, "lifeguard_voice_commands_total{intent=%q} %d\n", intent, snap.VoiceCommands[intent])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
