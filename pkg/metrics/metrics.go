package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingress metrics
	EventsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_events_received_total",
			Help: "Total number of events accepted by AddEvents",
		},
	)

	EventsBufferAddFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_events_buffer_add_failures_total",
			Help: "Total number of events that failed to enqueue into the buffer",
		},
	)

	// EventBuffer metrics
	QueueDroppedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_queue_dropped_events_total",
			Help: "Total number of events a consumer lost to buffer eviction, by consumer and event kind",
		},
		[]string{"consumer_name", "event_kind"},
	)

	BufferLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregator_buffer_length",
			Help: "Current number of events held in the event buffer",
		},
	)

	// Publisher metrics
	PublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_published_total",
			Help: "Total number of events successfully published, by sink",
		},
		[]string{"sink"},
	)

	FilteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_filtered_total",
			Help: "Total number of events filtered out before publish, by sink",
		},
		[]string{"sink"},
	)

	FailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_failed_total",
			Help: "Total number of events dropped after a failed publish (retries exhausted, non-retryable error, or cancellation during backoff), by sink",
		},
		[]string{"sink"},
	)

	PublisherUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aggregator_publisher_up",
			Help: "Whether a publisher's run loop is currently active (1) or stopped (0), by sink",
		},
		[]string{"sink"},
	)

	PublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregator_publish_duration_seconds",
			Help:    "Time taken for a single publish attempt, by sink",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(
		EventsReceivedTotal,
		EventsBufferAddFailuresTotal,
		QueueDroppedEventsTotal,
		BufferLength,
		PublishedTotal,
		FilteredTotal,
		FailedTotal,
		PublisherUp,
		PublishDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
