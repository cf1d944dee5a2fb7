package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports migration loop telemetry to Prometheus.
type Observer struct {
	recordsMigrated prometheus.Counter
	recordFailures  prometheus.Counter
	itemsUploaded   prometheus.Counter
	bytesUploaded   prometheus.Counter
	recordDuration  prometheus.Histogram
}

// NewObserver registers the migration metrics. Double registration (tests,
// restarts sharing a registry) is tolerated rather than fatal.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	const namespace = "media_migrate"

	observer := &Observer{
		recordsMigrated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_migrated_total",
			Help:      "Count of submissions whose descriptor was persisted.",
		}),
		recordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_failures_total",
			Help:      "Count of submissions whose migration aborted on an error.",
		}),
		itemsUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "representations_uploaded_total",
			Help:      "Count of distinct media items written to the destination store.",
		}),
		bytesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_uploaded_total",
			Help:      "Cumulative payload size written to the destination store.",
		}),
		recordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_duration_seconds",
			Help:      "Time to fully migrate one submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	collectors := []prometheus.Collector{
		observer.recordsMigrated,
		observer.recordFailures,
		observer.itemsUploaded,
		observer.bytesUploaded,
		observer.recordDuration,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("failed to register migration metric: %w", err)
		}
	}

	return observer, nil
}

// RecordMigrated observes one fully persisted submission.
func (o *Observer) RecordMigrated(duration time.Duration, items int, bytes int64) {
	if o == nil {
		return
	}
	o.recordsMigrated.Inc()
	o.itemsUploaded.Add(float64(items))
	o.bytesUploaded.Add(float64(bytes))
	o.recordDuration.Observe(duration.Seconds())
}

// RecordFailure observes one aborted submission.
func (o *Observer) RecordFailure() {
	if o == nil {
		return
	}
	o.recordFailures.Inc()
}
