package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pagesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthbridge",
		Subsystem: "store",
		Name:      "pages_fetched_total",
		Help:      "Pages fetched from the record store, by record kind.",
	}, []string{"kind"})
	recordsFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthbridge",
		Subsystem: "store",
		Name:      "records_fetched_total",
		Help:      "Native records fetched from the record store, by record kind.",
	}, []string{"kind"})
	recordsMapped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthbridge",
		Subsystem: "engine",
		Name:      "records_mapped_total",
		Help:      "Canonical records produced by the mappers, by record kind.",
	}, []string{"kind"})
	aggregationGaps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthbridge",
		Subsystem: "engine",
		Name:      "aggregation_gaps_total",
		Help:      "Workout aggregate sub-queries degraded to an absent field by a permission or fetch failure, by data type.",
	}, []string{"data_type"})
	lastSampleSavedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthbridge",
		Subsystem: "engine",
		Name:      "last_sample_saved_timestamp_seconds",
		Help:      "Unix timestamp of the most recent sample written to the store.",
	})
)

func init() {
	prometheus.MustRegister(pagesFetched, recordsFetched, recordsMapped, aggregationGaps, lastSampleSavedGauge)
}

// RecordPageFetched counts one fetched page and its records.
func RecordPageFetched(kind string, records int) {
	pagesFetched.WithLabelValues(kind).Inc()
	recordsFetched.WithLabelValues(kind).Add(float64(records))
}

// RecordRecordsMapped counts canonical records produced for a kind.
func RecordRecordsMapped(kind string, count int) {
	recordsMapped.WithLabelValues(kind).Add(float64(count))
}

// RecordAggregationGap counts an aggregate sub-query that degraded to an
// absent field.
func RecordAggregationGap(dataType string) {
	aggregationGaps.WithLabelValues(dataType).Inc()
}

// RecordSampleSaved updates the write watermark gauge.
func RecordSampleSaved(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSampleSavedGauge.Set(float64(ts.Unix()))
}
