// Package metrics exports parsing counters as Prometheus metrics.
//
// A Collector implements csv.Observer, so it can be plugged straight into
// csv.Options:
//
//	collector := metrics.NewCollector(prometheus.DefaultRegisterer, "orders.csv")
//	opts := csv.DefaultOptions()
//	opts.Observer = collector
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

const namespace = "csvstream"

// Collector counts rows read, rows skipped, and decode failures for one
// input source. It is safe for concurrent use.
type Collector struct {
	rowsRead       prometheus.Counter
	rowsSkipped    prometheus.Counter
	fieldsPerRow   prometheus.Observer
	decodeFailures *prometheus.CounterVec
}

var _ csv.Observer = (*Collector)(nil)

// NewCollector registers the collector's metrics with reg, labelled with
// source. Registering the same source twice on one registry panics, as with
// any duplicate Prometheus registration.
func NewCollector(reg prometheus.Registerer, source string) *Collector {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"source": source}

	return &Collector{
		rowsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_read_total",
			Help:        "Rows tokenized from the source, header included.",
			ConstLabels: labels,
		}),
		rowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_skipped_total",
			Help:        "Rows dropped because their field count did not match.",
			ConstLabels: labels,
		}),
		fieldsPerRow: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "fields_per_row",
			Help:        "Number of fields in each tokenized row.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),
		decodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "decode_failures_total",
			Help:        "Rows that failed to decode into a typed value, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
	}
}

// RowRead implements csv.Observer.
func (c *Collector) RowRead(fields int) {
	c.rowsRead.Inc()
	c.fieldsPerRow.Observe(float64(fields))
}

// RowSkipped implements csv.Observer.
func (c *Collector) RowSkipped(int, int) {
	c.rowsSkipped.Inc()
}

// DecodeFailed implements csv.Observer.
func (c *Collector) DecodeFailed(err error) {
	c.decodeFailures.WithLabelValues(Reason(err)).Inc()
}

// Reason classifies a decode error for the "reason" label.
func Reason(err error) string {
	var (
		corrupted   *csv.DataCorruptedError
		notFound    *csv.KeyNotFoundError
		unsupported *csv.UnsupportedTypeError
	)
	switch {
	case errors.As(err, &corrupted):
		return "data_corrupted"
	case errors.As(err, &notFound), errors.Is(err, csv.ErrKeyNotFound):
		return "key_not_found"
	case errors.As(err, &unsupported):
		return "unsupported_type"
	default:
		return "other"
	}
}
