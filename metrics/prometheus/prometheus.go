package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/metrics"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	profileRequests      *prometheus.CounterVec
	profileRequestsTimer prometheus.Histogram
	bidderConfigMerges   *prometheus.CounterVec
}

const (
	bidderLabel  = "bidder"
	statusLabel  = "status"
	successLabel = "success"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
// The metrics are registered on registry, or on a new registry if it is nil.
func NewMetrics(cfg config.PrometheusMetrics, registry *prometheus.Registry) *Metrics {
	profileRequestTimeBuckets := []float64{0.05, 0.1, 0.15, 0.20, 0.25, 0.3, 0.4, 0.5, 0.75, 1, 2}

	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	metrics := Metrics{Registry: registry}

	metrics.profileRequests = newCounter(cfg, metrics.Registry,
		"rtd_profile_requests",
		"Count of 1plusX bid cycles labeled by outcome status.",
		[]string{statusLabel})

	metrics.profileRequestsTimer = newHistogram(cfg, metrics.Registry,
		"rtd_profile_request_time_seconds",
		"Seconds to receive a response from the 1plusX profiling service, timeouts included.",
		profileRequestTimeBuckets)

	metrics.bidderConfigMerges = newCounter(cfg, metrics.Registry,
		"rtd_bidder_config_merges",
		"Count of targeting merges into bidder configs labeled by bidder and success.",
		[]string{bidderLabel, successLabel})

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogram(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, buckets []float64) prometheus.Histogram {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogram(opts)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics) {
	for _, status := range metrics.ProfileRequestStatuses() {
		m.profileRequests.WithLabelValues(string(status))
	}

	for _, bidder := range openrtb_ext.OnePlusXSupportedBidders {
		for _, success := range []bool{true, false} {
			m.bidderConfigMerges.WithLabelValues(string(bidder), strconv.FormatBool(success))
		}
	}
}

func (m *Metrics) RecordProfileRequest(status metrics.ProfileRequestStatus) {
	m.profileRequests.With(prometheus.Labels{
		statusLabel: string(status),
	}).Inc()
}

func (m *Metrics) RecordProfileRequestTime(length time.Duration) {
	m.profileRequestsTimer.Observe(length.Seconds())
}

func (m *Metrics) RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool) {
	m.bidderConfigMerges.With(prometheus.Labels{
		bidderLabel:  string(bidder),
		successLabel: strconv.FormatBool(success),
	}).Inc()
}
