package config

import (
	"time"

	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/metrics"
	prometheusmetrics "github.com/prebid/oneplusx-rtd/metrics/prometheus"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/prometheus/client_golang/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance. promRegistry may be nil, in which case the prometheus engine owns a new one.
func NewMetricsEngine(cfg *config.Configuration, promRegistry *prometheus.Registry) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.GoMetrics.Enabled {
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry(cfg.Metrics.GoMetrics.Prefix), openrtb_ext.OnePlusXSupportedBidders)
		engineList = append(engineList, returnEngine.GoMetrics)
	}
	if cfg.Metrics.Prometheus.Enabled {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus, promRegistry)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now calculate the type of engine to return
	if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else if len(engineList) == 0 {
		returnEngine.MetricsEngine = &DummyMetricsEngine{}
	} else {
		returnEngine.MetricsEngine = &engineList
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordProfileRequest across all engines
func (me *MultiMetricsEngine) RecordProfileRequest(status metrics.ProfileRequestStatus) {
	for _, thisME := range *me {
		thisME.RecordProfileRequest(status)
	}
}

// RecordProfileRequestTime across all engines
func (me *MultiMetricsEngine) RecordProfileRequestTime(length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordProfileRequestTime(length)
	}
}

// RecordBidderConfigMerge across all engines
func (me *MultiMetricsEngine) RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool) {
	for _, thisME := range *me {
		thisME.RecordBidderConfigMerge(bidder, success)
	}
}

// DummyMetricsEngine is a Noop metrics engine in case no metrics are configured. (may also be useful for tests)
type DummyMetricsEngine struct{}

// RecordProfileRequest as a noop
func (me *DummyMetricsEngine) RecordProfileRequest(status metrics.ProfileRequestStatus) {
}

// RecordProfileRequestTime as a noop
func (me *DummyMetricsEngine) RecordProfileRequestTime(length time.Duration) {
}

// RecordBidderConfigMerge as a noop
func (me *DummyMetricsEngine) RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool) {
}
