package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics implementation of MetricsEngine.
type Metrics struct {
	MetricsRegistry metrics.Registry

	ProfileRequestMeter map[ProfileRequestStatus]metrics.Meter
	ProfileRequestTimer metrics.Timer

	// Bidder merge meters, keyed by bidder. Supported bidders are preloaded.
	BidderMergeMeters map[openrtb_ext.BidderName]*BidderMergeMeters
	bidderMergeMutex  sync.RWMutex
}

// BidderMergeMeters holds the merge outcome meters for a single bidder.
type BidderMergeMeters struct {
	SuccessMeter metrics.Meter
	ErrorMeter   metrics.Meter
}

// NewMetrics creates a new go-metrics engine registering its metrics on registry.
func NewMetrics(registry metrics.Registry, bidders []openrtb_ext.BidderName) *Metrics {
	m := &Metrics{
		MetricsRegistry:     registry,
		ProfileRequestMeter: make(map[ProfileRequestStatus]metrics.Meter),
		ProfileRequestTimer: metrics.GetOrRegisterTimer("profile_request_time", registry),
		BidderMergeMeters:   make(map[openrtb_ext.BidderName]*BidderMergeMeters, len(bidders)),
	}

	for _, status := range ProfileRequestStatuses() {
		m.ProfileRequestMeter[status] = metrics.GetOrRegisterMeter(fmt.Sprintf("profile_requests.%s", status), registry)
	}

	for _, bidder := range bidders {
		m.BidderMergeMeters[bidder] = m.newBidderMergeMeters(bidder)
	}

	return m
}

func (m *Metrics) newBidderMergeMeters(bidder openrtb_ext.BidderName) *BidderMergeMeters {
	return &BidderMergeMeters{
		SuccessMeter: metrics.GetOrRegisterMeter(fmt.Sprintf("bidder.%s.config_merge.ok", bidder), m.MetricsRegistry),
		ErrorMeter:   metrics.GetOrRegisterMeter(fmt.Sprintf("bidder.%s.config_merge.error", bidder), m.MetricsRegistry),
	}
}

func (m *Metrics) getBidderMergeMeters(bidder openrtb_ext.BidderName) *BidderMergeMeters {
	m.bidderMergeMutex.RLock()
	bm, ok := m.BidderMergeMeters[bidder]
	m.bidderMergeMutex.RUnlock()
	if ok {
		return bm
	}

	m.bidderMergeMutex.Lock()
	defer m.bidderMergeMutex.Unlock()
	if bm, ok = m.BidderMergeMeters[bidder]; !ok {
		bm = m.newBidderMergeMeters(bidder)
		m.BidderMergeMeters[bidder] = bm
	}
	return bm
}

// RecordProfileRequest implements a part of the MetricsEngine interface
func (m *Metrics) RecordProfileRequest(status ProfileRequestStatus) {
	meter, ok := m.ProfileRequestMeter[status]
	if !ok {
		meter = m.ProfileRequestMeter[ProfileRequestUnknownError]
	}
	meter.Mark(1)
}

// RecordProfileRequestTime implements a part of the MetricsEngine interface
func (m *Metrics) RecordProfileRequestTime(length time.Duration) {
	m.ProfileRequestTimer.Update(length)
}

// RecordBidderConfigMerge implements a part of the MetricsEngine interface
func (m *Metrics) RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool) {
	bm := m.getBidderMergeMeters(bidder)
	if success {
		bm.SuccessMeter.Mark(1)
	} else {
		bm.ErrorMeter.Mark(1)
	}
}
