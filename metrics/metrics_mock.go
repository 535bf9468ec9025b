package metrics

import (
	"time"

	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordProfileRequest mock
func (me *MetricsEngineMock) RecordProfileRequest(status ProfileRequestStatus) {
	me.Called(status)
}

// RecordProfileRequestTime mock
func (me *MetricsEngineMock) RecordProfileRequestTime(length time.Duration) {
	me.Called(length)
}

// RecordBidderConfigMerge mock
func (me *MetricsEngineMock) RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool) {
	me.Called(bidder, success)
}
