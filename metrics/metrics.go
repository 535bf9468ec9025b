package metrics

import (
	"time"

	"github.com/prebid/oneplusx-rtd/openrtb_ext"
)

// ProfileRequestStatus describes how a bid cycle of the RTD module ended.
type ProfileRequestStatus string

const (
	ProfileRequestOK             ProfileRequestStatus = "ok"
	ProfileRequestNoBidders      ProfileRequestStatus = "no_bidders"
	ProfileRequestBadConfig      ProfileRequestStatus = "bad_config"
	ProfileRequestTransportError ProfileRequestStatus = "transport_error"
	ProfileRequestTimeout        ProfileRequestStatus = "timeout"
	ProfileRequestMergeError     ProfileRequestStatus = "merge_error"
	ProfileRequestUnknownError   ProfileRequestStatus = "unknown_error"
)

// ProfileRequestStatuses returns all possible bid cycle statuses.
func ProfileRequestStatuses() []ProfileRequestStatus {
	return []ProfileRequestStatus{
		ProfileRequestOK,
		ProfileRequestNoBidders,
		ProfileRequestBadConfig,
		ProfileRequestTransportError,
		ProfileRequestTimeout,
		ProfileRequestMergeError,
		ProfileRequestUnknownError,
	}
}

// MetricsEngine is a generic interface to record RTD module metrics into the desired backend.
// RecordProfileRequest fires exactly once per bid cycle. RecordProfileRequestTime fires once
// per outbound profile request and RecordBidderConfigMerge once per merged bidder.
type MetricsEngine interface {
	RecordProfileRequest(status ProfileRequestStatus)
	RecordProfileRequestTime(length time.Duration)
	RecordBidderConfigMerge(bidder openrtb_ext.BidderName, success bool)
}
