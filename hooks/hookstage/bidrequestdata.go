package hookstage

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// BidRequestData hooks are invoked once per auction, before bidder requests are built,
// to let real-time data modules enrich the per-bidder configuration.
//
// At this stage, account config is available,
// the account-level module config is passed to hooks.
//
// The hook must return without waiting for its own I/O and must call done exactly once
// when it has finished, whatever the outcome. The auction waits for done or for its own
// deadline, whichever comes first.
type BidRequestData interface {
	HandleBidRequestDataHook(
		context.Context,
		ModuleInvocationContext,
		BidRequestDataPayload,
		func(),
	)
}

// BidRequestDataPayload consists of the openrtb2.BidRequest of the current auction.
// Hooks must treat it as read-only.
type BidRequestDataPayload struct {
	BidRequest *openrtb2.BidRequest
}
