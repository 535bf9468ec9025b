package oneplusx

import "github.com/prebid/oneplusx-rtd/openrtb_ext"

// selectBidders returns the requested bidders which are both in the bid request and
// supported, keeping the requested order. The first occurrence of a duplicate wins.
// An empty result is valid.
func selectBidders(requested []openrtb_ext.BidderName, inRequest []openrtb_ext.BidderName) []openrtb_ext.BidderName {
	present := make(map[openrtb_ext.BidderName]struct{}, len(inRequest))
	for _, bidder := range inRequest {
		present[bidder] = struct{}{}
	}

	selected := make([]openrtb_ext.BidderName, 0, len(requested))
	seen := make(map[openrtb_ext.BidderName]struct{}, len(requested))
	for _, bidder := range requested {
		if _, dup := seen[bidder]; dup {
			continue
		}
		seen[bidder] = struct{}{}

		if _, ok := present[bidder]; !ok {
			continue
		}
		if !openrtb_ext.IsOnePlusXSupported(bidder) {
			continue
		}
		selected = append(selected, bidder)
	}
	return selected
}
