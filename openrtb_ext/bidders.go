package openrtb_ext

import (
	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// BidderName refers to a core bidder id or an alias id.
type BidderName string

const (
	BidderAppnexus BidderName = "appnexus"
	BidderRubicon  BidderName = "rubicon"
)

// OnePlusXSupportedBidders lists the bidders whose config may receive 1plusX targeting data.
// It must not be modified at runtime.
var OnePlusXSupportedBidders = []BidderName{
	BidderAppnexus,
	BidderRubicon,
}

var onePlusXSupportedBidderSet = func() map[BidderName]struct{} {
	set := make(map[BidderName]struct{}, len(OnePlusXSupportedBidders))
	for _, b := range OnePlusXSupportedBidders {
		set[b] = struct{}{}
	}
	return set
}()

// IsOnePlusXSupported returns true if the bidder may receive 1plusX targeting data.
func IsOnePlusXSupported(name BidderName) bool {
	_, ok := onePlusXSupportedBidderSet[name]
	return ok
}

func (name BidderName) String() string {
	return string(name)
}

// reservedImpExtKeys are imp.ext keys which never name a bidder.
var reservedImpExtKeys = map[string]struct{}{
	"prebid":  {},
	"data":    {},
	"context": {},
	"skadn":   {},
	"gpid":    {},
	"tid":     {},
	"ae":      {},
}

// BiddersInRequest returns the bidders present in the request imps, in order of first appearance.
//
// Bidders are read from imp[].ext.prebid.bidder. Legacy requests carrying bidder params
// directly under imp[].ext are accepted too. Imps with malformed ext are skipped.
func BiddersInRequest(req *openrtb2.BidRequest) []BidderName {
	if req == nil {
		return nil
	}

	seen := make(map[BidderName]struct{})
	bidders := make([]BidderName, 0)
	add := func(name BidderName) {
		if _, ok := seen[name]; ok || len(name) == 0 {
			return
		}
		seen[name] = struct{}{}
		bidders = append(bidders, name)
	}

	for _, imp := range req.Imp {
		if len(imp.Ext) == 0 {
			continue
		}

		if bidderExt, dataType, _, err := jsonparser.Get(imp.Ext, "prebid", "bidder"); err == nil && dataType == jsonparser.Object {
			jsonparser.ObjectEach(bidderExt, func(key []byte, _ []byte, _ jsonparser.ValueType, _ int) error {
				if name, ok := bidderKey(key); ok {
					add(name)
				}
				return nil
			})
		}

		jsonparser.ObjectEach(imp.Ext, func(key []byte, _ []byte, dataType jsonparser.ValueType, _ int) error {
			if dataType != jsonparser.Object {
				return nil
			}
			if name, ok := bidderKey(key); ok {
				if _, reserved := reservedImpExtKeys[string(name)]; !reserved {
					add(name)
				}
			}
			return nil
		})
	}

	return bidders
}

// bidderKey turns an object key into a bidder name, resolving any JSON escapes left in it.
func bidderKey(key []byte) (BidderName, bool) {
	name, err := jsonparser.ParseString(key)
	if err != nil {
		return "", false
	}
	return BidderName(name), true
}
