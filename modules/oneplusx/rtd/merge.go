package oneplusx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/prebid/oneplusx-rtd/bidderconfig"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/metrics"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
)

// Paths of an entry which have to be objects, if present, for the fragment to be merged.
var objectPaths = [][]string{
	{"ortb2"},
	{"ortb2", "site"},
	{"ortb2", "user"},
	{"ortb2", "site", "keywords"},
	{"ortb2", "user", "keywords"},
}

type bidderConfigMerger struct {
	store         bidderconfig.Store
	metricsEngine metrics.MetricsEngine
}

// merge writes fragment into the config entry of bidder. Unsupported bidders are skipped
// without touching the store. Nothing is written once settled reports true; errCycleSettled
// is returned instead.
func (m *bidderConfigMerger) merge(ctx context.Context, bidder openrtb_ext.BidderName, fragment targetingFragment, settled func() bool) error {
	if !openrtb_ext.IsOnePlusXSupported(bidder) {
		return nil
	}

	err := m.mergeEntry(ctx, bidder, fragment, settled)
	if errors.Is(err, errCycleSettled) {
		return err
	}
	m.metricsEngine.RecordBidderConfigMerge(bidder, err == nil)
	return err
}

func (m *bidderConfigMerger) mergeEntry(ctx context.Context, bidder openrtb_ext.BidderName, fragment targetingFragment, settled func() bool) error {
	entry, err := m.store.Read(ctx, bidder)
	if err != nil {
		return &errortypes.MergeError{Bidder: bidder.String(), Message: fmt.Sprintf("failed to read bidder config: %v", err)}
	}

	merged, err := mergeTargeting(entry, fragment)
	if err != nil {
		return &errortypes.MergeError{Bidder: bidder.String(), Message: err.Error()}
	}

	if settled() {
		return errCycleSettled
	}

	if err := m.store.Write(ctx, bidder, merged); err != nil {
		return &errortypes.MergeError{Bidder: bidder.String(), Message: fmt.Sprintf("failed to write bidder config: %v", err)}
	}
	return nil
}

// mergeTargeting returns entry with fragment deep merged under ortb2. Keys outside the
// fragment are left untouched and merging the same fragment twice gives the same result.
func mergeTargeting(entry json.RawMessage, fragment targetingFragment) (json.RawMessage, error) {
	entry = bytes.TrimSpace(entry)
	if len(entry) == 0 || bytes.Equal(entry, []byte("null")) {
		entry = json.RawMessage(`{}`)
	}
	if entry[0] != '{' {
		return nil, errors.New("bidder config is not an object")
	}

	for _, path := range objectPaths {
		_, dataType, _, err := jsonparser.Get(entry, path...)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("malformed bidder config: %v", err)
		}
		if dataType != jsonparser.Object && dataType != jsonparser.Null {
			return nil, fmt.Errorf("%s must be an object, got %s", strings.Join(path, "."), dataType)
		}
	}

	patch, err := json.Marshal(struct {
		ORTB2 targetingFragment `json:"ortb2"`
	}{ORTB2: fragment})
	if err != nil {
		return nil, err
	}

	merged, err := jsonpatch.MergePatch(entry, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge targeting: %v", err)
	}
	return merged, nil
}
