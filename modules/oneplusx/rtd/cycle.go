package oneplusx

import (
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/metrics"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
)

// Outcome is the result of a single bid cycle.
type Outcome struct {
	Status metrics.ProfileRequestStatus
	// Bidders whose config was enriched.
	Bidders []openrtb_ext.BidderName
	Err     error
}

func succeeded(status metrics.ProfileRequestStatus, bidders []openrtb_ext.BidderName) Outcome {
	return Outcome{Status: status, Bidders: bidders}
}

func failed(err error) Outcome {
	return Outcome{Status: statusFromError(err), Err: err}
}

func statusFromError(err error) metrics.ProfileRequestStatus {
	switch errortypes.ReadCode(err) {
	case errortypes.ConfigErrorCode:
		if configErr, ok := err.(*errortypes.ConfigError); ok && configErr.Reason == errortypes.NoBidders {
			return metrics.ProfileRequestNoBidders
		}
		return metrics.ProfileRequestBadConfig
	case errortypes.TransportErrorCode:
		return metrics.ProfileRequestTransportError
	case errortypes.TimeoutErrorCode:
		return metrics.ProfileRequestTimeout
	case errortypes.MergeErrorCode:
		return metrics.ProfileRequestMergeError
	default:
		return metrics.ProfileRequestUnknownError
	}
}

// cycle tracks one bid cycle. Whatever settles it first wins, later attempts are no-ops.
type cycle struct {
	accountID     string
	settled       atomic.Bool
	done          func()
	finished      chan struct{}
	outcome       Outcome
	metricsEngine metrics.MetricsEngine
}

func newCycle(accountID string, done func(), metricsEngine metrics.MetricsEngine) *cycle {
	return &cycle{
		accountID:     accountID,
		done:          done,
		finished:      make(chan struct{}),
		metricsEngine: metricsEngine,
	}
}

func (c *cycle) isSettled() bool {
	return c.settled.Load()
}

// finish settles the cycle with outcome and signals completion. It returns false if the
// cycle was already settled.
func (c *cycle) finish(outcome Outcome) bool {
	if !c.settled.CompareAndSwap(false, true) {
		return false
	}

	c.outcome = outcome
	if outcome.Err != nil {
		glog.Warningf("oneplusx.rtd: bid cycle failed for account %q: %v", c.accountID, outcome.Err)
	} else {
		glog.V(2).Infof("oneplusx.rtd: bid cycle for account %q ended with status %s, bidders %v", c.accountID, outcome.Status, outcome.Bidders)
	}
	c.metricsEngine.RecordProfileRequest(outcome.Status)

	close(c.finished)
	if c.done != nil {
		c.done()
	}
	return true
}
