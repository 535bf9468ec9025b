// Package oneplusx implements a real-time data module which enriches the per-bidder
// config with 1plusX audience segments and contextual topics.
package oneplusx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang/glog"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/prebid/oneplusx-rtd/hooks/hookstage"
	"github.com/prebid/oneplusx-rtd/metrics"
	metricsConf "github.com/prebid/oneplusx-rtd/metrics/config"
	"github.com/prebid/oneplusx-rtd/modules/moduledeps"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/prebid/openrtb/v20/openrtb2"
)

var errCycleSettled = errors.New("bid cycle settled before the pipeline ended")

// Builder is the entry point for the module.
// It validates the host level config and wires the module dependencies.
func Builder(config json.RawMessage, deps moduledeps.ModuleDeps) (interface{}, error) {
	var cfg Config
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	endpoint, err := newProfileEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	params, err := normalizeParamKeys(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	hostConfig, err := json.Marshal(struct {
		Params json.RawMessage `json:"params,omitempty"`
	}{Params: params})
	if err != nil {
		return nil, err
	}

	if deps.BidderConfigStore == nil {
		return nil, errors.New("bidder config store is required")
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var metricsEngine metrics.MetricsEngine = &metricsConf.DummyMetricsEngine{}
	if deps.MetricsEngine != nil {
		metricsEngine = deps.MetricsEngine
	}

	return &Module{
		cfg:        cfg,
		hostConfig: hostConfig,
		endpoint:   endpoint,
		client: &profileClient{
			httpClient:    httpClient,
			metricsEngine: metricsEngine,
		},
		merger: &bidderConfigMerger{
			store:         deps.BidderConfigStore,
			metricsEngine: metricsEngine,
		},
		metricsEngine: metricsEngine,
	}, nil
}

// Config holds the host level module config.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
	// RequireBidders makes a bid cycle without any selected bidder a failure.
	RequireBidders bool `json:"require_bidders"`
	// Params are used for accounts which don't override the module config.
	Params json.RawMessage `json:"params"`
}

// Module implements the 1plusX RTD module
type Module struct {
	cfg           Config
	hostConfig    json.RawMessage
	endpoint      *profileEndpoint
	client        *profileClient
	merger        *bidderConfigMerger
	metricsEngine metrics.MetricsEngine
}

// HandleBidRequestDataHook starts a bid cycle and returns at once. done is called exactly
// once, when the cycle has ended or ctx is done, whichever comes first.
func (m *Module) HandleBidRequestDataHook(
	ctx context.Context,
	miCtx hookstage.ModuleInvocationContext,
	payload hookstage.BidRequestDataPayload,
	done func(),
) {
	m.start(ctx, miCtx, payload, done)
}

// Run executes a bid cycle and waits for its outcome.
func (m *Module) Run(
	ctx context.Context,
	miCtx hookstage.ModuleInvocationContext,
	payload hookstage.BidRequestDataPayload,
) Outcome {
	c := m.start(ctx, miCtx, payload, nil)
	<-c.finished
	return c.outcome
}

func (m *Module) start(
	ctx context.Context,
	miCtx hookstage.ModuleInvocationContext,
	payload hookstage.BidRequestDataPayload,
	done func(),
) *cycle {
	c := newCycle(miCtx.AccountID, done, m.metricsEngine)

	stop := context.AfterFunc(ctx, func() {
		c.finish(failed(contextError(ctx.Err(), 0)))
	})

	go func() {
		defer stop()
		defer func() {
			if r := recover(); r != nil {
				glog.Errorf("oneplusx.rtd: recovered from panic in bid cycle: %v", r)
				c.finish(failed(fmt.Errorf("panic in bid cycle: %v", r)))
			}
		}()

		c.finish(m.run(ctx, c, miCtx, payload))
	}()

	return c
}

func (m *Module) run(
	ctx context.Context,
	c *cycle,
	miCtx hookstage.ModuleInvocationContext,
	payload hookstage.BidRequestDataPayload,
) Outcome {
	params, err := parseParams(m.moduleConfig(miCtx))
	if err != nil {
		return failed(err)
	}

	bidders := selectBidders(params.Bidders, openrtb_ext.BiddersInRequest(payload.BidRequest))
	if len(bidders) == 0 {
		if m.cfg.RequireBidders {
			return failed(&errortypes.ConfigError{Reason: errortypes.NoBidders, Message: "none of the configured bidders is supported and in the bid request"})
		}
		return succeeded(metrics.ProfileRequestNoBidders, bidders)
	}

	profileURL, err := m.endpoint.buildURL(params.CustomerID, pageURL(payload.BidRequest))
	if err != nil {
		return failed(err)
	}

	profile, err := m.client.fetch(ctx, profileURL, params.Timeout)
	if err != nil {
		return failed(err)
	}

	if c.isSettled() {
		return failed(errCycleSettled)
	}
	fragment := buildTargetingFragment(profile)

	merged := make([]openrtb_ext.BidderName, 0, len(bidders))
	for _, bidder := range bidders {
		if c.isSettled() {
			return failed(errCycleSettled)
		}
		if err := m.merger.merge(ctx, bidder, fragment, c.isSettled); err != nil {
			if errors.Is(err, errCycleSettled) {
				return failed(err)
			}
			return Outcome{Status: metrics.ProfileRequestMergeError, Bidders: merged, Err: err}
		}
		merged = append(merged, bidder)
	}

	return succeeded(metrics.ProfileRequestOK, merged)
}

// moduleConfig prefers the account level module config over the host level one.
func (m *Module) moduleConfig(miCtx hookstage.ModuleInvocationContext) json.RawMessage {
	if len(miCtx.AccountConfig) > 0 {
		return miCtx.AccountConfig
	}
	return m.hostConfig
}

func pageURL(req *openrtb2.BidRequest) string {
	if req == nil || req.Site == nil {
		return ""
	}
	return req.Site.Page
}

// Host configs read through viper come with lower cased keys.
var paramKeys = []string{"customerId", "timeout", "bidders"}

func normalizeParamKeys(params json.RawMessage) (json.RawMessage, error) {
	if len(params) == 0 || string(params) == "null" {
		return nil, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(params, &values); err != nil {
		return nil, err
	}

	for key, value := range values {
		for _, paramKey := range paramKeys {
			if key != paramKey && strings.EqualFold(key, paramKey) {
				if _, exists := values[paramKey]; !exists {
					values[paramKey] = value
				}
				delete(values, key)
			}
		}
	}

	return json.Marshal(values)
}
