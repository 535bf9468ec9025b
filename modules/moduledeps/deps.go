package moduledeps

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prebid/oneplusx-rtd/bidderconfig"
	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/metrics"
)

// ModuleDeps provides dependencies that custom modules may need for hooks execution.
// Additional dependencies can be added here if modules need something more.
type ModuleDeps struct {
	HTTPClient        *http.Client
	MetricsEngine     metrics.MetricsEngine
	BidderConfigStore bidderconfig.Store
}

// New builds the module dependencies described by the host configuration.
func New(cfg *config.Configuration, metricsEngine metrics.MetricsEngine) (ModuleDeps, error) {
	store, err := bidderconfig.NewStore(cfg.BidderConfigStore)
	if err != nil {
		return ModuleDeps{}, fmt.Errorf("failed to create bidder config store: %w", err)
	}

	return ModuleDeps{
		HTTPClient:        &http.Client{Transport: getTransport(cfg)},
		MetricsEngine:     metricsEngine,
		BidderConfigStore: store,
	}, nil
}

func getTransport(cfg *config.Configuration) *http.Transport {
	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxConnsPerHost: cfg.Client.MaxConnsPerHost,
		IdleConnTimeout: time.Duration(cfg.Client.IdleConnTimeout) * time.Second,
	}

	if cfg.Client.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.Client.MaxIdleConns
	}

	if cfg.Client.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = cfg.Client.MaxIdleConnsPerHost
	}

	return transport
}
