package moduledeps

import (
	"net/http"
	"testing"
	"time"

	"github.com/prebid/oneplusx-rtd/bidderconfig"
	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := &config.Configuration{
		Client: config.HTTPClient{
			MaxConnsPerHost:     5,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30,
		},
		BidderConfigStore: config.BidderConfigStore{Type: config.BidderConfigStoreMemory},
	}
	metricsEngine := &metrics.MetricsEngineMock{}

	deps, err := New(cfg, metricsEngine)

	require.NoError(t, err)
	assert.Equal(t, metricsEngine, deps.MetricsEngine)
	assert.IsType(t, &bidderconfig.MemoryStore{}, deps.BidderConfigStore)

	require.NotNil(t, deps.HTTPClient)
	transport, ok := deps.HTTPClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 5, transport.MaxConnsPerHost)
	assert.Equal(t, 100, transport.MaxIdleConns)
	assert.Equal(t, 10, transport.MaxIdleConnsPerHost)
	assert.Equal(t, 30*time.Second, transport.IdleConnTimeout)
}

func TestNewUnknownStore(t *testing.T) {
	cfg := &config.Configuration{
		BidderConfigStore: config.BidderConfigStore{Type: "aerospike"},
	}

	_, err := New(cfg, nil)

	assert.EqualError(t, err, `failed to create bidder config store: unknown bidder config store type "aerospike"`)
}
