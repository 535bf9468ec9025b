package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullConfig = []byte(`
http_client:
  max_connections_per_host: 10
  max_idle_connections: 500
  max_idle_connections_per_host: 20
  idle_connection_timeout_seconds: 30
metrics:
  prometheus:
    enabled: true
    namespace: pbs
    subsystem: rtd
  gometrics:
    enabled: true
    prefix: "custom."
bidder_config_store:
  type: redis
  redis:
    addr: "localhost:6379"
    key_prefix: "bc:"
hooks:
  enabled: true
  modules:
    oneplusx:
      rtd:
        enabled: true
        endpoint: "https://{{.CustomerID}}.profiles.tagger.opecloud.com/v1.0/targeting"
`)

func newViper(t *testing.T, yaml []byte) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetupViper(v, "")
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBuffer(yaml)))
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := New(newViper(t, []byte("")))
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Client.MaxIdleConns)
	assert.Equal(t, 10, cfg.Client.MaxIdleConnsPerHost)
	assert.Equal(t, 60, cfg.Client.IdleConnTimeout)
	assert.False(t, cfg.Metrics.Prometheus.Enabled)
	assert.Equal(t, "rtd.", cfg.Metrics.GoMetrics.Prefix)
	assert.False(t, cfg.Hooks.Enabled)
	assert.Equal(t, BidderConfigStoreMemory, cfg.BidderConfigStore.Type)
	assert.Equal(t, "bidderconfig:", cfg.BidderConfigStore.Redis.KeyPrefix)
	assert.Equal(t, "bidder_configs", cfg.BidderConfigStore.Postgres.Table)
}

func TestFullConfig(t *testing.T) {
	cfg, err := New(newViper(t, fullConfig))
	require.NoError(t, err, "Setting up config should work but it doesn't")

	assert.Equal(t, 10, cfg.Client.MaxConnsPerHost)
	assert.Equal(t, 500, cfg.Client.MaxIdleConns)
	assert.Equal(t, 20, cfg.Client.MaxIdleConnsPerHost)
	assert.Equal(t, 30, cfg.Client.IdleConnTimeout)
	assert.True(t, cfg.Metrics.Prometheus.Enabled)
	assert.Equal(t, "pbs", cfg.Metrics.Prometheus.Namespace)
	assert.Equal(t, "rtd", cfg.Metrics.Prometheus.Subsystem)
	assert.True(t, cfg.Metrics.GoMetrics.Enabled)
	assert.Equal(t, "custom.", cfg.Metrics.GoMetrics.Prefix)
	assert.Equal(t, BidderConfigStoreRedis, cfg.BidderConfigStore.Type)
	assert.Equal(t, "localhost:6379", cfg.BidderConfigStore.Redis.Addr)
	assert.Equal(t, "bc:", cfg.BidderConfigStore.Redis.KeyPrefix)
	assert.True(t, cfg.Hooks.Enabled)

	moduleCfg, ok := cfg.Hooks.Modules["oneplusx"]["rtd"].(map[string]interface{})
	require.True(t, ok, "module config should be decoded as a map")
	assert.Equal(t, true, moduleCfg["enabled"])
	assert.Equal(t, "https://{{.CustomerID}}.profiles.tagger.opecloud.com/v1.0/targeting", moduleCfg["endpoint"])
}

func TestValidateBidderConfigStore(t *testing.T) {
	testCases := []struct {
		description    string
		store          BidderConfigStore
		expectedErrors []string
	}{
		{
			description: "memory",
			store:       BidderConfigStore{Type: BidderConfigStoreMemory},
		},
		{
			description:    "redis without addr",
			store:          BidderConfigStore{Type: BidderConfigStoreRedis},
			expectedErrors: []string{"bidder_config_store.redis.addr must be set when bidder_config_store.type is redis"},
		},
		{
			description: "postgres without dsn and table",
			store:       BidderConfigStore{Type: BidderConfigStorePostgres},
			expectedErrors: []string{
				"bidder_config_store.postgres.dsn must be set when bidder_config_store.type is postgres",
				"bidder_config_store.postgres.table must not be empty",
			},
		},
		{
			description:    "unknown type",
			store:          BidderConfigStore{Type: "aerospike"},
			expectedErrors: []string{`bidder_config_store.type must be one of memory, redis or postgres. Got "aerospike"`},
		},
	}

	for _, test := range testCases {
		errs := test.store.validate(nil)
		messages := make([]string, 0, len(errs))
		for _, err := range errs {
			messages = append(messages, err.Error())
		}
		if len(test.expectedErrors) == 0 {
			assert.Empty(t, messages, test.description)
		} else {
			assert.Equal(t, test.expectedErrors, messages, test.description)
		}
	}
}

func TestNewReturnsAggregatedValidationErrors(t *testing.T) {
	v := newViper(t, []byte(`
http_client:
  max_idle_connections: -1
bidder_config_store:
  type: postgres
  postgres:
    table: ""
`))

	cfg, err := New(v)
	require.Error(t, err)
	assert.NotNil(t, cfg)
	assert.Contains(t, err.Error(), "validation errors (3 errors)")
	assert.Contains(t, err.Error(), "http_client.max_idle_connections must be >= 0. Got -1")
}

func TestValidateHooksModules(t *testing.T) {
	hooks := Hooks{Modules: Modules{
		"oneplusx": {"rtd": map[string]interface{}{"enabled": true}, "other": "not-an-object", "empty": nil},
	}}

	errs := hooks.validate(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "hooks.modules.oneplusx.other must be an object", errs[0].Error())
}
