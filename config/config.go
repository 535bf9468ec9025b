package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/prebid/oneplusx-rtd/errortypes"
	"github.com/spf13/viper"
)

// Configuration specifies the host settings used to build and run the RTD modules.
type Configuration struct {
	Client            HTTPClient        `mapstructure:"http_client"`
	Metrics           Metrics           `mapstructure:"metrics"`
	Hooks             Hooks             `mapstructure:"hooks"`
	BidderConfigStore BidderConfigStore `mapstructure:"bidder_config_store"`
}

type HTTPClient struct {
	MaxConnsPerHost     int `mapstructure:"max_connections_per_host"`
	MaxIdleConns        int `mapstructure:"max_idle_connections"`
	MaxIdleConnsPerHost int `mapstructure:"max_idle_connections_per_host"`
	IdleConnTimeout     int `mapstructure:"idle_connection_timeout_seconds"`
}

type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
	GoMetrics  GoMetrics         `mapstructure:"gometrics"`
}

// PrometheusMetrics configures the prometheus metrics engine.
type PrometheusMetrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// GoMetrics configures the rcrowley/go-metrics engine.
type GoMetrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// BidderConfigStoreType names a bidder config store backend.
type BidderConfigStoreType string

const (
	BidderConfigStoreMemory   BidderConfigStoreType = "memory"
	BidderConfigStoreRedis    BidderConfigStoreType = "redis"
	BidderConfigStorePostgres BidderConfigStoreType = "postgres"
)

// BidderConfigStore selects where per-bidder configs are persisted across bid cycles.
type BidderConfigStore struct {
	Type     BidderConfigStoreType `mapstructure:"type"`
	Redis    RedisStore            `mapstructure:"redis"`
	Postgres PostgresStore         `mapstructure:"postgres"`
}

type RedisStore struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type PostgresStore struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

func (cfg *BidderConfigStore) validate(errs []error) []error {
	switch cfg.Type {
	case BidderConfigStoreMemory:
	case BidderConfigStoreRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("bidder_config_store.redis.addr must be set when bidder_config_store.type is redis"))
		}
	case BidderConfigStorePostgres:
		if cfg.Postgres.DSN == "" {
			errs = append(errs, errors.New("bidder_config_store.postgres.dsn must be set when bidder_config_store.type is postgres"))
		}
		if cfg.Postgres.Table == "" {
			errs = append(errs, errors.New("bidder_config_store.postgres.table must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("bidder_config_store.type must be one of memory, redis or postgres. Got %q", cfg.Type))
	}
	return errs
}

func (cfg *HTTPClient) validate(errs []error) []error {
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("http_client.max_idle_connections must be >= 0. Got %d", cfg.MaxIdleConns))
	}
	if cfg.IdleConnTimeout < 0 {
		errs = append(errs, fmt.Errorf("http_client.idle_connection_timeout_seconds must be >= 0. Got %d", cfg.IdleConnTimeout))
	}
	return errs
}

func (cfg *Configuration) validate() []error {
	var errs []error
	errs = cfg.Client.validate(errs)
	errs = cfg.BidderConfigStore.validate(errs)
	errs = cfg.Hooks.validate(errs)
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper sets the defaults and env bindings on v. If filename is not empty the
// config file with that name is looked up in the working directory and /etc/config.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("http_client.max_connections_per_host", 0)
	v.SetDefault("http_client.max_idle_connections", 400)
	v.SetDefault("http_client.max_idle_connections_per_host", 10)
	v.SetDefault("http_client.idle_connection_timeout_seconds", 60)

	v.SetDefault("metrics.prometheus.enabled", false)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.gometrics.enabled", false)
	v.SetDefault("metrics.gometrics.prefix", "rtd.")

	v.SetDefault("hooks.enabled", false)

	v.SetDefault("bidder_config_store.type", string(BidderConfigStoreMemory))
	v.SetDefault("bidder_config_store.redis.addr", "")
	v.SetDefault("bidder_config_store.redis.db", 0)
	v.SetDefault("bidder_config_store.redis.key_prefix", "bidderconfig:")
	v.SetDefault("bidder_config_store.postgres.dsn", "")
	v.SetDefault("bidder_config_store.postgres.table", "bidder_configs")

	v.SetEnvPrefix("RTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				glog.Warningf("Failed to read config file %s: %v", filename, err)
			}
		}
	}
}
