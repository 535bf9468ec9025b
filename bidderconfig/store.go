// Package bidderconfig holds the per-bidder configuration which the RTD modules enrich.
//
// An entry is an opaque JSON object owned by the host. Modules read an entry, merge their
// data under a reserved path and write it back. Stores must make a single Read or Write
// atomic. They don't serialize read-modify-write sequences across callers.
package bidderconfig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/redis/go-redis/v9"
)

// Store reads and writes bidder config entries.
type Store interface {
	// Read returns the config entry of bidder, or nil if the bidder has none.
	Read(ctx context.Context, bidder openrtb_ext.BidderName) (json.RawMessage, error)
	// Write replaces the config entry of bidder.
	Write(ctx context.Context, bidder openrtb_ext.BidderName, entry json.RawMessage) error
}

// NewStore builds the Store selected by cfg.
func NewStore(cfg config.BidderConfigStore) (Store, error) {
	switch cfg.Type {
	case config.BidderConfigStoreMemory, "":
		return NewMemoryStore(nil), nil
	case config.BidderConfigStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStore(client, cfg.Redis.KeyPrefix), nil
	case config.BidderConfigStorePostgres:
		return OpenPostgresStore(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown bidder config store type %q", cfg.Type)
	}
}
