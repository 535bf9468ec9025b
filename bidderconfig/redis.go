package bidderconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one string key per bidder, named keyPrefix + bidder.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) key(bidder openrtb_ext.BidderName) string {
	return s.keyPrefix + string(bidder)
}

func (s *RedisStore) Read(ctx context.Context, bidder openrtb_ext.BidderName) (json.RawMessage, error) {
	value, err := s.client.Get(ctx, s.key(bidder)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(bidder), err)
	}
	return json.RawMessage(value), nil
}

func (s *RedisStore) Write(ctx context.Context, bidder openrtb_ext.BidderName, entry json.RawMessage) error {
	if err := s.client.Set(ctx, s.key(bidder), []byte(entry), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(bidder), err)
	}
	return nil
}
