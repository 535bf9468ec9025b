package bidderconfig

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prebid/oneplusx-rtd/openrtb_ext"
)

// MemoryStore keeps bidder config entries in process memory.
type MemoryStore struct {
	mutex   sync.RWMutex
	entries map[openrtb_ext.BidderName]json.RawMessage
}

// NewMemoryStore returns a MemoryStore seeded with a copy of entries.
func NewMemoryStore(entries map[openrtb_ext.BidderName]json.RawMessage) *MemoryStore {
	store := &MemoryStore{
		entries: make(map[openrtb_ext.BidderName]json.RawMessage, len(entries)),
	}
	for bidder, entry := range entries {
		store.entries[bidder] = copyEntry(entry)
	}
	return store
}

func (s *MemoryStore) Read(_ context.Context, bidder openrtb_ext.BidderName) (json.RawMessage, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, ok := s.entries[bidder]
	if !ok {
		return nil, nil
	}
	return copyEntry(entry), nil
}

func (s *MemoryStore) Write(_ context.Context, bidder openrtb_ext.BidderName, entry json.RawMessage) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[bidder] = copyEntry(entry)
	return nil
}

func copyEntry(entry json.RawMessage) json.RawMessage {
	if entry == nil {
		return nil
	}
	c := make(json.RawMessage, len(entry))
	copy(c, entry)
	return c
}
