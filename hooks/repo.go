package hooks

import (
	"fmt"

	"github.com/prebid/oneplusx-rtd/hooks/hookstage"
)

// Names of the available stages.
const (
	StageBidRequestData = "bidrequestdata"
)

// HookRepository is the interface that exposes methods
// that return instance of the certain hook interface.
//
// Each method accepts hook ID and returns hook interface
// registered under this ID and true if hook found
// otherwise nil value returned with the false,
// indicating not found hook for this ID.
type HookRepository interface {
	GetBidRequestDataHook(id string) (hookstage.BidRequestData, bool)
}

// NewHookRepository returns a new instance of the HookRepository interface.
//
// The hooks argument represents a mapping of hook IDs to types
// implementing at least one of the available hook interfaces, see [hookstage] pkg.
//
// Error returned if provided interface doesn't implement any hook interface
// or hook with same ID already exists.
func NewHookRepository(hooks map[string]interface{}) (HookRepository, error) {
	repo := new(hookRepository)
	for id, hook := range hooks {
		if err := repo.add(id, hook); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

type hookRepository struct {
	bidRequestDataHooks map[string]hookstage.BidRequestData
}

func (r *hookRepository) GetBidRequestDataHook(id string) (hookstage.BidRequestData, bool) {
	return getHook(r.bidRequestDataHooks, id)
}

func (r *hookRepository) add(id string, hook interface{}) error {
	var hasAnyHooks bool
	var err error

	if h, ok := hook.(hookstage.BidRequestData); ok {
		hasAnyHooks = true
		if r.bidRequestDataHooks, err = addHook(r.bidRequestDataHooks, h, id); err != nil {
			return err
		}
	}

	if !hasAnyHooks {
		return fmt.Errorf(`hook "%s" does not implement any supported hook interface`, id)
	}

	return nil
}

func addHook[T any](hooks map[string]T, hook T, id string) (map[string]T, error) {
	if hooks == nil {
		hooks = make(map[string]T)
	}

	if _, ok := hooks[id]; ok {
		return nil, fmt.Errorf(`hook with ID "%s" already exists`, id)
	}

	hooks[id] = hook

	return hooks, nil
}

func getHook[T any](hooks map[string]T, id string) (T, bool) {
	hook, ok := hooks[id]
	return hook, ok
}
