package core

import (
	"fmt"
	"sync"
)

// Identifiers hands out small integer handles for owners. Released slots are
// reused before the table grows.
type Identifiers struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifiers(capacity int) *Identifiers {
	return &Identifiers{
		owners: make([]interface{}, capacity),
	}
}

func (ids *Identifiers) Acquire(owner interface{}) uint32 {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	length := uint32(len(ids.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if ids.owners[i] == nil {
			ids.owners[i] = owner
			return i
		}
	}

	// No free slots, push a new one. The id will be length - 1.
	ids.owners = append(ids.owners, owner)
	return uint32(len(ids.owners)) - 1
}

func (ids *Identifiers) Owner(id uint32) interface{} {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	if id >= uint32(len(ids.owners)) {
		return nil
	}
	return ids.owners[id]
}

func (ids *Identifiers) Release(id uint32) error {
	ids.mu.Lock()
	defer ids.mu.Unlock()

	length := uint32(len(ids.owners))
	if id >= length {
		return fmt.Errorf("release id '%d' out of range (max=%d). Nothing was done", id, length)
	}
	ids.owners[id] = nil
	return nil
}
