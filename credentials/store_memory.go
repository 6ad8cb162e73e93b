package credentials

import "sync"

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the credential pair for the process lifetime only.
type MemoryStore struct {
	lock sync.RWMutex
	pair *Pair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) Get() (*Pair, error) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	if ms.pair == nil {
		return nil, nil
	}
	copied := *ms.pair
	return &copied, nil
}

func (ms *MemoryStore) Set(pair Pair) error {
	if err := validatePair(pair); err != nil {
		return err
	}
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.pair = &pair
	return nil
}

func (ms *MemoryStore) Clear() error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.pair = nil
	return nil
}
