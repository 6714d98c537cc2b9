package cext

import (
	"sync"

	"github.com/mna/nymphaea/lang/types"
	"golang.org/x/exp/slices"
)

// A MemberStore is the side table of a dynamic wrapper that holds the members
// written by native code. It is safe for concurrent use.
type MemberStore struct {
	mu      sync.RWMutex
	storage *types.HashingStorage
}

func newMemberStore() *MemberStore {
	return &MemberStore{storage: types.NewHashingStorage(4)}
}

// Get returns the member name and whether it is present in the store.
func (m *MemberStore) Get(name string) (types.Value, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.storage.Get(types.String(name))
}

// Set stores v as the member name.
func (m *MemberStore) Set(name string, v types.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storage.SetKey(types.String(name), v)
}

// Len returns the number of members in the store.
func (m *MemberStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.storage.Len()
}

// Names returns the sorted names of the members in the store.
func (m *MemberStore) Names() []string {
	m.mu.RLock()
	keys := m.storage.Keys()
	m.mu.RUnlock()

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k.(types.String))
	}
	slices.Sort(names)
	return names
}
