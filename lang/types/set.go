package types

import (
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// A Set is a mutable set of unique keys. Its hashed storage only holds keys,
// each associated with NoValue. Access to the storage is serialized so that
// concurrent mutators never corrupt it, but no ordering is guaranteed between
// them.
type Set struct {
	Header

	mu      sync.Mutex
	storage *HashingStorage
}

var (
	_ Value    = (*Set)(nil)
	_ HasHash  = (*Set)(nil)
	_ Sequence = (*Set)(nil)
)

// NewSet returns an empty set with initial capacity for at least size keys.
func NewSet(size int) *Set {
	return &Set{storage: NewHashingStorage(size)}
}

// NewSetFromStorage returns a set that takes ownership of storage.
func NewSetFromStorage(storage *HashingStorage) *Set {
	return &Set{storage: storage}
}

func (s *Set) String() string {
	keys := s.Keys()
	if len(keys) == 0 {
		return "set()"
	}
	SortValues(keys)

	var buf strings.Builder
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(k.String())
	}
	buf.WriteByte('}')
	return buf.String()
}

func (s *Set) Type() string { return "set" }
func (s *Set) Truth() Bool  { return s.Len() > 0 }

// Hash always fails, sets are mutable and never hashable.
func (s *Set) Hash() (uint64, error) { return 0, Unhashable(s) }

func (s *Set) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Freeze()
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Len()
}

// Clear removes all keys from the set.
func (s *Set) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Clear()
}

// Add inserts k in the set. Adding a key that is already present is a no-op.
func (s *Set) Add(k Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.SetKey(k, NoValue)
}

// Has reports whether k is in the set.
func (s *Set) Has(k Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Has(k)
}

// Delete removes k from the set and reports whether it was present.
func (s *Set) Delete(k Value) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.DeleteKey(k)
}

// Union returns a new set with the keys of both s and other. Neither set is
// modified.
func (s *Set) Union(other *Set) (*Set, error) {
	// snapshot other first so that the two locks are never held together
	other.mu.Lock()
	ostorage := other.storage.Copy()
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	storage, err := s.storage.Union(ostorage)
	if err != nil {
		return nil, err
	}
	return NewSetFromStorage(storage), nil
}

// Keys returns the keys of the set in no particular order.
func (s *Set) Keys() []Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Keys()
}

// Iterate returns an iterator over a snapshot of the keys of the set.
func (s *Set) Iterate() Iterator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Iterate()
}

func (s *Set) equalDepth(y *Set, depth int) (bool, error) {
	if s == y {
		return true, nil
	}
	keys := s.Keys()
	if len(keys) != y.Len() {
		return false, nil
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	for _, k := range keys {
		found, err := y.storage.Has(k)
		if err != nil || !found {
			return false, err
		}
	}
	return true, nil
}

// SortValues sorts vals in a deterministic order: by type name first, then
// by value for ordered types and by string representation otherwise.
func SortValues(vals []Value) {
	slices.SortFunc(vals, func(a, b Value) int {
		if c := strings.Compare(a.Type(), b.Type()); c != 0 {
			return c
		}
		if ao, ok := a.(Ordered); ok && sameType(a, b) {
			if c, err := ao.Cmp(b, MaxCompareDepth); err == nil {
				return c
			}
		}
		return strings.Compare(a.String(), b.String())
	})
}
