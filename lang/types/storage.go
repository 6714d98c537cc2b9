package types

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// A HashingStorage is the hashed key-value storage shared by hash-based
// containers. Keys are unique under the Hash and Equal contract. Keys-only
// containers such as sets store NoValue as the value of every key.
//
// The storage does not preserve insertion order.
type HashingStorage struct {
	m      *swiss.Map[uint64, []storageEntry]
	count  int
	frozen bool
}

type storageEntry struct {
	key   Value
	value Value
}

// NewHashingStorage returns a storage with initial capacity for at least
// size keys.
func NewHashingStorage(size int) *HashingStorage {
	return &HashingStorage{m: swiss.NewMap[uint64, []storageEntry](uint32(size))}
}

// Len returns the number of keys in the storage.
func (s *HashingStorage) Len() int { return s.count }

// Freeze marks the storage and all its keys and values as frozen.
func (s *HashingStorage) Freeze() {
	if s.frozen {
		return
	}
	s.frozen = true
	s.m.Iter(func(_ uint64, bucket []storageEntry) bool {
		for _, e := range bucket {
			e.key.Freeze()
			e.value.Freeze()
		}
		return false
	})
}

func (s *HashingStorage) checkMutable(verb string) error {
	if s.frozen {
		return fmt.Errorf("cannot %s frozen hash storage", verb)
	}
	return nil
}

// Clear removes all keys from the storage.
func (s *HashingStorage) Clear() error {
	if err := s.checkMutable("clear"); err != nil {
		return err
	}
	if s.count > 0 {
		s.m = swiss.NewMap[uint64, []storageEntry](uint32(s.count))
		s.count = 0
	}
	return nil
}

// SetKey associates v with k, inserting k if it is not present yet.
func (s *HashingStorage) SetKey(k, v Value) error {
	if err := s.checkMutable("insert into"); err != nil {
		return err
	}
	h, err := Hash(k)
	if err != nil {
		return err
	}

	bucket, _ := s.m.Get(h)
	i, err := lookup(bucket, k)
	if err != nil {
		return err
	}
	if i >= 0 {
		bucket[i].value = v
		return nil
	}
	s.m.Put(h, append(bucket, storageEntry{key: k, value: v}))
	s.count++
	return nil
}

// Get returns the value associated with k, or !found if k is not present.
func (s *HashingStorage) Get(k Value) (v Value, found bool, err error) {
	h, err := Hash(k)
	if err != nil {
		return nil, false, err
	}
	bucket, _ := s.m.Get(h)
	i, err := lookup(bucket, k)
	if err != nil || i < 0 {
		return nil, false, err
	}
	return bucket[i].value, true, nil
}

// Has reports whether k is present in the storage.
func (s *HashingStorage) Has(k Value) (bool, error) {
	_, found, err := s.Get(k)
	return found, err
}

// DeleteKey removes k from the storage. It returns false if k was not
// present, in which case the storage is left untouched.
func (s *HashingStorage) DeleteKey(k Value) (bool, error) {
	if err := s.checkMutable("delete from"); err != nil {
		return false, err
	}
	h, err := Hash(k)
	if err != nil {
		return false, err
	}

	bucket, _ := s.m.Get(h)
	i, err := lookup(bucket, k)
	if err != nil || i < 0 {
		return false, err
	}

	if len(bucket) == 1 {
		s.m.Delete(h)
	} else {
		rest := make([]storageEntry, 0, len(bucket)-1)
		rest = append(rest, bucket[:i]...)
		rest = append(rest, bucket[i+1:]...)
		s.m.Put(h, rest)
	}
	s.count--
	return true, nil
}

// Union returns a new storage that contains the keys of both s and other.
// When a key is present in both, the value from s is kept. Neither s nor
// other is modified.
func (s *HashingStorage) Union(other *HashingStorage) (*HashingStorage, error) {
	res := s.Copy()
	var err error
	other.each(func(k, v Value) bool {
		var found bool
		if found, err = res.Has(k); err != nil || found {
			return err != nil
		}
		err = res.SetKey(k, v)
		return err != nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Copy returns an unfrozen copy of the storage. Keys and values are shared.
func (s *HashingStorage) Copy() *HashingStorage {
	res := NewHashingStorage(s.count)
	s.m.Iter(func(h uint64, bucket []storageEntry) bool {
		res.m.Put(h, append([]storageEntry(nil), bucket...))
		return false
	})
	res.count = s.count
	return res
}

// Keys returns a new slice with all the keys of the storage, in no
// particular order.
func (s *HashingStorage) Keys() []Value {
	keys := make([]Value, 0, s.count)
	s.each(func(k, _ Value) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}

// Iterate returns an iterator over a snapshot of the keys of the storage.
func (s *HashingStorage) Iterate() Iterator {
	return &tupleIterator{elems: Tuple(s.Keys())}
}

// each calls fn for each key-value pair until fn returns true.
func (s *HashingStorage) each(fn func(k, v Value) (stop bool)) {
	s.m.Iter(func(_ uint64, bucket []storageEntry) bool {
		for _, e := range bucket {
			if fn(e.key, e.value) {
				return true
			}
		}
		return false
	})
}

// lookup returns the index of k in bucket, or -1 if it is absent.
func lookup(bucket []storageEntry, k Value) (int, error) {
	for i, e := range bucket {
		eq, err := Equal(e.key, k)
		if err != nil {
			return -1, err
		}
		if eq {
			return i, nil
		}
	}
	return -1, nil
}
