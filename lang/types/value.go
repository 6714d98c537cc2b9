package types

// Value is the interface implemented by any value manipulated by the runtime.
type Value interface {
	// String returns the string representation of the value.
	String() string

	// Type returns a short string describing the value's type. It is also the
	// kind tag used to dispatch builtin operations.
	Type() string

	// Freeze causes the value, and all values transitively reachable from it
	// through collections, to be marked as frozen. All subsequent mutations to
	// the data structure through the runtime API will fail dynamically, making
	// the data structure immutable and safe for publishing to other threads
	// running concurrently.
	Freeze()

	// Truth returns the truth value of an object.
	Truth() Bool
}

// An Ordered type is a type whose values are ordered:
// if x and y are of the same Ordered type, then x must be less than y, greater
// than y, or equal to y.
type Ordered interface {
	Value
	// Cmp compares two values x and y of the same ordered type. It returns
	// negative if x < y, positive if x > y, and zero if the values are equal.
	//
	// The depth parameter is used to bound comparisons of cyclic data
	// structures. Implementations should decrement depth before recursing and
	// should return an error if depth < 1.
	//
	// Client code should not call this method. Instead, use the standalone
	// Equal function, which is defined for all pairs of operands.
	Cmp(y Value, depth int) (int, error)
}

// An Iterable abstracts a sequence of values. An iterable value may be
// iterated over. Unlike a Sequence, the length of an Iterable is not
// necessarily known in advance of iteration.
type Iterable interface {
	Value
	// Iterate returns an Iterator. It must be followed by call to Iterator.Done.
	Iterate() Iterator
}

// A Sequence is a sequence of values of known length.
type Sequence interface {
	Iterable
	Len() int
}

// An Indexable is a sequence of known length that supports efficient random
// access. It is not necessarily iterable.
type Indexable interface {
	Value
	// Index returns the value at the specified index, which must satisfy 0 <= i
	// < Len().
	Index(i int) Value
	Len() int
}

// A HasSetIndex is an Indexable value whose elements may be assigned (x[i] =
// y).
type HasSetIndex interface {
	Indexable
	SetIndex(index int, v Value) error
}

// An Iterator provides a sequence of values to the caller. The caller must
// call Done when the iterator is no longer needed. Operations that modify a
// sequence will fail if it has active iterators.
//
// Example usage:
//
//	iter := iterable.Iterate()
//	defer iter.Done()
//	var x Value
//	for iter.Next(&x) {
//		...
//	}
type Iterator interface {
	// If the iterator is exhausted, Next returns false. Otherwise it sets *p to
	// the current element of the sequence, advances the iterator, and returns
	// true.
	Next(p *Value) bool
	// Done must be called on the Iterator once it is no longer needed.
	Done()
}

// A HasHash value provides its own hash, consistent with its equality. A
// value that is never hashable returns an unhashable TypeError.
type HasHash interface {
	Value
	Hash() (uint64, error)
}

// A HasAttrs value has fields or methods that may be read by a dot expression
// (y = x.f). For implementation convenience, a result of (nil, nil) from Attr
// is interpreted as a "no such field or method" error. Implementations are
// free to return a more precise error.
type HasAttrs interface {
	Value
	// Attr returns the field or method value corresponding to the attribute
	// name. A return value of (nil, nil) is interpreted as a "no such field or
	// method" error.
	Attr(name string) (Value, error)
	// AttrNames returns a slice of strings of valid attribute names. The caller
	// must not modify the results.
	AttrNames() []string
}

// A HasSetField value has fields that may be written by a dot expression (x.f
// = y).
type HasSetField interface {
	HasAttrs
	SetField(name string, val Value) error
}
