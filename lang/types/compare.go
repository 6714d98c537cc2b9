package types

import (
	"fmt"
	"math"
	"reflect"

	"github.com/dolthub/maphash"
)

// MaxCompareDepth bounds the recursion of Equal on nested compound values.
const MaxCompareDepth = 64

const nanHash = 0x7ff8000000000001

var (
	boolHasher     = maphash.NewHasher[bool]()
	intHasher      = maphash.NewHasher[int64]()
	floatHasher    = maphash.NewHasher[float64]()
	stringHasher   = maphash.NewHasher[string]()
	identityHasher = maphash.NewHasher[any]()
)

// Hash returns the hash of v, consistent with Equal: values that are equal
// have the same hash. It returns an unhashable TypeError if v cannot be used
// as a hash key.
func Hash(v Value) (uint64, error) {
	return hashDepth(v, MaxCompareDepth)
}

func hashDepth(v Value, depth int) (uint64, error) {
	if depth < 1 {
		return 0, fmt.Errorf("hash exceeded maximum recursion depth")
	}

	switch v := v.(type) {
	case NilType:
		return 0, nil
	case Bool:
		return boolHasher.Hash(bool(v)), nil
	case Int:
		return intHasher.Hash(int64(v)), nil
	case Float:
		// integral floats hash as their int value, as they compare equal
		if i, ok := exactInt(v); ok {
			return intHasher.Hash(int64(i)), nil
		}
		if v != v {
			// all NaNs compare equal
			return nanHash, nil
		}
		return floatHasher.Hash(float64(v)), nil
	case String:
		return stringHasher.Hash(string(v)), nil
	case Bytes:
		// bytes never compare equal to strings, use a distinct seed
		return stringHasher.Hash(string(v)) ^ 0x9e3779b97f4a7c15, nil
	case *StringObject:
		return stringHasher.Hash(v.s), nil
	case Tuple:
		h := uint64(0x345678)
		for _, elem := range v {
			eh, err := hashDepth(elem, depth-1)
			if err != nil {
				return 0, err
			}
			h = (h ^ eh) * 1000003
		}
		return h ^ uint64(len(v)), nil
	case *Array:
		return 0, Unhashable(v)
	case HasHash:
		return v.Hash()
	}

	if !reflect.TypeOf(v).Comparable() {
		return 0, Unhashable(v)
	}
	return identityHasher.Hash(v), nil
}

// Equal reports whether x and y are equal. Values of the same ordered type
// are compared with Cmp, ints and floats compare by numeric value, strings
// and string objects by content, tuples elementwise and sets by their keys.
// All other values compare by identity.
func Equal(x, y Value) (bool, error) {
	return EqualDepth(x, y, MaxCompareDepth)
}

// EqualDepth is like Equal, but limits the maximum depth of recursion in
// nested compound values.
func EqualDepth(x, y Value, depth int) (bool, error) {
	if depth < 1 {
		return false, fmt.Errorf("comparison exceeded maximum recursion depth")
	}

	if sameType(x, y) {
		switch x := x.(type) {
		case Tuple:
			yt := y.(Tuple)
			if len(x) != len(yt) {
				return false, nil
			}
			for i, xv := range x {
				eq, err := EqualDepth(xv, yt[i], depth-1)
				if !eq || err != nil {
					return eq, err
				}
			}
			return true, nil

		case *StringObject:
			return x.s == y.(*StringObject).s, nil

		case *Set:
			return x.equalDepth(y.(*Set), depth-1)

		case Ordered:
			t, err := x.Cmp(y, depth-1)
			if err != nil {
				return false, err
			}
			return t == 0, nil
		}

		if !reflect.TypeOf(x).Comparable() {
			return false, fmt.Errorf("%s == %s not implemented", x.Type(), y.Type())
		}
		return x == y, nil
	}

	// different types
	switch x := x.(type) {
	case Int:
		if y, ok := y.(Float); ok {
			i, exact := exactInt(y)
			return exact && x == i, nil
		}
	case Float:
		if y, ok := y.(Int); ok {
			i, exact := exactInt(x)
			return exact && i == y, nil
		}
	case String:
		if y, ok := y.(*StringObject); ok {
			return string(x) == y.s, nil
		}
	case *StringObject:
		if y, ok := y.(String); ok {
			return x.s == string(y), nil
		}
	}
	return false, nil
}

func sameType(x, y Value) bool {
	return reflect.TypeOf(x) == reflect.TypeOf(y)
}

// exactInt returns the integer value of f if f has an exact integer
// representation.
func exactInt(f Float) (Int, bool) {
	if math.IsInf(float64(f), 0) || f != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	i := Int(f)
	if Float(i) == f {
		return i, true
	}
	return 0, false
}
