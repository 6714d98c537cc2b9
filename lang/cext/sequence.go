package cext

import (
	"fmt"

	"github.com/mna/nymphaea/lang/types"
)

// A SequenceArrayWrapper wraps a sequence such that native code can access it
// like a bare C array, each element taking ElementAccessSize bytes.
type SequenceArrayWrapper struct {
	nativeState

	seq      types.Indexable
	elemSize int
}

var _ Wrapper = (*SequenceArrayWrapper)(nil)

// NewSequenceArray returns a new array wrapper for seq. The element access
// size must be 1, 2, 4 or 8, it panics with an *InvariantError otherwise.
func NewSequenceArray(seq types.Indexable, elementAccessSize int) *SequenceArrayWrapper {
	switch elementAccessSize {
	case 1, 2, 4, 8:
	default:
		panic(&InvariantError{
			Op:  "wrap sequence",
			Msg: fmt.Sprintf("invalid element access size %d", elementAccessSize),
		})
	}
	w := &SequenceArrayWrapper{seq: seq, elemSize: elementAccessSize}
	logCreated(w)
	return w
}

func (w *SequenceArrayWrapper) Delegate() types.Value { return w.seq }

// ElementAccessSize returns the number of bytes of a single element.
func (w *SequenceArrayWrapper) ElementAccessSize() int { return w.elemSize }

// Len returns the number of elements of the sequence.
func (w *SequenceArrayWrapper) Len() int { return w.seq.Len() }

func (w *SequenceArrayWrapper) String() string {
	return fmt.Sprintf("SequenceArrayWrapper(%s, elemSize=%d, isNative=%t)", w.seq, w.elemSize, w.IsNative())
}

// encodeElement returns the native encoding of v at the specified size.
func encodeElement(v types.Value, size int) (uint64, error) {
	switch v := v.(type) {
	case types.Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case types.Int:
		if size < 8 {
			// signed minimum up to unsigned maximum of the size
			bits := uint(size * 8)
			if v < -(1<<(bits-1)) || v > (1<<bits)-1 {
				return 0, types.Raise(types.OverflowError, "int element %s does not fit in %d bytes", v, size)
			}
		}
		return uint64(v), nil
	case types.Float:
		if size < 4 {
			return 0, types.Raise(types.TypeError, "float element does not fit in %d bytes", size)
		}
		return floatBits(float64(v), size), nil
	case *types.Object:
		if b, ok := v.Boxed(); ok {
			return encodeElement(b, size)
		}
	}
	return 0, types.Raise(types.TypeError, "%s element cannot be accessed natively", v.Type())
}
