package cext

import (
	"fmt"
	"sync/atomic"

	"github.com/mna/nymphaea/lang/types"
	"go.uber.org/zap"
)

// PrimitiveKind is the kind of a boxed primitive value.
type PrimitiveKind uint8

const (
	BoolKind PrimitiveKind = iota
	ByteKind
	IntKind
	LongKind
	DoubleKind
)

func (k PrimitiveKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case ByteKind:
		return "byte"
	case IntKind:
		return "int"
	case LongKind:
		return "long"
	case DoubleKind:
		return "double"
	}
	return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
}

// Size returns the size in bytes of the native representation of the kind.
func (k PrimitiveKind) Size() int {
	switch k {
	case BoolKind, ByteKind:
		return 1
	case IntKind:
		return 4
	default:
		return 8
	}
}

// The classes of materialized primitive values.
var (
	IntClass   = types.NewClass("int", nil)
	BoolClass  = types.NewClass("bool", IntClass)
	FloatClass = types.NewClass("float", nil)
)

// A PrimitiveWrapper wraps a boxed primitive value when used in native code.
// When native code needs the full object semantics of the value, the wrapper
// materializes it as a heap object.
type PrimitiveWrapper struct {
	dynamicState

	kind         PrimitiveKind
	boxed        types.Value
	materialized atomic.Pointer[types.Object]
}

var _ DynamicWrapper = (*PrimitiveWrapper)(nil)

func NewBoolWrapper(v bool) *PrimitiveWrapper {
	return &PrimitiveWrapper{kind: BoolKind, boxed: types.Bool(v)}
}

func NewByteWrapper(v byte) *PrimitiveWrapper {
	return &PrimitiveWrapper{kind: ByteKind, boxed: types.Int(v)}
}

func NewIntWrapper(v int32) *PrimitiveWrapper {
	return &PrimitiveWrapper{kind: IntKind, boxed: types.Int(v)}
}

func NewLongWrapper(v int64) *PrimitiveWrapper {
	return &PrimitiveWrapper{kind: LongKind, boxed: types.Int(v)}
}

func NewDoubleWrapper(v float64) *PrimitiveWrapper {
	return &PrimitiveWrapper{kind: DoubleKind, boxed: types.Float(v)}
}

// WrapPrimitive returns a new wrapper for the primitive value v, using the
// widest kind for its type. It returns false if v is not a primitive.
func WrapPrimitive(v types.Value) (*PrimitiveWrapper, bool) {
	switch v := v.(type) {
	case types.Bool:
		return NewBoolWrapper(bool(v)), true
	case types.Int:
		return NewLongWrapper(int64(v)), true
	case types.Float:
		return NewDoubleWrapper(float64(v)), true
	}
	return nil, false
}

func (w *PrimitiveWrapper) Kind() PrimitiveKind { return w.kind }

// BoxedValue returns the primitive value, which never changes.
func (w *PrimitiveWrapper) BoxedValue() types.Value { return w.boxed }

// Delegate returns the materialized object if there is one, otherwise the
// boxed value.
func (w *PrimitiveWrapper) Delegate() types.Value {
	if o := w.materialized.Load(); o != nil {
		return o
	}
	return w.boxed
}

// IsMaterialized reports whether the value was materialized.
func (w *PrimitiveWrapper) IsMaterialized() bool { return w.materialized.Load() != nil }

// Materialize returns the heap object representation of the boxed value,
// creating it on the first call. The same object is returned on every
// subsequent call, and the wrapper is cached on it.
func (w *PrimitiveWrapper) Materialize() *types.Object {
	if o := w.materialized.Load(); o != nil {
		return o
	}

	o := types.NewBoxedObject(w.class(), w.boxed)
	if w.materialized.CompareAndSwap(nil, o) {
		o.LoadOrStoreNativeWrapper(w)
		Logger().Debug("primitive materialized",
			zap.Stringer("kind", w.kind),
			zap.Stringer("value", w.boxed))
	}
	return w.materialized.Load()
}

func (w *PrimitiveWrapper) class() *types.Class {
	switch w.kind {
	case BoolKind:
		return BoolClass
	case DoubleKind:
		return FloatClass
	default:
		return IntClass
	}
}

// bits returns the native encoding of the value.
func (w *PrimitiveWrapper) bits() uint64 {
	switch v := w.boxed.(type) {
	case types.Bool:
		if v {
			return 1
		}
		return 0
	case types.Float:
		return floatBits(float64(v), w.kind.Size())
	case types.Int:
		return uint64(v)
	}
	return 0
}

func (w *PrimitiveWrapper) String() string {
	return fmt.Sprintf("PrimitiveWrapper(%s %s, isNative=%t)", w.kind, w.boxed, w.IsNative())
}
