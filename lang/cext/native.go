package cext

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mna/nymphaea/lang/types"
)

// Layout of the native structs, all fields are little-endian.
//
//	object:    refcnt u64 | type u64
//	primitive: object | value u64
//	class:     object | name u64 | getbuffer u64 | releasebuffer u64
//	state:     length u64 | flags u32 | pad u32
//
// The length of a text state counts code points.
const (
	ObjectSize    = 16
	PrimitiveSize = ObjectSize + 8
	ClassSize     = ObjectSize + 24
	TextStateSize = 16

	OffsetRefCount      = 0
	OffsetType          = 8
	OffsetValue         = ObjectSize
	OffsetName          = ObjectSize
	OffsetGetBuffer     = ObjectSize + 8
	OffsetReleaseBuffer = ObjectSize + 16
	OffsetLength        = 0
	OffsetFlags         = 8
)

// Flags of the native text state.
const (
	TextASCII   = 1 << 0
	TextCompact = 1 << 1
	TextReady   = 1 << 2
)

// ToNative moves w into native code: it allocates and writes the native
// representation of w in the heap and records its address as the native
// pointer of w. If w already has a native pointer, it is returned and the
// heap is left untouched.
func ToNative(h *Heap, w Wrapper) (Pointer, error) {
	if w.IsNative() {
		return w.NativePointer(), nil
	}

	var (
		p   Pointer
		err error
	)
	switch w := w.(type) {
	case *ClassWrapper:
		p, err = classToNative(h, w)
	case *PrimitiveWrapper:
		p, err = objectToNative(h, w, PrimitiveSize, NullPointer)
		if err == nil {
			err = h.WriteUint(p+OffsetValue, w.bits(), 8)
		}
	case *ObjectWrapper:
		var typ Pointer
		if o, ok := w.object.(*types.Object); ok {
			if typ, err = ToNative(h, WrapClass(o.Class())); err != nil {
				return NullPointer, err
			}
		}
		p, err = objectToNative(h, w, ObjectSize, typ)
	case *ClassInitWrapper, *ForeignWrapper:
		p, err = objectToNative(h, w, ObjectSize, NullPointer)
	case *SequenceArrayWrapper:
		p, err = sequenceToNative(h, w)
	case *TextData:
		p, err = h.Alloc(uint32(len(w.str.Value())+1), 1)
		if err == nil {
			err = h.Write(p, []byte(w.str.Value()))
		}
	case *TextState:
		p, err = textStateToNative(h, w)
	default:
		panic(fmt.Sprintf("unexpected wrapper type %T", w))
	}
	if err != nil {
		return NullPointer, err
	}

	// another goroutine may have moved w to native concurrently, the first
	// pointer recorded wins and this allocation is abandoned
	return w.state().publish(p), nil
}

func objectToNative(h *Heap, w Wrapper, size uint32, typ Pointer) (Pointer, error) {
	p, err := h.Alloc(size, 8)
	if err != nil {
		return NullPointer, err
	}
	if err := h.WriteUint(p+OffsetRefCount, 1, 8); err != nil {
		return NullPointer, err
	}
	if err := h.WriteUint(p+OffsetType, uint64(typ), 8); err != nil {
		return NullPointer, err
	}
	return p, nil
}

func classToNative(h *Heap, w *ClassWrapper) (Pointer, error) {
	name, err := h.Alloc(uint32(len(w.name)), 1)
	if err != nil {
		return NullPointer, err
	}
	if err := h.Write(name, w.name); err != nil {
		return NullPointer, err
	}

	p, err := objectToNative(h, w, ClassSize, NullPointer)
	if err != nil {
		return NullPointer, err
	}
	fields := []struct {
		off Pointer
		v   Pointer
	}{
		{OffsetName, name},
		{OffsetGetBuffer, w.GetBufferProc()},
		{OffsetReleaseBuffer, w.ReleaseBufferProc()},
	}
	for _, f := range fields {
		if err := h.WriteUint(p+f.off, uint64(f.v), 8); err != nil {
			return NullPointer, err
		}
	}
	return p, nil
}

func sequenceToNative(h *Heap, w *SequenceArrayWrapper) (Pointer, error) {
	n := w.seq.Len()
	p, err := h.Alloc(uint32(n*w.elemSize), uint32(w.elemSize))
	if err != nil {
		return NullPointer, err
	}
	for i := 0; i < n; i++ {
		raw, err := encodeElement(w.seq.Index(i), w.elemSize)
		if err != nil {
			return NullPointer, err
		}
		if err := h.WriteUint(p+Pointer(i*w.elemSize), raw, w.elemSize); err != nil {
			return NullPointer, err
		}
	}
	return p, nil
}

func textStateToNative(h *Heap, w *TextState) (Pointer, error) {
	p, err := h.Alloc(TextStateSize, 8)
	if err != nil {
		return NullPointer, err
	}
	s := w.str.Value()
	flags := uint64(TextCompact | TextReady)
	if isASCII(s) {
		flags |= TextASCII
	}
	if err := h.WriteUint(p+OffsetLength, uint64(utf8.RuneCountInString(s)), 8); err != nil {
		return NullPointer, err
	}
	if err := h.WriteUint(p+OffsetFlags, flags, 4); err != nil {
		return NullPointer, err
	}
	return p, nil
}

// ReadElement returns the raw native value of the element at index i of the
// native array of w.
func ReadElement(h *Heap, w *SequenceArrayWrapper, i int) (uint64, error) {
	p, err := elementPointer(w, i)
	if err != nil {
		return 0, err
	}
	return h.ReadUint(p, w.elemSize)
}

// WriteElement writes the raw native value of the element at index i of the
// native array of w. Only the ElementAccessSize low bytes of raw are written.
// The managed sequence is not modified.
func WriteElement(h *Heap, w *SequenceArrayWrapper, i int, raw uint64) error {
	p, err := elementPointer(w, i)
	if err != nil {
		return err
	}
	return h.WriteUint(p, raw, w.elemSize)
}

func elementPointer(w *SequenceArrayWrapper, i int) (Pointer, error) {
	if !w.IsNative() {
		return NullPointer, fmt.Errorf("%s is not native", w)
	}
	if n := w.seq.Len(); i < 0 || i >= n {
		return NullPointer, types.Raise(types.IndexError, "index %d out of range [0:%d]", i, n)
	}
	return w.NativePointer() + Pointer(i*w.elemSize), nil
}

// floatBits returns the IEEE 754 encoding of f on size bytes, 4 or 8.
func floatBits(f float64, size int) uint64 {
	if size == 4 {
		return uint64(math.Float32bits(float32(f)))
	}
	return math.Float64bits(f)
}
