package cext

import (
	"fmt"
	"sync/atomic"

	"github.com/mna/nymphaea/lang/types"
)

// An ObjectWrapper wraps a generic heap value when used in native code. It
// mimics the shape of the native object struct, with the members written by
// native code kept in its member store.
type ObjectWrapper struct {
	dynamicState
	object types.HasNativeWrapper
}

var _ DynamicWrapper = (*ObjectWrapper)(nil)

// WrapObject returns the wrapper cached on obj, creating it if obj never
// crossed into native code. There is at most one wrapper per object for its
// whole lifetime. Classes are wrapped with WrapClass.
func WrapObject(obj types.HasNativeWrapper) DynamicWrapper {
	if c, ok := obj.(*types.Class); ok {
		return WrapClass(c)
	}
	if w := obj.NativeWrapper(); w != nil {
		return w.(DynamicWrapper)
	}
	return install(obj, &ObjectWrapper{object: obj}).(DynamicWrapper)
}

// install caches w on obj unless another wrapper won the race, and returns
// the cached wrapper.
func install(obj types.HasNativeWrapper, w Wrapper) any {
	actual, loaded := obj.LoadOrStoreNativeWrapper(w)
	if !loaded {
		logCreated(w)
	}
	return actual
}

func (w *ObjectWrapper) Delegate() types.Value { return w.object }

func (w *ObjectWrapper) String() string {
	return fmt.Sprintf("ObjectWrapper(%s, isNative=%t)", w.object, w.IsNative())
}

// A ClassWrapper wraps a class when used in native code. It mimics the shape
// of the native type struct: it snapshots the class name for native
// consumption and holds the buffer protocol callbacks.
type ClassWrapper struct {
	ObjectWrapper

	name              []byte // NUL-terminated, immutable
	getBufferProc     atomic.Uint64
	releaseBufferProc atomic.Uint64
}

var _ DynamicWrapper = (*ClassWrapper)(nil)

// WrapClass returns the wrapper cached on c, creating it if c never crossed
// into native code. The name of the class is copied when the wrapper is
// created, as native type initialization reads it immediately.
func WrapClass(c *types.Class) *ClassWrapper {
	if w := c.NativeWrapper(); w != nil {
		return w.(*ClassWrapper)
	}
	return install(c, newClassWrapper(c)).(*ClassWrapper)
}

func newClassWrapper(c *types.Class) *ClassWrapper {
	name := make([]byte, len(c.Name())+1)
	copy(name, c.Name())
	w := &ClassWrapper{name: name}
	w.object = c
	return w
}

// Class returns the wrapped class.
func (w *ClassWrapper) Class() *types.Class { return w.object.(*types.Class) }

// Name returns the class name as it was when the wrapper was created,
// without the terminating NUL byte.
func (w *ClassWrapper) Name() string { return string(w.name[:len(w.name)-1]) }

// NameBuffer returns a copy of the NUL-terminated name buffer.
func (w *ClassWrapper) NameBuffer() []byte { return append([]byte(nil), w.name...) }

// GetBufferProc returns the native callback that fills a buffer view of the
// class instances, or NullPointer.
func (w *ClassWrapper) GetBufferProc() Pointer {
	return Pointer(w.getBufferProc.Load())
}

// SetGetBufferProc sets the native get-buffer callback. Unlike the native
// pointer, it may be changed at any time.
func (w *ClassWrapper) SetGetBufferProc(p Pointer) {
	w.getBufferProc.Store(uint64(p))
}

// ReleaseBufferProc returns the native callback that releases a buffer view
// of the class instances, or NullPointer.
func (w *ClassWrapper) ReleaseBufferProc() Pointer {
	return Pointer(w.releaseBufferProc.Load())
}

// SetReleaseBufferProc sets the native release-buffer callback.
func (w *ClassWrapper) SetReleaseBufferProc(p Pointer) {
	w.releaseBufferProc.Store(uint64(p))
}

func (w *ClassWrapper) String() string {
	return fmt.Sprintf("ClassWrapper(%s, isNative=%t)", w.object, w.IsNative())
}

// A ClassInitWrapper wraps a class only for the time a natively defined type
// is being readied, to pass the mirroring managed class to native code. It is
// never cached on the class.
type ClassInitWrapper struct {
	ObjectWrapper
}

var _ DynamicWrapper = (*ClassInitWrapper)(nil)

// WrapClassInit returns a new transient wrapper for c.
func WrapClassInit(c *types.Class) *ClassInitWrapper {
	w := &ClassInitWrapper{}
	w.object = c
	return w
}

// Class returns the wrapped class.
func (w *ClassInitWrapper) Class() *types.Class { return w.object.(*types.Class) }

func (w *ClassInitWrapper) String() string {
	return fmt.Sprintf("ClassInitWrapper(%s, isNative=%t)", w.object, w.IsNative())
}
