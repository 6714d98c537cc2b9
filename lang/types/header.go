package types

import "sync/atomic"

// A Header is embedded in heap values that may be exposed to native code. It
// holds the native wrapper cached for the value, which is created at most once
// for the lifetime of the value and dies with it.
//
// The wrapper is stored untyped so that the types package does not depend on
// the package that implements wrappers.
type Header struct {
	wrapper atomic.Pointer[wrapperRef]
}

type wrapperRef struct{ w any }

// HasNativeWrapper is implemented by values that embed a Header.
type HasNativeWrapper interface {
	Value
	NativeWrapper() any
	LoadOrStoreNativeWrapper(w any) (actual any, loaded bool)
}

// NativeWrapper returns the cached wrapper, or nil if the value never crossed
// into native code.
func (h *Header) NativeWrapper() any {
	if ref := h.wrapper.Load(); ref != nil {
		return ref.w
	}
	return nil
}

// LoadOrStoreNativeWrapper installs w as the cached wrapper if there is none
// yet. It returns the wrapper that is installed once the call returns, and
// loaded is true if it was already present (in which case w was discarded).
func (h *Header) LoadOrStoreNativeWrapper(w any) (actual any, loaded bool) {
	ref := &wrapperRef{w: w}
	if h.wrapper.CompareAndSwap(nil, ref) {
		return w, false
	}
	return h.wrapper.Load().w, true
}
