package cext

import (
	"fmt"

	"github.com/mna/nymphaea/lang/types"
)

// A ForeignWrapper wraps a foreign host object, one that is not a managed
// value, when it is passed to native code.
type ForeignWrapper struct {
	nativeState
	foreign *types.Foreign
}

var _ Wrapper = (*ForeignWrapper)(nil)

// WrapForeign returns a new wrapper for the foreign object obj. It panics
// with an *InvariantError if obj is already a wrapper.
func WrapForeign(obj any) *ForeignWrapper {
	if w, ok := obj.(Wrapper); ok {
		panic(&InvariantError{
			Op:  "wrap foreign",
			Msg: fmt.Sprintf("attempting to wrap a native wrapper: %s", w),
		})
	}

	f, ok := obj.(*types.Foreign)
	if !ok {
		f = types.NewForeign("", obj)
	}
	w := &ForeignWrapper{foreign: f}
	logCreated(w)
	return w
}

func (w *ForeignWrapper) Delegate() types.Value { return w.foreign }

// ForeignObject returns the wrapped host object.
func (w *ForeignWrapper) ForeignObject() any { return w.foreign.Object }

func (w *ForeignWrapper) String() string {
	return fmt.Sprintf("ForeignWrapper(%s, isNative=%t)", w.foreign, w.IsNative())
}
