package cext

import (
	"fmt"
	"sync/atomic"

	"github.com/mna/nymphaea/lang/types"
	"go.uber.org/zap"
)

// A Pointer is an opaque handle to the native representation of a wrapped
// value. The zero Pointer is null.
type Pointer uint64

// NullPointer is the null native pointer.
const NullPointer Pointer = 0

func (p Pointer) String() string {
	if p == NullPointer {
		return "NULL"
	}
	return fmt.Sprintf("%#x", uint64(p))
}

// A Wrapper represents a managed value as seen from native code. The set of
// wrappers is closed, the concrete types are the exported wrapper types of
// this package.
type Wrapper interface {
	// Delegate returns the managed value the wrapper stands for.
	Delegate() types.Value

	// NativePointer returns the native pointer of the wrapper, or NullPointer
	// if it never crossed into native code.
	NativePointer() Pointer

	// SetNativePointer records the native pointer of the wrapper. Setting the
	// pointer that is already recorded, or NullPointer, is a no-op. It panics
	// with an *InvariantError if a different pointer is already recorded.
	SetNativePointer(p Pointer)

	// IsNative reports whether the wrapper has a native pointer.
	IsNative() bool

	String() string

	state() *nativeState
}

// An InvariantError is the panic value raised when a wrapper invariant is
// violated. It is a programming error and must not be recovered from.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s: %s", e.Op, e.Msg)
}

// nativeState is the state common to all wrappers.
type nativeState struct {
	ptr atomic.Uint64
}

func (s *nativeState) state() *nativeState { return s }

func (s *nativeState) NativePointer() Pointer { return Pointer(s.ptr.Load()) }
func (s *nativeState) IsNative() bool         { return s.ptr.Load() != 0 }

func (s *nativeState) SetNativePointer(p Pointer) {
	if actual := s.publish(p); actual != p && p != NullPointer {
		panic(&InvariantError{
			Op:  "set native pointer",
			Msg: fmt.Sprintf("pointer already set to %s, cannot set to %s", actual, p),
		})
	}
}

// publish records p if no pointer is recorded yet and returns the recorded
// pointer.
func (s *nativeState) publish(p Pointer) Pointer {
	if p == NullPointer {
		return s.NativePointer()
	}
	if s.ptr.CompareAndSwap(0, uint64(p)) {
		Logger().Debug("native pointer assigned", zap.Stringer("pointer", p))
		return p
	}
	return s.NativePointer()
}

// dynamicState is the state of wrappers that own a member store.
type dynamicState struct {
	nativeState
	members atomic.Pointer[MemberStore]
}

// CreateMemberStore returns the member store of the wrapper, allocating it
// on first call.
func (s *dynamicState) CreateMemberStore() *MemberStore {
	if m := s.members.Load(); m != nil {
		return m
	}
	s.members.CompareAndSwap(nil, newMemberStore())
	return s.members.Load()
}

// MemberStore returns the member store of the wrapper, or nil if it was
// never created.
func (s *dynamicState) MemberStore() *MemberStore {
	return s.members.Load()
}

// A DynamicWrapper is a wrapper that owns a lazily created member store,
// a side table that mimics the members of the native struct of the value.
type DynamicWrapper interface {
	Wrapper
	CreateMemberStore() *MemberStore
	MemberStore() *MemberStore
}

// ReadMember returns the native member name of w. Members written by native
// code in the member store take precedence over the attributes of the
// delegate.
func ReadMember(w DynamicWrapper, name string) (types.Value, error) {
	if m := w.MemberStore(); m != nil {
		v, found, err := m.Get(name)
		if err != nil || found {
			return v, err
		}
	}
	if d, ok := w.Delegate().(types.HasAttrs); ok {
		v, err := d.Attr(name)
		if err != nil || v != nil {
			return v, err
		}
	}
	return nil, types.Raise(types.AttributeError, "'%s' object has no attribute '%s'", w.Delegate().Type(), name)
}

// WriteMember writes the native member name of w in its member store.
func WriteMember(w DynamicWrapper, name string, v types.Value) error {
	return w.CreateMemberStore().Set(name, v)
}

// Delegate returns the managed value w stands for.
func Delegate(w Wrapper) types.Value { return w.Delegate() }

func logCreated(w Wrapper) {
	Logger().Debug("native wrapper created",
		zap.String("wrapper", fmt.Sprintf("%T", w)),
		zap.String("delegate", w.Delegate().Type()))
}
