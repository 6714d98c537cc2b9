// Package cext implements the native wrappers that expose managed values to
// native code.
//
// A heap value gets at most one wrapper for its whole lifetime, created the
// first time it crosses into native code and cached on the value itself (see
// WrapObject and WrapClass). Once the wrapper is moved to a native Heap (see
// ToNative), it records its native pointer, which never changes afterwards.
// The managed value is always recovered from a wrapper with Delegate.
//
// Wrappers keep their shadow state lazily: the member store of object
// wrappers, the materialized object of primitive wrappers and the native
// pointer of every wrapper are only allocated when first needed.
package cext
