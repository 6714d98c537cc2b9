package cext

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mna/nymphaea/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapObjectIdentity(t *testing.T) {
	o := types.NewClass("Point", nil).New()

	w1 := WrapObject(o)
	w2 := WrapObject(o)
	require.Same(t, w1, w2)
	require.Same(t, o, w1.Delegate())
	require.Same(t, o, Delegate(w1))
	require.False(t, w1.IsNative())
	require.Equal(t, NullPointer, w1.NativePointer())

	other := WrapObject(types.NewClass("Point", nil).New())
	require.NotSame(t, w1, other)
}

func TestWrapObjectConcurrent(t *testing.T) {
	o := types.NewArray([]types.Value{types.Int(1)})

	const n = 16
	ws := make([]DynamicWrapper, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws[i] = WrapObject(o)
		}(i)
	}
	wg.Wait()

	for _, w := range ws {
		require.Same(t, ws[0], w)
	}
	require.Same(t, ws[0], o.NativeWrapper())
}

func TestSetNativePointer(t *testing.T) {
	w := WrapObject(types.NewClass("C", nil).New())

	w.SetNativePointer(NullPointer)
	require.False(t, w.IsNative())

	w.SetNativePointer(0x100)
	require.True(t, w.IsNative())
	w.SetNativePointer(0x100)
	w.SetNativePointer(NullPointer)
	require.Equal(t, Pointer(0x100), w.NativePointer())

	assert.PanicsWithError(t, "invariant violation: set native pointer: pointer already set to 0x100, cannot set to 0x200", func() {
		w.SetNativePointer(0x200)
	})
	require.Equal(t, Pointer(0x100), w.NativePointer())
}

func TestPointerString(t *testing.T) {
	assert.Equal(t, "NULL", NullPointer.String())
	assert.Equal(t, "0x2a", Pointer(42).String())
}

func TestWrapClass(t *testing.T) {
	c := types.NewClass("Matrix", nil)

	w := WrapClass(c)
	require.Same(t, w, WrapClass(c))
	require.Same(t, w, WrapObject(c))
	require.Same(t, c, w.Class())
	require.Equal(t, "Matrix", w.Name())
	require.Equal(t, []byte("Matrix\x00"), w.NameBuffer())

	// the buffer returned is a copy
	buf := w.NameBuffer()
	buf[0] = 'X'
	require.Equal(t, "Matrix", w.Name())

	require.Equal(t, NullPointer, w.GetBufferProc())
	w.SetGetBufferProc(0x10)
	w.SetReleaseBufferProc(0x20)
	require.Equal(t, Pointer(0x10), w.GetBufferProc())
	require.Equal(t, Pointer(0x20), w.ReleaseBufferProc())
	w.SetGetBufferProc(0x30)
	require.Equal(t, Pointer(0x30), w.GetBufferProc())

	require.Equal(t, "ClassWrapper(<class 'Matrix'>, isNative=false)", w.String())
}

func TestClassInitWrapper(t *testing.T) {
	c := types.NewClass("Init", nil)
	iw := WrapClassInit(c)
	require.Same(t, c, iw.Class())
	require.Nil(t, c.NativeWrapper())

	w := WrapClass(c)
	require.NotSame(t, iw, WrapClassInit(c))
	require.Same(t, w, c.NativeWrapper())
}

func TestMemberStore(t *testing.T) {
	o := types.NewClass("C", nil).New()
	require.NoError(t, o.SetField("x", types.Int(1)))
	w := WrapObject(o)

	require.Nil(t, w.MemberStore())
	m := w.CreateMemberStore()
	require.NotNil(t, m)
	require.Same(t, m, w.CreateMemberStore())
	require.Same(t, m, w.MemberStore())

	v, err := ReadMember(w, "x")
	require.NoError(t, err)
	require.Equal(t, types.Int(1), v)

	require.NoError(t, WriteMember(w, "x", types.Int(2)))
	v, err = ReadMember(w, "x")
	require.NoError(t, err)
	require.Equal(t, types.Int(2), v)

	// the managed object is left untouched
	v, err = o.Attr("x")
	require.NoError(t, err)
	require.Equal(t, types.Int(1), v)

	_, err = ReadMember(w, "y")
	require.ErrorIs(t, err, types.AttributeError)
	require.EqualError(t, err, "AttributeError: 'C' object has no attribute 'y'")
}

func TestMemberStoreConcurrent(t *testing.T) {
	w := WrapObject(types.NewClass("C", nil).New())

	const n = 16
	stores := make([]*MemberStore, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = w.CreateMemberStore()
		}(i)
	}
	wg.Wait()
	for _, s := range stores {
		require.Same(t, stores[0], s)
	}
}

func TestMemberStoreConcurrentWrites(t *testing.T) {
	w := WrapObject(types.NewClass("C", nil).New())

	const goroutines, writes = 8, 200
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("m%d", i)
			for j := 0; j < writes; j++ {
				assert.NoError(t, WriteMember(w, name, types.Int(j)))
				_, err := ReadMember(w, name)
				assert.NoError(t, err)
				_ = w.MemberStore().Names()
			}
		}(i)
	}
	wg.Wait()

	m := w.MemberStore()
	require.Equal(t, goroutines, m.Len())
	require.Equal(t, []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6", "m7"}, m.Names())
	for i := 0; i < goroutines; i++ {
		v, found, err := m.Get(fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, types.Int(writes-1), v)
	}
}

func TestPrimitiveMaterialize(t *testing.T) {
	w := NewLongWrapper(42)
	require.Equal(t, LongKind, w.Kind())
	require.Equal(t, types.Int(42), w.Delegate())
	require.False(t, w.IsMaterialized())

	o := w.Materialize()
	require.True(t, w.IsMaterialized())
	require.Same(t, o, w.Delegate())
	require.Same(t, o, w.Materialize())
	require.Equal(t, types.Int(42), w.BoxedValue())
	require.Equal(t, "int", o.Type())

	boxed, ok := o.Boxed()
	require.True(t, ok)
	require.Equal(t, types.Int(42), boxed)

	// the materialized object maps back to its wrapper
	require.Same(t, w, WrapObject(o))
}

func TestPrimitiveKinds(t *testing.T) {
	cases := []struct {
		w     *PrimitiveWrapper
		kind  PrimitiveKind
		size  int
		class *types.Class
		str   string
	}{
		{NewBoolWrapper(true), BoolKind, 1, BoolClass, "PrimitiveWrapper(bool true, isNative=false)"},
		{NewByteWrapper(7), ByteKind, 1, IntClass, "PrimitiveWrapper(byte 7, isNative=false)"},
		{NewIntWrapper(-3), IntKind, 4, IntClass, "PrimitiveWrapper(int -3, isNative=false)"},
		{NewLongWrapper(1 << 40), LongKind, 8, IntClass, "PrimitiveWrapper(long 1099511627776, isNative=false)"},
		{NewDoubleWrapper(2.5), DoubleKind, 8, FloatClass, "PrimitiveWrapper(double 2.5, isNative=false)"},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			assert.Equal(t, c.kind, c.w.Kind())
			assert.Equal(t, c.size, c.kind.Size())
			assert.Equal(t, c.str, c.w.String())
			assert.Same(t, c.class, c.w.Materialize().Class())
		})
	}
	assert.True(t, BoolClass.IsSubclass(IntClass))
}

func TestWrapPrimitive(t *testing.T) {
	w, ok := WrapPrimitive(types.Float(1.5))
	require.True(t, ok)
	require.Equal(t, DoubleKind, w.Kind())

	w, ok = WrapPrimitive(types.Int(1))
	require.True(t, ok)
	require.Equal(t, LongKind, w.Kind())

	_, ok = WrapPrimitive(types.String("x"))
	require.False(t, ok)
}

func TestWrapForeign(t *testing.T) {
	type host struct{ n int }
	h := &host{n: 1}

	w := WrapForeign(h)
	require.Same(t, h, w.ForeignObject())
	require.Equal(t, "foreign", w.Delegate().Type())
	require.Equal(t, "ForeignWrapper(<foreign *cext.host>, isNative=false)", w.String())

	f := types.NewForeign("handle", 3)
	require.Same(t, f, WrapForeign(f).Delegate())

	inner := WrapObject(types.NewClass("C", nil).New())
	require.PanicsWithError(t, "invariant violation: wrap foreign: attempting to wrap a native wrapper: "+inner.String(), func() {
		WrapForeign(inner)
	})
	require.Panics(t, func() { WrapForeign(w) })
}

func TestNewSequenceArray(t *testing.T) {
	arr := types.NewArray([]types.Value{types.Int(1), types.Int(2)})
	for _, size := range []int{1, 2, 4, 8} {
		w := NewSequenceArray(arr, size)
		require.Equal(t, size, w.ElementAccessSize())
		require.Equal(t, 2, w.Len())
		require.Same(t, arr, w.Delegate())
	}
	require.PanicsWithError(t, "invariant violation: wrap sequence: invalid element access size 3", func() {
		NewSequenceArray(arr, 3)
	})
}

func TestWrapText(t *testing.T) {
	s := types.NewStringObject("abc")
	data, state := WrapText(s)
	require.Same(t, s, data.Delegate())
	require.Same(t, s, state.Delegate())
	require.Same(t, data.Text(), state.Text())
	require.Equal(t, `TextData("abc", isNative=false)`, data.String())
	require.Equal(t, `TextState("abc", isNative=false)`, state.String())
}
