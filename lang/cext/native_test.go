package cext

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/mna/nymphaea/lang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T, cfg HeapConfig) *Heap {
	t.Helper()
	ctx := context.Background()
	h, err := NewHeap(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(ctx) })
	return h
}

func TestHeapAlloc(t *testing.T) {
	h := newTestHeap(t, HeapConfig{MaxPages: 4})
	require.Equal(t, uint32(PageSize), h.Size())
	require.Equal(t, uint32(heapBase), h.Used())

	p1, err := h.Alloc(3, 1)
	require.NoError(t, err)
	require.Equal(t, Pointer(heapBase), p1)

	p2, err := h.Alloc(8, 8)
	require.NoError(t, err)
	require.Zero(t, uint64(p2)%8)
	require.Greater(t, uint64(p2), uint64(p1))

	p3, err := h.Alloc(0, 1)
	require.NoError(t, err)
	p4, err := h.Alloc(0, 1)
	require.NoError(t, err)
	require.NotEqual(t, p3, p4)

	_, err = h.Alloc(8, 3)
	require.ErrorContains(t, err, "not a power of two")

	// grow the heap
	p5, err := h.Alloc(PageSize, 8)
	require.NoError(t, err)
	require.Equal(t, uint32(2*PageSize), h.Size())
	require.NoError(t, h.WriteUint(p5+PageSize-8, math.MaxUint64, 8))
}

func TestHeapOutOfMemory(t *testing.T) {
	h := newTestHeap(t, HeapConfig{InitialPages: 1, MaxPages: 1})
	_, err := h.Alloc(PageSize, 8)
	require.True(t, errors.Is(err, ErrOutOfMemory))

	_, err = NewHeap(context.Background(), HeapConfig{InitialPages: 3, MaxPages: 2})
	require.ErrorContains(t, err, "initial pages 3 exceed max pages 2")

	_, err = NewHeap(context.Background(), HeapConfig{MaxPages: MaxPages + 1})
	require.EqualError(t, err, "native heap: max pages 65537 exceed limit 65536")
}

func TestHeapReadWrite(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})

	p, err := h.Alloc(32, 8)
	require.NoError(t, err)

	for _, size := range []int{1, 2, 4, 8} {
		want := uint64(0x0102030405060708) & (math.MaxUint64 >> (64 - 8*size))
		require.NoError(t, h.WriteUint(p, 0x0102030405060708, size))
		got, err := h.ReadUint(p, size)
		require.NoError(t, err)
		require.Equal(t, want, got, "size %d", size)
	}
	require.ErrorContains(t, h.WriteUint(p, 1, 3), "invalid integer size 3")

	require.NoError(t, h.Write(p+16, []byte("hello\x00")))
	s, err := h.ReadCString(p + 16)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	b, err := h.Read(p+16, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)

	_, err = h.ReadUint(NullPointer, 8)
	require.ErrorContains(t, err, "null pointer access")
	_, err = h.Read(Pointer(h.Size()-2), 4)
	require.ErrorContains(t, err, "out of bounds")
}

func TestToNativeObject(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	c := types.NewClass("Point", nil)
	o := c.New()
	w := WrapObject(o)

	p, err := ToNative(h, w)
	require.NoError(t, err)
	require.NotEqual(t, NullPointer, p)
	require.Equal(t, p, w.NativePointer())
	require.True(t, w.IsNative())

	refcnt, err := h.ReadUint(p+OffsetRefCount, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(1), refcnt)

	// the type field points to the native class
	cw := WrapClass(c)
	require.True(t, cw.IsNative())
	typ, err := h.ReadUint(p+OffsetType, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(cw.NativePointer()), typ)

	namep, err := h.ReadUint(cw.NativePointer()+OffsetName, 8)
	require.NoError(t, err)
	name, err := h.ReadCString(Pointer(namep))
	require.NoError(t, err)
	require.Equal(t, "Point", name)

	// a second move is a no-op
	used := h.Used()
	p2, err := ToNative(h, w)
	require.NoError(t, err)
	require.Equal(t, p, p2)
	require.Equal(t, used, h.Used())
}

func TestToNativeClassProcs(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	cw := WrapClass(types.NewClass("Buffer", nil))
	cw.SetGetBufferProc(0x1234)
	cw.SetReleaseBufferProc(0x5678)

	p, err := ToNative(h, cw)
	require.NoError(t, err)

	get, err := h.ReadUint(p+OffsetGetBuffer, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1234), get)
	rel, err := h.ReadUint(p+OffsetReleaseBuffer, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(0x5678), rel)
}

func TestToNativePrimitive(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	cases := []struct {
		w    *PrimitiveWrapper
		want uint64
	}{
		{NewBoolWrapper(true), 1},
		{NewLongWrapper(-1), math.MaxUint64},
		{NewIntWrapper(12), 12},
		{NewDoubleWrapper(1.5), math.Float64bits(1.5)},
	}
	for _, c := range cases {
		p, err := ToNative(h, c.w)
		require.NoError(t, err)
		got, err := h.ReadUint(p+OffsetValue, 8)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.w.String())
		assert.True(t, c.w.IsNative())
	}
}

func TestToNativeSequence(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	arr := types.NewArray([]types.Value{types.Int(1), types.Int(2), types.Int(300)})
	w := NewSequenceArray(arr, 2)

	_, err := ReadElement(h, w, 0)
	require.ErrorContains(t, err, "is not native")

	p, err := ToNative(h, w)
	require.NoError(t, err)
	require.Zero(t, uint64(p)%2)

	for i, want := range []uint64{1, 2, 300} {
		got, err := ReadElement(h, w, i)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.NoError(t, WriteElement(h, w, 1, 0xffff07))
	got, err := ReadElement(h, w, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(0xff07), got)
	require.Equal(t, types.Int(2), arr.Index(1))

	_, err = ReadElement(h, w, 3)
	require.ErrorIs(t, err, types.IndexError)
	require.EqualError(t, err, "IndexError: index 3 out of range [0:3]")
	require.ErrorIs(t, WriteElement(h, w, -1, 0), types.IndexError)
}

func TestToNativeSequenceFloats(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	floats := types.Tuple{types.Float(0.5), types.Float(-2)}

	w4 := NewSequenceArray(floats, 4)
	_, err := ToNative(h, w4)
	require.NoError(t, err)
	got, err := ReadElement(h, w4, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(math.Float32bits(-2)), got)

	w1 := NewSequenceArray(floats, 1)
	_, err = ToNative(h, w1)
	require.ErrorIs(t, err, types.TypeError)
	require.False(t, w1.IsNative())

	w8 := NewSequenceArray(types.Tuple{types.String("x")}, 8)
	_, err = ToNative(h, w8)
	require.EqualError(t, err, "TypeError: string element cannot be accessed natively")
}

func TestToNativeSequenceIntRange(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})

	cases := []struct {
		v    types.Int
		size int
		want uint64
		err  string
	}{
		{255, 1, 0xff, ""},
		{-128, 1, 0x80, ""},
		{256, 1, 0, "OverflowError: int element 256 does not fit in 1 bytes"},
		{-129, 1, 0, "OverflowError: int element -129 does not fit in 1 bytes"},
		{300, 2, 300, ""},
		{-1, 2, 0xffff, ""},
		{65536, 2, 0, "OverflowError: int element 65536 does not fit in 2 bytes"},
		{1<<32 - 1, 4, 0xffffffff, ""},
		{1 << 32, 4, 0, "OverflowError: int element 4294967296 does not fit in 4 bytes"},
		{-1 << 31, 4, 0x80000000, ""},
		{math.MinInt64, 8, 1 << 63, ""},
		{math.MaxInt64, 8, math.MaxInt64, ""},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d/%d", c.v, c.size), func(t *testing.T) {
			w := NewSequenceArray(types.Tuple{c.v}, c.size)
			_, err := ToNative(h, w)
			if c.err != "" {
				require.EqualError(t, err, c.err)
				require.ErrorIs(t, err, types.OverflowError)
				require.False(t, w.IsNative())
				return
			}
			require.NoError(t, err)
			got, err := ReadElement(h, w, 0)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestToNativeText(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})

	cases := []struct {
		s     string
		n     uint64
		flags uint64
	}{
		{"hello", 5, TextASCII | TextCompact | TextReady},
		{"héllo", 5, TextCompact | TextReady},
		{"日本", 2, TextCompact | TextReady},
		{"", 0, TextASCII | TextCompact | TextReady},
	}
	for _, c := range cases {
		t.Run(c.s, func(t *testing.T) {
			data, state := WrapText(types.NewStringObject(c.s))

			dp, err := ToNative(h, data)
			require.NoError(t, err)
			s, err := h.ReadCString(dp)
			require.NoError(t, err)
			require.Equal(t, c.s, s)

			sp, err := ToNative(h, state)
			require.NoError(t, err)
			require.NotEqual(t, dp, sp)

			n, err := h.ReadUint(sp+OffsetLength, 8)
			require.NoError(t, err)
			require.Equal(t, c.n, n)
			flags, err := h.ReadUint(sp+OffsetFlags, 4)
			require.NoError(t, err)
			require.Equal(t, c.flags, flags)
		})
	}
}

func TestToNativeForeign(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	w := WrapForeign(struct{}{})
	p, err := ToNative(h, w)
	require.NoError(t, err)
	typ, err := h.ReadUint(p+OffsetType, 8)
	require.NoError(t, err)
	require.Zero(t, typ)
}

func TestToNativeConcurrent(t *testing.T) {
	h := newTestHeap(t, HeapConfig{})
	o := types.NewClass("C", nil).New()

	const n = 16
	ptrs := make([]Pointer, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := ToNative(h, WrapObject(o))
			assert.NoError(t, err)
			ptrs[i] = p
		}(i)
	}
	wg.Wait()

	want := WrapObject(o).NativePointer()
	for _, p := range ptrs {
		require.Equal(t, want, p)
	}
}

func TestToNativeOutOfMemory(t *testing.T) {
	h := newTestHeap(t, HeapConfig{InitialPages: 1, MaxPages: 1})
	arr := make([]types.Value, PageSize/8)
	for i := range arr {
		arr[i] = types.Int(i)
	}
	w := NewSequenceArray(types.NewArray(arr), 8)
	_, err := ToNative(h, w)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.False(t, w.IsNative())
}
