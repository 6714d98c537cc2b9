package cext

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

const (
	// PageSize is the size of a native heap page.
	PageSize = 65536

	// DefaultMaxPages is the maximum number of pages of a heap when
	// HeapConfig.MaxPages is not set (16MiB).
	DefaultMaxPages = 256

	// MaxPages is the limit of pages of a WebAssembly memory (4GiB).
	MaxPages = 65536

	// heapBase is the address of the first allocation, so that no allocation
	// is ever at the null address.
	heapBase = 16
)

// ErrOutOfMemory is returned when the native heap cannot grow enough to
// satisfy an allocation.
var ErrOutOfMemory = errors.New("native heap out of memory")

// HeapConfig configures a native heap.
type HeapConfig struct {
	// InitialPages is the number of pages allocated when the heap is created,
	// 1 if not set.
	InitialPages uint32

	// MaxPages is the number of pages the heap may grow to, DefaultMaxPages
	// if not set.
	MaxPages uint32
}

// A Heap is the native memory where wrappers get their native
// representation. It is a WebAssembly linear memory, native pointers are
// addresses in that memory. Allocations are never freed, the heap lives as
// long as the wrappers that point into it.
//
// A Heap is safe for concurrent use.
type Heap struct {
	mu   sync.Mutex
	rt   wazero.Runtime
	mem  api.Memory
	next uint32
}

// NewHeap creates a native heap as configured by cfg. The heap must be closed
// when no longer needed.
func NewHeap(ctx context.Context, cfg HeapConfig) (*Heap, error) {
	initial, maxPages := cfg.InitialPages, cfg.MaxPages
	if initial == 0 {
		initial = 1
	}
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}
	if maxPages > MaxPages {
		return nil, fmt.Errorf("native heap: max pages %d exceed limit %d", maxPages, MaxPages)
	}
	if initial > maxPages {
		return nil, fmt.Errorf("native heap: initial pages %d exceed max pages %d", initial, maxPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(maxPages))
	mod, err := rt.Instantiate(ctx, memoryModule(initial, maxPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("native heap: %w", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.New("native heap: memory not exported")
	}

	Logger().Debug("native heap created",
		zap.Uint32("initial_pages", initial),
		zap.Uint32("max_pages", maxPages))
	return &Heap{rt: rt, mem: mem, next: heapBase}, nil
}

// Close releases the heap. All pointers into the heap become invalid.
func (h *Heap) Close(ctx context.Context) error {
	return h.rt.Close(ctx)
}

// Size returns the current size of the heap in bytes.
func (h *Heap) Size() uint32 { return h.mem.Size() }

// Used returns the number of bytes allocated so far, including the reserved
// area at the start of the heap.
func (h *Heap) Used() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}

// Alloc allocates size bytes aligned on align, which must be a power of two
// (8 if zero). The memory is zeroed. The heap grows as needed, it returns
// ErrOutOfMemory if it cannot.
func (h *Heap) Alloc(size, align uint32) (Pointer, error) {
	if align == 0 {
		align = 8
	}
	if align&(align-1) != 0 {
		return NullPointer, fmt.Errorf("native heap: alignment %d is not a power of two", align)
	}
	if size == 0 {
		// distinct allocations always have distinct addresses
		size = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	addr := (uint64(h.next) + uint64(align) - 1) &^ (uint64(align) - 1)
	end := addr + uint64(size)
	if end > math.MaxUint32 {
		return NullPointer, ErrOutOfMemory
	}
	if cur := uint64(h.mem.Size()); end > cur {
		delta := (end - cur + PageSize - 1) / PageSize
		if _, ok := h.mem.Grow(uint32(delta)); !ok {
			return NullPointer, ErrOutOfMemory
		}
		Logger().Debug("native heap grown",
			zap.Uint64("pages", delta),
			zap.Uint32("size", h.mem.Size()))
	}
	h.next = uint32(end)
	return Pointer(addr), nil
}

func (h *Heap) offset(p Pointer, n uint64) (uint32, error) {
	if p == NullPointer {
		return 0, errors.New("native heap: null pointer access")
	}
	if uint64(p)+n > uint64(h.mem.Size()) {
		return 0, fmt.Errorf("native heap: access out of bounds: pointer=%s, length=%d", p, n)
	}
	return uint32(p), nil
}

// Write copies b to the heap at p.
func (h *Heap) Write(p Pointer, b []byte) error {
	off, err := h.offset(p, uint64(len(b)))
	if err != nil {
		return err
	}
	if !h.mem.Write(off, b) {
		return fmt.Errorf("native heap: write out of bounds: pointer=%s, length=%d", p, len(b))
	}
	return nil
}

// Read returns a copy of the n bytes of the heap at p.
func (h *Heap) Read(p Pointer, n uint32) ([]byte, error) {
	off, err := h.offset(p, uint64(n))
	if err != nil {
		return nil, err
	}
	b, ok := h.mem.Read(off, n)
	if !ok {
		return nil, fmt.Errorf("native heap: read out of bounds: pointer=%s, length=%d", p, n)
	}
	return append([]byte(nil), b...), nil
}

// ReadCString returns the NUL-terminated string at p.
func (h *Heap) ReadCString(p Pointer) (string, error) {
	var buf []byte
	for {
		c, err := h.ReadUint(p+Pointer(len(buf)), 1)
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(buf), nil
		}
		buf = append(buf, byte(c))
	}
}

// WriteUint writes the size low bytes of v at p in little-endian order. The
// size must be 1, 2, 4 or 8.
func (h *Heap) WriteUint(p Pointer, v uint64, size int) error {
	off, err := h.offset(p, uint64(size))
	if err != nil {
		return err
	}

	var ok bool
	switch size {
	case 1:
		ok = h.mem.WriteByte(off, byte(v))
	case 2:
		ok = h.mem.WriteUint16Le(off, uint16(v))
	case 4:
		ok = h.mem.WriteUint32Le(off, uint32(v))
	case 8:
		ok = h.mem.WriteUint64Le(off, v)
	default:
		return fmt.Errorf("native heap: invalid integer size %d", size)
	}
	if !ok {
		return fmt.Errorf("native heap: write out of bounds: pointer=%s, length=%d", p, size)
	}
	return nil
}

// ReadUint reads the size bytes little-endian unsigned integer at p. The size
// must be 1, 2, 4 or 8.
func (h *Heap) ReadUint(p Pointer, size int) (uint64, error) {
	off, err := h.offset(p, uint64(size))
	if err != nil {
		return 0, err
	}

	var (
		v  uint64
		ok bool
	)
	switch size {
	case 1:
		var b byte
		b, ok = h.mem.ReadByte(off)
		v = uint64(b)
	case 2:
		var u uint16
		u, ok = h.mem.ReadUint16Le(off)
		v = uint64(u)
	case 4:
		var u uint32
		u, ok = h.mem.ReadUint32Le(off)
		v = uint64(u)
	case 8:
		v, ok = h.mem.ReadUint64Le(off)
	default:
		return 0, fmt.Errorf("native heap: invalid integer size %d", size)
	}
	if !ok {
		return 0, fmt.Errorf("native heap: read out of bounds: pointer=%s, length=%d", p, size)
	}
	return v, nil
}

// memoryModule returns the binary of a WebAssembly module that only defines
// and exports a memory with the specified limits.
func memoryModule(initial, maxPages uint32) []byte {
	limits := append([]byte{0x01}, uleb128(initial)...)
	limits = append(limits, uleb128(maxPages)...)
	memSection := append([]byte{0x01}, limits...) // one memory

	exportSection := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00} // one memory export, index 0

	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00} // magic, version 1
	b = append(b, 0x05)
	b = append(b, uleb128(uint32(len(memSection)))...)
	b = append(b, memSection...)
	b = append(b, 0x07)
	b = append(b, uleb128(uint32(len(exportSection)))...)
	b = append(b, exportSection...)
	return b
}

func uleb128(v uint32) []byte {
	var b []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}
