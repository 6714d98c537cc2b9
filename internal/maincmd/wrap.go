package maincmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/nymphaea/lang/cext"
	"github.com/mna/nymphaea/lang/types"
)

const defaultElemSize = 8

func (c *Cmd) Wrap(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg := c.config()
	h, err := cext.NewHeap(ctx, cext.HeapConfig{
		InitialPages: cfg.HeapInitialPages,
		MaxPages:     cfg.HeapMaxPages,
	})
	if err != nil {
		return printError(stdio, err)
	}
	defer h.Close(ctx)

	elemSize := c.ElemSize
	if elemSize == 0 {
		elemSize = defaultElemSize
	}

	for i, arg := range args {
		v, err := ParseLiteral(arg)
		if err != nil {
			return printError(stdio, fmt.Errorf("argument %d: %w", i+1, err))
		}
		ws, err := wrapValue(v, elemSize)
		if err != nil {
			return printError(stdio, fmt.Errorf("argument %d: %w", i+1, err))
		}

		for _, w := range ws {
			p, err := cext.ToNative(h, w)
			if err != nil {
				return printError(stdio, fmt.Errorf("argument %d: %w", i+1, err))
			}
			fmt.Fprintf(stdio.Stdout, "%s: %s at %s\n", arg, wrapperName(w), p)
			if err := printNative(stdio.Stdout, h, w); err != nil {
				return printError(stdio, fmt.Errorf("argument %d: %w", i+1, err))
			}
		}
	}
	fmt.Fprintf(stdio.Stdout, "heap: %d bytes used\n", h.Used())
	return nil
}

// wrapValue returns the wrappers that expose v to native code.
func wrapValue(v types.Value, elemSize int) ([]cext.Wrapper, error) {
	if w, ok := cext.WrapPrimitive(v); ok {
		return []cext.Wrapper{w}, nil
	}

	switch v := v.(type) {
	case types.String:
		data, state := cext.WrapText(types.NewStringObject(string(v)))
		return []cext.Wrapper{data, state}, nil
	case *types.Array, types.Tuple:
		return []cext.Wrapper{cext.NewSequenceArray(v.(types.Indexable), elemSize)}, nil
	case types.HasNativeWrapper:
		return []cext.Wrapper{cext.WrapObject(v)}, nil
	}
	return nil, fmt.Errorf("%s value cannot be wrapped", v.Type())
}

func wrapperName(w cext.Wrapper) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", w), "*cext.")
}

// printNative prints the native state of w, read back from the heap.
func printNative(out io.Writer, h *cext.Heap, w cext.Wrapper) error {
	p := w.NativePointer()

	switch w := w.(type) {
	case *cext.PrimitiveWrapper:
		raw, err := h.ReadUint(p+cext.OffsetValue, 8)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  kind: %s, native value: 0x%016x\n", w.Kind(), raw)

		o := w.Materialize()
		same := cext.WrapObject(o) == cext.DynamicWrapper(w)
		fmt.Fprintf(out, "  materialized: %s, same wrapper: %t\n", o.Type(), same)

	case *cext.SequenceArrayWrapper:
		size := w.ElementAccessSize()
		elems := make([]string, w.Len())
		for i := range elems {
			raw, err := cext.ReadElement(h, w, i)
			if err != nil {
				return err
			}
			elems[i] = fmt.Sprintf("0x%0*x", size*2, raw)
		}
		fmt.Fprintf(out, "  elements (%d bytes): %s\n", size, strings.Join(elems, " "))

	case *cext.TextData:
		s, err := h.ReadCString(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  data: %q\n", s)

	case *cext.TextState:
		n, err := h.ReadUint(p+cext.OffsetLength, 8)
		if err != nil {
			return err
		}
		flags, err := h.ReadUint(p+cext.OffsetFlags, 4)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  length: %d, flags: %s\n", n, textFlags(flags))

	case *cext.ObjectWrapper:
		typ, err := h.ReadUint(p+cext.OffsetType, 8)
		if err != nil {
			return err
		}
		if typ == 0 {
			fmt.Fprintf(out, "  type: %s\n", cext.NullPointer)
			break
		}
		namep, err := h.ReadUint(cext.Pointer(typ)+cext.OffsetName, 8)
		if err != nil {
			return err
		}
		name, err := h.ReadCString(cext.Pointer(namep))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  type: %s (%s)\n", cext.Pointer(typ), name)
	}
	return nil
}

func textFlags(flags uint64) string {
	var names []string
	for _, f := range []struct {
		bit  uint64
		name string
	}{
		{cext.TextASCII, "ascii"},
		{cext.TextCompact, "compact"},
		{cext.TextReady, "ready"},
	} {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, "|")
}
