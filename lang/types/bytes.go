package types

import (
	"strconv"
	"strings"
)

// Bytes is the type of binary data. A Bytes encapsulates an immutable sequence
// of bytes. It is comparable, indexable, and sliceable, but not directly
// iterable.
type Bytes string

var (
	_ Ordered   = Bytes("")
	_ Indexable = Bytes("")
)

func (b Bytes) String() string    { return "b" + strconv.Quote(string(b)) }
func (b Bytes) Type() string      { return "bytes" }
func (b Bytes) Freeze()           {} // immutable
func (b Bytes) Truth() Bool       { return len(b) > 0 }
func (b Bytes) Len() int          { return len(b) }
func (b Bytes) Index(i int) Value { return Int(b[i]) }

func (b Bytes) Cmp(y Value, depth int) (int, error) {
	bb := y.(Bytes)
	return strings.Compare(string(b), string(bb)), nil
}
