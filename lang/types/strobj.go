package types

import "strconv"

// A StringObject is a heap-allocated string. Unlike String, it has an
// identity and may be exposed to native code. It compares and hashes equal to
// the String with the same content.
type StringObject struct {
	Header

	s string
}

var (
	_ Value     = (*StringObject)(nil)
	_ Indexable = (*StringObject)(nil)
)

// NewStringObject returns a new heap string with content s.
func NewStringObject(s string) *StringObject { return &StringObject{s: s} }

func (o *StringObject) String() string    { return strconv.Quote(o.s) }
func (o *StringObject) Type() string      { return "str" }
func (o *StringObject) Freeze()           {} // immutable
func (o *StringObject) Truth() Bool       { return len(o.s) > 0 }
func (o *StringObject) Len() int          { return len(o.s) }
func (o *StringObject) Index(i int) Value { return String(o.s[i : i+1]) }

// Value returns the content of the string.
func (o *StringObject) Value() string { return o.s }
