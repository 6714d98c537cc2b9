package types

import "strings"

// A Tuple represents an immutable list of values (only the list is immutable,
// the values themselves are not). Iteration over a Tuple yields each of the
// tuple's values in order.
type Tuple []Value

var (
	_ Value     = Tuple(nil)
	_ Indexable = Tuple(nil)
	_ Sequence  = Tuple(nil)
)

func (t Tuple) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(v.String())
	}
	if len(t) == 1 {
		buf.WriteByte(',')
	}
	buf.WriteByte(')')
	return buf.String()
}

func (t Tuple) Type() string      { return "tuple" }
func (t Tuple) Truth() Bool       { return len(t) > 0 }
func (t Tuple) Len() int          { return len(t) }
func (t Tuple) Index(i int) Value { return t[i] }
func (t Tuple) Iterate() Iterator { return &tupleIterator{elems: t} }

func (t Tuple) Freeze() {
	for _, v := range t {
		v.Freeze()
	}
}

type tupleIterator struct{ elems Tuple }

func (it *tupleIterator) Next(p *Value) bool {
	if len(it.elems) > 0 {
		*p = it.elems[0]
		it.elems = it.elems[1:]
		return true
	}
	return false
}

func (it *tupleIterator) Done() {}
