package types

import (
	"strconv"
)

// Int is the type of an integer value. It is also the boxed form of the
// byte, int and long primitives.
type Int int64

var (
	_ Value   = Int(0)
	_ Ordered = Int(0)
)

func (i Int) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i Int) Type() string { return "int" }
func (i Int) Freeze()      {} // immutable
func (i Int) Truth() Bool  { return i != 0 }

func (i Int) Cmp(v Value, depth int) (int, error) {
	j := v.(Int)
	if i > j {
		return +1, nil
	} else if i < j {
		return -1, nil
	}
	return 0, nil
}
