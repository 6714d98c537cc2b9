package types

import "fmt"

// A Foreign value holds an arbitrary host object that is not itself a
// managed value.
type Foreign struct {
	TypeName string
	Object   any
}

var _ Value = (*Foreign)(nil)

// NewForeign returns a foreign value for obj. The type name defaults to the
// Go type of obj.
func NewForeign(typeName string, obj any) *Foreign {
	if typeName == "" {
		typeName = fmt.Sprintf("%T", obj)
	}
	return &Foreign{TypeName: typeName, Object: obj}
}

func (f *Foreign) String() string { return fmt.Sprintf("<foreign %s>", f.TypeName) }
func (f *Foreign) Type() string   { return "foreign" }
func (f *Foreign) Freeze()        {}
func (f *Foreign) Truth() Bool    { return f.Object != nil }
