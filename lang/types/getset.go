package types

import "fmt"

// A GetSetDescriptor is a class attribute that computes the value of an
// instance attribute. The setter is optional, the attribute is read-only
// without it.
type GetSetDescriptor struct {
	name  string
	owner *Class
	get   func(self Value) (Value, error)
	set   func(self, v Value) error
}

var _ Value = (*GetSetDescriptor)(nil)

// NewGetSetDescriptor returns a descriptor for the attribute name of the
// owner's instances.
func NewGetSetDescriptor(owner *Class, name string, get func(Value) (Value, error), set func(Value, Value) error) *GetSetDescriptor {
	return &GetSetDescriptor{name: name, owner: owner, get: get, set: set}
}

func (d *GetSetDescriptor) String() string {
	return fmt.Sprintf("<attribute '%s' of '%s' objects>", d.name, d.owner.name)
}

func (d *GetSetDescriptor) Type() string  { return "getset_descriptor" }
func (d *GetSetDescriptor) Freeze()       {} // immutable
func (d *GetSetDescriptor) Truth() Bool   { return True }
func (d *GetSetDescriptor) Name() string  { return d.name }
func (d *GetSetDescriptor) Owner() *Class { return d.owner }

// Get returns the value of the attribute for self.
func (d *GetSetDescriptor) Get(self Value) (Value, error) {
	return d.get(self)
}

// Set sets the value of the attribute for self. It fails with an
// AttributeError if the descriptor has no setter.
func (d *GetSetDescriptor) Set(self, v Value) error {
	if d.set == nil {
		return Raise(AttributeError, "attribute '%s' of '%s' objects is not writable", d.name, d.owner.name)
	}
	return d.set(self, v)
}

// BoundTo returns the descriptor bound to class. It returns d itself if it is
// already bound to class, otherwise a copy that shares the same accessors.
func (d *GetSetDescriptor) BoundTo(class *Class) *GetSetDescriptor {
	if d.owner == class {
		return d
	}
	return NewGetSetDescriptor(class, d.name, d.get, d.set)
}
