package types

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"
)

// An Object is a generic heap-allocated instance of a Class. An object may
// also be the materialized form of a boxed primitive value, in which case it
// remembers that value.
type Object struct {
	Header

	class  *Class
	boxed  Value
	attrs  *swiss.Map[string, Value] // lazily allocated
	frozen bool
}

var (
	_ Value       = (*Object)(nil)
	_ HasSetField = (*Object)(nil)
)

// NewBoxedObject returns a new instance of class that holds the primitive
// value v.
func NewBoxedObject(class *Class, v Value) *Object {
	return &Object{class: class, boxed: v}
}

func (o *Object) String() string {
	if o.boxed != nil {
		return o.boxed.String()
	}
	return fmt.Sprintf("<%s object at %p>", o.class.name, o)
}

// Type returns the name of the object's class.
func (o *Object) Type() string { return o.class.name }

// Class returns the class of the object.
func (o *Object) Class() *Class { return o.class }

func (o *Object) Truth() Bool {
	if o.boxed != nil {
		return o.boxed.Truth()
	}
	return True
}

// Boxed returns the primitive value held by the object, if any.
func (o *Object) Boxed() (Value, bool) {
	return o.boxed, o.boxed != nil
}

func (o *Object) Freeze() {
	if o.frozen {
		return
	}
	o.frozen = true
	if o.attrs != nil {
		o.attrs.Iter(func(_ string, v Value) bool {
			v.Freeze()
			return false
		})
	}
}

// Attr returns the attribute name of the object. Descriptors defined on the
// class take precedence over the instance attributes, then the class
// attributes are looked up.
func (o *Object) Attr(name string) (Value, error) {
	cv, inClass := o.class.Lookup(name)
	if d, ok := cv.(*GetSetDescriptor); ok {
		return d.Get(o)
	}
	if o.attrs != nil {
		if v, ok := o.attrs.Get(name); ok {
			return v, nil
		}
	}
	if inClass {
		return cv, nil
	}
	return nil, nil
}

func (o *Object) AttrNames() []string {
	names := o.class.AttrNames()
	if o.attrs != nil {
		o.attrs.Iter(func(name string, _ Value) bool {
			if _, ok := o.class.Lookup(name); !ok {
				names = append(names, name)
			}
			return false
		})
	}
	sort.Strings(names)
	return names
}

// SetField sets the attribute name of the object, through the class
// descriptor if there is one.
func (o *Object) SetField(name string, val Value) error {
	if cv, ok := o.class.Lookup(name); ok {
		if d, ok := cv.(*GetSetDescriptor); ok {
			return d.Set(o, val)
		}
	}
	if o.frozen {
		return fmt.Errorf("cannot set attribute of frozen %s object", o.class.name)
	}
	if o.attrs == nil {
		o.attrs = swiss.NewMap[string, Value](4)
	}
	o.attrs.Put(name, val)
	return nil
}
