package types

import (
	"fmt"
	"sort"

	"github.com/dolthub/swiss"
)

// A Class is a class or type object. Its attributes are shared by all its
// instances and looked up through the chain of base classes.
type Class struct {
	Header

	name   string
	base   *Class
	attrs  *swiss.Map[string, Value]
	frozen bool
}

var (
	_ Value       = (*Class)(nil)
	_ HasSetField = (*Class)(nil)
)

// NewClass returns a new class with the specified name. The base is
// optional.
func NewClass(name string, base *Class) *Class {
	return &Class{name: name, base: base, attrs: swiss.NewMap[string, Value](4)}
}

func (c *Class) String() string { return fmt.Sprintf("<class '%s'>", c.name) }
func (c *Class) Type() string   { return "class" }
func (c *Class) Truth() Bool    { return True }
func (c *Class) Name() string   { return c.name }
func (c *Class) Base() *Class   { return c.base }

func (c *Class) Freeze() {
	if c.frozen {
		return
	}
	c.frozen = true
	c.attrs.Iter(func(_ string, v Value) bool {
		v.Freeze()
		return false
	})
}

// New returns a new instance of the class.
func (c *Class) New() *Object {
	return &Object{class: c}
}

// IsSubclass reports whether c is other or inherits from it.
func (c *Class) IsSubclass(other *Class) bool {
	for cur := c; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// Lookup returns the attribute name from the class or its bases.
func (c *Class) Lookup(name string) (Value, bool) {
	for cur := c; cur != nil; cur = cur.base {
		if v, ok := cur.attrs.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (c *Class) Attr(name string) (Value, error) {
	if v, ok := c.Lookup(name); ok {
		return v, nil
	}
	return nil, nil
}

func (c *Class) AttrNames() []string {
	seen := make(map[string]bool)
	var names []string
	for cur := c; cur != nil; cur = cur.base {
		cur.attrs.Iter(func(name string, _ Value) bool {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			return false
		})
	}
	sort.Strings(names)
	return names
}

// SetField sets the class attribute name. A GetSetDescriptor value is bound
// to the class if it was created for another class.
func (c *Class) SetField(name string, val Value) error {
	if c.frozen {
		return fmt.Errorf("cannot set attribute of frozen class %s", c.name)
	}
	if d, ok := val.(*GetSetDescriptor); ok {
		val = d.BoundTo(c)
	}
	c.attrs.Put(name, val)
	return nil
}
