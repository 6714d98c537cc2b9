// Package builtins implements the builtin operations of the runtime's value
// kinds and registers them for dispatch by the machine.
package builtins

import "github.com/mna/nymphaea/lang/machine"

// Register registers all builtins in r.
func Register(r *machine.Registry) {
	for _, b := range setBuiltins {
		r.Register(SetKind, b)
	}
}

// NewRegistry returns a registry populated with all builtins.
func NewRegistry() *machine.Registry {
	r := machine.NewRegistry()
	Register(r)
	return r
}
