package machine

// DefaultMaxCallDepth is the maximum depth of nested builtin calls when
// Thread.MaxCallDepth is not set.
const DefaultMaxCallDepth = 1000

// A Thread is the execution context of builtin operations. A thread must not
// be used concurrently, but distinct threads may run concurrently.
type Thread struct {
	// Name is an optional name that describes the thread, mostly for debugging.
	Name string

	// Builtins is the registry used to dispatch builtin operations by value
	// kind. An empty registry is used if nil.
	Builtins *Registry

	// MaxCallDepth limits the number of nested builtin calls, which may happen
	// when an operation falls back to the reflected operation of its operand.
	// A value <= 0 means DefaultMaxCallDepth.
	MaxCallDepth int

	depth int
}

var emptyRegistry = NewRegistry()

func (th *Thread) registry() *Registry {
	if th.Builtins == nil {
		return emptyRegistry
	}
	return th.Builtins
}

func (th *Thread) maxCallDepth() int {
	if th.MaxCallDepth <= 0 {
		return DefaultMaxCallDepth
	}
	return th.MaxCallDepth
}
