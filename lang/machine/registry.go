package machine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mna/nymphaea/lang/types"
)

// Func is the implementation of a builtin specialization. The args tuple
// always has the arity of the builtin, the receiver being args[0].
type Func func(th *Thread, args types.Tuple) (types.Value, error)

// A Matcher decides whether a specialization applies to an operand.
type Matcher interface {
	Match(v types.Value) bool
	String() string
}

// Kind matches the values whose Type is the kind.
type Kind string

func (k Kind) Match(v types.Value) bool { return v.Type() == string(k) }
func (k Kind) String() string           { return string(k) }

// Any matches all values. It is the parameter matcher of generic
// specializations.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(types.Value) bool { return true }
func (anyMatcher) String() string         { return "any" }

// Is returns a matcher that matches the values of the Go type T.
func Is[T types.Value]() Matcher {
	var zero T
	return isMatcher[T]{name: fmt.Sprintf("%T", zero)}
}

type isMatcher[T types.Value] struct{ name string }

func (m isMatcher[T]) Match(v types.Value) bool {
	_, ok := v.(T)
	return ok
}

func (m isMatcher[T]) String() string { return m.name }

// A Specialization is an implementation of a builtin for a signature of
// operand matchers.
type Specialization struct {
	Params []Matcher
	Fn     Func
}

func (s *Specialization) matches(args types.Tuple) bool {
	for i, m := range s.Params {
		if !m.Match(args[i]) {
			return false
		}
	}
	return true
}

// A Builtin is a named operation with a fixed number of positional
// arguments, including the receiver. Its specializations are tried in order,
// so the most specific must come first and the generic one last.
type Builtin struct {
	Name  string
	Arity int
	Specs []Specialization
}

// resolve returns the first specialization that matches args, or nil.
func (b *Builtin) resolve(args types.Tuple) *Specialization {
	for i := range b.Specs {
		if s := &b.Specs[i]; s.matches(args) {
			return s
		}
	}
	return nil
}

// A Registry holds the builtins registered for each value kind. It is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]map[string]*Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]map[string]*Builtin)}
}

// Register registers b for the values of kind. It panics if a builtin with
// the same name is already registered for that kind or if a specialization
// does not declare exactly one matcher per argument.
func (r *Registry) Register(kind string, b *Builtin) {
	for i, s := range b.Specs {
		if len(s.Params) != b.Arity {
			panic(fmt.Sprintf("builtin %s.%s: specialization %d has %d parameters, want %d", kind, b.Name, i, len(s.Params), b.Arity))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName := r.kinds[kind]
	if byName == nil {
		byName = make(map[string]*Builtin)
		r.kinds[kind] = byName
	}
	if _, ok := byName[b.Name]; ok {
		panic(fmt.Sprintf("builtin %s.%s registered twice", kind, b.Name))
	}
	byName[b.Name] = b
}

// Lookup returns the builtin name registered for kind.
func (r *Registry) Lookup(kind, name string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.kinds[kind][name]
	return b, ok
}

// Names returns the sorted names of the builtins registered for kind.
func (r *Registry) Names(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds[kind]))
	for name := range r.kinds[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// A NotApplicableError is returned when no builtin or specialization applies
// to the kinds of the operands. It is a TypeError.
type NotApplicableError struct {
	Name  string
	Kinds []string
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("%s: '%s' not applicable to (%s)", types.TypeError, e.Name, strings.Join(e.Kinds, ", "))
}

// Is reports whether target is types.TypeError.
func (e *NotApplicableError) Is(target error) bool {
	return target == types.TypeError
}

func notApplicable(name string, args types.Tuple) *NotApplicableError {
	kinds := make([]string, len(args))
	for i, arg := range args {
		kinds[i] = arg.Type()
	}
	return &NotApplicableError{Name: name, Kinds: kinds}
}
