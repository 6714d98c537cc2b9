package machine

import (
	"errors"
	"fmt"

	"github.com/mna/nymphaea/lang/types"
	"go.uber.org/zap"
)

// Some operations are dispatched on the kind of their operands to the
// builtins registered for that kind. Those entry points belong in this file.

// Call calls the builtin name registered for the kind of args[0] with the
// specified arguments. It fails with a TypeError if the number of arguments
// does not match the arity of the builtin, and with a NotApplicableError if
// there is no such builtin or none of its specializations matches.
func Call(th *Thread, name string, args ...types.Value) (types.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("internal error: call of %s without receiver", name)
	}

	kind := args[0].Type()
	b, ok := th.registry().Lookup(kind, name)
	if !ok {
		return nil, notApplicable(name, args)
	}
	if len(args) != b.Arity {
		return nil, types.Raise(types.TypeError, "%s() takes exactly %d arguments (%d given)", name, b.Arity, len(args))
	}

	impl := b.resolve(args)
	if impl == nil {
		return nil, notApplicable(name, args)
	}

	if th.depth >= th.maxCallDepth() {
		return nil, fmt.Errorf("maximum call depth exceeded in %s.%s", kind, name)
	}
	th.depth++
	// Use defer to ensure that panics from built-ins pass through without
	// leaving the thread in a bad state.
	defer func() { th.depth-- }()

	Logger().Debug("dispatch builtin",
		zap.String("thread", th.Name),
		zap.String("kind", kind),
		zap.String("name", name),
		zap.Int("depth", th.depth))

	res, err := impl.Fn(th, args)

	// Sanity check: nil is not a valid value.
	if res == nil && err == nil {
		err = fmt.Errorf("internal error: nil (not Nil) returned from %s.%s", kind, name)
	}
	return res, err
}

// CallMethod calls the builtin name of recv with the specified arguments.
func CallMethod(th *Thread, recv types.Value, name string, args ...types.Value) (types.Value, error) {
	return Call(th, name, append(types.Tuple{recv}, args...)...)
}

var binaryMethods = map[string]string{
	"|": "__or__",
	"&": "__and__",
	"-": "__sub__",
	"^": "__xor__",
}

// Binary applies the binary operator op to its operands by calling the
// corresponding builtin of the left operand. The left operand's builtin may
// itself fall back to the reflected operation of the right operand.
func Binary(th *Thread, op string, x, y types.Value) (types.Value, error) {
	name, ok := binaryMethods[op]
	if !ok {
		return nil, fmt.Errorf("unknown binary operator: %s", op)
	}

	res, err := Call(th, name, x, y)
	if err != nil {
		var na *NotApplicableError
		if errors.As(err, &na) {
			return nil, types.Raise(types.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", op, x.Type(), y.Type())
		}
		return nil, err
	}
	return res, nil
}
