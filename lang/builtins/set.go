package builtins

import (
	"github.com/mna/nymphaea/lang/machine"
	"github.com/mna/nymphaea/lang/types"
)

// SetKind is the value kind the set builtins are registered against.
const SetKind = "set"

var isSet = machine.Is[*types.Set]()

// setBuiltins are the builtin operations of the mutable set kind.
var setBuiltins = []*machine.Builtin{
	{
		Name:  "clear",
		Arity: 1,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet}, Fn: setClear},
		},
	},
	{
		Name:  "add",
		Arity: 2,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet, machine.Any}, Fn: setAdd},
		},
	},
	{
		Name:  "__hash__",
		Arity: 1,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{machine.Any}, Fn: setHash},
		},
	},
	{
		Name:  "__or__",
		Arity: 2,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet, isSet}, Fn: setUnion},
			{Params: []machine.Matcher{isSet, machine.Any}, Fn: setReverseOr},
		},
	},
	{
		Name:  "remove",
		Arity: 2,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet, machine.Any}, Fn: setRemove},
		},
	},
	{
		Name:  "discard",
		Arity: 2,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet, machine.Any}, Fn: setDiscard},
		},
	},
	{
		Name:  "__len__",
		Arity: 1,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet}, Fn: setLen},
		},
	},
	{
		Name:  "__contains__",
		Arity: 2,
		Specs: []machine.Specialization{
			{Params: []machine.Matcher{isSet, machine.Any}, Fn: setContains},
		},
	},
}

func setClear(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	if err := args[0].(*types.Set).Clear(); err != nil {
		return nil, err
	}
	return types.Nil, nil
}

func setAdd(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	if err := args[0].(*types.Set).Add(args[1]); err != nil {
		return nil, err
	}
	return types.Nil, nil
}

func setHash(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	return nil, types.Unhashable(args[0])
}

func setUnion(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	res, err := args[0].(*types.Set).Union(args[1].(*types.Set))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// setReverseOr lets the right operand provide the union with a set.
func setReverseOr(th *machine.Thread, args types.Tuple) (types.Value, error) {
	return machine.Call(th, "__or__", args[1], args[0])
}

func setRemove(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	found, err := args[0].(*types.Set).Delete(args[1])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.RaiseKeyError(args[1])
	}
	return types.Nil, nil
}

func setDiscard(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	if _, err := args[0].(*types.Set).Delete(args[1]); err != nil {
		return nil, err
	}
	return types.Nil, nil
}

func setLen(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	return types.Int(args[0].(*types.Set).Len()), nil
}

func setContains(_ *machine.Thread, args types.Tuple) (types.Value, error) {
	found, err := args[0].(*types.Set).Has(args[1])
	if err != nil {
		return nil, err
	}
	return types.Bool(found), nil
}
