package types

// NilType is the type of nil. Its only legal value is Nil. (We represent it as
// a number, not struct{}, so that Nil may be constant.)
type NilType byte

// Nil is the "no value" result of operations that only have side effects.
const Nil = NilType(0)

var _ Value = Nil

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }
func (NilType) Freeze()        {} // immutable
func (NilType) Truth() Bool    { return False }

// noValueType is the type of NoValue.
type noValueType byte

// NoValue is the sentinel stored as the value of keys in keys-only hashed
// storage, such as the storage of a set. It is never visible to programs.
const NoValue = noValueType(0)

var _ Value = NoValue

func (noValueType) String() string { return "<no value>" }
func (noValueType) Type() string   { return "novalue" }
func (noValueType) Freeze()        {}
func (noValueType) Truth() Bool    { return False }
