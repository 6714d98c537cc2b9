package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayMutation(t *testing.T) {
	a := NewArray([]Value{Int(1), Int(2)})
	require.Equal(t, "[1, 2]", a.String())

	it := a.Iterate()
	require.ErrorContains(t, a.SetIndex(0, Int(3)), "cannot assign to element of array during iteration")
	var v Value
	require.True(t, it.Next(&v))
	require.Equal(t, Int(1), v)
	it.Done()

	require.NoError(t, a.SetIndex(0, Int(3)))
	require.Equal(t, Int(3), a.Index(0))

	a.Freeze()
	require.ErrorContains(t, a.SetIndex(0, Int(4)), "cannot assign to element of frozen array")
}
