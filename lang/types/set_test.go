package types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOf(t *testing.T, vals ...Value) *Set {
	t.Helper()
	s := NewSet(len(vals))
	for _, v := range vals {
		require.NoError(t, s.Add(v))
	}
	return s
}

func TestSetString(t *testing.T) {
	cases := []struct {
		set  *Set
		want string
	}{
		{NewSet(0), "set()"},
		{setOf(t, Int(3), Int(1), Int(2)), "{1, 2, 3}"},
		{setOf(t, String("b"), Int(1), String("a")), `{1, "a", "b"}`},
		{setOf(t, Tuple{Int(1)}, Bool(true)), "{true, (1,)}"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			assert.Equal(t, c.want, c.set.String())
		})
	}
}

func TestSetAddHasDelete(t *testing.T) {
	s := NewSet(0)
	require.False(t, bool(s.Truth()))

	require.NoError(t, s.Add(Int(1)))
	require.NoError(t, s.Add(Int(1)))
	require.Equal(t, 1, s.Len())
	require.True(t, bool(s.Truth()))

	found, err := s.Has(Int(1))
	require.NoError(t, err)
	require.True(t, found)

	found, err = s.Delete(Int(1))
	require.NoError(t, err)
	require.True(t, found)
	found, err = s.Delete(Int(1))
	require.NoError(t, err)
	require.False(t, found)

	require.ErrorIs(t, s.Add(NewSet(0)), TypeError)
}

func TestSetHash(t *testing.T) {
	_, err := Hash(NewSet(0))
	require.ErrorIs(t, err, TypeError)
	require.EqualError(t, err, "TypeError: unhashable type: 'set'")
}

func TestSetUnion(t *testing.T) {
	a := setOf(t, Int(1), Int(2))
	b := setOf(t, Int(2), Int(3))

	u, err := a.Union(b)
	require.NoError(t, err)
	require.Equal(t, "{1, 2, 3}", u.String())
	require.Equal(t, "{1, 2}", a.String())
	require.Equal(t, "{2, 3}", b.String())
	require.NotSame(t, a, u)

	self, err := a.Union(a)
	require.NoError(t, err)
	require.Equal(t, "{1, 2}", self.String())
	require.NotSame(t, a, self)

	empty, err := NewSet(0).Union(NewSet(0))
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}

func TestSetEqual(t *testing.T) {
	a := setOf(t, Int(1), String("x"))
	b := setOf(t, Float(1), NewStringObject("x"))
	c := setOf(t, Int(1))

	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)

	eq, err = Equal(a, c)
	require.NoError(t, err)
	require.False(t, eq)
}

func TestSetFreeze(t *testing.T) {
	s := setOf(t, Int(1))
	s.Freeze()
	require.Error(t, s.Add(Int(2)))
	require.Error(t, s.Clear())
	require.Equal(t, 1, s.Len())
}

func TestSetIterate(t *testing.T) {
	s := setOf(t, Int(1), Int(2), Int(3))
	it := s.Iterate()
	defer it.Done()

	// mutations during iteration do not affect the iterator
	require.NoError(t, s.Clear())

	var got []Value
	var v Value
	for it.Next(&v) {
		got = append(got, v)
	}
	SortValues(got)
	require.Equal(t, []Value{Int(1), Int(2), Int(3)}, got)
}

func TestSetConcurrentAdd(t *testing.T) {
	s := NewSet(0)
	const n, workers = 200, 8

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				assert.NoError(t, s.Add(String(fmt.Sprint(i))))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, n, s.Len())
}
