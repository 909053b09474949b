package algebra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededRandDeterministic(t *testing.T) {
	a, err := NewSeededRand(42)
	require.NoError(t, err)
	b, err := NewSeededRand(42)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		fa, err := a.GetFr()
		require.NoError(t, err)
		fb, err := b.GetFr()
		require.NoError(t, err)
		require.True(t, fa.Equal(&fb))
	}

	c, err := NewSeededRand(43)
	require.NoError(t, err)
	fa, err := a.GetFr()
	require.NoError(t, err)
	fc, err := c.GetFr()
	require.NoError(t, err)
	require.False(t, fa.Equal(&fc))
}

func TestGetNonZero(t *testing.T) {
	rnd, err := NewSeededRand(7)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		fe, err := rnd.GetNonZeroFr()
		require.NoError(t, err)
		require.False(t, fe.IsZero())
	}
	p, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	require.False(t, p.IsZero())
	q, err := rnd.GetNonZeroG2()
	require.NoError(t, err)
	require.False(t, q.IsZero())
}

func TestGetBytes32(t *testing.T) {
	rnd, err := NewSeededRand(8)
	require.NoError(t, err)
	a, err := rnd.GetBytes32()
	require.NoError(t, err)
	b, err := rnd.GetBytes32()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGeneratePermutation(t *testing.T) {
	rnd, err := NewSeededRand(9)
	require.NoError(t, err)

	perm, err := rnd.GeneratePermutation(16)
	require.NoError(t, err)
	require.Len(t, perm, 16)

	seen := make(map[uint32]bool)
	for _, v := range perm {
		require.Less(t, v, uint32(16))
		require.False(t, seen[v])
		seen[v] = true
	}
}
