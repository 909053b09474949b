package algebra

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestG1Arithmetic(t *testing.T) {
	rnd, err := NewSeededRand(1)
	require.NoError(t, err)
	a, err := rnd.GetFr()
	require.NoError(t, err)
	b, err := rnd.GetFr()
	require.NoError(t, err)

	g := G1Generator()
	require.False(t, g.IsZero())

	// g^(a+b) = g^a + g^b
	var sum fr.Element
	sum.Add(&a, &b)
	var lhs, ga, gb, rhs G1
	lhs.ScalarMultiplication(g, sum)
	ga.ScalarMultiplication(g, a)
	gb.ScalarMultiplication(g, b)
	rhs.Add(&ga, &gb)
	require.True(t, lhs.Equal(&rhs))

	// p - p = 0
	var zero G1
	zero.Sub(&ga, &ga)
	require.True(t, zero.IsZero())
}

func TestG1MultiExp(t *testing.T) {
	rnd, err := NewSeededRand(2)
	require.NoError(t, err)

	points := make([]Element, 3)
	scalars := make([]fr.Element, 3)
	var want G1
	for i := range points {
		p, err := rnd.GetNonZeroG1()
		require.NoError(t, err)
		s, err := rnd.GetFr()
		require.NoError(t, err)
		points[i], scalars[i] = p, s

		var term G1
		term.ScalarMultiplication(p, s)
		want.AddAssign(&term)
	}

	var got G1
	_, err = got.MultiExp(points, scalars)
	require.NoError(t, err)
	require.True(t, got.Equal(&want))
}

func TestPairingBilinear(t *testing.T) {
	rnd, err := NewSeededRand(3)
	require.NoError(t, err)
	a, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	b, err := rnd.GetNonZeroFr()
	require.NoError(t, err)

	var p G1
	p.ScalarMultiplication(G1Generator(), a)
	var q G2
	q.ScalarMultiplication(G2Generator(), b)

	// e(g1^a, g2^b) = e(g1, g2)^(ab)
	lhs, err := Pair(&p, &q)
	require.NoError(t, err)
	base, err := Pair(G1Generator(), G2Generator())
	require.NoError(t, err)
	var ab fr.Element
	ab.Mul(&a, &b)
	var rhs GT
	rhs.ScalarMultiplication(base, ab)
	require.True(t, lhs.Equal(&rhs))
}

func TestGTAdditiveNotation(t *testing.T) {
	base, err := Pair(G1Generator(), G2Generator())
	require.NoError(t, err)

	var two fr.Element
	two.SetUint64(2)
	var doubled, summed GT
	doubled.ScalarMultiplication(base, two)
	summed.Add(base, base)
	require.True(t, doubled.Equal(&summed))

	var diff GT
	diff.Sub(&doubled, base)
	require.True(t, diff.Equal(base))
}

func TestGTBytesRoundTrip(t *testing.T) {
	rnd, err := NewSeededRand(4)
	require.NoError(t, err)
	k, err := rnd.GetNonZeroFr()
	require.NoError(t, err)

	base, err := Pair(G1Generator(), G2Generator())
	require.NoError(t, err)
	var e GT
	e.ScalarMultiplication(base, k)

	raw := e.Bytes()
	require.Len(t, raw, GTBytes)
	var back GT
	require.NoError(t, back.SetBytes(raw))
	require.True(t, back.Equal(&e))

	require.Error(t, back.SetBytes(raw[:GTBytes-1]))
}

func TestHashToG1(t *testing.T) {
	p, err := HashToG1([]byte("input"))
	require.NoError(t, err)
	q, err := HashToG1([]byte("input"))
	require.NoError(t, err)
	require.True(t, p.Equal(q))

	other, err := HashToG1([]byte("other"))
	require.NoError(t, err)
	require.False(t, p.Equal(other))
}

func TestHashToFr(t *testing.T) {
	a := HashToFr([]byte("in"), []byte("put"))
	b := HashToFr([]byte("in"), []byte("put"))
	require.True(t, a.Equal(&b))

	c := HashToFr([]byte("input"))
	// Chunk boundaries do not matter, only the concatenation.
	require.True(t, a.Equal(&c))

	d := HashToFr([]byte("different"))
	require.False(t, a.Equal(&d))
}

func TestG1BytesRoundTrip(t *testing.T) {
	rnd, err := NewSeededRand(5)
	require.NoError(t, err)
	p, err := rnd.GetNonZeroG1()
	require.NoError(t, err)

	raw := p.Bytes()
	require.Len(t, raw, G1Bytes)
	var back G1
	require.NoError(t, back.SetBytes(raw))
	require.True(t, back.Equal(p))

	q, err := rnd.GetNonZeroG2()
	require.NoError(t, err)
	raw2 := q.Bytes()
	require.Len(t, raw2, G2Bytes)
	var back2 G2
	require.NoError(t, back2.SetBytes(raw2))
	require.True(t, back2.Equal(q))
}
