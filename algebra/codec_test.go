package algebra

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/gsig/groupsig"
)

func TestCodecRoundTrip(t *testing.T) {
	rnd, err := NewSeededRand(10)
	require.NoError(t, err)
	p, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	q, err := rnd.GetNonZeroG2()
	require.NoError(t, err)
	x, err := rnd.GetFr()
	require.NoError(t, err)
	xs, err := rnd.GetFrs(3)
	require.NoError(t, err)

	w := NewWriter(groupsig.IDBBS04, groupsig.KindSignature)
	w.Element(p)
	w.Element(q)
	w.Fr(x)
	w.Frs(xs)
	w.Byte(7)
	w.Uint32(42)
	w.Int64(-9)
	w.VarBytes([]byte("payload"))
	data := w.Bytes()

	r, err := NewReader(data, groupsig.IDBBS04, groupsig.KindSignature)
	require.NoError(t, err)
	var gp G1
	require.NoError(t, r.Element("p", &gp))
	require.True(t, gp.Equal(p))
	var gq G2
	require.NoError(t, r.Element("q", &gq))
	require.True(t, gq.Equal(q))
	var fx fr.Element
	require.NoError(t, r.Fr("x", &fx))
	require.True(t, fx.Equal(&x))
	fxs, err := r.Frs("xs")
	require.NoError(t, err)
	require.Equal(t, xs, fxs)
	b, err := r.Byte("b")
	require.NoError(t, err)
	require.EqualValues(t, 7, b)
	u, err := r.Uint32("u")
	require.NoError(t, err)
	require.EqualValues(t, 42, u)
	i, err := r.Int64("i")
	require.NoError(t, err)
	require.EqualValues(t, -9, i)
	vb, err := r.VarBytes("vb")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), vb)
	require.NoError(t, r.Close())
}

func TestCodecHeaderChecks(t *testing.T) {
	w := NewWriter(groupsig.IDBBS04, groupsig.KindGroupKey)
	w.Byte(1)
	data := w.Bytes()

	var mismatch *groupsig.SchemeMismatchError
	_, err := NewReader(data, groupsig.IDPS16, groupsig.KindGroupKey)
	require.ErrorAs(t, err, &mismatch)

	var dec *groupsig.DecodingError
	_, err = NewReader(data, groupsig.IDBBS04, groupsig.KindMemberKey)
	require.ErrorAs(t, err, &dec)

	_, err = NewReader([]byte{1}, groupsig.IDBBS04, groupsig.KindGroupKey)
	require.ErrorAs(t, err, &dec)
}

func TestCodecTruncation(t *testing.T) {
	rnd, err := NewSeededRand(11)
	require.NoError(t, err)
	p, err := rnd.GetNonZeroG1()
	require.NoError(t, err)

	w := NewRawWriter()
	w.Element(p)
	data := w.Bytes()

	var dec *groupsig.DecodingError
	r := NewRawReader(data[:G1Bytes-1])
	var gp G1
	err = r.Element("p", &gp)
	require.ErrorAs(t, err, &dec)

	// A corrupted point fails the decode, not just the length check.
	corrupt := append([]byte(nil), data...)
	corrupt[5] ^= 0xff
	r = NewRawReader(corrupt)
	err = r.Element("p", &gp)
	require.ErrorAs(t, err, &dec)
}

func TestCodecTrailingBytes(t *testing.T) {
	w := NewRawWriter()
	w.Uint32(1)
	w.Byte(0xaa)
	r := NewRawReader(w.Bytes())
	_, err := r.Uint32("u")
	require.NoError(t, err)

	var dec *groupsig.DecodingError
	require.ErrorAs(t, r.Close(), &dec)
}

func TestCodecRawAndRest(t *testing.T) {
	w := NewRawWriter()
	w.Raw([]byte{1, 2, 3})
	w.Raw([]byte("rest"))
	r := NewRawReader(w.Bytes())

	head, err := r.Raw("head", 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, head)
	require.Equal(t, []byte("rest"), r.Rest())
	require.NoError(t, r.Close())

	_, err = r.Raw("past", 1)
	var dec *groupsig.DecodingError
	require.ErrorAs(t, err, &dec)
}
