package spk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/gsig/groupsig/algebra"
)

func newRand(t *testing.T) *algebra.Rand {
	t.Helper()
	rnd, err := algebra.NewSeededRand(1)
	require.NoError(t, err)
	return rnd
}

func TestDlogProof(t *testing.T) {
	rnd := newRand(t)
	x, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	g, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	var y algebra.G1
	y.ScalarMultiplication(g, x)

	proof, err := ProveDlog(&y, g, x, []byte("binding"), rnd)
	require.NoError(t, err)
	require.True(t, VerifyDlog(&y, g, proof, []byte("binding")))

	// Wrong binding, statement or response all fail.
	require.False(t, VerifyDlog(&y, g, proof, []byte("other")))
	require.False(t, VerifyDlog(g, g, proof, []byte("binding")))
	tampered := *proof
	var one fr.Element
	one.SetOne()
	tampered.S.Add(&tampered.S, &one)
	require.False(t, VerifyDlog(&y, g, &tampered, []byte("binding")))
}

func TestDlogSetProof(t *testing.T) {
	rnd := newRand(t)
	x, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	g1, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	g2, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	var y1, y2 algebra.G1
	y1.ScalarMultiplication(g1, x)
	y2.ScalarMultiplication(g2, x)

	ys := []*algebra.G1{&y1, &y2}
	gs := []*algebra.G1{g1, g2}
	proof, err := ProveDlogSet(ys, gs, x, []byte("binding"), rnd)
	require.NoError(t, err)
	require.True(t, VerifyDlogSet(ys, gs, proof, []byte("binding")))

	// A statement with a different exponent breaks the proof.
	other, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	var y3 algebra.G1
	y3.ScalarMultiplication(g2, other)
	require.False(t, VerifyDlogSet([]*algebra.G1{&y1, &y3}, gs, proof, []byte("binding")))

	_, err = ProveDlogSet(nil, nil, x, nil, rnd)
	require.Error(t, err)
	require.False(t, VerifyDlogSet(ys, gs[:1], proof, []byte("binding")))
}

func TestDlogProofRoundTrip(t *testing.T) {
	rnd := newRand(t)
	x, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	g, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	var y algebra.G1
	y.ScalarMultiplication(g, x)

	proof, err := ProveDlog(&y, g, x, nil, rnd)
	require.NoError(t, err)
	raw, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back DlogProof
	require.NoError(t, back.UnmarshalBinary(raw))
	require.True(t, VerifyDlog(&y, g, &back, nil))

	require.Error(t, back.UnmarshalBinary(raw[:len(raw)-1]))
}

// TestRepProof proves a two-equation mixed-group statement:
// y1 = g^x1 + h^x2 in G1 and y2 = w^x1 in G2, sharing x1.
func TestRepProof(t *testing.T) {
	rnd := newRand(t)
	xs, err := rnd.GetFrs(2)
	require.NoError(t, err)
	g, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	h, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	w, err := rnd.GetNonZeroG2()
	require.NoError(t, err)

	var y1, aux algebra.G1
	y1.ScalarMultiplication(g, xs[0])
	aux.ScalarMultiplication(h, xs[1])
	y1.AddAssign(&aux)
	var y2 algebra.G2
	y2.ScalarMultiplication(w, xs[0])

	ys := []algebra.Element{&y1, &y2}
	gs := []algebra.Element{g, h, w}
	idx := []Index{{Secret: 0, Base: 0}, {Secret: 1, Base: 1}, {Secret: 0, Base: 2}}
	prods := []int{2, 1}

	proof, err := ProveRep(ys, gs, xs, idx, prods, []byte("binding"), rnd)
	require.NoError(t, err)
	ok, err := VerifyRep(ys, gs, idx, prods, proof, []byte("binding"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyRep(ys, gs, idx, prods, proof, []byte("other"))
	require.NoError(t, err)
	require.False(t, ok)

	tampered := &RepProof{C: proof.C, S: append([]fr.Element(nil), proof.S...)}
	var one fr.Element
	one.SetOne()
	tampered.S[1].Add(&tampered.S[1], &one)
	ok, err = VerifyRep(ys, gs, idx, prods, tampered, []byte("binding"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepProofShapeChecks(t *testing.T) {
	rnd := newRand(t)
	g, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	x, err := rnd.GetNonZeroFr()
	require.NoError(t, err)
	var y algebra.G1
	y.ScalarMultiplication(g, x)
	ys := []algebra.Element{&y}
	gs := []algebra.Element{g}
	xs := []fr.Element{x}

	// prods total disagrees with index count.
	_, err = ProveRep(ys, gs, xs, []Index{{0, 0}, {0, 0}}, []int{1}, nil, rnd)
	require.Error(t, err)
	// Index out of range.
	_, err = ProveRep(ys, gs, xs, []Index{{Secret: 1, Base: 0}}, []int{1}, nil, rnd)
	require.Error(t, err)
	// One prods entry per statement.
	_, err = ProveRep(ys, gs, xs, []Index{{0, 0}}, []int{1, 1}, nil, rnd)
	require.Error(t, err)
}

func TestPairingProof(t *testing.T) {
	rnd := newRand(t)
	g, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	xx, err := rnd.GetNonZeroG2()
	require.NoError(t, err)
	y, err := algebra.Pair(g, xx)
	require.NoError(t, err)

	proof, err := ProvePairing(g, y, xx, []byte("binding"), rnd)
	require.NoError(t, err)
	ok, err := VerifyPairing(g, y, proof, []byte("binding"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPairing(g, y, proof, []byte("other"))
	require.NoError(t, err)
	require.False(t, ok)

	raw, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back PairingProof
	require.NoError(t, back.UnmarshalBinary(raw))
	ok, err = VerifyPairing(g, y, &back, []byte("binding"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPairingTauProof(t *testing.T) {
	rnd := newRand(t)
	g1, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	g2, err := rnd.GetNonZeroG1()
	require.NoError(t, err)
	xx, err := rnd.GetNonZeroG2()
	require.NoError(t, err)
	e1, err := algebra.Pair(g1, xx)
	require.NoError(t, err)
	tau, err := algebra.Pair(g2, xx)
	require.NoError(t, err)

	proof, err := ProvePairingTau(xx, g1, g2, e1, tau, []byte("binding"), rnd)
	require.NoError(t, err)
	ok, err := VerifyPairingTau(proof, g1, g2, e1, []byte("binding"))
	require.NoError(t, err)
	require.True(t, ok)

	// A forged tau breaks the second equation.
	forged := *proof
	forged.Tau.Set(e1)
	ok, err = VerifyPairingTau(&forged, g1, g2, e1, []byte("binding"))
	require.NoError(t, err)
	require.False(t, ok)

	raw, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back PairingTauProof
	require.NoError(t, back.UnmarshalBinary(raw))
	ok, err = VerifyPairingTau(&back, g1, g2, e1, []byte("binding"))
	require.NoError(t, err)
	require.True(t, ok)
}
