package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/gsig/groupsig/algebra"
)

func TestDeterministicChallenges(t *testing.T) {
	build := func() *Transcript {
		tr := New([]byte("test"))
		tr.AppendBytes([]byte("label"), []byte("data"))
		tr.AppendElements([]byte("point"), algebra.G1Generator())
		tr.AppendUint64([]byte("n"), 7)
		return tr
	}

	a := build().GetAndAppendChallenge([]byte("c"))
	b := build().GetAndAppendChallenge([]byte("c"))
	require.True(t, a.Equal(&b))
}

func TestChallengeDependsOnInput(t *testing.T) {
	a := New([]byte("test"))
	a.AppendBytes([]byte("label"), []byte("one"))
	b := New([]byte("test"))
	b.AppendBytes([]byte("label"), []byte("two"))

	ca := a.GetAndAppendChallenge([]byte("c"))
	cb := b.GetAndAppendChallenge([]byte("c"))
	require.False(t, ca.Equal(&cb))
}

func TestChallengeDependsOnDomainLabel(t *testing.T) {
	a := New([]byte("domain-a"))
	b := New([]byte("domain-b"))
	ca := a.GetAndAppendChallenge([]byte("c"))
	cb := b.GetAndAppendChallenge([]byte("c"))
	require.False(t, ca.Equal(&cb))
}

func TestChallengeChaining(t *testing.T) {
	tr := New([]byte("test"))
	first := tr.GetAndAppendChallenge([]byte("c"))
	second := tr.GetAndAppendChallenge([]byte("c"))
	// Challenges are folded back into the transcript, so successive
	// challenges differ.
	require.False(t, first.Equal(&second))
}

func TestAppendScalars(t *testing.T) {
	a := New([]byte("test"))
	b := New([]byte("test"))

	var one, two fr.Element
	one.SetOne()
	two.SetUint64(2)
	a.AppendScalars([]byte("s"), one)
	b.AppendScalars([]byte("s"), two)

	ca := a.GetAndAppendChallenge([]byte("c"))
	cb := b.GetAndAppendChallenge([]byte("c"))
	require.False(t, ca.Equal(&cb))
}
