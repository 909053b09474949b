package dl21seq

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gsig/groupsig"
)

func newGroup(t *testing.T) *Scheme {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	require.NoError(t, s.Setup())
	return s
}

func join(t *testing.T, s *Scheme) *MemberKey {
	t.Helper()
	key := &MemberKey{}
	require.NoError(t, groupsig.RunJoin(s, key))
	require.True(t, key.Complete())
	return key
}

// signSeq signs msgs under consecutive states starting at first.
func signSeq(t *testing.T, s *Scheme, key *MemberKey, msgs [][]byte, first int64) []groupsig.Container {
	t.Helper()
	var sigs []groupsig.Container
	for i, m := range msgs {
		sig, err := s.Sign(m, key, groupsig.WithState(first+int64(i)))
		require.NoError(t, err)
		sigs = append(sigs, sig)
	}
	return sigs
}

func TestSignVerify(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msg := []byte("hello world")
	sig, err := s.Sign(msg, key, groupsig.WithState(0))
	require.NoError(t, err)

	ok, err := s.Verify(msg, sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Verify([]byte("tampered"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSeqLink(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	sigs := signSeq(t, s, key, msgs, 0)

	proof, err := s.SeqLink([]byte("challenge"), msgs, sigs, key)
	require.NoError(t, err)

	ok, err := s.SeqLinkVerify([]byte("challenge"), msgs, sigs, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSeqLinkRejectsReordered(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	sigs := signSeq(t, s, key, msgs, 0)

	proof, err := s.SeqLink([]byte("challenge"), msgs, sigs, key)
	require.NoError(t, err)

	// Swapping two signatures breaks both the chain and the commitments.
	swappedMsgs := [][]byte{msgs[0], msgs[2], msgs[1]}
	swappedSigs := []groupsig.Container{sigs[0], sigs[2], sigs[1]}
	ok, err := s.SeqLinkVerify([]byte("challenge"), swappedMsgs, swappedSigs, proof)
	require.NoError(t, err)
	require.False(t, ok)

	// The prover also refuses an out-of-order batch.
	_, err = s.SeqLink([]byte("challenge"), swappedMsgs, swappedSigs, key)
	require.Error(t, err)
}

func TestSeqLinkRejectsGap(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	one, err := s.Sign([]byte("one"), key, groupsig.WithState(0))
	require.NoError(t, err)
	two, err := s.Sign([]byte("two"), key, groupsig.WithState(2))
	require.NoError(t, err)

	msgs := [][]byte{[]byte("one"), []byte("two")}
	_, err = s.SeqLink([]byte("challenge"), msgs, []groupsig.Container{one, two}, key)
	require.Error(t, err)
}

func TestSeqLinkForeignKey(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	msgs := [][]byte{[]byte("one"), []byte("two")}
	sigs := signSeq(t, s, k1, msgs, 0)

	_, err := s.SeqLink([]byte("challenge"), msgs, sigs, k2)
	require.Error(t, err)
}

func TestLink(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msgs := [][]byte{[]byte("one"), []byte("two")}
	sigs := signSeq(t, s, key, msgs, 5)

	proof, err := s.Link([]byte("challenge"), msgs, sigs, key)
	require.NoError(t, err)

	ok, err := s.LinkVerify([]byte("challenge"), msgs, sigs, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// Plain linking ignores order: the same batch reversed still verifies
	// against a fresh proof.
	revMsgs := [][]byte{msgs[1], msgs[0]}
	revSigs := []groupsig.Container{sigs[1], sigs[0]}
	proof, err = s.Link([]byte("challenge"), revMsgs, revSigs, key)
	require.NoError(t, err)
	ok, err = s.LinkVerify([]byte("challenge"), revMsgs, revSigs, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIdentify(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	sig, err := s.Sign([]byte("msg"), k1, groupsig.WithState(0))
	require.NoError(t, err)

	ok, err := s.Identify(sig, k1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Identify(sig, k2)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignatureRoundTrip(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("round trip"), key, groupsig.WithState(7))
	require.NoError(t, err)

	b64, err := groupsig.ToB64(sig)
	require.NoError(t, err)
	restored := &Signature{}
	require.NoError(t, groupsig.SetB64(restored, b64))
	require.True(t, groupsig.Equal(sig, restored))

	ok, err := s.Verify([]byte("round trip"), restored)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemberKeyRoundTrip(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	b64, err := groupsig.ToB64(key)
	require.NoError(t, err)
	restored := &MemberKey{}
	require.NoError(t, groupsig.SetB64(restored, b64))
	require.True(t, restored.Complete())
	require.Equal(t, key.K, restored.K)
	require.Equal(t, key.KK, restored.KK)

	// The restored key signs compatible sequence tags.
	one, err := s.Sign([]byte("one"), key, groupsig.WithState(0))
	require.NoError(t, err)
	two, err := s.Sign([]byte("two"), restored, groupsig.WithState(1))
	require.NoError(t, err)
	msgs := [][]byte{[]byte("one"), []byte("two")}
	sigs := []groupsig.Container{one, two}
	proof, err := s.SeqLink([]byte("challenge"), msgs, sigs, key)
	require.NoError(t, err)
	ok, err := s.SeqLinkVerify([]byte("challenge"), msgs, sigs, proof)
	require.NoError(t, err)
	require.True(t, ok)
}
