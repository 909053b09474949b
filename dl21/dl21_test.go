package dl21

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

func TestSignVerify(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msg := []byte("hello world")
	sig, err := s.Sign(msg, key)
	require.NoError(t, err)

	ok, err := s.Verify(msg, sig)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Verify([]byte("tampered"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyWrongScope(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key, groupsig.WithScope("alpha"))
	require.NoError(t, err)

	ok, err := s.Verify([]byte("msg"), sig, groupsig.WithScope("alpha"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Verify([]byte("msg"), sig, groupsig.WithScope("beta"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPseudonymsScoped(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	one, err := s.Sign([]byte("one"), key, groupsig.WithScope("alpha"))
	require.NoError(t, err)
	two, err := s.Sign([]byte("two"), key, groupsig.WithScope("alpha"))
	require.NoError(t, err)
	other, err := s.Sign([]byte("three"), key, groupsig.WithScope("beta"))
	require.NoError(t, err)

	// Same member, same scope: one pseudonym. Different scope: another.
	require.True(t, one.(*Signature).Nym.Equal(&two.(*Signature).Nym))
	require.False(t, one.(*Signature).Nym.Equal(&other.(*Signature).Nym))
}

func TestIdentify(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	sig, err := s.Sign([]byte("msg"), k1, groupsig.WithScope("alpha"))
	require.NoError(t, err)

	ok, err := s.Identify(sig, k1, groupsig.WithScope("alpha"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Identify(sig, k2, groupsig.WithScope("alpha"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.Identify(sig, k1, groupsig.WithScope("beta"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLink(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	var sigs []groupsig.Container
	for _, m := range msgs {
		sig, err := s.Sign(m, k1)
		require.NoError(t, err)
		sigs = append(sigs, sig)
	}

	proof, err := s.Link([]byte("challenge"), msgs, sigs, k1)
	require.NoError(t, err)

	ok, err := s.LinkVerify([]byte("challenge"), msgs, sigs, proof)
	require.NoError(t, err)
	require.True(t, ok)

	// A different challenge message breaks the binding.
	ok, err = s.LinkVerify([]byte("other"), msgs, sigs, proof)
	require.NoError(t, err)
	require.False(t, ok)

	// Another member cannot prove the batch.
	_, err = s.Link([]byte("challenge"), msgs, sigs, k2)
	require.Error(t, err)

	// A foreign signature in the batch fails verification.
	foreign, err := s.Sign([]byte("three"), k2)
	require.NoError(t, err)
	mixed := append(append([]groupsig.Container{}, sigs[:2]...), foreign)
	ok, err = s.LinkVerify([]byte("challenge"), msgs, mixed, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJoinStateMachine(t *testing.T) {
	s := newGroup(t)
	key := &MemberKey{}

	var state *groupsig.ProtocolStateError
	// Credential issue before the key ownership round.
	_, err := s.JoinMem(&groupsig.JoinMessage{Phase: 3}, key)
	require.ErrorAs(t, err, &state)

	msg1, err := s.JoinMgr(nil)
	require.NoError(t, err)
	msg2, err := s.JoinMem(msg1, key)
	require.NoError(t, err)

	// Replaying the nonce round on a pending key is rejected, and the
	// manager round only accepts the member's response.
	_, err = s.JoinMem(msg1, key)
	require.ErrorAs(t, err, &state)
	_, err = s.JoinMgr(msg1)
	require.ErrorAs(t, err, &state)

	// Stopping one round early leaves the key unusable for signing.
	var incomplete *groupsig.IncompleteKeyError
	_, err = s.Sign([]byte("msg"), key)
	require.ErrorAs(t, err, &incomplete)

	msg3, err := s.JoinMgr(msg2)
	require.NoError(t, err)
	out, err := s.JoinMem(msg3, key)
	require.NoError(t, err)
	require.Nil(t, out)
	require.True(t, key.Complete())
}

func TestVerifierWithTransplantedGroupKey(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	b64, err := groupsig.ToB64(s.GroupKey())
	require.NoError(t, err)
	gk := &GroupKey{}
	require.NoError(t, groupsig.SetB64(gk, b64))

	verifier, err := New()
	require.NoError(t, err)
	require.NoError(t, verifier.SetGroupKey(gk))

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)
	ok, err := verifier.Verify([]byte("msg"), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignIncompleteKey(t *testing.T) {
	s := newGroup(t)

	_, err := s.Sign([]byte("msg"), &MemberKey{})
	var incomplete *groupsig.IncompleteKeyError
	require.ErrorAs(t, err, &incomplete)
}

func TestSignatureRoundTrip(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("round trip"), key)
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

	sig, err := s.Sign([]byte("restored"), restored)
	require.NoError(t, err)
	ok, err := s.Verify([]byte("restored"), sig)
	require.NoError(t, err)
	require.True(t, ok)
}
