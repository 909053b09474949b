package bbs04

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
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

	ok, err = s.Verify([]byte("hello mars"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyTamperedSignature(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	msg := []byte("payload")
	sig, err := s.Sign(msg, key)
	require.NoError(t, err)

	tampered := sig.(*Signature)
	var one fr.Element
	one.SetOne()
	tampered.SX.Add(&tampered.SX, &one)
	ok, err := s.Verify(msg, tampered)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifierWithTransplantedGroupKey(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	verifier, err := New()
	require.NoError(t, err)
	b64, err := groupsig.ToB64(s.GroupKey())
	require.NoError(t, err)
	gk := &GroupKey{}
	require.NoError(t, groupsig.SetB64(gk, b64))
	require.NoError(t, verifier.SetGroupKey(gk))

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

	sig, err := s.Sign([]byte("restored key"), restored)
	require.NoError(t, err)
	ok, err := s.Verify([]byte("restored key"), sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpen(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	sig, err := s.Sign([]byte("who signed this"), k1)
	require.NoError(t, err)

	res, err := s.Open(sig)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, memberID(&k1.A), res.MemberID)
	require.NotEqual(t, memberID(&k2.A), res.MemberID)

	ok, err := s.OpenVerify(sig, res)
	require.NoError(t, err)
	require.True(t, ok)

	// An opening transplanted onto a different signature must not verify.
	other, err := s.Sign([]byte("another"), k2)
	require.NoError(t, err)
	ok, err = s.OpenVerify(other, res)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenUnknownMember(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	// A foreign group's manager cannot open the signature.
	other := newGroup(t)
	res, err := other.Open(sig)
	require.NoError(t, err)
	require.Nil(t, res)
}

func TestJoinStateMachine(t *testing.T) {
	s := newGroup(t)
	key := &MemberKey{}

	var state *groupsig.ProtocolStateError
	// The single manager round takes no input.
	_, err := s.JoinMgr(&groupsig.JoinMessage{Phase: 2})
	require.ErrorAs(t, err, &state)

	// The member round rejects anything but the issue message.
	_, err = s.JoinMem(nil, key)
	require.ErrorAs(t, err, &state)
	_, err = s.JoinMem(&groupsig.JoinMessage{Phase: 3}, key)
	require.ErrorAs(t, err, &state)

	msg, err := s.JoinMgr(nil)
	require.NoError(t, err)
	out, err := s.JoinMem(msg, key)
	require.NoError(t, err)
	require.Nil(t, out)
	require.True(t, key.Complete())

	// Replaying the issue message on a finished key is rejected.
	_, err = s.JoinMem(msg, key)
	require.ErrorAs(t, err, &state)
}

func TestJoinRecordsMembership(t *testing.T) {
	s := newGroup(t)
	require.Equal(t, 0, s.GML().Len())
	k := join(t, s)
	require.Equal(t, 1, s.GML().Len())
	_, ok := s.GML().Get(memberID(&k.A))
	require.True(t, ok)
}
