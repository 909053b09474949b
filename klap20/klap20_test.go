package klap20

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

	ok, err = s.Verify([]byte("something else"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignaturesUnlinkable(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig1, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)
	sig2, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	// Rerandomization makes the credential triples differ between
	// signatures by the same member.
	require.False(t, sig1.(*Signature).UU.Equal(&sig2.(*Signature).UU))
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

func TestOpen(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	sig1, err := s.Sign([]byte("first"), k1)
	require.NoError(t, err)
	sig2, err := s.Sign([]byte("second"), k2)
	require.NoError(t, err)

	res1, err := s.Open(sig1)
	require.NoError(t, err)
	require.NotNil(t, res1)
	res2, err := s.Open(sig2)
	require.NoError(t, err)
	require.NotNil(t, res2)
	require.NotEqual(t, res1.MemberID, res2.MemberID)

	ok, err := s.OpenVerify(sig1, res1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.OpenVerify(sig2, res1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenUnknownMember(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	other := newGroup(t)
	res, err := other.Open(sig)
	require.NoError(t, err)
	require.Nil(t, res)
}

func TestSignIncompleteKey(t *testing.T) {
	s := newGroup(t)
	_, err := s.Sign([]byte("msg"), &MemberKey{})
	var incomplete *groupsig.IncompleteKeyError
	require.ErrorAs(t, err, &incomplete)
}
