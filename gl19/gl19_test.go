package gl19

import (
	"testing"
	"time"

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

func TestVerifyRejectsExpired(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	// Advance the clock past the credential lifetime.
	s.now = func() time.Time {
		return time.Now().Add(s.Lifetime + time.Hour)
	}
	ok, err := s.Verify([]byte("msg"), sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsForgedExpiration(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	// Stretching the expiration breaks the proof binding.
	forged := sig.(*Signature)
	forged.Expiration += 3600
	ok, err := s.Verify([]byte("msg"), forged)
	require.NoError(t, err)
	require.False(t, ok)
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

func TestConvertLinksSameSigner(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	bk, err := s.NewBlindKey()
	require.NoError(t, err)

	// Two signatures by member 1, one by member 2.
	var blinded []groupsig.Container
	for _, src := range []*MemberKey{k1, k1, k2} {
		sig, err := s.Sign([]byte("payload"), src)
		require.NoError(t, err)
		bsig, _, err := s.Blind([]byte("payload"), sig, bk)
		require.NoError(t, err)
		blinded = append(blinded, bsig)
	}

	converted, err := s.Convert(blinded, &bk.PK)
	require.NoError(t, err)
	require.Len(t, converted, 3)

	nyms := make(map[string]int)
	for _, csig := range converted {
		nym, err := s.Unblind(csig, bk)
		require.NoError(t, err)
		nyms[string(nym.Bytes())]++
	}
	// Two distinct pseudonyms: one appearing twice, one once.
	require.Len(t, nyms, 2)
	var counts []int
	for _, n := range nyms {
		counts = append(counts, n)
	}
	require.ElementsMatch(t, []int{2, 1}, counts)
}

func TestConvertBatchesUnlinkable(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)
	bk, err := s.NewBlindKey()
	require.NoError(t, err)

	convertOne := func() string {
		sig, err := s.Sign([]byte("msg"), key)
		require.NoError(t, err)
		bsig, _, err := s.Blind([]byte("msg"), sig, bk)
		require.NoError(t, err)
		converted, err := s.Convert([]groupsig.Container{bsig}, &bk.PK)
		require.NoError(t, err)
		nym, err := s.Unblind(converted[0], bk)
		require.NoError(t, err)
		return string(nym.Bytes())
	}

	// Each conversion uses a fresh batch exponent, so pseudonyms do not
	// link across batches.
	require.NotEqual(t, convertOne(), convertOne())
}

func TestBlindGeneratesEphemeralKey(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)

	// No recipient key given: Blind draws one and hands it back.
	bsig, bk, err := s.Blind([]byte("msg"), sig, nil)
	require.NoError(t, err)
	require.NotNil(t, bk)
	require.False(t, bk.PK.IsZero())

	// The generated key drives the full convert/unblind round trip.
	converted, err := s.Convert([]groupsig.Container{bsig}, &bk.PK)
	require.NoError(t, err)
	nym1, err := s.Unblind(converted[0], bk)
	require.NoError(t, err)

	bsig2, _, err := s.Blind([]byte("msg"), sig, bk)
	require.NoError(t, err)
	converted, err = s.Convert([]groupsig.Container{bsig2}, &bk.PK)
	require.NoError(t, err)
	nym2, err := s.Unblind(converted[0], bk)
	require.NoError(t, err)

	// Separate conversion batches use fresh batch exponents.
	require.False(t, nym1.Equal(nym2))
}

func TestExtract(t *testing.T) {
	s := newGroup(t)
	k1 := join(t, s)
	k2 := join(t, s)

	sig1, err := s.Sign([]byte("one"), k1)
	require.NoError(t, err)
	sig2, err := s.Sign([]byte("two"), k1)
	require.NoError(t, err)
	sig3, err := s.Sign([]byte("three"), k2)
	require.NoError(t, err)

	hy1, err := s.Extract(sig1)
	require.NoError(t, err)
	hy2, err := s.Extract(sig2)
	require.NoError(t, err)
	hy3, err := s.Extract(sig3)
	require.NoError(t, err)

	require.True(t, hy1.Equal(hy2))
	require.False(t, hy1.Equal(hy3))
}

func TestBlindSignatureRoundTrip(t *testing.T) {
	s := newGroup(t)
	key := join(t, s)
	bk, err := s.NewBlindKey()
	require.NoError(t, err)

	sig, err := s.Sign([]byte("msg"), key)
	require.NoError(t, err)
	bsig, _, err := s.Blind([]byte("msg"), sig, bk)
	require.NoError(t, err)

	b64, err := groupsig.ToB64(bsig)
	require.NoError(t, err)
	restored := &BlindSignature{}
	require.NoError(t, groupsig.SetB64(restored, b64))
	require.True(t, groupsig.Equal(bsig, restored))
}
