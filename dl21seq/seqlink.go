package dl21seq

import (
	"crypto/sha256"
	"fmt"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/dl21"
	"github.com/gsig/groupsig/spk"
)

// SeqLink proves the batch shares a signer and was produced in the given
// order, by revealing the chain value behind each signature's sequence
// commitments. Signatures must be passed in consecutive signing order.
func (s *Scheme) SeqLink(msg []byte, msgs [][]byte, cs []groupsig.Container, key groupsig.Container, opts ...groupsig.SignOption) ([]byte, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !mk.Complete() {
		return nil, &groupsig.IncompleteKeyError{Scheme: Name}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	sigs, err := toSignatures(cs)
	if err != nil {
		return nil, err
	}
	cfg := groupsig.ApplySignOptions(opts)

	xs := make([][32]byte, len(sigs))
	for i, sig := range sigs {
		xs[i] = chainValue(mk, sig.Seq3)
		if sha256.Sum256(xs[i][:]) != sig.Seq1 {
			return nil, fmt.Errorf("%s: signature %d was not produced with this key", Name, i)
		}
	}
	if !chainOrdered(xs, sigs) {
		return nil, fmt.Errorf("%s: signatures are not in consecutive signing order", Name)
	}

	proof, err := dl21.ProveLink(msg, msgs, baseSignatures(sigs), &s.grpKey.GroupKey, &mk.MemberKey, cfg.Scope, s.rnd)
	if err != nil {
		return nil, err
	}
	proofBytes, err := proof.MarshalBinary()
	if err != nil {
		return nil, err
	}

	w := algebra.NewRawWriter()
	w.Uint32(uint32(len(xs)))
	for i := range xs {
		w.Raw(xs[i][:])
	}
	w.Raw(proofBytes)
	return w.Bytes(), nil
}

// SeqLinkVerify checks a proof produced by SeqLink: every revealed chain
// value must match its signature's commitment, consecutive values must hash
// into the next signature's chain tag, and the shared-signer proof must
// verify.
func (s *Scheme) SeqLinkVerify(msg []byte, msgs [][]byte, cs []groupsig.Container, proof []byte, opts ...groupsig.SignOption) (bool, error) {
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}
	sigs, err := toSignatures(cs)
	if err != nil {
		return false, err
	}

	r := algebra.NewRawReader(proof)
	n, err := r.Uint32("count")
	if err != nil {
		return false, err
	}
	if int(n) != len(sigs) {
		return false, fmt.Errorf("%s: proof covers %d signatures, got %d", Name, n, len(sigs))
	}
	xs := make([][32]byte, n)
	for i := range xs {
		raw, err := r.Raw("x", 32)
		if err != nil {
			return false, err
		}
		copy(xs[i][:], raw)
	}
	var p spk.DlogProof
	if err := p.UnmarshalBinary(r.Rest()); err != nil {
		return false, err
	}

	for i, sig := range sigs {
		if sha256.Sum256(xs[i][:]) != sig.Seq1 {
			return false, nil
		}
	}
	if !chainOrdered(xs, sigs) {
		return false, nil
	}

	cfg := groupsig.ApplySignOptions(opts)
	return dl21.VerifyLink(msg, msgs, baseSignatures(sigs), &s.grpKey.GroupKey, &p, cfg.Scope)
}

// chainOrdered checks that each signature's order tag commits to the xor of
// its chain value and the previous one, which only holds when the batch is
// listed in consecutive signing order.
func chainOrdered(xs [][32]byte, sigs []*Signature) bool {
	for i := 1; i < len(xs); i++ {
		var xored [32]byte
		for j := range xored {
			xored[j] = xs[i][j] ^ xs[i-1][j]
		}
		if sha256.Sum256(xored[:]) != sigs[i].Seq2 {
			return false
		}
	}
	return true
}
