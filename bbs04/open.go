package bbs04

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/spk"
)

// Opening proofs show that the decrypted credential A really is the linear
// decryption of (T1, T2, T3): knowledge of xi1, xi2 with
// T1^xi1 * T2^xi2 = T3 - A, u^xi1 = h and v^xi2 = h.
var (
	openIdx   = []spk.Index{{Secret: 0, Base: 0}, {Secret: 1, Base: 1}, {Secret: 0, Base: 2}, {Secret: 1, Base: 3}}
	openProds = []int{2, 1, 1}
)

// Open decrypts the signer credential from sig and proves the decryption
// correct. The returned member id is only meaningful when it matches a
// membership list entry.
func (s *Scheme) Open(c groupsig.Container) (*groupsig.OpenResult, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}

	// A = T3 - (T1^xi1 + T2^xi2)
	var a, t1xi, t2xi algebra.G1
	t1xi.ScalarMultiplication(&sig.T1, s.mgrKey.Xi1)
	t2xi.ScalarMultiplication(&sig.T2, s.mgrKey.Xi2)
	t1xi.AddAssign(&t2xi)
	a.Sub(&sig.T3, &t1xi)

	id := memberID(&a)
	if _, ok := s.gml.Get(id); !ok {
		return nil, nil
	}

	var diff algebra.G1
	diff.Sub(&sig.T3, &a)
	binding, err := sig.MarshalBinary()
	if err != nil {
		return nil, err
	}
	proof, err := spk.ProveRep(
		[]algebra.Element{&diff, &s.grpKey.H, &s.grpKey.H},
		[]algebra.Element{&sig.T1, &sig.T2, &s.grpKey.U, &s.grpKey.V},
		[]fr.Element{s.mgrKey.Xi1, s.mgrKey.Xi2},
		openIdx, openProds, binding, s.rnd)
	if err != nil {
		return nil, err
	}
	proofBytes, err := proof.MarshalBinary()
	if err != nil {
		return nil, err
	}

	w := algebra.NewRawWriter()
	w.Element(&a)
	w.Raw(proofBytes)
	return &groupsig.OpenResult{MemberID: id, Proof: w.Bytes()}, nil
}

// OpenVerify checks an opening against sig: the claimed member id must be
// the digest of the revealed credential and the decryption proof must hold.
func (s *Scheme) OpenVerify(c groupsig.Container, res *groupsig.OpenResult) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}

	r := algebra.NewRawReader(res.Proof)
	var a algebra.G1
	if err := r.Element("A", &a); err != nil {
		return false, err
	}
	var proof spk.RepProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return false, err
	}
	if memberID(&a) != res.MemberID {
		return false, nil
	}

	var diff algebra.G1
	diff.Sub(&sig.T3, &a)
	binding, err := sig.MarshalBinary()
	if err != nil {
		return false, err
	}
	return spk.VerifyRep(
		[]algebra.Element{&diff, &s.grpKey.H, &s.grpKey.H},
		[]algebra.Element{&sig.T1, &sig.T2, &s.grpKey.U, &s.grpKey.V},
		openIdx, openProds, &proof, binding)
}
