package cpy06

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/mship"
	"github.com/gsig/groupsig/spk"
)

// Opening proofs show that the revealed credential A is the decryption of
// (T1, T2, T3): knowledge of xi1, xi2 with T1^xi1 * T2^xi2 = T3 - A,
// x^xi1 = z and y^xi2 = z.
var (
	openIdx   = []spk.Index{{Secret: 0, Base: 0}, {Secret: 1, Base: 1}, {Secret: 0, Base: 2}, {Secret: 1, Base: 3}}
	openProds = []int{2, 1, 1}
)

// Open decrypts the signer credential from sig, matches it against the
// membership list and proves the decryption correct.
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

	var match *mship.Entry
	var pi algebra.G1
	for _, entry := range s.gml.Entries() {
		if len(entry.Attrs) != 2 {
			return nil, fmt.Errorf("%s: malformed membership entry %s", Name, entry.ID)
		}
		var trap algebra.G1
		if err := trap.SetBytes(entry.Attrs[0]); err != nil {
			return nil, err
		}
		if trap.Equal(&a) {
			match = entry
			if err := pi.SetBytes(entry.Attrs[1]); err != nil {
				return nil, err
			}
			break
		}
	}
	if match == nil {
		return nil, nil
	}

	var diff algebra.G1
	diff.Sub(&sig.T3, &a)
	binding, err := sig.MarshalBinary()
	if err != nil {
		return nil, err
	}
	proof, err := spk.ProveRep(
		[]algebra.Element{&diff, &s.grpKey.Z, &s.grpKey.Z},
		[]algebra.Element{&sig.T1, &sig.T2, &s.grpKey.X, &s.grpKey.Y},
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
	w.Element(&pi)
	w.Raw(proofBytes)
	return &groupsig.OpenResult{MemberID: match.ID, Proof: w.Bytes()}, nil
}

// OpenVerify checks an opening against sig: the claimed member id must be
// the digest of the revealed credential pair and the decryption proof must
// hold.
func (s *Scheme) OpenVerify(c groupsig.Container, res *groupsig.OpenResult) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}

	r := algebra.NewRawReader(res.Proof)
	var a, pi algebra.G1
	if err := r.Element("A", &a); err != nil {
		return false, err
	}
	if err := r.Element("pi", &pi); err != nil {
		return false, err
	}
	var proof spk.RepProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return false, err
	}
	if memberID(&a, &pi) != res.MemberID {
		return false, nil
	}

	var diff algebra.G1
	diff.Sub(&sig.T3, &a)
	binding, err := sig.MarshalBinary()
	if err != nil {
		return false, err
	}
	return spk.VerifyRep(
		[]algebra.Element{&diff, &s.grpKey.Z, &s.grpKey.Z},
		[]algebra.Element{&sig.T1, &sig.T2, &s.grpKey.X, &s.grpKey.Y},
		openIdx, openProds, &proof, binding)
}

// Reveal moves a member's tracing trapdoor into the revocation list.
func (s *Scheme) Reveal(memberID string) error {
	entry, ok := s.gml.Get(memberID)
	if !ok {
		return fmt.Errorf("%s: unknown member %s", Name, memberID)
	}
	return s.crl.Append(entry)
}

// Trace reports whether sig was produced by a revoked member by testing
// the tracing handle T5 = e(pi, T4) against every revocation entry.
func (s *Scheme) Trace(c groupsig.Container) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	for _, entry := range s.crl.Entries() {
		if len(entry.Attrs) != 2 {
			return false, fmt.Errorf("%s: malformed revocation entry %s", Name, entry.ID)
		}
		var pi algebra.G1
		if err := pi.SetBytes(entry.Attrs[1]); err != nil {
			return false, err
		}
		e, err := algebra.Pair(&pi, &sig.T4)
		if err != nil {
			return false, err
		}
		if e.Equal(&sig.T5) {
			return true, nil
		}
	}
	return false, nil
}
