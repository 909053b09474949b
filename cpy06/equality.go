package cpy06

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/transcript"
)

var labelEquality = []byte("cpy06_equality")

// EqualityProof shows that a set of signatures share the discrete log of T5
// to the base e(g1, T4), i.e. that one member produced all of them.
type EqualityProof struct {
	C fr.Element
	S fr.Element
}

func (p *EqualityProof) MarshalBinary() ([]byte, error) {
	w := algebra.NewRawWriter()
	w.Fr(p.C)
	w.Fr(p.S)
	return w.Bytes(), nil
}

func (p *EqualityProof) UnmarshalBinary(data []byte) error {
	r := algebra.NewRawReader(data)
	var tmp EqualityProof
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	if err := r.Fr("s", &tmp.S); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*p = tmp
	return nil
}

// ProveEquality proves that every signature in sigs carries the caller's
// secret exponent in its tracing handle.
func (s *Scheme) ProveEquality(sigs []groupsig.Container, key groupsig.Container) ([]byte, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !mk.Complete() {
		return nil, &groupsig.IncompleteKeyError{Scheme: Name}
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("%s: no signatures to prove over", Name)
	}

	r, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	t := transcript.New(labelEquality)
	for _, c := range sigs {
		sig, ok := c.(*Signature)
		if !ok {
			return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
		}
		e, err := algebra.Pair(algebra.G1Generator(), &sig.T4)
		if err != nil {
			return nil, err
		}
		var er algebra.GT
		er.ScalarMultiplication(e, r)
		t.AppendElements(labelCommit, &er, e, &sig.T5)
	}
	c := t.GetAndAppendChallenge(labelChallenge)

	// s = r + c*x
	proof := EqualityProof{C: c}
	proof.S.Mul(&c, &mk.X)
	proof.S.Add(&proof.S, &r)
	return proof.MarshalBinary()
}

// ProveEqualityVerify recomputes each commitment as e(g1,T4)^s / T5^c and
// compares challenges.
func (s *Scheme) ProveEqualityVerify(sigs []groupsig.Container, proofBytes []byte) (bool, error) {
	if len(sigs) == 0 {
		return false, fmt.Errorf("%s: no signatures to verify over", Name)
	}
	var proof EqualityProof
	if err := proof.UnmarshalBinary(proofBytes); err != nil {
		return false, err
	}

	t := transcript.New(labelEquality)
	for _, c := range sigs {
		sig, ok := c.(*Signature)
		if !ok {
			return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
		}
		e, err := algebra.Pair(algebra.G1Generator(), &sig.T4)
		if err != nil {
			return false, err
		}
		var es, tc algebra.GT
		es.ScalarMultiplication(e, proof.S)
		tc.ScalarMultiplication(&sig.T5, proof.C)
		es.Sub(&es, &tc)
		t.AppendElements(labelCommit, &es, e, &sig.T5)
	}
	c := t.GetAndAppendChallenge(labelChallenge)
	return c.Equal(&proof.C), nil
}

// Claim proves authorship of a single signature.
func (s *Scheme) Claim(sig groupsig.Container, key groupsig.Container) ([]byte, error) {
	return s.ProveEquality([]groupsig.Container{sig}, key)
}

// ClaimVerify checks a single-signature authorship claim.
func (s *Scheme) ClaimVerify(sig groupsig.Container, proof []byte) (bool, error) {
	return s.ProveEqualityVerify([]groupsig.Container{sig}, proof)
}
