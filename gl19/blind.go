package gl19

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// NewBlindKey generates a recipient keypair for blinding signatures.
func (s *Scheme) NewBlindKey() (*BlindKey, error) {
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	sk, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	bk := &BlindKey{SK: sk}
	bk.PK.ScalarMultiplication(&s.grpKey.G, sk)
	return bk, nil
}

// Blind rerandomizes the signature's pseudonym, adds an encryption layer
// under the recipient key and encrypts the message digest alongside it. A
// nil bk generates a fresh recipient keypair; the returned key is the one
// used either way and is needed to unblind the converted batch.
func (s *Scheme) Blind(msg []byte, c groupsig.Container, bk *BlindKey) (*BlindSignature, *BlindKey, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return nil, nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return nil, nil, fmt.Errorf("%s: group key not set", Name)
	}
	if bk == nil {
		var err error
		if bk, err = s.NewBlindKey(); err != nil {
			return nil, nil, err
		}
	}

	rs, err := s.rnd.GetFrs(3)
	if err != nil {
		return nil, nil, err
	}
	alpha, beta, gamma := rs[0], rs[1], rs[2]

	var bsig BlindSignature
	var aux algebra.G1
	aux.ScalarMultiplication(&s.grpKey.G, beta)
	bsig.Nym1.Add(&sig.Nym1, &aux)
	bsig.Nym2.ScalarMultiplication(&s.grpKey.G, alpha)
	aux.ScalarMultiplication(&s.grpKey.CPK, beta)
	bsig.Nym3.Add(&sig.Nym2, &aux)
	aux.ScalarMultiplication(&bk.PK, alpha)
	bsig.Nym3.AddAssign(&aux)

	sum := sha256.Sum256(msg)
	m, err := algebra.HashToG1(sum[:])
	if err != nil {
		return nil, nil, err
	}
	bsig.C1.ScalarMultiplication(&s.grpKey.G, gamma)
	aux.ScalarMultiplication(&bk.PK, gamma)
	bsig.C2.Add(m, &aux)
	return &bsig, bk, nil
}

// Convert strips the converter layer from a batch of blind signatures and
// raises every pseudonym to one shared exponent, so signatures by the same
// member unblind to the same value. The batch is shuffled so output order
// reveals nothing about input order.
func (s *Scheme) Convert(bsigs []groupsig.Container, bpk *algebra.G1) ([]groupsig.Container, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	r, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var negCSK fr.Element
	negCSK.Neg(&s.mgrKey.CSK)

	out := make([]groupsig.Container, len(bsigs))
	for i, c := range bsigs {
		bsig, ok := c.(*BlindSignature)
		if !ok {
			return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
		}
		r1, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		r2, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}

		// Decrypt the converter layer and raise to the batch exponent.
		var nym1, nym2, aux algebra.G1
		nym1.ScalarMultiplication(&bsig.Nym2, r)
		nym2.ScalarMultiplication(&bsig.Nym1, negCSK)
		nym2.AddAssign(&bsig.Nym3)
		nym2.ScalarMultiplication(&nym2, r)

		csig := &BlindSignature{}
		aux.ScalarMultiplication(&s.grpKey.G, r1)
		csig.Nym1.Add(&nym1, &aux)
		aux.ScalarMultiplication(bpk, r1)
		csig.Nym2.Add(&nym2, &aux)

		aux.ScalarMultiplication(&s.grpKey.G, r2)
		csig.C1.Add(&bsig.C1, &aux)
		aux.ScalarMultiplication(bpk, r2)
		csig.C2.Add(&bsig.C2, &aux)
		out[i] = csig
	}

	perm, err := s.rnd.GeneratePermutation(len(out))
	if err != nil {
		return nil, err
	}
	shuffled := make([]groupsig.Container, len(out))
	for i, j := range perm {
		shuffled[i] = out[j]
	}
	return shuffled, nil
}

// Unblind decrypts a converted pseudonym with the recipient key. Equal
// outputs within one converted batch mean equal signers.
func (s *Scheme) Unblind(c groupsig.Container, bk *BlindKey) (*algebra.G1, error) {
	csig, ok := c.(*BlindSignature)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	var negSK fr.Element
	negSK.Neg(&bk.SK)
	var nym algebra.G1
	nym.ScalarMultiplication(&csig.Nym1, negSK)
	nym.AddAssign(&csig.Nym2)
	return &nym, nil
}

// Extract decrypts the extractor-encrypted pseudonym h^y from a signature.
// Equal outputs identify equal signers across arbitrary signatures; only
// the extractor key holder can compute them.
func (s *Scheme) Extract(c groupsig.Container) (*algebra.G1, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	var negESK fr.Element
	negESK.Neg(&s.mgrKey.ESK)
	var hy algebra.G1
	hy.ScalarMultiplication(&sig.EHy1, negESK)
	hy.AddAssign(&sig.EHy2)
	return &hy, nil
}
