package bbs04

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a BBS04 group signature: the linear encryption (T1, T2, T3)
// of the signer's credential and the Fiat-Shamir responses of the knowledge
// proof.
type Signature struct {
	T1 algebra.G1
	T2 algebra.G1
	T3 algebra.G1

	C       fr.Element
	SAlpha  fr.Element
	SBeta   fr.Element
	SX      fr.Element
	SDelta1 fr.Element
	SDelta2 fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string {
	return []string{"T1", "T2", "T3", "c", "salpha", "sbeta", "sx", "sdelta1", "sdelta2"}
}

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDBBS04, groupsig.KindSignature)
	w.Element(&s.T1)
	w.Element(&s.T2)
	w.Element(&s.T3)
	w.Fr(s.C)
	w.Fr(s.SAlpha)
	w.Fr(s.SBeta)
	w.Fr(s.SX)
	w.Fr(s.SDelta1)
	w.Fr(s.SDelta2)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDBBS04, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	if err := r.Element("T1", &tmp.T1); err != nil {
		return err
	}
	if err := r.Element("T2", &tmp.T2); err != nil {
		return err
	}
	if err := r.Element("T3", &tmp.T3); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		e    *fr.Element
	}{
		{"c", &tmp.C}, {"salpha", &tmp.SAlpha}, {"sbeta", &tmp.SBeta},
		{"sx", &tmp.SX}, {"sdelta1", &tmp.SDelta1}, {"sdelta2", &tmp.SDelta2},
	} {
		if err := r.Fr(f.name, f.e); err != nil {
			return err
		}
	}
	if err := r.Close(); err != nil {
		return err
	}
	*s = tmp
	return nil
}
