package cpy06

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a CPY06 group signature. T1 through T3 encrypt the signer's
// credential for the opener; T4 and T5 carry the tracing handle
// T5 = e(g1, T4)^x tested by the revocation list.
type Signature struct {
	T1 algebra.G1
	T2 algebra.G1
	T3 algebra.G1
	T4 algebra.G2
	T5 algebra.GT

	C   fr.Element
	SR1 fr.Element
	SR2 fr.Element
	SD1 fr.Element
	SD2 fr.Element
	SX  fr.Element
	ST  fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string {
	return []string{"T1", "T2", "T3", "T4", "T5", "c", "sr1", "sr2", "sd1", "sd2", "sx", "st"}
}

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDCPY06, groupsig.KindSignature)
	w.Element(&s.T1)
	w.Element(&s.T2)
	w.Element(&s.T3)
	w.Element(&s.T4)
	w.Element(&s.T5)
	w.Fr(s.C)
	w.Fr(s.SR1)
	w.Fr(s.SR2)
	w.Fr(s.SD1)
	w.Fr(s.SD2)
	w.Fr(s.SX)
	w.Fr(s.ST)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDCPY06, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"T1", &tmp.T1}, {"T2", &tmp.T2}, {"T3", &tmp.T3}, {"T4", &tmp.T4},
		{"T5", &tmp.T5},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		e    *fr.Element
	}{
		{"c", &tmp.C}, {"sr1", &tmp.SR1}, {"sr2", &tmp.SR2},
		{"sd1", &tmp.SD1}, {"sd2", &tmp.SD2}, {"sx", &tmp.SX}, {"st", &tmp.ST},
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
