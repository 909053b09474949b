package dl21

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a DL21 group signature: a randomized credential
// presentation, the scope-bound pseudonym nym = H(scope)^y and the
// representation proof responses.
type Signature struct {
	AA     algebra.G1
	APrime algebra.G1
	D      algebra.G1
	Nym    algebra.G1

	C fr.Element
	S []fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string {
	return []string{"AA", "A_", "d", "nym", "c", "s"}
}

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDDL21, groupsig.KindSignature)
	w.Element(&s.AA)
	w.Element(&s.APrime)
	w.Element(&s.D)
	w.Element(&s.Nym)
	w.Fr(s.C)
	w.Frs(s.S)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"AA", &tmp.AA}, {"A_", &tmp.APrime}, {"d", &tmp.D}, {"nym", &tmp.Nym},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
	}
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	if tmp.S, err = r.Frs("s"); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*s = tmp
	return nil
}
