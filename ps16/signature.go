package ps16

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a PS16 group signature: the randomized credential pair and a
// proof of knowledge of the secret exponent under it.
type Signature struct {
	Sigma1 algebra.G1
	Sigma2 algebra.G1
	C      fr.Element
	S      fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string    { return []string{"sigma1", "sigma2", "c", "s"} }

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDPS16, groupsig.KindSignature)
	w.Element(&s.Sigma1)
	w.Element(&s.Sigma2)
	w.Fr(s.C)
	w.Fr(s.S)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDPS16, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	if err := r.Element("sigma1", &tmp.Sigma1); err != nil {
		return err
	}
	if err := r.Element("sigma2", &tmp.Sigma2); err != nil {
		return err
	}
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	if err := r.Fr("s", &tmp.S); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*s = tmp
	return nil
}
