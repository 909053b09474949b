package klap20

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a KLAP20 group signature: the rerandomized credential triple
// and a discrete-log proof of the secret exponent tying ww to uu.
type Signature struct {
	UU algebra.G1
	VV algebra.G1
	WW algebra.G1
	C  fr.Element
	S  fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string    { return []string{"uu", "vv", "ww", "c", "s"} }

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDKLAP20, groupsig.KindSignature)
	w.Element(&s.UU)
	w.Element(&s.VV)
	w.Element(&s.WW)
	w.Fr(s.C)
	w.Fr(s.S)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDKLAP20, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"uu", &tmp.UU}, {"vv", &tmp.VV}, {"ww", &tmp.WW},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
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
