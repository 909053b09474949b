package gl19

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Signature is a GL19 group signature: a randomized BBS+ credential
// presentation, the converter-encrypted pseudonym (nym1, nym2), the
// extractor-encrypted pseudonym (ehy1, ehy2) and the representation proof
// responses. Expiration carries the signing credential's expiry in Unix
// seconds and is bound by the proof.
type Signature struct {
	AA     algebra.G1
	APrime algebra.G1
	D      algebra.G1
	Nym1   algebra.G1
	Nym2   algebra.G1
	EHy1   algebra.G1
	EHy2   algebra.G1

	Expiration int64

	C fr.Element
	S []fr.Element
}

func (s *Signature) Scheme() string      { return Name }
func (s *Signature) Kind() groupsig.Kind { return groupsig.KindSignature }
func (s *Signature) Fields() []string {
	return []string{"AA", "A_", "d", "nym1", "nym2", "ehy1", "ehy2", "expiration", "c", "s"}
}

func (s *Signature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindSignature)
	w.Element(&s.AA)
	w.Element(&s.APrime)
	w.Element(&s.D)
	w.Element(&s.Nym1)
	w.Element(&s.Nym2)
	w.Element(&s.EHy1)
	w.Element(&s.EHy2)
	w.Int64(s.Expiration)
	w.Fr(s.C)
	w.Frs(s.S)
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindSignature)
	if err != nil {
		return err
	}
	var tmp Signature
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"AA", &tmp.AA}, {"A_", &tmp.APrime}, {"d", &tmp.D},
		{"nym1", &tmp.Nym1}, {"nym2", &tmp.Nym2},
		{"ehy1", &tmp.EHy1}, {"ehy2", &tmp.EHy2},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
	}
	if tmp.Expiration, err = r.Int64("expiration"); err != nil {
		return err
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

// BlindSignature is a blinded or converted pseudonym with an encrypted
// message digest. After conversion nym3 is unused and left at zero.
type BlindSignature struct {
	Nym1 algebra.G1
	Nym2 algebra.G1
	Nym3 algebra.G1
	C1   algebra.G1
	C2   algebra.G1
}

func (s *BlindSignature) Scheme() string      { return Name }
func (s *BlindSignature) Kind() groupsig.Kind { return groupsig.KindBlindSignature }
func (s *BlindSignature) Fields() []string {
	return []string{"nym1", "nym2", "nym3", "c1", "c2"}
}

func (s *BlindSignature) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindBlindSignature)
	w.Element(&s.Nym1)
	w.Element(&s.Nym2)
	w.Element(&s.Nym3)
	w.Element(&s.C1)
	w.Element(&s.C2)
	return w.Bytes(), nil
}

func (s *BlindSignature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindBlindSignature)
	if err != nil {
		return err
	}
	var tmp BlindSignature
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"nym1", &tmp.Nym1}, {"nym2", &tmp.Nym2}, {"nym3", &tmp.Nym3},
		{"c1", &tmp.C1}, {"c2", &tmp.C2},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
	}
	if err := r.Close(); err != nil {
		return err
	}
	*s = tmp
	return nil
}
