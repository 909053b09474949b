package dl21seq

import (
	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/dl21"
)

// Signature extends the base signature with three sequence tags. Seq3 is the
// PRF token of the signing state; Seq1 and Seq2 commit to the chain values
// that SeqLink later reveals, fixing the signature's position in the
// member's sequence.
type Signature struct {
	dl21.Signature

	Seq1 [32]byte
	Seq2 [32]byte
	Seq3 [32]byte
}

func (s *Signature) Scheme() string { return Name }
func (s *Signature) Fields() []string {
	return append(s.Signature.Fields(), "seq1", "seq2", "seq3")
}

func (s *Signature) MarshalBinary() ([]byte, error) {
	inner, err := s.Signature.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := algebra.NewWriter(groupsig.IDDL21SEQ, groupsig.KindSignature)
	w.VarBytes(inner)
	w.Raw(s.Seq1[:])
	w.Raw(s.Seq2[:])
	w.Raw(s.Seq3[:])
	return w.Bytes(), nil
}

func (s *Signature) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21SEQ, groupsig.KindSignature)
	if err != nil {
		return err
	}
	inner, err := r.VarBytes("base")
	if err != nil {
		return err
	}
	var tags [3][]byte
	for i, name := range []string{"seq1", "seq2", "seq3"} {
		if tags[i], err = r.Raw(name, 32); err != nil {
			return err
		}
	}
	if err := r.Close(); err != nil {
		return err
	}
	var tmp dl21.Signature
	if err := tmp.UnmarshalBinary(inner); err != nil {
		return err
	}
	s.Signature = tmp
	copy(s.Seq1[:], tags[0])
	copy(s.Seq2[:], tags[1])
	copy(s.Seq3[:], tags[2])
	return nil
}
