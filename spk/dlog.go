// Package spk implements the signature-proof-of-knowledge toolkit shared by
// the schemes: discrete-log proofs, general representation proofs over
// mixed G1/G2 statements, and pairing-homomorphism proofs with a G2
// witness. All challenges are derived from merlin transcripts bound to a
// caller-supplied byte string.
package spk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/transcript"
)

var (
	labelDlog      = []byte("spk_dlog")
	labelBinding   = []byte("binding")
	labelStatement = []byte("statement")
	labelBase      = []byte("base")
	labelCommit    = []byte("commitment")
	labelChallenge = []byte("challenge")
)

// DlogProof proves knowledge of x with y = g^x, possibly for several
// (y_i, g_i) pairs sharing the same exponent.
type DlogProof struct {
	C fr.Element
	S fr.Element
}

// ProveDlog proves knowledge of x such that y = g^x.
func ProveDlog(y, g *algebra.G1, x fr.Element, binding []byte, rnd *algebra.Rand) (*DlogProof, error) {
	return ProveDlogSet([]*algebra.G1{y}, []*algebra.G1{g}, x, binding, rnd)
}

// VerifyDlog reports whether proof demonstrates knowledge of the discrete
// log of y to the base g.
func VerifyDlog(y, g *algebra.G1, proof *DlogProof, binding []byte) bool {
	return VerifyDlogSet([]*algebra.G1{y}, []*algebra.G1{g}, proof, binding)
}

// ProveDlogSet proves that every statement y_i = g_i^x holds for one common
// exponent x, using a single blinding scalar.
func ProveDlogSet(ys, gs []*algebra.G1, x fr.Element, binding []byte, rnd *algebra.Rand) (*DlogProof, error) {
	if len(ys) == 0 || len(ys) != len(gs) {
		return nil, fmt.Errorf("statement and base counts must match and be non-empty")
	}
	r, err := rnd.GetFr()
	if err != nil {
		return nil, fmt.Errorf("get random blinding: %s", err)
	}

	t := transcript.New(labelDlog)
	t.AppendBytes(labelBinding, binding)
	var commit algebra.G1
	for i := range ys {
		t.AppendElements(labelStatement, ys[i])
		t.AppendElements(labelBase, gs[i])
		commit.ScalarMultiplication(gs[i], r)
		t.AppendElements(labelCommit, &commit)
	}
	c := t.GetAndAppendChallenge(labelChallenge)

	// s = r - c*x
	var s fr.Element
	s.Mul(&c, &x)
	s.Sub(&r, &s)
	return &DlogProof{C: c, S: s}, nil
}

// VerifyDlogSet recomputes each commitment as g_i^s + y_i^c and compares
// challenges.
func VerifyDlogSet(ys, gs []*algebra.G1, proof *DlogProof, binding []byte) bool {
	if len(ys) == 0 || len(ys) != len(gs) {
		return false
	}
	t := transcript.New(labelDlog)
	t.AppendBytes(labelBinding, binding)
	var gsP, ycP algebra.G1
	for i := range ys {
		t.AppendElements(labelStatement, ys[i])
		t.AppendElements(labelBase, gs[i])
		gsP.ScalarMultiplication(gs[i], proof.S)
		ycP.ScalarMultiplication(ys[i], proof.C)
		gsP.AddAssign(&ycP)
		t.AppendElements(labelCommit, &gsP)
	}
	c := t.GetAndAppendChallenge(labelChallenge)
	return c.Equal(&proof.C)
}

func (p *DlogProof) MarshalBinary() ([]byte, error) {
	w := algebra.NewRawWriter()
	w.Fr(p.C)
	w.Fr(p.S)
	return w.Bytes(), nil
}

func (p *DlogProof) UnmarshalBinary(data []byte) error {
	r := algebra.NewRawReader(data)
	var tmp DlogProof
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
