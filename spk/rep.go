package spk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/transcript"
)

var (
	labelRep   = []byte("spk_rep")
	labelIndex = []byte("index")
)

// Index ties one term of a representation equation to its secret and base:
// the term is g[Base]^x[Secret].
type Index struct {
	Secret int
	Base   int
}

// RepProof proves knowledge of secrets x[] satisfying a system of
// representation equations y_j = prod of g[i.Base]^x[i.Secret] terms. The
// prods slice gives the number of consecutive Index entries forming each
// equation.
type RepProof struct {
	C fr.Element
	S []fr.Element
}

func checkRepShape(ny, ng, nx int, idx []Index, prods []int) error {
	if ny == 0 || ng == 0 || nx == 0 {
		return fmt.Errorf("empty statement")
	}
	if len(prods) != ny {
		return fmt.Errorf("prods must have one entry per statement")
	}
	total := 0
	for _, p := range prods {
		if p < 1 {
			return fmt.Errorf("each statement needs at least one term")
		}
		total += p
	}
	if total != len(idx) {
		return fmt.Errorf("index count %d does not match prods total %d", len(idx), total)
	}
	for _, ix := range idx {
		if ix.Secret < 0 || ix.Secret >= nx || ix.Base < 0 || ix.Base >= ng {
			return fmt.Errorf("index out of range")
		}
	}
	return nil
}

// ProveRep produces a general representation proof. Statements and bases
// may mix groups; each equation must stay within one group.
func ProveRep(ys, gs []algebra.Element, xs []fr.Element, idx []Index, prods []int, binding []byte, rnd *algebra.Rand) (*RepProof, error) {
	if err := checkRepShape(len(ys), len(gs), len(xs), idx, prods); err != nil {
		return nil, err
	}
	rs, err := rnd.GetFrs(len(xs))
	if err != nil {
		return nil, fmt.Errorf("get random blindings: %s", err)
	}

	// Per-equation commitments: prod_j = sum of g[Base]^r[Secret] terms.
	commits := make([]algebra.Element, len(ys))
	pos := 0
	for j := range ys {
		acc := gs[idx[pos].Base].New()
		acc.ScalarMultiplication(gs[idx[pos].Base], rs[idx[pos].Secret])
		pos++
		for k := 1; k < prods[j]; k++ {
			term := gs[idx[pos].Base].New()
			term.ScalarMultiplication(gs[idx[pos].Base], rs[idx[pos].Secret])
			acc.AddAssign(term)
			pos++
		}
		commits[j] = acc
	}

	c := repChallenge(ys, gs, idx, commits, binding)

	proof := &RepProof{C: c, S: make([]fr.Element, len(xs))}
	for i := range xs {
		// s_i = r_i - c*x_i
		var cx fr.Element
		cx.Mul(&c, &xs[i])
		proof.S[i].Sub(&rs[i], &cx)
	}
	return proof, nil
}

// VerifyRep recomputes each equation's commitment as y_j^c plus its
// g[Base]^s[Secret] terms and compares challenges. The error return is for
// statements the verifier cannot even process.
func VerifyRep(ys, gs []algebra.Element, idx []Index, prods []int, proof *RepProof, binding []byte) (bool, error) {
	if err := checkRepShape(len(ys), len(gs), len(proof.S), idx, prods); err != nil {
		return false, err
	}
	commits := make([]algebra.Element, len(ys))
	pos := 0
	for j := range ys {
		acc := ys[j].New()
		acc.ScalarMultiplication(ys[j], proof.C)
		for k := 0; k < prods[j]; k++ {
			term := gs[idx[pos].Base].New()
			term.ScalarMultiplication(gs[idx[pos].Base], proof.S[idx[pos].Secret])
			acc.AddAssign(term)
			pos++
		}
		commits[j] = acc
	}

	c := repChallenge(ys, gs, idx, commits, binding)
	return c.Equal(&proof.C), nil
}

func repChallenge(ys, gs []algebra.Element, idx []Index, commits []algebra.Element, binding []byte) fr.Element {
	t := transcript.New(labelRep)
	t.AppendBytes(labelBinding, binding)
	t.AppendElements(labelStatement, ys...)
	t.AppendElements(labelBase, gs...)
	for _, ix := range idx {
		t.AppendUint64(labelIndex, uint64(ix.Secret)<<16|uint64(ix.Base))
	}
	t.AppendElements(labelCommit, commits...)
	return t.GetAndAppendChallenge(labelChallenge)
}

func (p *RepProof) MarshalBinary() ([]byte, error) {
	w := algebra.NewRawWriter()
	w.Fr(p.C)
	w.Frs(p.S)
	return w.Bytes(), nil
}

func (p *RepProof) UnmarshalBinary(data []byte) error {
	r := algebra.NewRawReader(data)
	var tmp RepProof
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	var err error
	if tmp.S, err = r.Frs("s"); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*p = tmp
	return nil
}
