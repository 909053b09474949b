package spk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/transcript"
)

var (
	labelPairing    = []byte("spk_pairing")
	labelPairingTau = []byte("spk_pairing_tau")
	labelTau        = []byte("tau")
)

// PairingProof proves knowledge of a G2 witness xx with y = e(g, xx).
type PairingProof struct {
	C fr.Element
	S algebra.G2
}

// ProvePairing proves knowledge of xx such that y = e(g, xx).
func ProvePairing(g *algebra.G1, y *algebra.GT, xx *algebra.G2, binding []byte, rnd *algebra.Rand) (*PairingProof, error) {
	rr, err := rnd.GetG2()
	if err != nil {
		return nil, fmt.Errorf("get random G2 witness: %s", err)
	}
	commit, err := algebra.Pair(g, rr)
	if err != nil {
		return nil, err
	}

	t := transcript.New(labelPairing)
	t.AppendBytes(labelBinding, binding)
	t.AppendElements(labelBase, g)
	t.AppendElements(labelStatement, y)
	t.AppendElements(labelCommit, commit)
	c := t.GetAndAppendChallenge(labelChallenge)

	// ss = rr + xx*c
	proof := &PairingProof{C: c}
	proof.S.ScalarMultiplication(xx, c)
	proof.S.AddAssign(rr)
	return proof, nil
}

// VerifyPairing recomputes the commitment as e(g, ss) / y^c.
func VerifyPairing(g *algebra.G1, y *algebra.GT, proof *PairingProof, binding []byte) (bool, error) {
	gss, err := algebra.Pair(g, &proof.S)
	if err != nil {
		return false, err
	}
	var yc, commit algebra.GT
	yc.ScalarMultiplication(y, proof.C)
	commit.Sub(gss, &yc)

	t := transcript.New(labelPairing)
	t.AppendBytes(labelBinding, binding)
	t.AppendElements(labelBase, g)
	t.AppendElements(labelStatement, y)
	t.AppendElements(labelCommit, &commit)
	c := t.GetAndAppendChallenge(labelChallenge)
	return c.Equal(&proof.C), nil
}

func (p *PairingProof) MarshalBinary() ([]byte, error) {
	w := algebra.NewRawWriter()
	w.Fr(p.C)
	w.Element(&p.S)
	return w.Bytes(), nil
}

func (p *PairingProof) UnmarshalBinary(data []byte) error {
	r := algebra.NewRawReader(data)
	var tmp PairingProof
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	if err := r.Element("s", &tmp.S); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*p = tmp
	return nil
}

// PairingTauProof proves knowledge of xx satisfying two pairing equations
// e1 = e(g1, xx) and tau = e(g2, xx). The second target tau is carried in
// the proof, so only e1 needs to be recomputable by the verifier.
type PairingTauProof struct {
	C   fr.Element
	S   algebra.G2
	Tau algebra.GT
}

func ProvePairingTau(xx *algebra.G2, g1, g2 *algebra.G1, e1, tau *algebra.GT, binding []byte, rnd *algebra.Rand) (*PairingTauProof, error) {
	rr, err := rnd.GetG2()
	if err != nil {
		return nil, fmt.Errorf("get random G2 witness: %s", err)
	}
	rr1, err := algebra.Pair(g1, rr)
	if err != nil {
		return nil, err
	}
	rr2, err := algebra.Pair(g2, rr)
	if err != nil {
		return nil, err
	}

	c := pairingTauChallenge(g1, g2, e1, tau, rr1, rr2, binding)

	proof := &PairingTauProof{C: c}
	proof.S.ScalarMultiplication(xx, c)
	proof.S.AddAssign(rr)
	proof.Tau.Set(tau)
	return proof, nil
}

func VerifyPairingTau(proof *PairingTauProof, g1, g2 *algebra.G1, e1 *algebra.GT, binding []byte) (bool, error) {
	g1ss, err := algebra.Pair(g1, &proof.S)
	if err != nil {
		return false, err
	}
	g2ss, err := algebra.Pair(g2, &proof.S)
	if err != nil {
		return false, err
	}
	var tmp, rr1, rr2 algebra.GT
	tmp.ScalarMultiplication(e1, proof.C)
	rr1.Sub(g1ss, &tmp)
	tmp.ScalarMultiplication(&proof.Tau, proof.C)
	rr2.Sub(g2ss, &tmp)

	c := pairingTauChallenge(g1, g2, e1, &proof.Tau, &rr1, &rr2, binding)
	return c.Equal(&proof.C), nil
}

func pairingTauChallenge(g1, g2 *algebra.G1, e1, tau, rr1, rr2 *algebra.GT, binding []byte) fr.Element {
	t := transcript.New(labelPairingTau)
	t.AppendElements(labelBase, g1, g2)
	t.AppendElements(labelStatement, e1)
	t.AppendElements(labelTau, tau)
	t.AppendElements(labelCommit, rr1, rr2)
	t.AppendBytes(labelBinding, binding)
	return t.GetAndAppendChallenge(labelChallenge)
}

func (p *PairingTauProof) MarshalBinary() ([]byte, error) {
	w := algebra.NewRawWriter()
	w.Fr(p.C)
	w.Element(&p.S)
	w.Element(&p.Tau)
	return w.Bytes(), nil
}

func (p *PairingTauProof) UnmarshalBinary(data []byte) error {
	r := algebra.NewRawReader(data)
	var tmp PairingTauProof
	if err := r.Fr("c", &tmp.C); err != nil {
		return err
	}
	if err := r.Element("s", &tmp.S); err != nil {
		return err
	}
	if err := r.Element("tau", &tmp.Tau); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*p = tmp
	return nil
}
