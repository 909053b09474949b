// Package ps16 implements the Pointcheval-Sanders group-signature scheme.
// The member holds a randomizable credential (sigma1, sigma2) on its secret
// exponent; signatures rerandomize the credential and prove knowledge of
// the exponent, and the manager opens them against the pairing trapdoor
// recorded at join time.
package ps16

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/mship"
	"github.com/gsig/groupsig/spk"
	"github.com/gsig/groupsig/transcript"
)

const Name = "ps16"

var (
	labelSign      = []byte("ps16_signature")
	labelMessage   = []byte("message")
	labelCommit    = []byte("commitment")
	labelChallenge = []byte("challenge")
)

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDPS16,
		New: func() (groupsig.Scheme, error) {
			return New()
		},
		Containers: map[groupsig.Kind]func() groupsig.Container{
			groupsig.KindGroupKey:   func() groupsig.Container { return &GroupKey{} },
			groupsig.KindManagerKey: func() groupsig.Container { return &ManagerKey{} },
			groupsig.KindMemberKey:  func() groupsig.Container { return &MemberKey{} },
			groupsig.KindSignature:  func() groupsig.Container { return &Signature{} },
		},
	})
}

type Scheme struct {
	grpKey GroupKey
	mgrKey ManagerKey
	gml    *mship.Ledger
	rnd    *algebra.Rand

	hasGroup bool
	hasMgr   bool
}

func New() (*Scheme, error) {
	rnd, err := algebra.NewRand()
	if err != nil {
		return nil, fmt.Errorf("init randomness: %w", err)
	}
	return &Scheme{gml: mship.NewLedger(), rnd: rnd}, nil
}

func (s *Scheme) Name() string                   { return Name }
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDPS16 }
func (s *Scheme) JoinSeq() int                   { return 3 }
func (s *Scheme) JoinStart() int                 { return 0 }
func (s *Scheme) GML() *mship.Ledger             { return s.gml }
func (s *Scheme) GroupKey() groupsig.Container   { return &s.grpKey }
func (s *Scheme) ManagerKey() groupsig.Container { return &s.mgrKey }

func (s *Scheme) SetGroupKey(c groupsig.Container) error {
	gk, ok := c.(*GroupKey)
	if !ok {
		return &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	s.grpKey = *gk
	s.hasGroup = true
	return nil
}

func (s *Scheme) Setup() error {
	var err error
	if s.mgrKey.X, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Y, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}

	g, err := s.rnd.GetNonZeroG1()
	if err != nil {
		return err
	}
	gg, err := s.rnd.GetNonZeroG2()
	if err != nil {
		return err
	}
	s.grpKey.G.Set(g)
	s.grpKey.GG.Set(gg)
	s.grpKey.X.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.X)
	s.grpKey.Y.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.Y)

	s.hasGroup = true
	s.hasMgr = true
	return nil
}

// JoinMgr starts by sending a fresh nonce; in the second manager round it
// checks the member's tau commitment and issues the credential pair.
func (s *Scheme) JoinMgr(in *groupsig.JoinMessage) (*groupsig.JoinMessage, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	if in == nil {
		// A random nonce echoed back by the member keeps old join
		// transcripts from being replayed.
		n, err := s.rnd.GetG1()
		if err != nil {
			return nil, err
		}
		w := algebra.NewRawWriter()
		w.Element(n)
		return &groupsig.JoinMessage{Phase: 1, Data: w.Bytes()}, nil
	}
	if in.Phase != 2 {
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: in.Phase}
	}

	r := algebra.NewRawReader(in.Data)
	var n, tau algebra.G1
	var ttau algebra.G2
	if err := r.Element("n", &n); err != nil {
		return nil, err
	}
	if err := r.Element("tau", &tau); err != nil {
		return nil, err
	}
	if err := r.Element("ttau", &ttau); err != nil {
		return nil, err
	}
	var proof spk.DlogProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return nil, err
	}

	if !spk.VerifyDlog(&tau, &s.grpKey.G, &proof, n.Bytes()) {
		return nil, fmt.Errorf("%s: invalid tau ownership proof", Name)
	}
	e1, err := algebra.Pair(&tau, &s.grpKey.Y)
	if err != nil {
		return nil, err
	}
	e2, err := algebra.Pair(&s.grpKey.G, &ttau)
	if err != nil {
		return nil, err
	}
	if !e1.Equal(e2) {
		return nil, fmt.Errorf("%s: tau and ttau are inconsistent", Name)
	}

	// sigma1 = g^u, sigma2 = (tau^y * g^x)^u
	u, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var sigma1, sigma2, gx algebra.G1
	sigma1.ScalarMultiplication(&s.grpKey.G, u)
	sigma2.ScalarMultiplication(&tau, s.mgrKey.Y)
	gx.ScalarMultiplication(&s.grpKey.G, s.mgrKey.X)
	sigma2.AddAssign(&gx)
	sigma2.ScalarMultiplication(&sigma2, u)

	if err := s.gml.Append(&mship.Entry{
		ID:    memberID(&tau, &ttau),
		Attrs: [][]byte{tau.Bytes(), ttau.Bytes()},
	}); err != nil {
		return nil, err
	}

	w := algebra.NewRawWriter()
	w.Element(&sigma1)
	w.Element(&sigma2)
	return &groupsig.JoinMessage{Phase: 3, Data: w.Bytes()}, nil
}

// JoinMem picks the secret exponent and proves ownership of tau in the
// first member round, then imports the issued credential in the second.
func (s *Scheme) JoinMem(in *groupsig.JoinMessage, key groupsig.Container) (*groupsig.JoinMessage, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	if in == nil {
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: 0}
	}

	switch {
	case in.Phase == 1 && mk.state == joinNone:
		r := algebra.NewRawReader(in.Data)
		var n algebra.G1
		if err := r.Element("n", &n); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}

		sk, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		var tau algebra.G1
		var ttau algebra.G2
		tau.ScalarMultiplication(&s.grpKey.G, sk)
		ttau.ScalarMultiplication(&s.grpKey.Y, sk)

		proof, err := spk.ProveDlog(&tau, &s.grpKey.G, sk, n.Bytes(), s.rnd)
		if err != nil {
			return nil, err
		}
		proofBytes, err := proof.MarshalBinary()
		if err != nil {
			return nil, err
		}

		mk.SK = sk
		mk.state = joinPending

		w := algebra.NewRawWriter()
		w.Element(&n)
		w.Element(&tau)
		w.Element(&ttau)
		w.Raw(proofBytes)
		return &groupsig.JoinMessage{Phase: 2, Data: w.Bytes()}, nil

	case in.Phase == 3 && mk.state == joinPending:
		r := algebra.NewRawReader(in.Data)
		var sigma1, sigma2 algebra.G1
		if err := r.Element("sigma1", &sigma1); err != nil {
			return nil, err
		}
		if err := r.Element("sigma2", &sigma2); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
		mk.Sigma1.Set(&sigma1)
		mk.Sigma2.Set(&sigma2)
		mk.state = joinDone
		return nil, nil

	default:
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: in.Phase}
	}
}

func (s *Scheme) Sign(msg []byte, key groupsig.Container, opts ...groupsig.SignOption) (groupsig.Container, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !mk.Complete() {
		return nil, &groupsig.IncompleteKeyError{Scheme: Name}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}

	t, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var sig Signature
	sig.Sigma1.ScalarMultiplication(&mk.Sigma1, t)
	sig.Sigma2.ScalarMultiplication(&mk.Sigma2, t)

	// Commit e = e(sigma1, Y)^k, respond s = k + c*sk.
	k, err := s.rnd.GetFr()
	if err != nil {
		return nil, err
	}
	e, err := algebra.Pair(&sig.Sigma1, &s.grpKey.Y)
	if err != nil {
		return nil, err
	}
	var commit algebra.GT
	commit.ScalarMultiplication(e, k)

	sig.C = challenge(msg, &sig, &commit)
	sig.S.Mul(&sig.C, &mk.SK)
	sig.S.Add(&sig.S, &k)
	return &sig, nil
}

func (s *Scheme) Verify(msg []byte, c groupsig.Container, opts ...groupsig.SignOption) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}
	if sig.Sigma1.IsZero() {
		return false, nil
	}

	// R = e(sigma1^s, Y) / (e(-sigma1, X) * e(sigma2, gg))^c
	var negSigma1, sigma1S algebra.G1
	negSigma1.Neg(&sig.Sigma1)
	e1, err := algebra.Pair(&negSigma1, &s.grpKey.X)
	if err != nil {
		return false, err
	}
	e2, err := algebra.Pair(&sig.Sigma2, &s.grpKey.GG)
	if err != nil {
		return false, err
	}
	sigma1S.ScalarMultiplication(&sig.Sigma1, sig.S)
	e3, err := algebra.Pair(&sigma1S, &s.grpKey.Y)
	if err != nil {
		return false, err
	}
	var commit algebra.GT
	commit.Add(e1, e2)
	commit.ScalarMultiplication(&commit, sig.C)
	commit.Sub(e3, &commit)

	c2 := challenge(msg, sig, &commit)
	return c2.Equal(&sig.C), nil
}

// Open matches the signature against the pairing trapdoors recorded at join
// time and proves the match. A nil result means no member matched.
func (s *Scheme) Open(c groupsig.Container) (*groupsig.OpenResult, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}

	e4, err := s.openTarget(sig)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.gml.Entries() {
		var ttau algebra.G2
		if len(entry.Attrs) != 2 {
			return nil, fmt.Errorf("%s: malformed membership entry %s", Name, entry.ID)
		}
		if err := ttau.SetBytes(entry.Attrs[1]); err != nil {
			return nil, err
		}
		e3, err := algebra.Pair(&sig.Sigma1, &ttau)
		if err != nil {
			return nil, err
		}
		if !e4.Equal(e3) {
			continue
		}

		binding, err := sig.MarshalBinary()
		if err != nil {
			return nil, err
		}
		proof, err := spk.ProvePairing(&sig.Sigma1, e3, &ttau, binding, s.rnd)
		if err != nil {
			return nil, err
		}
		proofBytes, err := proof.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return &groupsig.OpenResult{MemberID: entry.ID, Proof: proofBytes}, nil
	}
	return nil, nil
}

// OpenVerify checks that the opening proof demonstrates knowledge of a
// trapdoor consistent with sig.
func (s *Scheme) OpenVerify(c groupsig.Container, res *groupsig.OpenResult) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}

	var proof spk.PairingProof
	if err := proof.UnmarshalBinary(res.Proof); err != nil {
		return false, err
	}
	e4, err := s.openTarget(sig)
	if err != nil {
		return false, err
	}
	binding, err := sig.MarshalBinary()
	if err != nil {
		return false, err
	}
	return spk.VerifyPairing(&sig.Sigma1, e4, &proof, binding)
}

// openTarget computes e(sigma2, gg) / e(sigma1, X) = e(sigma1, ttau) for
// the signer's ttau.
func (s *Scheme) openTarget(sig *Signature) (*algebra.GT, error) {
	e1, err := algebra.Pair(&sig.Sigma2, &s.grpKey.GG)
	if err != nil {
		return nil, err
	}
	e2, err := algebra.Pair(&sig.Sigma1, &s.grpKey.X)
	if err != nil {
		return nil, err
	}
	var e4 algebra.GT
	e4.Sub(e1, e2)
	return &e4, nil
}

func challenge(msg []byte, sig *Signature, commit *algebra.GT) fr.Element {
	t := transcript.New(labelSign)
	t.AppendBytes(labelMessage, msg)
	t.AppendElements(labelCommit, &sig.Sigma1, &sig.Sigma2, commit)
	return t.GetAndAppendChallenge(labelChallenge)
}

func memberID(tau *algebra.G1, ttau *algebra.G2) string {
	h := sha256.New()
	h.Write(tau.Bytes())
	h.Write(ttau.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}
