// Package bbs04 implements the Boneh-Boyen-Shacham group-signature scheme.
// Signatures are a linear encryption of the member credential under the
// group key plus a Fiat-Shamir proof of a valid credential; the manager can
// decrypt the credential with its tracing exponents and open signatures
// against the membership list.
package bbs04

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/mship"
	"github.com/gsig/groupsig/transcript"
)

const Name = "bbs04"

var (
	labelSign      = []byte("bbs04_signature")
	labelMessage   = []byte("message")
	labelCommit    = []byte("commitment")
	labelChallenge = []byte("challenge")
)

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDBBS04,
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

func (s *Scheme) Name() string           { return Name }
func (s *Scheme) ID() groupsig.SchemeID  { return groupsig.IDBBS04 }
func (s *Scheme) JoinSeq() int           { return 1 }
func (s *Scheme) JoinStart() int         { return 0 }
func (s *Scheme) GML() *mship.Ledger     { return s.gml }
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

// Setup creates the group: tracing exponents xi1/xi2, issuing exponent
// gamma, and the public bases with their fixed pairings.
func (s *Scheme) Setup() error {
	g2, err := s.rnd.GetG2()
	if err != nil {
		return err
	}
	g1, err := s.rnd.GetG1()
	if err != nil {
		return err
	}
	h, err := s.rnd.GetNonZeroG1()
	if err != nil {
		return err
	}
	s.grpKey.G2.Set(g2)
	s.grpKey.G1.Set(g1)
	s.grpKey.H.Set(h)

	if s.mgrKey.Xi1, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Xi2, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Gamma, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}

	// u = h^(1/xi1), v = h^(1/xi2)
	var inv fr.Element
	inv.Inverse(&s.mgrKey.Xi1)
	s.grpKey.U.ScalarMultiplication(&s.grpKey.H, inv)
	inv.Inverse(&s.mgrKey.Xi2)
	s.grpKey.V.ScalarMultiplication(&s.grpKey.H, inv)

	// w = g2^gamma
	s.grpKey.W.ScalarMultiplication(&s.grpKey.G2, s.mgrKey.Gamma)

	hw, err := algebra.Pair(&s.grpKey.H, &s.grpKey.W)
	if err != nil {
		return err
	}
	hg2, err := algebra.Pair(&s.grpKey.H, &s.grpKey.G2)
	if err != nil {
		return err
	}
	g1g2, err := algebra.Pair(&s.grpKey.G1, &s.grpKey.G2)
	if err != nil {
		return err
	}
	s.grpKey.HW.Set(hw)
	s.grpKey.HG2.Set(hg2)
	s.grpKey.G1G2.Set(g1g2)

	s.hasGroup = true
	s.hasMgr = true
	return nil
}

// JoinMgr issues a complete member key in a single round: the manager
// picks x and derives the credential A = g1^(1/(gamma+x)).
func (s *Scheme) JoinMgr(in *groupsig.JoinMessage) (*groupsig.JoinMessage, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	if in != nil {
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: in.Phase}
	}

	x, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var gammax fr.Element
	gammax.Add(&s.mgrKey.Gamma, &x)
	gammax.Inverse(&gammax)
	var a algebra.G1
	a.ScalarMultiplication(&s.grpKey.G1, gammax)

	if err := s.gml.Append(&mship.Entry{
		ID:    memberID(&a),
		Attrs: [][]byte{a.Bytes()},
	}); err != nil {
		return nil, err
	}

	w := algebra.NewRawWriter()
	w.Fr(x)
	w.Element(&a)
	return &groupsig.JoinMessage{Phase: 1, Data: w.Bytes()}, nil
}

// JoinMem imports the issued key material and finishes the join.
func (s *Scheme) JoinMem(in *groupsig.JoinMessage, key groupsig.Container) (*groupsig.JoinMessage, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	if in == nil || in.Phase != 1 || mk.state != joinNone {
		phase := 0
		if in != nil {
			phase = in.Phase
		}
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: phase}
	}

	r := algebra.NewRawReader(in.Data)
	var tmp MemberKey
	if err := r.Fr("x", &tmp.X); err != nil {
		return nil, err
	}
	if err := r.Element("A", &tmp.A); err != nil {
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	ag2, err := algebra.Pair(&tmp.A, &s.grpKey.G2)
	if err != nil {
		return nil, err
	}
	mk.X = tmp.X
	mk.A.Set(&tmp.A)
	mk.AG2.Set(ag2)
	mk.state = joinDone
	return nil, nil
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

	rs, err := s.rnd.GetFrs(7)
	if err != nil {
		return nil, err
	}
	alpha, beta := rs[0], rs[1]
	ralpha, rbeta, rx, rdelta1, rdelta2 := rs[2], rs[3], rs[4], rs[5], rs[6]

	var sig Signature
	sig.T1.ScalarMultiplication(&s.grpKey.U, alpha)
	sig.T2.ScalarMultiplication(&s.grpKey.V, beta)

	// T3 = A + h^(alpha+beta)
	var alphabeta fr.Element
	alphabeta.Add(&alpha, &beta)
	sig.T3.ScalarMultiplication(&s.grpKey.H, alphabeta)
	sig.T3.AddAssign(&mk.A)

	var delta1, delta2 fr.Element
	delta1.Mul(&mk.X, &alpha)
	delta2.Mul(&mk.X, &beta)

	// o1 = e(T3, g2) = e(A, g2) * e(h, g2)^(alpha+beta)
	var o1 algebra.GT
	o1.ScalarMultiplication(&s.grpKey.HG2, alphabeta)
	o1.AddAssign(&mk.AG2)

	var r1, r2, r4, r5, aux algebra.G1
	r1.ScalarMultiplication(&s.grpKey.U, ralpha)
	r2.ScalarMultiplication(&s.grpKey.V, rbeta)

	// R3 = o1^rx * e(h,w)^(-ralpha-rbeta) * e(h,g2)^(-rdelta1-rdelta2)
	var r3, e2, e3 algebra.GT
	var neg fr.Element
	r3.ScalarMultiplication(&o1, rx)
	neg.Neg(&ralpha)
	neg.Sub(&neg, &rbeta)
	e2.ScalarMultiplication(&s.grpKey.HW, neg)
	neg.Neg(&rdelta1)
	neg.Sub(&neg, &rdelta2)
	e3.ScalarMultiplication(&s.grpKey.HG2, neg)
	r3.AddAssign(&e2)
	r3.AddAssign(&e3)

	// R4 = T1^rx * u^(-rdelta1)
	r4.ScalarMultiplication(&sig.T1, rx)
	neg.Neg(&rdelta1)
	aux.ScalarMultiplication(&s.grpKey.U, neg)
	r4.AddAssign(&aux)

	// R5 = T2^rx * v^(-rdelta2)
	r5.ScalarMultiplication(&sig.T2, rx)
	neg.Neg(&rdelta2)
	aux.ScalarMultiplication(&s.grpKey.V, neg)
	r5.AddAssign(&aux)

	sig.C = challenge(msg, &sig, &r1, &r2, &r3, &r4, &r5)

	// s_i = r_i + c * secret_i
	addMulC := func(dst *fr.Element, r, secret fr.Element) {
		dst.Mul(&sig.C, &secret)
		dst.Add(dst, &r)
	}
	addMulC(&sig.SAlpha, ralpha, alpha)
	addMulC(&sig.SBeta, rbeta, beta)
	addMulC(&sig.SX, rx, mk.X)
	addMulC(&sig.SDelta1, rdelta1, delta1)
	addMulC(&sig.SDelta2, rdelta2, delta2)

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

	var negC fr.Element
	negC.Neg(&sig.C)

	// R1 = u^salpha * T1^(-c)
	var r1, r2, r4, r5, aux algebra.G1
	r1.ScalarMultiplication(&s.grpKey.U, sig.SAlpha)
	aux.ScalarMultiplication(&sig.T1, negC)
	r1.AddAssign(&aux)

	// R2 = v^sbeta * T2^(-c)
	r2.ScalarMultiplication(&s.grpKey.V, sig.SBeta)
	aux.ScalarMultiplication(&sig.T2, negC)
	r2.AddAssign(&aux)

	// R3 = e(T3, w^c * g2^sx) * e(h,w)^(-salpha-sbeta) *
	//      e(h,g2)^(-sdelta1-sdelta2) * e(g1,g2)^(-c)
	var auxG2, wg2 algebra.G2
	wg2.ScalarMultiplication(&s.grpKey.W, sig.C)
	auxG2.ScalarMultiplication(&s.grpKey.G2, sig.SX)
	wg2.AddAssign(&auxG2)
	e1, err := algebra.Pair(&sig.T3, &wg2)
	if err != nil {
		return false, err
	}
	var r3, e2, e3, e4 algebra.GT
	var neg fr.Element
	neg.Neg(&sig.SAlpha)
	neg.Sub(&neg, &sig.SBeta)
	e2.ScalarMultiplication(&s.grpKey.HW, neg)
	neg.Neg(&sig.SDelta1)
	neg.Sub(&neg, &sig.SDelta2)
	e3.ScalarMultiplication(&s.grpKey.HG2, neg)
	e4.ScalarMultiplication(&s.grpKey.G1G2, negC)
	r3.Add(e1, &e2)
	r3.AddAssign(&e3)
	r3.AddAssign(&e4)

	// R4 = T1^sx * u^(-sdelta1)
	var negS fr.Element
	negS.Neg(&sig.SDelta1)
	r4.ScalarMultiplication(&sig.T1, sig.SX)
	aux.ScalarMultiplication(&s.grpKey.U, negS)
	r4.AddAssign(&aux)

	// R5 = T2^sx * v^(-sdelta2)
	negS.Neg(&sig.SDelta2)
	r5.ScalarMultiplication(&sig.T2, sig.SX)
	aux.ScalarMultiplication(&s.grpKey.V, negS)
	r5.AddAssign(&aux)

	c2 := challenge(msg, sig, &r1, &r2, &r3, &r4, &r5)
	return c2.Equal(&sig.C), nil
}

func challenge(msg []byte, sig *Signature, commits ...algebra.Element) fr.Element {
	t := transcript.New(labelSign)
	t.AppendBytes(labelMessage, msg)
	t.AppendElements(labelCommit, &sig.T1, &sig.T2, &sig.T3)
	t.AppendElements(labelCommit, commits...)
	return t.GetAndAppendChallenge(labelChallenge)
}

func memberID(a *algebra.G1) string {
	sum := sha256.Sum256(a.Bytes())
	return hex.EncodeToString(sum[:])
}
