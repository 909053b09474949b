// Package cpy06 implements the Choi-Park-Yung group-signature scheme with
// verifier-local revocation. Signatures carry both an opener-decryptable
// encryption of the member credential and a tracing handle that revoked
// members can be tested against without opening.
package cpy06

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

const Name = "cpy06"

var (
	labelSign      = []byte("cpy06_signature")
	labelMessage   = []byte("message")
	labelCommit    = []byte("commitment")
	labelChallenge = []byte("challenge")
)

// Join commitment proof: pi = g1^x and pi = g1^v * I^u * q^rr.
var (
	joinIdx   = []spk.Index{{Secret: 0, Base: 0}, {Secret: 1, Base: 0}, {Secret: 2, Base: 1}, {Secret: 3, Base: 2}}
	joinProds = []int{1, 3}
)

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDCPY06,
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
	crl    *mship.Ledger
	rnd    *algebra.Rand

	hasGroup bool
	hasMgr   bool
}

func New() (*Scheme, error) {
	rnd, err := algebra.NewRand()
	if err != nil {
		return nil, fmt.Errorf("init randomness: %w", err)
	}
	return &Scheme{gml: mship.NewLedger(), crl: mship.NewLedger(), rnd: rnd}, nil
}

func (s *Scheme) Name() string                   { return Name }
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDCPY06 }
func (s *Scheme) JoinSeq() int                   { return 3 }
func (s *Scheme) JoinStart() int                 { return 0 }
func (s *Scheme) GML() *mship.Ledger             { return s.gml }
func (s *Scheme) CRL() *mship.Ledger             { return s.crl }
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
	if s.mgrKey.Xi1, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Xi2, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Gamma, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}

	q, err := s.rnd.GetNonZeroG1()
	if err != nil {
		return err
	}
	w, err := s.rnd.GetNonZeroG2()
	if err != nil {
		return err
	}
	z, err := s.rnd.GetNonZeroG1()
	if err != nil {
		return err
	}
	s.grpKey.Q.Set(q)
	s.grpKey.W.Set(w)
	s.grpKey.Z.Set(z)
	s.grpKey.R.ScalarMultiplication(algebra.G2Generator(), s.mgrKey.Gamma)

	// x = z^(1/xi1), y = z^(1/xi2)
	var inv fr.Element
	inv.Inverse(&s.mgrKey.Xi1)
	s.grpKey.X.ScalarMultiplication(&s.grpKey.Z, inv)
	inv.Inverse(&s.mgrKey.Xi2)
	s.grpKey.Y.ScalarMultiplication(&s.grpKey.Z, inv)

	for _, p := range []struct {
		dst  *algebra.GT
		a    *algebra.G1
		b    *algebra.G2
	}{
		{&s.grpKey.E1, algebra.G1Generator(), &s.grpKey.W},
		{&s.grpKey.E2, &s.grpKey.Z, algebra.G2Generator()},
		{&s.grpKey.E3, &s.grpKey.Z, &s.grpKey.R},
		{&s.grpKey.E4, algebra.G1Generator(), algebra.G2Generator()},
		{&s.grpKey.E5, &s.grpKey.Q, algebra.G2Generator()},
	} {
		e, err := algebra.Pair(p.a, p.b)
		if err != nil {
			return err
		}
		p.dst.Set(e)
	}

	s.hasGroup = true
	s.hasMgr = true
	return nil
}

// JoinMgr sends the exponents u, v of the joint secret in the first round;
// in the second it checks the member's commitment proof and issues the
// credential.
func (s *Scheme) JoinMgr(in *groupsig.JoinMessage) (*groupsig.JoinMessage, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	if in == nil {
		u, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		v, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		w := algebra.NewRawWriter()
		w.Fr(u)
		w.Fr(v)
		return &groupsig.JoinMessage{Phase: 1, Data: w.Bytes()}, nil
	}
	if in.Phase != 2 {
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: in.Phase}
	}

	r := algebra.NewRawReader(in.Data)
	var bigI, pi algebra.G1
	if err := r.Element("I", &bigI); err != nil {
		return nil, err
	}
	if err := r.Element("pi", &pi); err != nil {
		return nil, err
	}
	var proof spk.RepProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return nil, err
	}

	ok, err := spk.VerifyRep(
		[]algebra.Element{&pi, &pi},
		[]algebra.Element{algebra.G1Generator(), &bigI, &s.grpKey.Q},
		joinIdx, joinProds, &proof, pi.Bytes())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: invalid commitment proof", Name)
	}

	// A = (pi + q)^(1/(gamma+t))
	t, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var gammat fr.Element
	gammat.Add(&s.mgrKey.Gamma, &t)
	gammat.Inverse(&gammat)
	var a algebra.G1
	a.Add(&pi, &s.grpKey.Q)
	a.ScalarMultiplication(&a, gammat)

	if err := s.gml.Append(&mship.Entry{
		ID:    memberID(&a, &pi),
		Attrs: [][]byte{a.Bytes(), pi.Bytes()},
	}); err != nil {
		return nil, err
	}

	w := algebra.NewRawWriter()
	w.Fr(t)
	w.Element(&a)
	return &groupsig.JoinMessage{Phase: 3, Data: w.Bytes()}, nil
}

// JoinMem commits to its share of the secret exponent in the first member
// round; in the second it checks the issued credential before accepting it.
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
		var u, v fr.Element
		if err := r.Fr("u", &u); err != nil {
			return nil, err
		}
		if err := r.Fr("v", &v); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}

		y, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		rr, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}

		// I = g1^y * q^r, x = u*y + v, pi = g1^x
		var bigI, aux, pi algebra.G1
		bigI.ScalarMultiplication(algebra.G1Generator(), y)
		aux.ScalarMultiplication(&s.grpKey.Q, rr)
		bigI.AddAssign(&aux)

		mk.X.Mul(&u, &y)
		mk.X.Add(&mk.X, &v)
		pi.ScalarMultiplication(algebra.G1Generator(), mk.X)

		// The third base eliminates the commitment randomness: rr = -u*r.
		var negUR fr.Element
		negUR.Mul(&u, &rr)
		negUR.Neg(&negUR)

		proof, err := spk.ProveRep(
			[]algebra.Element{&pi, &pi},
			[]algebra.Element{algebra.G1Generator(), &bigI, &s.grpKey.Q},
			[]fr.Element{mk.X, v, u, negUR},
			joinIdx, joinProds, pi.Bytes(), s.rnd)
		if err != nil {
			return nil, err
		}
		proofBytes, err := proof.MarshalBinary()
		if err != nil {
			return nil, err
		}
		mk.state = joinPending

		w := algebra.NewRawWriter()
		w.Element(&bigI)
		w.Element(&pi)
		w.Raw(proofBytes)
		return &groupsig.JoinMessage{Phase: 2, Data: w.Bytes()}, nil

	case in.Phase == 3 && mk.state == joinPending:
		r := algebra.NewRawReader(in.Data)
		var t fr.Element
		var a algebra.G1
		if err := r.Fr("t", &t); err != nil {
			return nil, err
		}
		if err := r.Element("A", &a); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}

		// e(A, g2^t * r) must equal e(g1^x * q, g2)
		var auxG2 algebra.G2
		auxG2.ScalarMultiplication(algebra.G2Generator(), t)
		auxG2.AddAssign(&s.grpKey.R)
		var auxG1 algebra.G1
		auxG1.ScalarMultiplication(algebra.G1Generator(), mk.X)
		auxG1.AddAssign(&s.grpKey.Q)
		e1, err := algebra.Pair(&a, &auxG2)
		if err != nil {
			return nil, err
		}
		e2, err := algebra.Pair(&auxG1, algebra.G2Generator())
		if err != nil {
			return nil, err
		}
		if !e1.Equal(e2) {
			return nil, fmt.Errorf("%s: issued credential does not verify", Name)
		}

		mk.T = t
		mk.A.Set(&a)
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

	rs, err := s.rnd.GetFrs(9)
	if err != nil {
		return nil, err
	}
	r1, r2, r3 := rs[0], rs[1], rs[2]
	br1, br2, bd1, bd2, bt, bx := rs[3], rs[4], rs[5], rs[6], rs[7], rs[8]

	var d1, d2 fr.Element
	d1.Mul(&mk.T, &r1)
	d2.Mul(&mk.T, &r2)

	var sig Signature
	sig.T1.ScalarMultiplication(&s.grpKey.X, r1)
	sig.T2.ScalarMultiplication(&s.grpKey.Y, r2)

	// T3 = A + z^(r1+r2)
	var r12 fr.Element
	r12.Add(&r1, &r2)
	sig.T3.ScalarMultiplication(&s.grpKey.Z, r12)
	sig.T3.AddAssign(&mk.A)

	sig.T4.ScalarMultiplication(&s.grpKey.W, r3)

	// T5 = e(g1, w)^(r3*x) = e(g1, T4)^x
	var r3x fr.Element
	r3x.Mul(&r3, &mk.X)
	sig.T5.ScalarMultiplication(&s.grpKey.E1, r3x)

	var b1, b2, b3, b4, aux algebra.G1
	b1.ScalarMultiplication(&s.grpKey.X, br1)
	b2.ScalarMultiplication(&s.grpKey.Y, br2)

	// B3 = T1^bt - x^bd1
	var neg fr.Element
	b3.ScalarMultiplication(&sig.T1, bt)
	neg.Neg(&bd1)
	aux.ScalarMultiplication(&s.grpKey.X, neg)
	b3.AddAssign(&aux)

	// B4 = T2^bt - y^bd2
	b4.ScalarMultiplication(&sig.T2, bt)
	neg.Neg(&bd2)
	aux.ScalarMultiplication(&s.grpKey.Y, neg)
	b4.AddAssign(&aux)

	// B5 = e(g1, T4)^bx
	eg1t4, err := algebra.Pair(algebra.G1Generator(), &sig.T4)
	if err != nil {
		return nil, err
	}
	var b5 algebra.GT
	b5.ScalarMultiplication(eg1t4, bx)

	// B6 = e(T3,g2)^bt * e(z,g2)^(-bd1-bd2) * e(z,r)^(-br1-br2) * e(g1,g2)^(-bx)
	et3g2, err := algebra.Pair(&sig.T3, algebra.G2Generator())
	if err != nil {
		return nil, err
	}
	var b6, auxGT algebra.GT
	b6.ScalarMultiplication(et3g2, bt)
	neg.Neg(&bd1)
	neg.Sub(&neg, &bd2)
	auxGT.ScalarMultiplication(&s.grpKey.E2, neg)
	b6.AddAssign(&auxGT)
	neg.Neg(&br1)
	neg.Sub(&neg, &br2)
	auxGT.ScalarMultiplication(&s.grpKey.E3, neg)
	b6.AddAssign(&auxGT)
	neg.Neg(&bx)
	auxGT.ScalarMultiplication(&s.grpKey.E4, neg)
	b6.AddAssign(&auxGT)

	sig.C = challenge(msg, &sig, &b1, &b2, &b3, &b4, &b5, &b6)

	addMulC := func(dst *fr.Element, b, secret fr.Element) {
		dst.Mul(&sig.C, &secret)
		dst.Add(dst, &b)
	}
	addMulC(&sig.SR1, br1, r1)
	addMulC(&sig.SR2, br2, r2)
	addMulC(&sig.SD1, bd1, d1)
	addMulC(&sig.SD2, bd2, d2)
	addMulC(&sig.SX, bx, mk.X)
	addMulC(&sig.ST, bt, mk.T)

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

	var negC, neg fr.Element
	negC.Neg(&sig.C)

	// B1 = x^sr1 - T1^c, B2 = y^sr2 - T2^c
	var b1, b2, b3, b4, aux algebra.G1
	b1.ScalarMultiplication(&s.grpKey.X, sig.SR1)
	aux.ScalarMultiplication(&sig.T1, negC)
	b1.AddAssign(&aux)
	b2.ScalarMultiplication(&s.grpKey.Y, sig.SR2)
	aux.ScalarMultiplication(&sig.T2, negC)
	b2.AddAssign(&aux)

	// B3 = T1^st - x^sd1, B4 = T2^st - y^sd2
	b3.ScalarMultiplication(&sig.T1, sig.ST)
	neg.Neg(&sig.SD1)
	aux.ScalarMultiplication(&s.grpKey.X, neg)
	b3.AddAssign(&aux)
	b4.ScalarMultiplication(&sig.T2, sig.ST)
	neg.Neg(&sig.SD2)
	aux.ScalarMultiplication(&s.grpKey.Y, neg)
	b4.AddAssign(&aux)

	// B5 = e(g1, T4)^sx * T5^(-c)
	eg1t4, err := algebra.Pair(algebra.G1Generator(), &sig.T4)
	if err != nil {
		return false, err
	}
	var b5, auxGT algebra.GT
	b5.ScalarMultiplication(eg1t4, sig.SX)
	auxGT.ScalarMultiplication(&sig.T5, negC)
	b5.AddAssign(&auxGT)

	// B6 = e(T3,g2)^st * e(z,g2)^(-sd1-sd2) * e(z,r)^(-sr1-sr2) *
	//      e(g1,g2)^(-sx) * (e(T3,r)/e(q,g2))^c
	et3g2, err := algebra.Pair(&sig.T3, algebra.G2Generator())
	if err != nil {
		return false, err
	}
	var b6 algebra.GT
	b6.ScalarMultiplication(et3g2, sig.ST)
	neg.Neg(&sig.SD1)
	neg.Sub(&neg, &sig.SD2)
	auxGT.ScalarMultiplication(&s.grpKey.E2, neg)
	b6.AddAssign(&auxGT)
	neg.Neg(&sig.SR1)
	neg.Sub(&neg, &sig.SR2)
	auxGT.ScalarMultiplication(&s.grpKey.E3, neg)
	b6.AddAssign(&auxGT)
	neg.Neg(&sig.SX)
	auxGT.ScalarMultiplication(&s.grpKey.E4, neg)
	b6.AddAssign(&auxGT)
	et3r, err := algebra.Pair(&sig.T3, &s.grpKey.R)
	if err != nil {
		return false, err
	}
	auxGT.Sub(et3r, &s.grpKey.E5)
	auxGT.ScalarMultiplication(&auxGT, sig.C)
	b6.AddAssign(&auxGT)

	c2 := challenge(msg, sig, &b1, &b2, &b3, &b4, &b5, &b6)
	return c2.Equal(&sig.C), nil
}

func challenge(msg []byte, sig *Signature, commits ...algebra.Element) fr.Element {
	t := transcript.New(labelSign)
	t.AppendBytes(labelMessage, msg)
	t.AppendElements(labelCommit, &sig.T1, &sig.T2, &sig.T3, &sig.T4, &sig.T5)
	t.AppendElements(labelCommit, commits...)
	return t.GetAndAppendChallenge(labelChallenge)
}

func memberID(a, pi *algebra.G1) string {
	h := sha256.New()
	h.Write(a.Bytes())
	h.Write(pi.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}
