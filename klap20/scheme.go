// Package klap20 implements the Kim-Lee-Abdalla-Park group-signature scheme
// with separated issuer and opener roles. Members carry a hash-anchored
// credential triple; signatures rerandomize the triple and are verified
// with two pairing products, so verification needs no signer-specific data.
package klap20

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/mship"
	"github.com/gsig/groupsig/spk"
)

const Name = "klap20"

// Escrow proof of the join request: f = g^alpha, w = u^alpha,
// SS0 = gg^s0, SS1 = gg^s1, ff0 = gg^alpha * ZZ0^s0, ff1 = gg^alpha * ZZ1^s1.
var (
	joinIdx = []spk.Index{
		{Secret: 0, Base: 0},
		{Secret: 0, Base: 1},
		{Secret: 1, Base: 2},
		{Secret: 2, Base: 2},
		{Secret: 0, Base: 2}, {Secret: 1, Base: 3},
		{Secret: 0, Base: 2}, {Secret: 2, Base: 4},
	}
	joinProds = []int{1, 1, 1, 1, 2, 2}
)

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDKLAP20,
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
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDKLAP20 }
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
	if s.mgrKey.Z0, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.Z1, err = s.rnd.GetNonZeroFr(); err != nil {
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
	s.grpKey.XX.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.X)
	s.grpKey.YY.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.Y)
	s.grpKey.ZZ0.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.Z0)
	s.grpKey.ZZ1.ScalarMultiplication(&s.grpKey.GG, s.mgrKey.Z1)

	s.hasGroup = true
	s.hasMgr = true
	return nil
}

// JoinMgr sends a nonce in the first round; in the second it checks the
// member's escrow proof and issues the credential component v.
func (s *Scheme) JoinMgr(in *groupsig.JoinMessage) (*groupsig.JoinMessage, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	if in == nil {
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
	var n, f, w algebra.G1
	var ss0, ss1, ff0, ff1 algebra.G2
	if err := r.Element("n", &n); err != nil {
		return nil, err
	}
	if err := r.Element("f", &f); err != nil {
		return nil, err
	}
	if err := r.Element("w", &w); err != nil {
		return nil, err
	}
	for _, fd := range []struct {
		name string
		e    *algebra.G2
	}{
		{"SS0", &ss0}, {"SS1", &ss1}, {"ff0", &ff0}, {"ff1", &ff1},
	} {
		if err := r.Element(fd.name, fd.e); err != nil {
			return nil, err
		}
	}
	var proof spk.RepProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return nil, err
	}

	u, err := credentialBase(&f)
	if err != nil {
		return nil, err
	}
	ok, err := spk.VerifyRep(
		[]algebra.Element{&f, &w, &ss0, &ss1, &ff0, &ff1},
		[]algebra.Element{&s.grpKey.G, u, &s.grpKey.GG, &s.grpKey.ZZ0, &s.grpKey.ZZ1},
		joinIdx, joinProds, &proof, n.Bytes())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: invalid escrow proof", Name)
	}

	// v = u^x * w^y
	var v, wy algebra.G1
	v.ScalarMultiplication(u, s.mgrKey.X)
	wy.ScalarMultiplication(&w, s.mgrKey.Y)
	v.AddAssign(&wy)

	tau, err := algebra.Pair(&f, &s.grpKey.GG)
	if err != nil {
		return nil, err
	}
	if err := s.gml.Append(&mship.Entry{
		ID: memberID(&ss0, &ss1, &ff0, &ff1, tau),
		Attrs: [][]byte{
			ss0.Bytes(), ss1.Bytes(), ff0.Bytes(), ff1.Bytes(), tau.Bytes(),
		},
	}); err != nil {
		return nil, err
	}

	out := algebra.NewRawWriter()
	out.Element(&v)
	return &groupsig.JoinMessage{Phase: 3, Data: out.Bytes()}, nil
}

// JoinMem builds the escrowed join request in the first member round and
// checks the issued credential in the second.
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

		alpha, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		s0, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		s1, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}

		// f = g^alpha, u = Hash(f), w = u^alpha
		var f algebra.G1
		f.ScalarMultiplication(&s.grpKey.G, alpha)
		u, err := credentialBase(&f)
		if err != nil {
			return nil, err
		}
		mk.Alpha = alpha
		mk.U.Set(u)
		mk.W.ScalarMultiplication(u, alpha)

		// Escrow of gg^alpha under both opener keys.
		var ss0, ss1, ggalpha, ff0, ff1, aux algebra.G2
		ss0.ScalarMultiplication(&s.grpKey.GG, s0)
		ss1.ScalarMultiplication(&s.grpKey.GG, s1)
		ggalpha.ScalarMultiplication(&s.grpKey.GG, alpha)
		aux.ScalarMultiplication(&s.grpKey.ZZ0, s0)
		ff0.Add(&ggalpha, &aux)
		aux.ScalarMultiplication(&s.grpKey.ZZ1, s1)
		ff1.Add(&ggalpha, &aux)

		proof, err := spk.ProveRep(
			[]algebra.Element{&f, &mk.W, &ss0, &ss1, &ff0, &ff1},
			[]algebra.Element{&s.grpKey.G, u, &s.grpKey.GG, &s.grpKey.ZZ0, &s.grpKey.ZZ1},
			[]fr.Element{alpha, s0, s1},
			joinIdx, joinProds, n.Bytes(), s.rnd)
		if err != nil {
			return nil, err
		}
		proofBytes, err := proof.MarshalBinary()
		if err != nil {
			return nil, err
		}
		mk.state = joinPending

		w := algebra.NewRawWriter()
		w.Element(&n)
		w.Element(&f)
		w.Element(&mk.W)
		w.Element(&ss0)
		w.Element(&ss1)
		w.Element(&ff0)
		w.Element(&ff1)
		w.Raw(proofBytes)
		return &groupsig.JoinMessage{Phase: 2, Data: w.Bytes()}, nil

	case in.Phase == 3 && mk.state == joinPending:
		r := algebra.NewRawReader(in.Data)
		var v algebra.G1
		if err := r.Element("v", &v); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}

		ok, err := s.credentialValid(&v, &mk.U, &mk.W)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: issued credential does not verify", Name)
		}
		mk.V.Set(&v)
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

	r, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	var sig Signature
	sig.UU.ScalarMultiplication(&mk.U, r)
	sig.VV.ScalarMultiplication(&mk.V, r)
	sig.WW.ScalarMultiplication(&mk.W, r)

	proof, err := spk.ProveDlog(&sig.WW, &sig.UU, mk.Alpha, msg, s.rnd)
	if err != nil {
		return nil, err
	}
	sig.C = proof.C
	sig.S = proof.S
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
	if sig.UU.IsZero() {
		return false, nil
	}

	proof := spk.DlogProof{C: sig.C, S: sig.S}
	if !spk.VerifyDlog(&sig.WW, &sig.UU, &proof, msg) {
		return false, nil
	}
	return s.credentialValid(&sig.VV, &sig.UU, &sig.WW)
}

// credentialValid checks e(v, gg) = e(u, XX) * e(w, YY).
func (s *Scheme) credentialValid(v, u, w *algebra.G1) (bool, error) {
	e1, err := algebra.Pair(v, &s.grpKey.GG)
	if err != nil {
		return false, err
	}
	e2, err := algebra.Pair(u, &s.grpKey.XX)
	if err != nil {
		return false, err
	}
	e3, err := algebra.Pair(w, &s.grpKey.YY)
	if err != nil {
		return false, err
	}
	e2.AddAssign(e3)
	return e1.Equal(e2), nil
}

// credentialBase anchors the credential to f by hashing it to G1.
func credentialBase(f *algebra.G1) (*algebra.G1, error) {
	sum := sha256.Sum256(f.Bytes())
	return algebra.HashToG1(sum[:])
}

func memberID(ss0, ss1, ff0, ff1 algebra.Element, tau *algebra.GT) string {
	h := sha256.New()
	h.Write(ss0.Bytes())
	h.Write(ss1.Bytes())
	h.Write(ff0.Bytes())
	h.Write(ff1.Bytes())
	h.Write(tau.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}
