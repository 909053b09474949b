// Package dl21 implements a BBS+-based group-signature scheme with
// scope-bound pseudonyms. Every signature carries nym = H(scope)^y, so
// signatures by one member within a scope share a pseudonym the member can
// recognize and link, while signatures across scopes stay unlinkable. There
// is no opening authority.
//
// The join protocol, signing and linking are exposed as package functions
// over explicit keys so the sequence-linkable variant can reuse them.
package dl21

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/spk"
)

const Name = "dl21"

// scopeCacheSize bounds the scope-to-generator cache. Deployments typically
// use a handful of scopes.
const scopeCacheSize = 64

var scopeCache *lru.Cache[string, *algebra.G1]

func init() {
	scopeCache, _ = lru.New[string, *algebra.G1](scopeCacheSize)

	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDDL21,
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

// Presentation proof over
// ys = [nym, A_-d, g1]
// gs = [hscp, AA, h2, d, h1]
// xs = [-x, y, r2, r3, ss, -y].
var (
	signIdx = []spk.Index{
		{Secret: 1, Base: 0},
		{Secret: 0, Base: 1}, {Secret: 2, Base: 2},
		{Secret: 3, Base: 3}, {Secret: 4, Base: 2}, {Secret: 5, Base: 4},
	}
	signProds = []int{1, 2, 3}
)

// HashScope maps a scope string to its pseudonym base in G1. Results are
// cached: the mapping is hit once per signature and scopes repeat heavily.
func HashScope(scope string) (*algebra.G1, error) {
	if p, ok := scopeCache.Get(scope); ok {
		var out algebra.G1
		out.Set(p)
		return &out, nil
	}
	sum := sha256.Sum256([]byte(scope))
	p, err := algebra.HashToG1(sum[:])
	if err != nil {
		return nil, err
	}
	scopeCache.Add(scope, p)
	var out algebra.G1
	out.Set(p)
	return &out, nil
}

// Pseudonym computes the member's pseudonym H(scope)^y for a scope.
func Pseudonym(mk *MemberKey, scope string) (*algebra.G1, error) {
	hscp, err := HashScope(scope)
	if err != nil {
		return nil, err
	}
	var nym algebra.G1
	nym.ScalarMultiplication(hscp, mk.Y)
	return &nym, nil
}

// GenerateKeys fills in a fresh issuer keypair.
func GenerateKeys(gk *GroupKey, mk *ManagerKey, rnd *algebra.Rand) error {
	var err error
	if mk.ISK, err = rnd.GetNonZeroFr(); err != nil {
		return err
	}
	for _, g := range []*algebra.G1{&gk.G1, &gk.H1, &gk.H2} {
		p, err := rnd.GetNonZeroG1()
		if err != nil {
			return err
		}
		g.Set(p)
	}
	g2, err := rnd.GetNonZeroG2()
	if err != nil {
		return err
	}
	gk.G2.Set(g2)
	gk.IPK.ScalarMultiplication(&gk.G2, mk.ISK)
	return nil
}

// ManagerJoin runs the issuer rounds of the join protocol: a nonce first,
// then a credential on the member's proven key.
func ManagerJoin(in *groupsig.JoinMessage, gk *GroupKey, mk *ManagerKey, rnd *algebra.Rand) (*groupsig.JoinMessage, error) {
	if in == nil {
		n, err := rnd.GetG1()
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
	var n, h algebra.G1
	if err := r.Element("n", &n); err != nil {
		return nil, err
	}
	if err := r.Element("H", &h); err != nil {
		return nil, err
	}
	var proof spk.DlogProof
	if err := proof.UnmarshalBinary(r.Rest()); err != nil {
		return nil, err
	}
	if !spk.VerifyDlog(&h, &gk.H1, &proof, n.Bytes()) {
		return nil, fmt.Errorf("%s: invalid key ownership proof", Name)
	}

	x, err := rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	sk, err := rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}

	// A = (H * h2^s * g1)^(1/(isk+x))
	var a algebra.G1
	a.ScalarMultiplication(&gk.H2, sk)
	a.AddAssign(&h)
	a.AddAssign(&gk.G1)
	var inv fr.Element
	inv.Add(&mk.ISK, &x)
	inv.Inverse(&inv)
	a.ScalarMultiplication(&a, inv)

	w := algebra.NewRawWriter()
	w.Element(&a)
	w.Fr(x)
	w.Fr(sk)
	return &groupsig.JoinMessage{Phase: 3, Data: w.Bytes()}, nil
}

// MemberJoin runs the member rounds: proving ownership of h1^y, then
// validating the issued credential. A nil return with nil error means the
// join finished.
func MemberJoin(in *groupsig.JoinMessage, gk *GroupKey, mk *MemberKey, rnd *algebra.Rand) (*groupsig.JoinMessage, error) {
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

		y, err := rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		mk.Y = y
		mk.H.ScalarMultiplication(&gk.H1, y)

		proof, err := spk.ProveDlog(&mk.H, &gk.H1, y, n.Bytes(), rnd)
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
		w.Element(&mk.H)
		w.Raw(proofBytes)
		return &groupsig.JoinMessage{Phase: 2, Data: w.Bytes()}, nil

	case in.Phase == 3 && mk.state == joinPending:
		r := algebra.NewRawReader(in.Data)
		var a algebra.G1
		var x, sk fr.Element
		if err := r.Element("A", &a); err != nil {
			return nil, err
		}
		if err := r.Fr("x", &x); err != nil {
			return nil, err
		}
		if err := r.Fr("s", &sk); err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
		if a.IsZero() {
			return nil, fmt.Errorf("%s: issued credential is the identity", Name)
		}

		var h2s algebra.G1
		h2s.ScalarMultiplication(&gk.H2, sk)

		// e(A, g2)^x * e(A, ipk) must equal e(H * h2^s * g1, g2)
		eag2, err := algebra.Pair(&a, &gk.G2)
		if err != nil {
			return nil, err
		}
		var lhs algebra.GT
		lhs.ScalarMultiplication(eag2, x)
		eaipk, err := algebra.Pair(&a, &gk.IPK)
		if err != nil {
			return nil, err
		}
		lhs.AddAssign(eaipk)

		var aux algebra.G1
		aux.Add(&mk.H, &h2s)
		aux.AddAssign(&gk.G1)
		rhs, err := algebra.Pair(&aux, &gk.G2)
		if err != nil {
			return nil, err
		}
		if !lhs.Equal(rhs) {
			return nil, fmt.Errorf("%s: issued credential does not verify", Name)
		}

		mk.A.Set(&a)
		mk.X = x
		mk.S = sk
		mk.H2S.Set(&h2s)
		mk.state = joinDone
		return nil, nil

	default:
		return nil, &groupsig.ProtocolStateError{Scheme: Name, Phase: in.Phase}
	}
}

// SignWithScope produces a signature whose pseudonym is bound to scope.
func SignWithScope(msg []byte, gk *GroupKey, mk *MemberKey, scope string, rnd *algebra.Rand) (*Signature, error) {
	hscp, err := HashScope(scope)
	if err != nil {
		return nil, err
	}

	r2, err := rnd.GetFr()
	if err != nil {
		return nil, err
	}
	// r1 is inverted below, so it must not be zero.
	r1, err := rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}

	var sig Signature
	sig.Nym.ScalarMultiplication(hscp, mk.Y)

	// Randomized credential presentation.
	sig.AA.ScalarMultiplication(&mk.A, r1)

	// base = (g1 + h1^y + h2^s)^r1
	var base algebra.G1
	base.Add(&gk.G1, &mk.H)
	base.AddAssign(&mk.H2S)
	base.ScalarMultiplication(&base, r1)

	var negX fr.Element
	negX.Neg(&mk.X)
	sig.APrime.ScalarMultiplication(&sig.AA, negX)
	sig.APrime.AddAssign(&base)

	var negR2 fr.Element
	negR2.Neg(&r2)
	var aux algebra.G1
	aux.ScalarMultiplication(&gk.H2, negR2)
	sig.D.Add(&base, &aux)

	// r3 = 1/r1, ss = -(s - r2*r3)
	var r3, ss fr.Element
	r3.Inverse(&r1)
	ss.Mul(&r2, &r3)
	ss.Sub(&mk.S, &ss)
	ss.Neg(&ss)

	var negY fr.Element
	negY.Neg(&mk.Y)

	var ad algebra.G1
	ad.Sub(&sig.APrime, &sig.D)

	proof, err := spk.ProveRep(
		[]algebra.Element{&sig.Nym, &ad, &gk.G1},
		[]algebra.Element{hscp, &sig.AA, &gk.H2, &sig.D, &gk.H1},
		[]fr.Element{negX, mk.Y, r2, r3, ss, negY},
		signIdx, signProds, msg, rnd)
	if err != nil {
		return nil, err
	}
	sig.C = proof.C
	sig.S = proof.S
	return &sig, nil
}

// VerifyWithScope checks a signature against msg under scope.
func VerifyWithScope(msg []byte, gk *GroupKey, sig *Signature, scope string) (bool, error) {
	if sig.AA.IsZero() {
		return false, nil
	}

	// e(AA, ipk) must equal e(A_, g2).
	lhs, err := algebra.Pair(&sig.AA, &gk.IPK)
	if err != nil {
		return false, err
	}
	rhs, err := algebra.Pair(&sig.APrime, &gk.G2)
	if err != nil {
		return false, err
	}
	if !lhs.Equal(rhs) {
		return false, nil
	}

	hscp, err := HashScope(scope)
	if err != nil {
		return false, err
	}
	var ad algebra.G1
	ad.Sub(&sig.APrime, &sig.D)

	proof := spk.RepProof{C: sig.C, S: sig.S}
	return spk.VerifyRep(
		[]algebra.Element{&sig.Nym, &ad, &gk.G1},
		[]algebra.Element{hscp, &sig.AA, &gk.H2, &sig.D, &gk.H1},
		signIdx, signProds, &proof, msg)
}

type Scheme struct {
	grpKey GroupKey
	mgrKey ManagerKey
	rnd    *algebra.Rand

	hasGroup bool
	hasMgr   bool
}

func New() (*Scheme, error) {
	rnd, err := algebra.NewRand()
	if err != nil {
		return nil, fmt.Errorf("init randomness: %w", err)
	}
	return &Scheme{rnd: rnd}, nil
}

func (s *Scheme) Name() string                   { return Name }
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDDL21 }
func (s *Scheme) JoinSeq() int                   { return 3 }
func (s *Scheme) JoinStart() int                 { return 0 }
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
	if err := GenerateKeys(&s.grpKey, &s.mgrKey, s.rnd); err != nil {
		return err
	}
	s.hasGroup = true
	s.hasMgr = true
	return nil
}

func (s *Scheme) JoinMgr(in *groupsig.JoinMessage) (*groupsig.JoinMessage, error) {
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}
	return ManagerJoin(in, &s.grpKey, &s.mgrKey, s.rnd)
}

func (s *Scheme) JoinMem(in *groupsig.JoinMessage, key groupsig.Container) (*groupsig.JoinMessage, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	return MemberJoin(in, &s.grpKey, mk, s.rnd)
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
	cfg := groupsig.ApplySignOptions(opts)
	return SignWithScope(msg, &s.grpKey, mk, cfg.Scope, s.rnd)
}

func (s *Scheme) Verify(msg []byte, c groupsig.Container, opts ...groupsig.SignOption) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}
	cfg := groupsig.ApplySignOptions(opts)
	return VerifyWithScope(msg, &s.grpKey, sig, cfg.Scope)
}
