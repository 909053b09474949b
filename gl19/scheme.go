// Package gl19 implements the Garms-Lehmann group-signature scheme with
// controlled linkability. Signatures carry a converter-encrypted pseudonym;
// batches of blinded signatures can be converted so that one recipient
// learns which of them share a signer, without identifying the signer.
// Member credentials expire, and verification rejects signatures whose
// credential lifetime has passed.
package gl19

import (
	"fmt"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/spk"
)

const Name = "gl19"

// DefaultLifetime is how long issued member credentials stay valid.
const DefaultLifetime = 14 * 24 * time.Hour

// Presentation proof over
// ys = [nym1, nym2, A_-d, g1*h3^d, ehy1, ehy2]
// gs = [g, cpk, h, AA, h2, d, h1, epk]
// xs = [-x, y, r2, r3, -ss, alpha, -y, alpha2].
var (
	signIdx = []spk.Index{
		{Secret: 5, Base: 0},
		{Secret: 5, Base: 1}, {Secret: 1, Base: 2},
		{Secret: 0, Base: 3}, {Secret: 2, Base: 4},
		{Secret: 3, Base: 5}, {Secret: 4, Base: 4}, {Secret: 6, Base: 6},
		{Secret: 7, Base: 0},
		{Secret: 7, Base: 7}, {Secret: 1, Base: 2},
	}
	signProds = []int{1, 2, 2, 3, 1, 2}
)

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDGL19,
		New: func() (groupsig.Scheme, error) {
			return New()
		},
		Containers: map[groupsig.Kind]func() groupsig.Container{
			groupsig.KindGroupKey:       func() groupsig.Container { return &GroupKey{} },
			groupsig.KindManagerKey:     func() groupsig.Container { return &ManagerKey{} },
			groupsig.KindMemberKey:      func() groupsig.Container { return &MemberKey{} },
			groupsig.KindBlindKey:       func() groupsig.Container { return &BlindKey{} },
			groupsig.KindSignature:      func() groupsig.Container { return &Signature{} },
			groupsig.KindBlindSignature: func() groupsig.Container { return &BlindSignature{} },
		},
	})
}

type Scheme struct {
	grpKey GroupKey
	mgrKey ManagerKey
	rnd    *algebra.Rand

	// Lifetime of issued credentials. now is stubbed in tests.
	Lifetime time.Duration
	now      func() time.Time

	hasGroup bool
	hasMgr   bool
}

func New() (*Scheme, error) {
	rnd, err := algebra.NewRand()
	if err != nil {
		return nil, fmt.Errorf("init randomness: %w", err)
	}
	return &Scheme{rnd: rnd, Lifetime: DefaultLifetime, now: time.Now}, nil
}

func (s *Scheme) Name() string                   { return Name }
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDGL19 }
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
	var err error
	if s.mgrKey.ISK, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.CSK, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}
	if s.mgrKey.ESK, err = s.rnd.GetNonZeroFr(); err != nil {
		return err
	}

	for _, g := range []*algebra.G1{
		&s.grpKey.G1, &s.grpKey.G, &s.grpKey.H, &s.grpKey.H1,
		&s.grpKey.H2, &s.grpKey.H3,
	} {
		p, err := s.rnd.GetNonZeroG1()
		if err != nil {
			return err
		}
		g.Set(p)
	}
	g2, err := s.rnd.GetNonZeroG2()
	if err != nil {
		return err
	}
	s.grpKey.G2.Set(g2)

	s.grpKey.IPK.ScalarMultiplication(&s.grpKey.G2, s.mgrKey.ISK)
	s.grpKey.CPK.ScalarMultiplication(&s.grpKey.G, s.mgrKey.CSK)
	s.grpKey.EPK.ScalarMultiplication(&s.grpKey.G, s.mgrKey.ESK)

	s.hasGroup = true
	s.hasMgr = true
	return nil
}

// JoinMgr sends a nonce in the first round; in the second it checks the
// member's key ownership proof and issues a credential expiring after
// Lifetime.
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
	if !spk.VerifyDlog(&h, &s.grpKey.H1, &proof, n.Bytes()) {
		return nil, fmt.Errorf("%s: invalid key ownership proof", Name)
	}

	x, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	sk, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}
	life := s.now().Add(s.Lifetime).Unix()
	d := expirationScalar(life)

	// A = (H * h2^s * h3^d * g1)^(1/(isk+x))
	var a, aux algebra.G1
	a.ScalarMultiplication(&s.grpKey.H2, sk)
	a.AddAssign(&h)
	aux.ScalarMultiplication(&s.grpKey.H3, d)
	a.AddAssign(&aux)
	a.AddAssign(&s.grpKey.G1)
	var inv fr.Element
	inv.Add(&s.mgrKey.ISK, &x)
	inv.Inverse(&inv)
	a.ScalarMultiplication(&a, inv)

	w := algebra.NewRawWriter()
	w.Element(&a)
	w.Fr(x)
	w.Fr(sk)
	w.Int64(life)
	return &groupsig.JoinMessage{Phase: 3, Data: w.Bytes()}, nil
}

// JoinMem proves ownership of the member public key in the first round and
// validates the issued credential in the second.
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

		y, err := s.rnd.GetNonZeroFr()
		if err != nil {
			return nil, err
		}
		mk.Y = y
		mk.H.ScalarMultiplication(&s.grpKey.H1, y)

		proof, err := spk.ProveDlog(&mk.H, &s.grpKey.H1, y, n.Bytes(), s.rnd)
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
		life, err := r.Int64("l")
		if err != nil {
			return nil, err
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
		if a.IsZero() {
			return nil, fmt.Errorf("%s: issued credential is the identity", Name)
		}

		d := expirationScalar(life)
		var h2s, h3d algebra.G1
		h2s.ScalarMultiplication(&s.grpKey.H2, sk)
		h3d.ScalarMultiplication(&s.grpKey.H3, d)

		// e(A, g2)^x * e(A, ipk) must equal e(H * h2^s * h3^d * g1, g2)
		eag2, err := algebra.Pair(&a, &s.grpKey.G2)
		if err != nil {
			return nil, err
		}
		var lhs algebra.GT
		lhs.ScalarMultiplication(eag2, x)
		eaipk, err := algebra.Pair(&a, &s.grpKey.IPK)
		if err != nil {
			return nil, err
		}
		lhs.AddAssign(eaipk)

		var aux algebra.G1
		aux.Add(&mk.H, &h2s)
		aux.AddAssign(&h3d)
		aux.AddAssign(&s.grpKey.G1)
		rhs, err := algebra.Pair(&aux, &s.grpKey.G2)
		if err != nil {
			return nil, err
		}
		if !lhs.Equal(rhs) {
			return nil, fmt.Errorf("%s: issued credential does not verify", Name)
		}

		mk.A.Set(&a)
		mk.X = x
		mk.S = sk
		mk.L = life
		mk.D = d
		mk.H2S.Set(&h2s)
		mk.H3D.Set(&h3d)
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

	rs, err := s.rnd.GetFrs(3)
	if err != nil {
		return nil, err
	}
	alpha, r2, alpha2 := rs[0], rs[1], rs[2]
	// r1 is inverted below, so it must not be zero.
	r1, err := s.rnd.GetNonZeroFr()
	if err != nil {
		return nil, err
	}

	var sig Signature
	sig.Expiration = mk.L

	// Pseudonym encrypted to the converter: (g^alpha, cpk^alpha * h^y).
	sig.Nym1.ScalarMultiplication(&s.grpKey.G, alpha)
	var hy, aux algebra.G1
	hy.ScalarMultiplication(&s.grpKey.H, mk.Y)
	sig.Nym2.ScalarMultiplication(&s.grpKey.CPK, alpha)
	sig.Nym2.AddAssign(&hy)

	// Same pseudonym encrypted to the extractor.
	sig.EHy1.ScalarMultiplication(&s.grpKey.G, alpha2)
	sig.EHy2.ScalarMultiplication(&s.grpKey.EPK, alpha2)
	sig.EHy2.AddAssign(&hy)

	// Randomized credential presentation.
	sig.AA.ScalarMultiplication(&mk.A, r1)

	// aux = (g1 + h1^y + h2^s + h3^d)^r1
	var base algebra.G1
	base.Add(&s.grpKey.G1, &mk.H)
	base.AddAssign(&mk.H2S)
	base.AddAssign(&mk.H3D)
	base.ScalarMultiplication(&base, r1)

	var negX fr.Element
	negX.Neg(&mk.X)
	sig.APrime.ScalarMultiplication(&sig.AA, negX)
	sig.APrime.AddAssign(&base)

	var negR2 fr.Element
	negR2.Neg(&r2)
	aux.ScalarMultiplication(&s.grpKey.H2, negR2)
	sig.D.Add(&base, &aux)

	// r3 = 1/r1, ss = -(s - r2*r3)
	var r3, ss fr.Element
	r3.Inverse(&r1)
	ss.Mul(&r2, &r3)
	ss.Sub(&mk.S, &ss)
	ss.Neg(&ss)

	var negY fr.Element
	negY.Neg(&mk.Y)

	var ad, g1h3d algebra.G1
	ad.Sub(&sig.APrime, &sig.D)
	g1h3d.Add(&s.grpKey.G1, &mk.H3D)

	proof, err := spk.ProveRep(
		[]algebra.Element{&sig.Nym1, &sig.Nym2, &ad, &g1h3d, &sig.EHy1, &sig.EHy2},
		[]algebra.Element{&s.grpKey.G, &s.grpKey.CPK, &s.grpKey.H, &sig.AA, &s.grpKey.H2, &sig.D, &s.grpKey.H1, &s.grpKey.EPK},
		[]fr.Element{negX, mk.Y, r2, r3, ss, alpha, negY, alpha2},
		signIdx, signProds, signBinding(sig.Expiration, msg), s.rnd)
	if err != nil {
		return nil, err
	}
	sig.C = proof.C
	sig.S = proof.S
	return &sig, nil
}

// Verify checks the presentation proof and rejects signatures whose
// credential has expired.
func (s *Scheme) Verify(msg []byte, c groupsig.Container, opts ...groupsig.SignOption) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}
	if sig.Expiration < s.now().Unix() {
		return false, nil
	}

	var ad, g1h3d algebra.G1
	ad.Sub(&sig.APrime, &sig.D)
	d := expirationScalar(sig.Expiration)
	g1h3d.ScalarMultiplication(&s.grpKey.H3, d)
	g1h3d.AddAssign(&s.grpKey.G1)

	proof := spk.RepProof{C: sig.C, S: sig.S}
	return spk.VerifyRep(
		[]algebra.Element{&sig.Nym1, &sig.Nym2, &ad, &g1h3d, &sig.EHy1, &sig.EHy2},
		[]algebra.Element{&s.grpKey.G, &s.grpKey.CPK, &s.grpKey.H, &sig.AA, &s.grpKey.H2, &sig.D, &s.grpKey.H1, &s.grpKey.EPK},
		signIdx, signProds, &proof, signBinding(sig.Expiration, msg))
}

// expirationScalar maps a Unix timestamp to the scalar signed into the
// credential, hashing its decimal form.
func expirationScalar(life int64) fr.Element {
	return algebra.HashToFr([]byte(strconv.FormatInt(life, 10)))
}

func signBinding(expiration int64, msg []byte) []byte {
	out := []byte(strconv.FormatInt(expiration, 10))
	out = append(out, '|')
	return append(out, msg...)
}
