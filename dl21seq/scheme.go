// Package dl21seq implements the sequence-linkable variant of the dl21
// scheme. Members sign under an increasing state counter; each signature
// commits to PRF-derived chain values so that SeqLink can later prove a
// batch of signatures was produced in order, with reordering or omissions
// detectable by the verifier.
package dl21seq

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/dl21"
	"github.com/gsig/groupsig/spk"
)

const Name = "dl21seq"

func init() {
	groupsig.Register(Name, groupsig.Registration{
		ID: groupsig.IDDL21SEQ,
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

func prf(key [32]byte, msg []byte) [32]byte {
	mac := hmac.New(sha256.New, key[:])
	mac.Write(msg)
	var out [32]byte
	mac.Sum(out[:0])
	return out
}

func prfState(key [32]byte, state int64) [32]byte {
	return prf(key, []byte(strconv.FormatInt(state, 10)))
}

// chainValue is the token revealed by SeqLink for one signature.
func chainValue(mk *MemberKey, seq3 [32]byte) [32]byte {
	return prf(mk.KK, seq3[:])
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
func (s *Scheme) ID() groupsig.SchemeID          { return groupsig.IDDL21SEQ }
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
	if err := dl21.GenerateKeys(&s.grpKey.GroupKey, &s.mgrKey.ManagerKey, s.rnd); err != nil {
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
	return dl21.ManagerJoin(in, &s.grpKey.GroupKey, &s.mgrKey.ManagerKey, s.rnd)
}

// JoinMem runs the base join; once it completes, the member draws the two
// PRF keys that seed its signing sequence.
func (s *Scheme) JoinMem(in *groupsig.JoinMessage, key groupsig.Container) (*groupsig.JoinMessage, error) {
	mk, ok := key.(*MemberKey)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !s.hasGroup {
		return nil, fmt.Errorf("%s: group key not set", Name)
	}
	out, err := dl21.MemberJoin(in, &s.grpKey.GroupKey, &mk.MemberKey, s.rnd)
	if err != nil {
		return nil, err
	}
	if out == nil {
		if mk.K, err = s.rnd.GetBytes32(); err != nil {
			return nil, err
		}
		if mk.KK, err = s.rnd.GetBytes32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Sign produces a base signature for the configured scope and tags it with
// the sequence commitments for the configured state. Callers must use each
// state once, counting up from zero.
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

	base, err := dl21.SignWithScope(msg, &s.grpKey.GroupKey, &mk.MemberKey, cfg.Scope, s.rnd)
	if err != nil {
		return nil, err
	}

	sig := &Signature{Signature: *base}
	sig.Seq3 = prfState(mk.K, cfg.State)
	x := chainValue(mk, sig.Seq3)
	sig.Seq1 = sha256.Sum256(x[:])

	// Chain to the previous state's token so consecutive signatures can be
	// ordered once both tokens are revealed.
	prev := chainValue(mk, prfState(mk.K, cfg.State-1))
	var xored [32]byte
	for i := range xored {
		xored[i] = x[i] ^ prev[i]
	}
	sig.Seq2 = sha256.Sum256(xored[:])
	return sig, nil
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
	return dl21.VerifyWithScope(msg, &s.grpKey.GroupKey, &sig.Signature, cfg.Scope)
}

// Identify reports whether sig carries the pseudonym of key under the
// given scope.
func (s *Scheme) Identify(c groupsig.Container, key groupsig.Container, opts ...groupsig.SignOption) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	mk, ok := key.(*MemberKey)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: key.Scheme()}
	}
	if !mk.Complete() {
		return false, &groupsig.IncompleteKeyError{Scheme: Name}
	}
	cfg := groupsig.ApplySignOptions(opts)
	nym, err := dl21.Pseudonym(&mk.MemberKey, cfg.Scope)
	if err != nil {
		return false, err
	}
	return sig.Nym.Equal(nym), nil
}

// Link proves the batch shares a signer without revealing its order.
func (s *Scheme) Link(msg []byte, msgs [][]byte, cs []groupsig.Container, key groupsig.Container, opts ...groupsig.SignOption) ([]byte, error) {
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
	sigs, err := toSignatures(cs)
	if err != nil {
		return nil, err
	}
	cfg := groupsig.ApplySignOptions(opts)
	proof, err := dl21.ProveLink(msg, msgs, baseSignatures(sigs), &s.grpKey.GroupKey, &mk.MemberKey, cfg.Scope, s.rnd)
	if err != nil {
		return nil, err
	}
	return proof.MarshalBinary()
}

// LinkVerify checks a proof produced by Link.
func (s *Scheme) LinkVerify(msg []byte, msgs [][]byte, cs []groupsig.Container, proof []byte, opts ...groupsig.SignOption) (bool, error) {
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}
	sigs, err := toSignatures(cs)
	if err != nil {
		return false, err
	}
	var p spk.DlogProof
	if err := p.UnmarshalBinary(proof); err != nil {
		return false, err
	}
	cfg := groupsig.ApplySignOptions(opts)
	return dl21.VerifyLink(msg, msgs, baseSignatures(sigs), &s.grpKey.GroupKey, &p, cfg.Scope)
}

func toSignatures(cs []groupsig.Container) ([]*Signature, error) {
	sigs := make([]*Signature, len(cs))
	for i, c := range cs {
		sig, ok := c.(*Signature)
		if !ok {
			return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
		}
		sigs[i] = sig
	}
	return sigs, nil
}

func baseSignatures(sigs []*Signature) []*dl21.Signature {
	out := make([]*dl21.Signature, len(sigs))
	for i, sig := range sigs {
		out[i] = &sig.Signature
	}
	return out
}
