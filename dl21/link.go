package dl21

import (
	"fmt"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/spk"
)

// ProveLink proves that every signature in sigs was produced by mk under
// scope, binding the proof to a fresh message. All signatures must verify
// against their messages and carry the member's pseudonym.
func ProveLink(msg []byte, msgs [][]byte, sigs []*Signature, gk *GroupKey, mk *MemberKey, scope string, rnd *algebra.Rand) (*spk.DlogProof, error) {
	if len(sigs) == 0 || len(sigs) != len(msgs) {
		return nil, fmt.Errorf("%s: signature and message counts must match and be non-empty", Name)
	}
	nym, err := Pseudonym(mk, scope)
	if err != nil {
		return nil, err
	}
	hscp, err := HashScope(scope)
	if err != nil {
		return nil, err
	}

	ys := make([]*algebra.G1, len(sigs))
	gs := make([]*algebra.G1, len(sigs))
	for i, sig := range sigs {
		ok, err := VerifyWithScope(msgs[i], gk, sig, scope)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s: signature %d does not verify", Name, i)
		}
		if !sig.Nym.Equal(nym) {
			return nil, fmt.Errorf("%s: signature %d was not produced with this key", Name, i)
		}
		ys[i] = &sig.Nym
		gs[i] = hscp
	}
	return spk.ProveDlogSet(ys, gs, mk.Y, linkBinding(msg, msgs), rnd)
}

// VerifyLink checks a linking proof over sigs: every signature must verify
// and all pseudonyms must share one discrete log to the scope base.
func VerifyLink(msg []byte, msgs [][]byte, sigs []*Signature, gk *GroupKey, proof *spk.DlogProof, scope string) (bool, error) {
	if len(sigs) == 0 || len(sigs) != len(msgs) {
		return false, fmt.Errorf("%s: signature and message counts must match and be non-empty", Name)
	}
	hscp, err := HashScope(scope)
	if err != nil {
		return false, err
	}

	ys := make([]*algebra.G1, len(sigs))
	gs := make([]*algebra.G1, len(sigs))
	for i, sig := range sigs {
		ok, err := VerifyWithScope(msgs[i], gk, sig, scope)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		ys[i] = &sig.Nym
		gs[i] = hscp
	}
	return spk.VerifyDlogSet(ys, gs, proof, linkBinding(msg, msgs)), nil
}

func linkBinding(msg []byte, msgs [][]byte) []byte {
	w := algebra.NewRawWriter()
	w.VarBytes(msg)
	for _, m := range msgs {
		w.VarBytes(m)
	}
	return w.Bytes()
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
	nym, err := Pseudonym(mk, cfg.Scope)
	if err != nil {
		return false, err
	}
	return sig.Nym.Equal(nym), nil
}

// Link proves that the member behind key produced all of sigs, each over
// the corresponding entry of msgs, binding the proof to msg.
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
	proof, err := ProveLink(msg, msgs, sigs, &s.grpKey, mk, cfg.Scope, s.rnd)
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
	return VerifyLink(msg, msgs, sigs, &s.grpKey, &p, cfg.Scope)
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
