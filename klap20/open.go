package klap20

import (
	"fmt"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/spk"
)

// Open recovers gg^alpha from each member's escrow with the opener key z0
// and tests it against the signature. The returned proof shows that one
// witness satisfies both e(uu, .) = e(ww, gg) and e(g, .) = tau for the
// tau recorded at join time.
func (s *Scheme) Open(c groupsig.Container) (*groupsig.OpenResult, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return nil, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasMgr {
		return nil, fmt.Errorf("%s: manager key not set", Name)
	}

	target, err := algebra.Pair(&sig.WW, &s.grpKey.GG)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.gml.Entries() {
		if len(entry.Attrs) != 5 {
			return nil, fmt.Errorf("%s: malformed membership entry %s", Name, entry.ID)
		}
		var ss0, ff0 algebra.G2
		if err := ss0.SetBytes(entry.Attrs[0]); err != nil {
			return nil, err
		}
		if err := ff0.SetBytes(entry.Attrs[2]); err != nil {
			return nil, err
		}
		var tau algebra.GT
		if err := tau.SetBytes(entry.Attrs[4]); err != nil {
			return nil, err
		}

		// gg^alpha = ff0 / SS0^z0
		var ggalpha, aux algebra.G2
		aux.ScalarMultiplication(&ss0, s.mgrKey.Z0)
		ggalpha.Sub(&ff0, &aux)

		e1, err := algebra.Pair(&sig.UU, &ggalpha)
		if err != nil {
			return nil, err
		}
		if !e1.Equal(target) {
			continue
		}

		binding, err := sig.MarshalBinary()
		if err != nil {
			return nil, err
		}
		proof, err := spk.ProvePairingTau(&ggalpha, &sig.UU, &s.grpKey.G, e1, &tau, binding, s.rnd)
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

// OpenVerify checks the opening proof against e(ww, gg), which equals
// e(uu, gg^alpha) exactly when the revealed witness matches the signer.
func (s *Scheme) OpenVerify(c groupsig.Container, res *groupsig.OpenResult) (bool, error) {
	sig, ok := c.(*Signature)
	if !ok {
		return false, &groupsig.SchemeMismatchError{Want: Name, Got: c.Scheme()}
	}
	if !s.hasGroup {
		return false, fmt.Errorf("%s: group key not set", Name)
	}

	var proof spk.PairingTauProof
	if err := proof.UnmarshalBinary(res.Proof); err != nil {
		return false, err
	}
	e1, err := algebra.Pair(&sig.WW, &s.grpKey.GG)
	if err != nil {
		return false, err
	}
	binding, err := sig.MarshalBinary()
	if err != nil {
		return false, err
	}
	return spk.VerifyPairingTau(&proof, &sig.UU, &s.grpKey.G, e1, binding)
}
