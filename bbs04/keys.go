package bbs04

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the public key of the group. The last three fields are
// pairings fixed at setup time and reused by sign and verify.
type GroupKey struct {
	G1 algebra.G1
	G2 algebra.G2
	H  algebra.G1
	U  algebra.G1 // h^(1/xi1)
	V  algebra.G1 // h^(1/xi2)
	W  algebra.G2 // g2^gamma

	HW   algebra.GT // e(h, w)
	HG2  algebra.GT // e(h, g2)
	G1G2 algebra.GT // e(g1, g2)
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string {
	return []string{"g1", "g2", "h", "u", "v", "w", "hw", "hg2", "g1g2"}
}

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDBBS04, groupsig.KindGroupKey)
	w.Element(&k.G1)
	w.Element(&k.G2)
	w.Element(&k.H)
	w.Element(&k.U)
	w.Element(&k.V)
	w.Element(&k.W)
	w.Element(&k.HW)
	w.Element(&k.HG2)
	w.Element(&k.G1G2)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDBBS04, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"g1", &tmp.G1}, {"g2", &tmp.G2}, {"h", &tmp.H}, {"u", &tmp.U},
		{"v", &tmp.V}, {"w", &tmp.W}, {"hw", &tmp.HW}, {"hg2", &tmp.HG2},
		{"g1g2", &tmp.G1G2},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
	}
	if err := r.Close(); err != nil {
		return err
	}
	*k = tmp
	return nil
}

// ManagerKey holds the tracing exponents and the member issuing exponent.
type ManagerKey struct {
	Xi1   fr.Element
	Xi2   fr.Element
	Gamma fr.Element
}

func (k *ManagerKey) Scheme() string      { return Name }
func (k *ManagerKey) Kind() groupsig.Kind { return groupsig.KindManagerKey }
func (k *ManagerKey) Fields() []string    { return []string{"xi1", "xi2", "gamma"} }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDBBS04, groupsig.KindManagerKey)
	w.Fr(k.Xi1)
	w.Fr(k.Xi2)
	w.Fr(k.Gamma)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDBBS04, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	var tmp ManagerKey
	if err := r.Fr("xi1", &tmp.Xi1); err != nil {
		return err
	}
	if err := r.Fr("xi2", &tmp.Xi2); err != nil {
		return err
	}
	if err := r.Fr("gamma", &tmp.Gamma); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*k = tmp
	return nil
}

// Join progress states carried by member keys.
const (
	joinNone byte = iota
	joinPending
	joinDone
)

// MemberKey is a member's signing key: the secret exponent x and the
// credential A = g1^(1/(gamma+x)). AG2 caches e(A, g2).
type MemberKey struct {
	X   fr.Element
	A   algebra.G1
	AG2 algebra.GT

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string    { return []string{"x", "A", "Ag2", "state"} }

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDBBS04, groupsig.KindMemberKey)
	w.Fr(k.X)
	w.Element(&k.A)
	w.Element(&k.AG2)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDBBS04, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	var tmp MemberKey
	if err := r.Fr("x", &tmp.X); err != nil {
		return err
	}
	if err := r.Element("A", &tmp.A); err != nil {
		return err
	}
	if err := r.Element("Ag2", &tmp.AG2); err != nil {
		return err
	}
	if tmp.state, err = r.Byte("state"); err != nil {
		return err
	}
	if tmp.state > joinDone {
		return &groupsig.DecodingError{Field: "state"}
	}
	if err := r.Close(); err != nil {
		return err
	}
	*k = tmp
	return nil
}
