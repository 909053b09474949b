package cpy06

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the public key of the group. E1 through E5 are pairings fixed
// at setup time and reused by sign and verify.
type GroupKey struct {
	Q algebra.G1
	R algebra.G2 // g2^gamma
	W algebra.G2
	X algebra.G1 // z^(1/xi1)
	Y algebra.G1 // z^(1/xi2)
	Z algebra.G1

	E1 algebra.GT // e(g1, w)
	E2 algebra.GT // e(z, g2)
	E3 algebra.GT // e(z, r)
	E4 algebra.GT // e(g1, g2)
	E5 algebra.GT // e(q, g2)
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string {
	return []string{"q", "r", "w", "x", "y", "z", "e1", "e2", "e3", "e4", "e5"}
}

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDCPY06, groupsig.KindGroupKey)
	w.Element(&k.Q)
	w.Element(&k.R)
	w.Element(&k.W)
	w.Element(&k.X)
	w.Element(&k.Y)
	w.Element(&k.Z)
	w.Element(&k.E1)
	w.Element(&k.E2)
	w.Element(&k.E3)
	w.Element(&k.E4)
	w.Element(&k.E5)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDCPY06, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"q", &tmp.Q}, {"r", &tmp.R}, {"w", &tmp.W}, {"x", &tmp.X},
		{"y", &tmp.Y}, {"z", &tmp.Z}, {"e1", &tmp.E1}, {"e2", &tmp.E2},
		{"e3", &tmp.E3}, {"e4", &tmp.E4}, {"e5", &tmp.E5},
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
	w := algebra.NewWriter(groupsig.IDCPY06, groupsig.KindManagerKey)
	w.Fr(k.Xi1)
	w.Fr(k.Xi2)
	w.Fr(k.Gamma)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDCPY06, groupsig.KindManagerKey)
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

const (
	joinNone byte = iota
	joinPending
	joinDone
)

// MemberKey is a member's signing key: the jointly chosen secret x, the
// manager-chosen t and the credential A = (g1^x * q)^(1/(gamma+t)).
type MemberKey struct {
	X fr.Element
	T fr.Element
	A algebra.G1

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string    { return []string{"x", "t", "A", "state"} }

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDCPY06, groupsig.KindMemberKey)
	w.Fr(k.X)
	w.Fr(k.T)
	w.Element(&k.A)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDCPY06, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	var tmp MemberKey
	if err := r.Fr("x", &tmp.X); err != nil {
		return err
	}
	if err := r.Fr("t", &tmp.T); err != nil {
		return err
	}
	if err := r.Element("A", &tmp.A); err != nil {
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
