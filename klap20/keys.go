package klap20

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the public key of the group: the issuer's XX/YY and the
// opener's ZZ0/ZZ1 over shared generators.
type GroupKey struct {
	G   algebra.G1
	GG  algebra.G2
	XX  algebra.G2 // gg^x
	YY  algebra.G2 // gg^y
	ZZ0 algebra.G2 // gg^z0
	ZZ1 algebra.G2 // gg^z1
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string {
	return []string{"g", "gg", "XX", "YY", "ZZ0", "ZZ1"}
}

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDKLAP20, groupsig.KindGroupKey)
	w.Element(&k.G)
	w.Element(&k.GG)
	w.Element(&k.XX)
	w.Element(&k.YY)
	w.Element(&k.ZZ0)
	w.Element(&k.ZZ1)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDKLAP20, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"g", &tmp.G}, {"gg", &tmp.GG}, {"XX", &tmp.XX}, {"YY", &tmp.YY},
		{"ZZ0", &tmp.ZZ0}, {"ZZ1", &tmp.ZZ1},
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

// ManagerKey bundles the issuer exponents (x, y) and the opener exponents
// (z0, z1).
type ManagerKey struct {
	X  fr.Element
	Y  fr.Element
	Z0 fr.Element
	Z1 fr.Element
}

func (k *ManagerKey) Scheme() string      { return Name }
func (k *ManagerKey) Kind() groupsig.Kind { return groupsig.KindManagerKey }
func (k *ManagerKey) Fields() []string    { return []string{"x", "y", "z0", "z1"} }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDKLAP20, groupsig.KindManagerKey)
	w.Fr(k.X)
	w.Fr(k.Y)
	w.Fr(k.Z0)
	w.Fr(k.Z1)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDKLAP20, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	var tmp ManagerKey
	for _, f := range []struct {
		name string
		e    *fr.Element
	}{
		{"x", &tmp.X}, {"y", &tmp.Y}, {"z0", &tmp.Z0}, {"z1", &tmp.Z1},
	} {
		if err := r.Fr(f.name, f.e); err != nil {
			return err
		}
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

// MemberKey is a member's signing key: the secret exponent alpha and the
// credential triple (u, v, w) with u = Hash(g^alpha), w = u^alpha and
// v = u^x * w^y issued by the manager.
type MemberKey struct {
	Alpha fr.Element
	U     algebra.G1
	V     algebra.G1
	W     algebra.G1

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string    { return []string{"alpha", "u", "v", "w", "state"} }

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDKLAP20, groupsig.KindMemberKey)
	w.Fr(k.Alpha)
	w.Element(&k.U)
	w.Element(&k.V)
	w.Element(&k.W)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDKLAP20, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	var tmp MemberKey
	if err := r.Fr("alpha", &tmp.Alpha); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"u", &tmp.U}, {"v", &tmp.V}, {"w", &tmp.W},
	} {
		if err := r.Element(f.name, f.e); err != nil {
			return err
		}
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
