package ps16

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the public key of the group.
type GroupKey struct {
	G  algebra.G1
	GG algebra.G2
	X  algebra.G2 // gg^x
	Y  algebra.G2 // gg^y
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string    { return []string{"g", "gg", "X", "Y"} }

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDPS16, groupsig.KindGroupKey)
	w.Element(&k.G)
	w.Element(&k.GG)
	w.Element(&k.X)
	w.Element(&k.Y)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDPS16, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"g", &tmp.G}, {"gg", &tmp.GG}, {"X", &tmp.X}, {"Y", &tmp.Y},
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

// ManagerKey holds the issuing exponents behind X and Y.
type ManagerKey struct {
	X fr.Element
	Y fr.Element
}

func (k *ManagerKey) Scheme() string      { return Name }
func (k *ManagerKey) Kind() groupsig.Kind { return groupsig.KindManagerKey }
func (k *ManagerKey) Fields() []string    { return []string{"x", "y"} }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDPS16, groupsig.KindManagerKey)
	w.Fr(k.X)
	w.Fr(k.Y)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDPS16, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	var tmp ManagerKey
	if err := r.Fr("x", &tmp.X); err != nil {
		return err
	}
	if err := r.Fr("y", &tmp.Y); err != nil {
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

// MemberKey is a member's signing key: the self-chosen secret exponent and
// the credential pair issued by the manager.
type MemberKey struct {
	SK     fr.Element
	Sigma1 algebra.G1
	Sigma2 algebra.G1

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string    { return []string{"sk", "sigma1", "sigma2", "state"} }

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDPS16, groupsig.KindMemberKey)
	w.Fr(k.SK)
	w.Element(&k.Sigma1)
	w.Element(&k.Sigma2)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDPS16, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	var tmp MemberKey
	if err := r.Fr("sk", &tmp.SK); err != nil {
		return err
	}
	if err := r.Element("sigma1", &tmp.Sigma1); err != nil {
		return err
	}
	if err := r.Element("sigma2", &tmp.Sigma2); err != nil {
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
