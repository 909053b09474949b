package dl21

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the issuer public key over random generators g1, h1, h2.
type GroupKey struct {
	G1  algebra.G1
	G2  algebra.G2
	H1  algebra.G1
	H2  algebra.G1
	IPK algebra.G2 // g2^isk
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string {
	return []string{"g1", "g2", "h1", "h2", "ipk"}
}

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDDL21, groupsig.KindGroupKey)
	w.Element(&k.G1)
	w.Element(&k.G2)
	w.Element(&k.H1)
	w.Element(&k.H2)
	w.Element(&k.IPK)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"g1", &tmp.G1}, {"g2", &tmp.G2}, {"h1", &tmp.H1}, {"h2", &tmp.H2},
		{"ipk", &tmp.IPK},
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

// ManagerKey is the issuer secret exponent.
type ManagerKey struct {
	ISK fr.Element
}

func (k *ManagerKey) Scheme() string      { return Name }
func (k *ManagerKey) Kind() groupsig.Kind { return groupsig.KindManagerKey }
func (k *ManagerKey) Fields() []string    { return []string{"isk"} }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDDL21, groupsig.KindManagerKey)
	w.Fr(k.ISK)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	var tmp ManagerKey
	if err := r.Fr("isk", &tmp.ISK); err != nil {
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

// MemberKey is a member's signing key: the BBS+ credential A over the member
// secret y and the issuer-chosen x and s. H and H2S are fixed products
// reused by Sign.
type MemberKey struct {
	A   algebra.G1 // (H * h2^s * g1)^(1/(isk+x))
	X   fr.Element
	Y   fr.Element
	S   fr.Element
	H   algebra.G1 // h1^y
	H2S algebra.G1 // h2^s

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string {
	return []string{"A", "x", "y", "s", "H", "h2s", "state"}
}

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDDL21, groupsig.KindMemberKey)
	w.Element(&k.A)
	w.Fr(k.X)
	w.Fr(k.Y)
	w.Fr(k.S)
	w.Element(&k.H)
	w.Element(&k.H2S)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	var tmp MemberKey
	if err := r.Element("A", &tmp.A); err != nil {
		return err
	}
	if err := r.Fr("x", &tmp.X); err != nil {
		return err
	}
	if err := r.Fr("y", &tmp.Y); err != nil {
		return err
	}
	if err := r.Fr("s", &tmp.S); err != nil {
		return err
	}
	if err := r.Element("H", &tmp.H); err != nil {
		return err
	}
	if err := r.Element("h2s", &tmp.H2S); err != nil {
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
