package gl19

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// GroupKey is the public key of the group, combining the issuer (ipk), the
// converter (cpk) and the extractor (epk) public keys over shared
// generators. H3 anchors credential expiration dates.
type GroupKey struct {
	G1  algebra.G1
	G2  algebra.G2
	G   algebra.G1
	H   algebra.G1
	H1  algebra.G1
	H2  algebra.G1
	H3  algebra.G1
	IPK algebra.G2 // g2^isk
	CPK algebra.G1 // g^csk
	EPK algebra.G1 // g^esk
}

func (k *GroupKey) Scheme() string      { return Name }
func (k *GroupKey) Kind() groupsig.Kind { return groupsig.KindGroupKey }
func (k *GroupKey) Fields() []string {
	return []string{"g1", "g2", "g", "h", "h1", "h2", "h3", "ipk", "cpk", "epk"}
}

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindGroupKey)
	w.Element(&k.G1)
	w.Element(&k.G2)
	w.Element(&k.G)
	w.Element(&k.H)
	w.Element(&k.H1)
	w.Element(&k.H2)
	w.Element(&k.H3)
	w.Element(&k.IPK)
	w.Element(&k.CPK)
	w.Element(&k.EPK)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	var tmp GroupKey
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"g1", &tmp.G1}, {"g2", &tmp.G2}, {"g", &tmp.G}, {"h", &tmp.H},
		{"h1", &tmp.H1}, {"h2", &tmp.H2}, {"h3", &tmp.H3}, {"ipk", &tmp.IPK},
		{"cpk", &tmp.CPK}, {"epk", &tmp.EPK},
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

// ManagerKey bundles the issuer, converter and extractor secret exponents.
type ManagerKey struct {
	ISK fr.Element
	CSK fr.Element
	ESK fr.Element
}

func (k *ManagerKey) Scheme() string      { return Name }
func (k *ManagerKey) Kind() groupsig.Kind { return groupsig.KindManagerKey }
func (k *ManagerKey) Fields() []string    { return []string{"isk", "csk", "esk"} }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindManagerKey)
	w.Fr(k.ISK)
	w.Fr(k.CSK)
	w.Fr(k.ESK)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	var tmp ManagerKey
	if err := r.Fr("isk", &tmp.ISK); err != nil {
		return err
	}
	if err := r.Fr("csk", &tmp.CSK); err != nil {
		return err
	}
	if err := r.Fr("esk", &tmp.ESK); err != nil {
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

// MemberKey is a member's signing key: the BBS+ credential A over the
// member secret y, the issuer-chosen x and s, and the credential expiration
// time L (Unix seconds). H2S and H3D are fixed products reused by Sign.
type MemberKey struct {
	A   algebra.G1 // (H * h2^s * h3^d * g1)^(1/(isk+x))
	X   fr.Element
	Y   fr.Element
	S   fr.Element
	L   int64
	D   fr.Element // Hash(L)
	H   algebra.G1 // h1^y
	H2S algebra.G1 // h2^s
	H3D algebra.G1 // h3^d

	state byte
}

func (k *MemberKey) Scheme() string      { return Name }
func (k *MemberKey) Kind() groupsig.Kind { return groupsig.KindMemberKey }
func (k *MemberKey) Fields() []string {
	return []string{"A", "x", "y", "s", "l", "d", "H", "h2s", "h3d", "state"}
}

// Complete reports whether the join protocol finished for this key.
func (k *MemberKey) Complete() bool { return k.state == joinDone }

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindMemberKey)
	w.Element(&k.A)
	w.Fr(k.X)
	w.Fr(k.Y)
	w.Fr(k.S)
	w.Int64(k.L)
	w.Fr(k.D)
	w.Element(&k.H)
	w.Element(&k.H2S)
	w.Element(&k.H3D)
	w.Byte(k.state)
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindMemberKey)
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
	if tmp.L, err = r.Int64("l"); err != nil {
		return err
	}
	if err := r.Fr("d", &tmp.D); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		e    algebra.Element
	}{
		{"H", &tmp.H}, {"h2s", &tmp.H2S}, {"h3d", &tmp.H3D},
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

// BlindKey is a recipient keypair used to blind signatures for conversion.
type BlindKey struct {
	SK fr.Element
	PK algebra.G1 // g^sk
}

func (k *BlindKey) Scheme() string      { return Name }
func (k *BlindKey) Kind() groupsig.Kind { return groupsig.KindBlindKey }
func (k *BlindKey) Fields() []string    { return []string{"sk", "pk"} }

func (k *BlindKey) MarshalBinary() ([]byte, error) {
	w := algebra.NewWriter(groupsig.IDGL19, groupsig.KindBlindKey)
	w.Fr(k.SK)
	w.Element(&k.PK)
	return w.Bytes(), nil
}

func (k *BlindKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDGL19, groupsig.KindBlindKey)
	if err != nil {
		return err
	}
	var tmp BlindKey
	if err := r.Fr("sk", &tmp.SK); err != nil {
		return err
	}
	if err := r.Element("pk", &tmp.PK); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	*k = tmp
	return nil
}
