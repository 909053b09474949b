package dl21seq

import (
	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
	"github.com/gsig/groupsig/dl21"
)

// GroupKey and ManagerKey are the base-scheme keys under this scheme's wire
// identity. Encodings nest the base encoding as one length-prefixed field.
type GroupKey struct {
	dl21.GroupKey
}

func (k *GroupKey) Scheme() string { return Name }

func (k *GroupKey) MarshalBinary() ([]byte, error) {
	inner, err := k.GroupKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := algebra.NewWriter(groupsig.IDDL21SEQ, groupsig.KindGroupKey)
	w.VarBytes(inner)
	return w.Bytes(), nil
}

func (k *GroupKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21SEQ, groupsig.KindGroupKey)
	if err != nil {
		return err
	}
	inner, err := r.VarBytes("base")
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	var tmp dl21.GroupKey
	if err := tmp.UnmarshalBinary(inner); err != nil {
		return err
	}
	k.GroupKey = tmp
	return nil
}

type ManagerKey struct {
	dl21.ManagerKey
}

func (k *ManagerKey) Scheme() string { return Name }

func (k *ManagerKey) MarshalBinary() ([]byte, error) {
	inner, err := k.ManagerKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := algebra.NewWriter(groupsig.IDDL21SEQ, groupsig.KindManagerKey)
	w.VarBytes(inner)
	return w.Bytes(), nil
}

func (k *ManagerKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21SEQ, groupsig.KindManagerKey)
	if err != nil {
		return err
	}
	inner, err := r.VarBytes("base")
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	var tmp dl21.ManagerKey
	if err := tmp.UnmarshalBinary(inner); err != nil {
		return err
	}
	k.ManagerKey = tmp
	return nil
}

// MemberKey extends the base signing key with the two PRF keys driving the
// sequence tags: K derives per-state tokens, KK derives the revealed chain
// values.
type MemberKey struct {
	dl21.MemberKey

	K  [32]byte
	KK [32]byte
}

func (k *MemberKey) Scheme() string { return Name }
func (k *MemberKey) Fields() []string {
	return append(k.MemberKey.Fields(), "k", "kk")
}

func (k *MemberKey) MarshalBinary() ([]byte, error) {
	inner, err := k.MemberKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w := algebra.NewWriter(groupsig.IDDL21SEQ, groupsig.KindMemberKey)
	w.VarBytes(inner)
	w.Raw(k.K[:])
	w.Raw(k.KK[:])
	return w.Bytes(), nil
}

func (k *MemberKey) UnmarshalBinary(data []byte) error {
	r, err := algebra.NewReader(data, groupsig.IDDL21SEQ, groupsig.KindMemberKey)
	if err != nil {
		return err
	}
	inner, err := r.VarBytes("base")
	if err != nil {
		return err
	}
	kb, err := r.Raw("k", 32)
	if err != nil {
		return err
	}
	kkb, err := r.Raw("kk", 32)
	if err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	var tmp dl21.MemberKey
	if err := tmp.UnmarshalBinary(inner); err != nil {
		return err
	}
	k.MemberKey = tmp
	copy(k.K[:], kb)
	copy(k.KK[:], kkb)
	return nil
}
