package groupsig

// Kind identifies the type of a container within a scheme.
type Kind uint8

const (
	KindGroupKey Kind = iota + 1
	KindManagerKey
	KindMemberKey
	KindBlindKey
	KindSignature
	KindBlindSignature
)

func (k Kind) String() string {
	switch k {
	case KindGroupKey:
		return "group"
	case KindManagerKey:
		return "manager"
	case KindMemberKey:
		return "member"
	case KindBlindKey:
		return "blind"
	case KindSignature:
		return "signature"
	case KindBlindSignature:
		return "blind_signature"
	default:
		return "unknown"
	}
}

// SchemeID is the wire identifier of a scheme, carried in the first header
// byte of every container encoding.
type SchemeID uint8

const (
	IDBBS04 SchemeID = iota + 1
	IDPS16
	IDCPY06
	IDKLAP20
	IDGL19
	IDDL21
	IDDL21SEQ
)

func (id SchemeID) String() string {
	switch id {
	case IDBBS04:
		return "bbs04"
	case IDPS16:
		return "ps16"
	case IDCPY06:
		return "cpy06"
	case IDKLAP20:
		return "klap20"
	case IDGL19:
		return "gl19"
	case IDDL21:
		return "dl21"
	case IDDL21SEQ:
		return "dl21seq"
	default:
		return "unknown"
	}
}
