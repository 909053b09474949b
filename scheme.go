// Package groupsig defines the scheme-independent surface of a collection of
// pairing-based group-signature schemes: containers with canonical
// serialization, the interactive join protocol, signing options and a
// process-wide scheme registry. The schemes themselves live in subpackages
// and register here on import.
package groupsig

// JoinMessage is one round of the interactive join protocol. Odd phases are
// produced by the manager, even phases by the candidate member. Data is an
// opaque scheme-specific payload.
type JoinMessage struct {
	Phase int
	Data  []byte
}

// Scheme is the operation set common to every group-signature scheme. A
// Scheme value holds the group and manager key material created by Setup;
// member-side operations only need the group key, which can be transplanted
// with SetGroupKey.
type Scheme interface {
	Name() string
	ID() SchemeID

	// Setup generates the group and manager keys.
	Setup() error

	GroupKey() Container
	ManagerKey() Container
	// SetGroupKey installs a group key, e.g. on a member or verifier that
	// did not run Setup.
	SetGroupKey(c Container) error

	// JoinSeq is the number of manager/member message exchanges after the
	// initial manager message. JoinStart identifies who sends first: 0 for
	// the manager, 1 for the member.
	JoinSeq() int
	JoinStart() int

	// JoinMgr runs a manager round of the join protocol. A nil input starts
	// the protocol.
	JoinMgr(in *JoinMessage) (*JoinMessage, error)
	// JoinMem runs a member round of the join protocol, updating key. A nil
	// output means the join finished and key is complete.
	JoinMem(in *JoinMessage, key Container) (*JoinMessage, error)

	Sign(msg []byte, key Container, opts ...SignOption) (Container, error)
	// Verify reports whether sig is a valid signature on msg. An invalid
	// signature yields (false, nil); the error is reserved for inputs that
	// cannot be processed at all.
	Verify(msg []byte, sig Container, opts ...SignOption) (bool, error)
}

// RunJoin drives the full join protocol between the manager and member sides
// of s, completing key.
func RunJoin(s Scheme, key Container) error {
	msg, err := s.JoinMgr(nil)
	if err != nil {
		return err
	}
	for {
		msg, err = s.JoinMem(msg, key)
		if err != nil {
			return err
		}
		if msg == nil {
			return nil
		}
		msg, err = s.JoinMgr(msg)
		if err != nil {
			return err
		}
	}
}

// OpenResult identifies the signer revealed by an opening authority.
// MemberID is the hex digest the manager stored at join time; Proof is a
// scheme-specific opening proof, empty when the scheme provides none.
type OpenResult struct {
	MemberID string
	Proof    []byte
}

// Opener is implemented by schemes whose manager can reveal the signer
// behind a signature. Open returns (nil, nil) when the signature decrypts
// to no registered member, e.g. one issued under a different group; the
// error is reserved for inputs that cannot be processed at all.
type Opener interface {
	Open(sig Container) (*OpenResult, error)
	OpenVerify(sig Container, res *OpenResult) (bool, error)
}

// Revoker is implemented by schemes with verifier-local revocation: Reveal
// moves a member's tracing trapdoor into the revocation list and Trace tests
// a signature against it.
type Revoker interface {
	Reveal(memberID string) error
	Trace(sig Container) (bool, error)
}

// EqualityProver is implemented by schemes whose members can prove that a
// set of signatures share a signer, and claim authorship of single
// signatures.
type EqualityProver interface {
	ProveEquality(sigs []Container, key Container) ([]byte, error)
	ProveEqualityVerify(sigs []Container, proof []byte) (bool, error)
	Claim(sig Container, key Container) ([]byte, error)
	ClaimVerify(sig Container, proof []byte) (bool, error)
}

// Linker is implemented by scope-bound schemes whose members can recognize
// their own signatures and prove that a batch of signatures share a signer.
type Linker interface {
	Identify(sig Container, key Container, opts ...SignOption) (bool, error)
	Link(msg []byte, msgs [][]byte, sigs []Container, key Container, opts ...SignOption) ([]byte, error)
	LinkVerify(msg []byte, msgs [][]byte, sigs []Container, proof []byte, opts ...SignOption) (bool, error)
}

// SeqLinker extends Linker with sequence-aware linking that detects
// reordered or missing signatures.
type SeqLinker interface {
	Linker
	SeqLink(msg []byte, msgs [][]byte, sigs []Container, key Container, opts ...SignOption) ([]byte, error)
	SeqLinkVerify(msg []byte, msgs [][]byte, sigs []Container, proof []byte, opts ...SignOption) (bool, error)
}

// SignConfig collects the optional signing parameters. Scope binds scoped
// pseudonyms (DL21 family); State is the signer-side sequence counter of
// stateful schemes.
type SignConfig struct {
	Scope string
	State int64
}

// DefaultScope is used when no WithScope option is given.
const DefaultScope = "def"

type SignOption func(*SignConfig)

func WithScope(scope string) SignOption {
	return func(c *SignConfig) {
		c.Scope = scope
	}
}

func WithState(state int64) SignOption {
	return func(c *SignConfig) {
		c.State = state
	}
}

// ApplySignOptions folds opts over the default configuration.
func ApplySignOptions(opts []SignOption) SignConfig {
	cfg := SignConfig{Scope: DefaultScope}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
