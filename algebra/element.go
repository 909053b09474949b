// Package algebra adapts gnark-crypto's BLS12-381 arithmetic to the needs of
// the group-signature schemes: uniform additive-notation wrappers for G1, G2
// and GT, scalar helpers, hash-to-group, deterministic randomness and the
// canonical container codec.
package algebra

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Canonical encoding sizes in bytes.
const (
	G1Bytes = 48
	G2Bytes = 96
	GTBytes = 576
	FrBytes = fr.Bytes
)

// Element is a group element in additive notation. G1, G2 and GT implement
// it, so proof code that mixes groups (e.g. representation proofs over G1
// and G2 statements) can operate uniformly. For GT, Add means multiplication
// and ScalarMultiplication means exponentiation.
type Element interface {
	New() Element
	Set(e Element) Element
	Add(a, b Element) Element
	AddAssign(e Element) Element
	Sub(a, b Element) Element
	Neg(e Element) Element
	ScalarMultiplication(e Element, scalar fr.Element) Element
	MultiExp(es []Element, scalars []fr.Element) (Element, error)
	Equal(e Element) bool
	IsZero() bool
	Bytes() []byte
	SetBytes(data []byte) error
}
