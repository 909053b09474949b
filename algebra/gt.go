package algebra

import (
	"bytes"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// GT wraps a target-group element. The Element methods keep additive
// notation: Add multiplies, ScalarMultiplication exponentiates, Neg inverts.
// The zero value is the all-zero field element, which is not a valid group
// member and acts as the "unset" state.
type GT struct {
	inner bls12381.GT
}

var gtZero bls12381.GT

// Pair computes the pairing e(p, q).
func Pair(p *G1, q *G2) (*GT, error) {
	res, err := bls12381.Pair(
		[]bls12381.G1Affine{p.inner},
		[]bls12381.G2Affine{q.inner},
	)
	if err != nil {
		return nil, fmt.Errorf("computing pairing: %s", err)
	}
	return &GT{inner: res}, nil
}

func (z *GT) New() Element {
	return &GT{}
}

func (z *GT) Set(e Element) Element {
	z.inner = e.(*GT).inner
	return z
}

func (z *GT) Add(a, b Element) Element {
	z.inner.Mul(&a.(*GT).inner, &b.(*GT).inner)
	return z
}

func (z *GT) AddAssign(e Element) Element {
	z.inner.Mul(&z.inner, &e.(*GT).inner)
	return z
}

func (z *GT) Sub(a, b Element) Element {
	var inv bls12381.GT
	inv.Inverse(&b.(*GT).inner)
	z.inner.Mul(&a.(*GT).inner, &inv)
	return z
}

func (z *GT) Neg(e Element) Element {
	z.inner.Inverse(&e.(*GT).inner)
	return z
}

// ScalarMultiplication raises e to the scalar with a plain square-and-
// multiply over the scalar bits. Scalars are field elements, so always in
// [0, r).
func (z *GT) ScalarMultiplication(e Element, scalar fr.Element) Element {
	base := e.(*GT).inner
	var k big.Int
	scalar.BigInt(&k)
	var res bls12381.GT
	res.SetOne()
	for i := k.BitLen() - 1; i >= 0; i-- {
		res.Square(&res)
		if k.Bit(i) == 1 {
			res.Mul(&res, &base)
		}
	}
	z.inner = res
	return z
}

func (z *GT) MultiExp(es []Element, scalars []fr.Element) (Element, error) {
	if len(es) != len(scalars) {
		return nil, fmt.Errorf("bases and scalars must have the same length")
	}
	var acc GT
	acc.inner.SetOne()
	var term GT
	for i := range es {
		term.ScalarMultiplication(es[i], scalars[i])
		acc.AddAssign(&term)
	}
	z.inner = acc.inner
	return z, nil
}

func (z *GT) Equal(e Element) bool {
	return z.inner.Equal(&e.(*GT).inner)
}

func (z *GT) IsZero() bool {
	return z.inner.Equal(&gtZero)
}

// Bytes returns the twelve Fp coefficients in a fixed order, big-endian.
func (z *GT) Bytes() []byte {
	out := make([]byte, 0, GTBytes)
	for _, c := range z.coeffs() {
		b := c.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// SetBytes decodes the coefficient encoding produced by Bytes, rejecting
// non-canonical representations.
func (z *GT) SetBytes(data []byte) error {
	if len(data) != GTBytes {
		return fmt.Errorf("GT element must be %d bytes, got %d", GTBytes, len(data))
	}
	var tmp GT
	for i, c := range tmp.coeffs() {
		c.SetBytes(data[i*fp.Bytes : (i+1)*fp.Bytes])
	}
	if !bytes.Equal(tmp.Bytes(), data) {
		return fmt.Errorf("non-canonical GT encoding")
	}
	z.inner = tmp.inner
	return nil
}

func (z *GT) coeffs() [12]*fp.Element {
	return [12]*fp.Element{
		&z.inner.C0.B0.A0, &z.inner.C0.B0.A1,
		&z.inner.C0.B1.A0, &z.inner.C0.B1.A1,
		&z.inner.C0.B2.A0, &z.inner.C0.B2.A1,
		&z.inner.C1.B0.A0, &z.inner.C1.B0.A1,
		&z.inner.C1.B1.A0, &z.inner.C1.B1.A1,
		&z.inner.C1.B2.A0, &z.inner.C1.B2.A1,
	}
}
