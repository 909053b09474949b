package algebra

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var dstG1 = []byte("GROUPSIG_BLS12381G1_XMD:SHA-256_SSWU_RO_")

// G1 wraps an affine point of the first pairing group.
type G1 struct {
	inner bls12381.G1Affine
}

// G1Generator returns the fixed generator of G1.
func G1Generator() *G1 {
	_, _, g1Aff, _ := bls12381.Generators()
	return &G1{inner: g1Aff}
}

// HashToG1 maps arbitrary bytes to a G1 point.
func HashToG1(data []byte) (*G1, error) {
	p, err := bls12381.HashToG1(data, dstG1)
	if err != nil {
		return nil, fmt.Errorf("hashing to G1: %s", err)
	}
	return &G1{inner: p}, nil
}

func (p *G1) New() Element {
	return &G1{}
}

func (p *G1) Set(e Element) Element {
	p.inner = e.(*G1).inner
	return p
}

func (p *G1) Add(a, b Element) Element {
	p.inner.Add(&a.(*G1).inner, &b.(*G1).inner)
	return p
}

func (p *G1) AddAssign(e Element) Element {
	p.inner.Add(&p.inner, &e.(*G1).inner)
	return p
}

func (p *G1) Sub(a, b Element) Element {
	var neg bls12381.G1Affine
	neg.Neg(&b.(*G1).inner)
	p.inner.Add(&a.(*G1).inner, &neg)
	return p
}

func (p *G1) Neg(e Element) Element {
	p.inner.Neg(&e.(*G1).inner)
	return p
}

func (p *G1) ScalarMultiplication(e Element, scalar fr.Element) Element {
	var k big.Int
	scalar.BigInt(&k)
	p.inner.ScalarMultiplication(&e.(*G1).inner, &k)
	return p
}

func (p *G1) MultiExp(es []Element, scalars []fr.Element) (Element, error) {
	points := make([]bls12381.G1Affine, len(es))
	for i := range es {
		points[i] = es[i].(*G1).inner
	}
	if _, err := p.inner.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return nil, fmt.Errorf("computing G1 msm: %s", err)
	}
	return p, nil
}

func (p *G1) Equal(e Element) bool {
	return p.inner.Equal(&e.(*G1).inner)
}

func (p *G1) IsZero() bool {
	return p.inner.IsInfinity()
}

func (p *G1) Bytes() []byte {
	b := p.inner.Bytes()
	return b[:]
}

// SetBytes decodes a compressed point, including the subgroup check.
func (p *G1) SetBytes(data []byte) error {
	if len(data) != G1Bytes {
		return fmt.Errorf("G1 point must be %d bytes, got %d", G1Bytes, len(data))
	}
	var tmp bls12381.G1Affine
	if _, err := tmp.SetBytes(data); err != nil {
		return fmt.Errorf("decoding G1 point: %s", err)
	}
	p.inner = tmp
	return nil
}
