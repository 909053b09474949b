package algebra

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// G2 wraps an affine point of the second pairing group.
type G2 struct {
	inner bls12381.G2Affine
}

// G2Generator returns the fixed generator of G2.
func G2Generator() *G2 {
	_, _, _, g2Aff := bls12381.Generators()
	return &G2{inner: g2Aff}
}

func (p *G2) New() Element {
	return &G2{}
}

func (p *G2) Set(e Element) Element {
	p.inner = e.(*G2).inner
	return p
}

func (p *G2) Add(a, b Element) Element {
	p.inner.Add(&a.(*G2).inner, &b.(*G2).inner)
	return p
}

func (p *G2) AddAssign(e Element) Element {
	p.inner.Add(&p.inner, &e.(*G2).inner)
	return p
}

func (p *G2) Sub(a, b Element) Element {
	var neg bls12381.G2Affine
	neg.Neg(&b.(*G2).inner)
	p.inner.Add(&a.(*G2).inner, &neg)
	return p
}

func (p *G2) Neg(e Element) Element {
	p.inner.Neg(&e.(*G2).inner)
	return p
}

func (p *G2) ScalarMultiplication(e Element, scalar fr.Element) Element {
	var k big.Int
	scalar.BigInt(&k)
	p.inner.ScalarMultiplication(&e.(*G2).inner, &k)
	return p
}

func (p *G2) MultiExp(es []Element, scalars []fr.Element) (Element, error) {
	points := make([]bls12381.G2Affine, len(es))
	for i := range es {
		points[i] = es[i].(*G2).inner
	}
	if _, err := p.inner.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return nil, fmt.Errorf("computing G2 msm: %s", err)
	}
	return p, nil
}

func (p *G2) Equal(e Element) bool {
	return p.inner.Equal(&e.(*G2).inner)
}

func (p *G2) IsZero() bool {
	return p.inner.IsInfinity()
}

func (p *G2) Bytes() []byte {
	b := p.inner.Bytes()
	return b[:]
}

// SetBytes decodes a compressed point, including the subgroup check.
func (p *G2) SetBytes(data []byte) error {
	if len(data) != G2Bytes {
		return fmt.Errorf("G2 point must be %d bytes, got %d", G2Bytes, len(data))
	}
	var tmp bls12381.G2Affine
	if _, err := tmp.SetBytes(data); err != nil {
		return fmt.Errorf("decoding G2 point: %s", err)
	}
	p.inner = tmp
	return nil
}
