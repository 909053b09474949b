package algebra

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/sha3"
)

// Rand is a SHAKE256-based deterministic random generator. NewRand seeds it
// from the OS entropy source; NewSeededRand produces reproducible streams
// for tests.
type Rand struct {
	rand sha3.ShakeHash
}

func NewRand() (*Rand, error) {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("reading seed: %s", err)
	}
	return newRand(seed[:])
}

func NewSeededRand(seed uint64) (*Rand, error) {
	var seedBytes [8]byte
	binary.BigEndian.PutUint64(seedBytes[:], seed)
	return newRand(seedBytes[:])
}

func newRand(seed []byte) (*Rand, error) {
	shake := sha3.NewShake256()
	if _, err := shake.Write(seed); err != nil {
		return nil, fmt.Errorf("writing seed: %s", err)
	}
	return &Rand{rand: shake}, nil
}

func (r *Rand) GetFr() (fr.Element, error) {
	for {
		var byts [fr.Bytes]byte
		if _, err := r.rand.Read(byts[:]); err != nil {
			return fr.Element{}, fmt.Errorf("get randomness: %s", err)
		}
		var fe fr.Element
		if err := fe.SetBytesCanonical(byts[:]); err == nil {
			return fe, nil
		}
	}
}

func (r *Rand) GetNonZeroFr() (fr.Element, error) {
	for {
		fe, err := r.GetFr()
		if err != nil {
			return fr.Element{}, err
		}
		if !fe.IsZero() {
			return fe, nil
		}
	}
}

func (r *Rand) GetFrs(n int) ([]fr.Element, error) {
	var err error
	ret := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		ret[i], err = r.GetFr()
		if err != nil {
			return nil, fmt.Errorf("get random Fr: %s", err)
		}
	}
	return ret, nil
}

// GetG1 returns the G1 generator raised to a random scalar.
func (r *Rand) GetG1() (*G1, error) {
	scalar, err := r.GetFr()
	if err != nil {
		return nil, fmt.Errorf("get random Fr: %s", err)
	}
	var p G1
	p.ScalarMultiplication(G1Generator(), scalar)
	return &p, nil
}

func (r *Rand) GetNonZeroG1() (*G1, error) {
	for {
		p, err := r.GetG1()
		if err != nil {
			return nil, err
		}
		if !p.IsZero() {
			return p, nil
		}
	}
}

// GetG2 returns the G2 generator raised to a random scalar.
func (r *Rand) GetG2() (*G2, error) {
	scalar, err := r.GetFr()
	if err != nil {
		return nil, fmt.Errorf("get random Fr: %s", err)
	}
	var p G2
	p.ScalarMultiplication(G2Generator(), scalar)
	return &p, nil
}

func (r *Rand) GetNonZeroG2() (*G2, error) {
	for {
		p, err := r.GetG2()
		if err != nil {
			return nil, err
		}
		if !p.IsZero() {
			return p, nil
		}
	}
}

// GetBytes32 returns 32 random bytes, e.g. for PRF keys.
func (r *Rand) GetBytes32() ([32]byte, error) {
	var out [32]byte
	if _, err := r.rand.Read(out[:]); err != nil {
		return [32]byte{}, fmt.Errorf("get randomness: %s", err)
	}
	return out, nil
}

// GeneratePermutation returns a random permutation of 0..n-1 using the
// Durstenfeld variant of Fisher-Yates. The Uint16 modulo carries a small
// bias, acceptable here: permutations only randomize non-secret output
// order, never key material.
func (r *Rand) GeneratePermutation(n int) ([]uint32, error) {
	permutation := make([]uint32, n)
	for i := range permutation {
		permutation[i] = uint32(i)
	}
	var tmpBytes [16]byte
	for i := range permutation {
		if _, err := r.rand.Read(tmpBytes[:]); err != nil {
			return nil, fmt.Errorf("get randomness: %s", err)
		}
		tmp := binary.BigEndian.Uint16(tmpBytes[:])
		j := int(tmp) % (i + 1)
		permutation[i], permutation[j] = permutation[j], permutation[i]
	}
	return permutation, nil
}
