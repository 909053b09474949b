package algebra

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// HashToFr maps arbitrary bytes to a scalar by reducing their SHA-256
// digest modulo the group order.
func HashToFr(data ...[]byte) fr.Element {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var e fr.Element
	e.SetBytes(h.Sum(nil))
	return e
}
