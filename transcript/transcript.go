// Package transcript wraps merlin transcripts for Fiat-Shamir challenge
// derivation over BLS12-381 statements.
package transcript

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	merlin "github.com/jsign/merlin"

	"github.com/gsig/groupsig/algebra"
)

type Transcript struct {
	inner *merlin.Transcript
}

func New(label []byte) *Transcript {
	return &Transcript{
		inner: merlin.New(label),
	}
}

func (t *Transcript) AppendBytes(label []byte, data []byte) {
	t.inner.AppendMessage(label, data)
}

func (t *Transcript) AppendElements(label []byte, es ...algebra.Element) {
	for _, e := range es {
		t.inner.AppendMessage(label, e.Bytes())
	}
}

func (t *Transcript) AppendScalars(label []byte, scalars ...fr.Element) {
	for _, scalar := range scalars {
		scalarBytes := scalar.Bytes()
		t.inner.AppendMessage(label, scalarBytes[:])
	}
}

func (t *Transcript) AppendUint64(label []byte, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.inner.AppendMessage(label, b[:])
}

func (t *Transcript) GetAndAppendChallenge(label []byte) fr.Element {
	for {
		var dest [32]byte
		t.inner.ChallengeBytes(label, dest[:])
		var challenge fr.Element
		if err := challenge.SetBytesCanonical(dest[:]); err == nil {
			t.AppendScalars(label, challenge)
			return challenge
		}
	}
}
