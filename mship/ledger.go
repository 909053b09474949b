// Package mship implements the manager-side membership bookkeeping shared
// by the schemes: the group membership list (GML) written at join time and
// the certificate revocation list (CRL) written by revocation. Ledgers are
// append-only, keyed by the member's hex digest identifier, and hold the
// scheme-specific tuple of serialized group elements.
package mship

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/gsig/groupsig"
	"github.com/gsig/groupsig/algebra"
)

// Entry is one ledger record: a member identifier and the serialized group
// elements the scheme stored for it.
type Entry struct {
	ID    string
	Attrs [][]byte
}

// Ledger is an append-only map from member id to entry, preserving
// insertion order. A mutex serializes mutation so at most one join or
// revocation is in flight.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry
	order   []string
}

func NewLedger() *Ledger {
	return &Ledger{entries: map[string]*Entry{}}
}

// Append records an entry. Re-adding an existing id is an error.
func (l *Ledger) Append(e *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[e.ID]; ok {
		return fmt.Errorf("entry %s already present", e.ID)
	}
	cp := &Entry{ID: e.ID, Attrs: make([][]byte, len(e.Attrs))}
	for i, a := range e.Attrs {
		cp.Attrs[i] = append([]byte(nil), a...)
	}
	l.entries[e.ID] = cp
	l.order = append(l.order, e.ID)
	return nil
}

func (l *Ledger) Get(id string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	return e, ok
}

// Entries returns the entries in insertion order.
func (l *Ledger) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.entries[id])
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Export serializes the ledger to base64 for manager persistence.
func (l *Ledger) Export() (string, error) {
	w := algebra.NewRawWriter()
	entries := l.Entries()
	w.Uint32(uint32(len(entries)))
	for _, e := range entries {
		w.VarBytes([]byte(e.ID))
		w.Uint32(uint32(len(e.Attrs)))
		for _, a := range e.Attrs {
			w.VarBytes(a)
		}
	}
	return base64.StdEncoding.EncodeToString(w.Bytes()), nil
}

// Import replaces the ledger contents with a previously exported encoding.
func (l *Ledger) Import(s string) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return &groupsig.DecodingError{Field: "base64", Err: err}
	}
	r := algebra.NewRawReader(raw)
	n, err := r.Uint32("entries")
	if err != nil {
		return err
	}
	entries := make(map[string]*Entry, n)
	order := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		id, err := r.VarBytes("id")
		if err != nil {
			return err
		}
		na, err := r.Uint32("attrs")
		if err != nil {
			return err
		}
		e := &Entry{ID: string(id), Attrs: make([][]byte, na)}
		for j := uint32(0); j < na; j++ {
			if e.Attrs[j], err = r.VarBytes("attr"); err != nil {
				return err
			}
		}
		if _, ok := entries[e.ID]; ok {
			return &groupsig.DecodingError{Field: "id"}
		}
		entries[e.ID] = e
		order = append(order, e.ID)
	}
	if err := r.Close(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	l.order = order
	return nil
}
