package mship

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "ledgers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	gml := NewLedger()
	require.NoError(t, gml.Append(&Entry{ID: "aa", Attrs: [][]byte{[]byte("one"), []byte("two")}}))
	require.NoError(t, gml.Append(&Entry{ID: "bb", Attrs: [][]byte{[]byte("three")}}))
	require.NoError(t, s.Save(ctx, "gml", gml))

	loaded, err := s.Load(ctx, "gml")
	require.NoError(t, err)
	require.Equal(t, gml.Entries(), loaded.Entries())
}

func TestStoreLedgersIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	gml := NewLedger()
	require.NoError(t, gml.Append(&Entry{ID: "aa", Attrs: [][]byte{[]byte("x")}}))
	crl := NewLedger()
	require.NoError(t, crl.Append(&Entry{ID: "bb", Attrs: [][]byte{[]byte("y")}}))
	require.NoError(t, s.Save(ctx, "gml", gml))
	require.NoError(t, s.Save(ctx, "crl", crl))

	loaded, err := s.Load(ctx, "crl")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	_, ok := loaded.Get("bb")
	require.True(t, ok)
}

func TestStoreSaveIsUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := NewLedger()
	require.NoError(t, l.Append(&Entry{ID: "aa", Attrs: [][]byte{[]byte("v1")}}))
	require.NoError(t, s.Save(ctx, "gml", l))

	// Grow the ledger and save again; both entries must survive.
	require.NoError(t, l.Append(&Entry{ID: "bb", Attrs: [][]byte{[]byte("v2")}}))
	require.NoError(t, s.Save(ctx, "gml", l))

	loaded, err := s.Load(ctx, "gml")
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())
}

func TestStoreLoadMissing(t *testing.T) {
	s := openTestStore(t)
	loaded, err := s.Load(context.Background(), "nope")
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Len())
}
