package mship

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLedgerAppend(t *testing.T) {
	l := NewLedger()
	require.Equal(t, 0, l.Len())

	e := &Entry{ID: "aa", Attrs: [][]byte{[]byte("one"), []byte("two")}}
	require.NoError(t, l.Append(e))
	require.Equal(t, 1, l.Len())

	got, ok := l.Get("aa")
	require.True(t, ok)
	require.Equal(t, e.Attrs, got.Attrs)

	_, ok = l.Get("bb")
	require.False(t, ok)

	// Duplicate ids are rejected.
	require.Error(t, l.Append(&Entry{ID: "aa"}))
	require.Equal(t, 1, l.Len())
}

func TestLedgerAppendCopies(t *testing.T) {
	l := NewLedger()
	attr := []byte("mutable")
	require.NoError(t, l.Append(&Entry{ID: "aa", Attrs: [][]byte{attr}}))

	attr[0] = 'X'
	got, _ := l.Get("aa")
	require.Equal(t, []byte("mutable"), got.Attrs[0])
}

func TestLedgerOrder(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"cc", "aa", "bb"} {
		require.NoError(t, l.Append(&Entry{ID: id}))
	}
	var ids []string
	for _, e := range l.Entries() {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"cc", "aa", "bb"}, ids)
}

func TestLedgerExportImport(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(&Entry{ID: "aa", Attrs: [][]byte{[]byte("x"), []byte("y")}}))
	require.NoError(t, l.Append(&Entry{ID: "bb", Attrs: [][]byte{[]byte("z")}}))

	enc, err := l.Export()
	require.NoError(t, err)

	restored := NewLedger()
	require.NoError(t, restored.Import(enc))
	require.Equal(t, 2, restored.Len())
	require.Equal(t, l.Entries(), restored.Entries())

	require.Error(t, restored.Import("not base64!!!"))
	require.Error(t, restored.Import("AAAA"))
	// Failed imports leave the ledger untouched.
	require.Equal(t, 2, restored.Len())
}
