// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leveldbkv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	store := openTestStore(t)
	v, ok, err := store.Get(storage.CFHeaders, []byte("nope"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
}

func TestWriteBatchIsAtomicAndReadable(t *testing.T) {
	store := openTestStore(t)
	err := store.WriteBatch([]storage.WriteOp{
		{Family: storage.CFHeaders, Key: []byte("h1"), Value: []byte("header-bytes")},
		{Family: storage.CFTips, Key: []byte(storage.TipKey), Value: []byte("h1")},
	})
	require.NoError(t, err)

	v, ok, err := store.Get(storage.CFHeaders, []byte("h1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("header-bytes"), v)

	v, ok, err = store.Get(storage.CFTips, []byte(storage.TipKey))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("h1"), v)
}

// TestColumnFamiliesDoNotCollide verifies the one-byte family prefix
// keeps identical keys in different column families distinct, since
// LevelDB itself has no notion of column families.
func TestColumnFamiliesDoNotCollide(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.WriteBatch([]storage.WriteOp{
		{Family: storage.CFHeaders, Key: []byte("k"), Value: []byte("header-value")},
		{Family: storage.CFReveals, Key: []byte("k"), Value: []byte("reveal-value")},
	}))

	hv, ok, err := store.Get(storage.CFHeaders, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("header-value"), hv)

	rv, ok, err := store.Get(storage.CFReveals, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("reveal-value"), rv)
}

func TestGetUnknownColumnFamilyErrors(t *testing.T) {
	store := openTestStore(t)
	_, _, err := store.Get(storage.ColumnFamily("bogus"), []byte("k"))
	require.Error(t, err)
}
