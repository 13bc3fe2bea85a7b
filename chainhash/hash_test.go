// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroHashIsZero(t *testing.T) {
	require.True(t, ZeroHash.IsZero())
	require.False(t, (Hash{0x01}).IsZero())
}

func TestNewHashRejectsWrongLength(t *testing.T) {
	_, err := NewHash([]byte{0x01, 0x02})
	require.Error(t, err)

	h, err := NewHash(make([]byte, HashSize))
	require.NoError(t, err)
	require.True(t, h.IsZero())
}

func TestNewHashFromStrRoundTrip(t *testing.T) {
	var want Hash
	want[0] = 0xAB
	want[HashSize-1] = 0xCD

	got, err := NewHashFromStr(want.String())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNewHashFromStrRejectsInvalidHex(t *testing.T) {
	_, err := NewHashFromStr("not-hex")
	require.Error(t, err)
}

func TestLessIsLexicographic(t *testing.T) {
	a := Hash{0x01}
	b := Hash{0x02}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}

func TestCloneBytesIsIndependentCopy(t *testing.T) {
	h := Hash{0x01, 0x02, 0x03}
	clone := h.CloneBytes()
	clone[0] = 0xFF
	require.Equal(t, byte(0x01), h[0])
}
