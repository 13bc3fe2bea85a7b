// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/problem"
)

func testHeaderAndReveal(t *testing.T) (*block.Header, *block.Reveal) {
	t.Helper()

	instance, err := problem.Generate([32]byte{0xAB}, problem.TierDesktop, 1, problem.DefaultTierLimits())
	require.NoError(t, err)
	solution, ok := problem.Solve(instance)
	require.True(t, ok)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	h := &block.Header{
		CodecVersion:     1,
		BlockIndex:       7,
		Timestamp:        1000,
		ParentHash:       chainhash.Hash{0x01},
		MerkleRoot:       chainhash.Hash{0x02},
		MinerAddress:     chainhash.Hash{0x03},
		Commitment:       chainhash.Hash{0x04},
		DifficultyTarget: 1,
		Tier:             problem.TierDesktop,
		OffchainCID:      []byte("cid"),
	}
	copy(h.MinerPublicKey[:], pub)
	h.Sign(priv)

	rv := &block.Reveal{
		Problem:  instance,
		Solution: solution,
		MinerSalt: [32]byte{0x05},
		Measured: block.ComplexityRecord{
			SolveTimeMillis: 12,
			PeakMemoryClass: 1,
			AttemptCount:    1,
		},
	}
	return h, rv
}

func TestRevealMessageRoundTrip(t *testing.T) {
	_, rv := testHeaderAndReveal(t)
	want := &RevealMessage{HeaderHash: chainhash.Hash{0xAA, 0xBB}, Reveal: rv}

	got, err := DecodeRevealMessage(want.Encode())
	require.NoError(t, err)
	require.Equal(t, want.HeaderHash, got.HeaderHash)
	require.Equal(t, rv.Encode(), got.Reveal.Encode())
}

func TestResponseBlockRoundTripAbsent(t *testing.T) {
	want := &ResponseBlock{Present: false}
	got, err := DecodeResponseBlock(want.Encode())
	require.NoError(t, err)
	require.False(t, got.Present)
}

func TestResponseBlockRoundTripHeaderOnly(t *testing.T) {
	h, _ := testHeaderAndReveal(t)
	want := &ResponseBlock{Present: true, Header: h}

	got, err := DecodeResponseBlock(want.Encode())
	require.NoError(t, err)
	require.True(t, got.Present)
	require.False(t, got.HasReveal)
	require.Equal(t, h.Hash(), got.Header.Hash())
}

func TestResponseBlockRoundTripWithReveal(t *testing.T) {
	h, rv := testHeaderAndReveal(t)
	want := &ResponseBlock{Present: true, Header: h, HasReveal: true, Reveal: rv}

	got, err := DecodeResponseBlock(want.Encode())
	require.NoError(t, err)
	require.True(t, got.HasReveal)
	require.Equal(t, rv.Encode(), got.Reveal.Encode())
}

func TestHeadersRangeResponseRoundTrip(t *testing.T) {
	h1, _ := testHeaderAndReveal(t)
	h2, _ := testHeaderAndReveal(t)
	want := &HeadersRangeResponse{Headers: []*block.Header{h1, h2}}

	got, err := DecodeHeadersRangeResponse(want.Encode())
	require.NoError(t, err)
	require.Len(t, got.Headers, 2)
	require.Equal(t, h1.Hash(), got.Headers[0].Hash())
	require.Equal(t, h2.Hash(), got.Headers[1].Hash())
}

func TestHeadersRangeResponseRoundTripEmpty(t *testing.T) {
	want := &HeadersRangeResponse{}
	got, err := DecodeHeadersRangeResponse(want.Encode())
	require.NoError(t, err)
	require.Empty(t, got.Headers)
}
