// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/problem"
)

func testHeader(t *testing.T) (*Header, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	h := &Header{
		CodecVersion:     CodecVersion,
		BlockIndex:       3,
		Timestamp:        100,
		ParentHash:       chainhash.Hash{0x01},
		MerkleRoot:       chainhash.Hash{0x02},
		MinerAddress:     chainhash.Hash{0x03},
		Commitment:       chainhash.Hash{0x04},
		DifficultyTarget: 10,
		Tier:             problem.TierDesktop,
		OffchainCID:      []byte("cid"),
	}
	copy(h.MinerPublicKey[:], pub)
	return h, priv
}

func TestSignThenVerifySignatureSucceeds(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	require.True(t, h.VerifySignature())
}

func TestVerifySignatureFailsAfterTamperingWithSignedField(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	h.Timestamp++
	require.False(t, h.VerifySignature())
}

func TestHashExcludesSignature(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	before := h.Hash()

	h.MinerSignature[0] ^= 0xFF
	after := h.Hash()
	require.Equal(t, before, after)
}

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)

	decoded, err := DecodeHeader(h.Encode())
	require.NoError(t, err)
	require.Equal(t, h.Hash(), decoded.Hash())
	require.Equal(t, h.Tier, decoded.Tier)
	require.Equal(t, h.OffchainCID, decoded.OffchainCID)
	require.True(t, decoded.VerifySignature())
}

func TestDecodeHeaderRejectsUnsupportedCodecVersion(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	encoded := h.Encode()
	encoded[0] = CodecVersion + 1

	_, err := DecodeHeader(encoded)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsIllegalTier(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	encoded := h.Encode()

	// Tier byte sits right after CodecVersion(1) + BlockIndex(8) +
	// Timestamp(8) + four 32-byte hashes + DifficultyTarget(8).
	tierOffset := 1 + 8 + 8 + 4*chainhash.HashSize + 8
	encoded[tierOffset] = 0xFF

	_, err := DecodeHeader(encoded)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsTrailingBytes(t *testing.T) {
	h, priv := testHeader(t)
	h.Sign(priv)
	encoded := append(h.Encode(), 0x00)

	_, err := DecodeHeader(encoded)
	require.Error(t, err)
}
