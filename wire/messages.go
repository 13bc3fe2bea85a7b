// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/codec"
)

// RevealMessage is the MsgReveal payload: canonical reveal bytes plus
// the header_hash it binds (spec section 6.3).
type RevealMessage struct {
	HeaderHash chainhash.Hash
	Reveal     *block.Reveal
}

// Encode writes the canonical encoding of a RevealMessage.
func (m *RevealMessage) Encode() []byte {
	w := codec.NewWriter(chainhash.HashSize + 256)
	w.PutFixed(m.HeaderHash[:])
	w.PutVarBytes(m.Reveal.Encode())
	return w.Bytes()
}

// DecodeRevealMessage strictly decodes a RevealMessage payload.
func DecodeRevealMessage(b []byte) (*RevealMessage, error) {
	r := codec.NewReader(b)
	hashBytes, err := r.GetFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	revealBytes, err := r.GetVarBytes(MaxPayloadLen)
	if err != nil {
		return nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	reveal, err := block.DecodeReveal(revealBytes)
	if err != nil {
		return nil, fmt.Errorf("wire: decode reveal message: %w", err)
	}
	var out RevealMessage
	copy(out.HeaderHash[:], hashBytes)
	out.Reveal = reveal
	return &out, nil
}

// ResponseBlock is the MsgResponseBlock payload: a header and, if
// present, its reveal. A requested block not yet known locally is
// represented by Present = false and a nil Header (spec section 6.3:
// "header + reveal (or absent flag)").
type ResponseBlock struct {
	Present    bool
	Header     *block.Header
	HasReveal  bool
	Reveal     *block.Reveal
}

// Encode writes the canonical encoding of a ResponseBlock.
func (m *ResponseBlock) Encode() []byte {
	w := codec.NewWriter(512)
	if !m.Present {
		w.PutUint8(0)
		return w.Bytes()
	}
	w.PutUint8(1)
	w.PutVarBytes(m.Header.Encode())
	if m.HasReveal {
		w.PutUint8(1)
		w.PutVarBytes(m.Reveal.Encode())
	} else {
		w.PutUint8(0)
	}
	return w.Bytes()
}

// DecodeResponseBlock strictly decodes a ResponseBlock payload.
func DecodeResponseBlock(b []byte) (*ResponseBlock, error) {
	r := codec.NewReader(b)
	presentByte, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	if presentByte == 0 {
		if err := r.Finish(); err != nil {
			return nil, err
		}
		return &ResponseBlock{Present: false}, nil
	}

	headerBytes, err := r.GetVarBytes(MaxPayloadLen)
	if err != nil {
		return nil, err
	}
	header, err := block.DecodeHeader(headerBytes)
	if err != nil {
		return nil, fmt.Errorf("wire: decode response header: %w", err)
	}

	hasRevealByte, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	out := &ResponseBlock{Present: true, Header: header}
	if hasRevealByte != 0 {
		revealBytes, err := r.GetVarBytes(MaxPayloadLen)
		if err != nil {
			return nil, err
		}
		reveal, err := block.DecodeReveal(revealBytes)
		if err != nil {
			return nil, fmt.Errorf("wire: decode response reveal: %w", err)
		}
		out.HasReveal = true
		out.Reveal = reveal
	}

	if err := r.Finish(); err != nil {
		return nil, err
	}
	return out, nil
}

// HeadersRangeResponse is the MsgHeadersRangeResponse payload: an
// ordered list of headers.
type HeadersRangeResponse struct {
	Headers []*block.Header
}

// Encode writes the canonical encoding of a HeadersRangeResponse.
func (m *HeadersRangeResponse) Encode() []byte {
	w := codec.NewWriter(256 * (len(m.Headers) + 1))
	w.PutUint32(uint32(len(m.Headers)))
	for _, h := range m.Headers {
		w.PutVarBytes(h.Encode())
	}
	return w.Bytes()
}

// DecodeHeadersRangeResponse strictly decodes a HeadersRangeResponse payload.
func DecodeHeadersRangeResponse(b []byte) (*HeadersRangeResponse, error) {
	r := codec.NewReader(b)
	n, err := r.GetUint32()
	if err != nil {
		return nil, err
	}
	const maxHeadersPerResponse = 2048
	if n > maxHeadersPerResponse {
		return nil, fmt.Errorf("wire: headers range response count %d exceeds max %d", n, maxHeadersPerResponse)
	}
	headers := make([]*block.Header, n)
	for i := range headers {
		hb, err := r.GetVarBytes(MaxPayloadLen)
		if err != nil {
			return nil, err
		}
		h, err := block.DecodeHeader(hb)
		if err != nil {
			return nil, fmt.Errorf("wire: decode ranged header %d: %w", i, err)
		}
		headers[i] = h
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	return &HeadersRangeResponse{Headers: headers}, nil
}
