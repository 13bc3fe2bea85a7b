// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec provides the low-level canonical encoding primitives that
// every consensus type builds on: fixed big-endian integers, fixed-length
// byte arrays, and a minimally-encoded length-prefixed byte string. Per
// spec section 4.1, encoding is deterministic (fixed field order, fixed
// endianness, no floating point on consensus paths) and decoding is
// strict: non-canonical length prefixes and short/overlong reads are
// rejected with a typed CodecError rather than silently tolerated.
//
// Grounded on the teacher's wire/protocol.go field-by-field encoding
// style, generalized from btcd's little-endian wire format to the
// spec-mandated big-endian, and from btcd's permissive CompactSize to a
// strict minimal-length-prefix discipline (no leading-zero / overlong
// prefixes admitted).
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrorKind classifies a CodecError for callers that branch on it.
type ErrorKind int

const (
	// ErrShortBuffer means fewer bytes remained than the field required.
	ErrShortBuffer ErrorKind = iota
	// ErrTrailingBytes means bytes remained after a full decode.
	ErrTrailingBytes
	// ErrNonCanonical means a length prefix or variant tag was encoded
	// in a non-minimal or out-of-range way.
	ErrNonCanonical
	// ErrUnknownVariant means a tagged union carried an unrecognized tag.
	ErrUnknownVariant
	// ErrFieldTooLarge means a length-prefixed field exceeded its
	// declared maximum (e.g. offchain_cid's 128-byte cap).
	ErrFieldTooLarge
)

// CodecError is the single typed error surfaced by decode_strict, per
// spec section 7. The orchestrator drops a message that fails to decode
// and acknowledges it as rejected with admission.ErrCodec; no per-peer
// fault count is kept.
type CodecError struct {
	Kind ErrorKind
	Msg  string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec: %s", e.Msg)
}

func newErr(kind ErrorKind, format string, args ...interface{}) error {
	return &CodecError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsCodecError reports whether err is a CodecError of the given kind.
func IsCodecError(err error, kind ErrorKind) bool {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// Writer accumulates a canonical big-endian byte encoding.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with the given capacity hint.
func NewWriter(capHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capHint)}
}

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// PutUint8 appends a single byte.
func (w *Writer) PutUint8(v uint8) { w.buf = append(w.buf, v) }

// PutUint32 appends a big-endian uint32.
func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutUint64 appends a big-endian uint64.
func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutInt64 appends a big-endian two's-complement int64.
func (w *Writer) PutInt64(v int64) { w.PutUint64(uint64(v)) }

// PutFixed appends an exact-length byte slice verbatim (no length prefix);
// the caller's struct layout fixes the length.
func (w *Writer) PutFixed(b []byte) { w.buf = append(w.buf, b...) }

// PutVarBytes appends a minimally-encoded length prefix followed by b.
// The length-prefix scheme mirrors Bitcoin's CompactSize but in
// big-endian and with strict minimal-width enforcement on decode:
//
//	n < 0xfd            -> 1 byte:  n
//	n <= 0xffff          -> 0xfd + 2-byte BE n
//	n <= 0xffffffff       -> 0xfe + 4-byte BE n
//	otherwise             -> 0xff + 8-byte BE n
func (w *Writer) PutVarBytes(b []byte) {
	n := uint64(len(b))
	switch {
	case n < 0xfd:
		w.PutUint8(uint8(n))
	case n <= 0xffff:
		w.PutUint8(0xfd)
		var lb [2]byte
		binary.BigEndian.PutUint16(lb[:], uint16(n))
		w.buf = append(w.buf, lb[:]...)
	case n <= 0xffffffff:
		w.PutUint8(0xfe)
		var lb [4]byte
		binary.BigEndian.PutUint32(lb[:], uint32(n))
		w.buf = append(w.buf, lb[:]...)
	default:
		w.PutUint8(0xff)
		var lb [8]byte
		binary.BigEndian.PutUint64(lb[:], n)
		w.buf = append(w.buf, lb[:]...)
	}
	w.buf = append(w.buf, b...)
}

// Reader consumes a canonical big-endian byte encoding, failing strictly
// on anything non-canonical.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for strict decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Finish fails if any bytes remain unconsumed, enforcing that
// decode_strict rejects trailing garbage.
func (r *Reader) Finish() error {
	if r.Remaining() != 0 {
		return newErr(ErrTrailingBytes, "%d trailing byte(s) after decode", r.Remaining())
	}
	return nil
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return newErr(ErrShortBuffer, "need %d byte(s), have %d", n, r.Remaining())
	}
	return nil
}

// PeekUint8 returns the next byte without consuming it.
func (r *Reader) PeekUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// GetUint8 consumes a single byte.
func (r *Reader) GetUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// GetUint32 consumes a big-endian uint32.
func (r *Reader) GetUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// GetUint64 consumes a big-endian uint64.
func (r *Reader) GetUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// GetInt64 consumes a big-endian two's-complement int64.
func (r *Reader) GetInt64() (int64, error) {
	v, err := r.GetUint64()
	return int64(v), err
}

// GetFixed consumes exactly n bytes verbatim.
func (r *Reader) GetFixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// GetVarBytes consumes a length-prefixed byte string, rejecting
// non-canonical (overlong) length-prefix encodings: a length that could
// have been expressed in a shorter prefix form is a decode error, the
// classic grinding-relevant "two encodings, one value" footgun.
func (r *Reader) GetVarBytes(maxLen int) ([]byte, error) {
	tag, err := r.GetUint8()
	if err != nil {
		return nil, err
	}

	var n uint64
	switch tag {
	case 0xfd:
		b, err := r.GetFixed(2)
		if err != nil {
			return nil, err
		}
		n = uint64(binary.BigEndian.Uint16(b))
		if n < 0xfd {
			return nil, newErr(ErrNonCanonical, "non-canonical 2-byte length prefix for value %d", n)
		}
	case 0xfe:
		b, err := r.GetFixed(4)
		if err != nil {
			return nil, err
		}
		n = uint64(binary.BigEndian.Uint32(b))
		if n <= 0xffff {
			return nil, newErr(ErrNonCanonical, "non-canonical 4-byte length prefix for value %d", n)
		}
	case 0xff:
		b, err := r.GetFixed(8)
		if err != nil {
			return nil, err
		}
		n = binary.BigEndian.Uint64(b)
		if n <= 0xffffffff {
			return nil, newErr(ErrNonCanonical, "non-canonical 8-byte length prefix for value %d", n)
		}
	default:
		n = uint64(tag)
	}

	if maxLen >= 0 && n > uint64(maxLen) {
		return nil, newErr(ErrFieldTooLarge, "length %d exceeds max %d", n, maxLen)
	}
	return r.GetFixed(int(n))
}
