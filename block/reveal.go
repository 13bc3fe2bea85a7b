// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/coinjecture/consensus/codec"
	"github.com/coinjecture/consensus/problem"
)

// ComplexityRecord is the miner's self-reported solve cost (spec section
// 3.1), consumed by the work scorer to compute a block's work score.
type ComplexityRecord struct {
	SolveTimeMillis uint64
	PeakMemoryClass uint8
	AttemptCount    uint32
}

func (c *ComplexityRecord) encode(w *codec.Writer) {
	w.PutUint64(c.SolveTimeMillis)
	w.PutUint8(c.PeakMemoryClass)
	w.PutUint32(c.AttemptCount)
}

func decodeComplexityRecord(r *codec.Reader) (ComplexityRecord, error) {
	var c ComplexityRecord
	var err error
	if c.SolveTimeMillis, err = r.GetUint64(); err != nil {
		return c, err
	}
	if c.PeakMemoryClass, err = r.GetUint8(); err != nil {
		return c, err
	}
	if c.AttemptCount, err = r.GetUint32(); err != nil {
		return c, err
	}
	return c, nil
}

// Reveal is the witness data released in the block body, binding a
// header's commitment (spec section 3.1).
type Reveal struct {
	Problem  problem.Problem
	Solution problem.Solution
	MinerSalt [32]byte
	Measured  ComplexityRecord
}

// Encode writes the canonical encoding of the reveal.
func (rv *Reveal) Encode() []byte {
	w := codec.NewWriter(256)
	rv.Problem.Encode(w)
	rv.Solution.Encode(w)
	w.PutFixed(rv.MinerSalt[:])
	rv.Measured.encode(w)
	return w.Bytes()
}

// DecodeReveal strictly decodes a transport-encoded reveal.
func DecodeReveal(b []byte) (*Reveal, error) {
	r := codec.NewReader(b)
	rv := &Reveal{}

	p, err := problem.DecodeProblem(r)
	if err != nil {
		return nil, fmt.Errorf("block: decode reveal problem: %w", err)
	}
	rv.Problem = p

	s, err := problem.DecodeSolution(r)
	if err != nil {
		return nil, fmt.Errorf("block: decode reveal solution: %w", err)
	}
	rv.Solution = s

	saltBytes, err := r.GetFixed(32)
	if err != nil {
		return nil, err
	}
	copy(rv.MinerSalt[:], saltBytes)

	measured, err := decodeComplexityRecord(r)
	if err != nil {
		return nil, err
	}
	rv.Measured = measured

	if err := r.Finish(); err != nil {
		return nil, err
	}
	return rv, nil
}
