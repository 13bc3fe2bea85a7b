// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package problem

import (
	"fmt"

	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/codec"
)

// Problem is the open-ended instance interface every problem variant
// implements (spec section 3.1/4.4): deterministic generation from a
// seed, a canonical hash, and a size used for tier legality.
type Problem interface {
	Kind() Kind
	Size() int
	Hash() chainhash.Hash
	Encode(w *codec.Writer)
}

// Solution is the witness interface every problem variant's solution
// implements.
type Solution interface {
	Kind() Kind
	Hash() chainhash.Hash
	Encode(w *codec.Writer)
}

// EncodeProblem writes a tagged-union encoding: a Kind byte followed by
// the variant's own encoding. The strict decoder (DecodeProblem) rejects
// unknown tags outright, per spec section 4.1.
func EncodeProblem(p Problem, w *codec.Writer) {
	p.Encode(w)
}

// DecodeProblem reads a tagged-union Problem, dispatching on the leading
// Kind byte. The registry peeks the tag to route, then consumes it before
// calling the variant's decoder, which reads only the body (each
// variant's Encode still writes the tag itself).
func DecodeProblem(r *codec.Reader) (Problem, error) {
	kind, err := peekKind(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSubsetSum:
		if _, err := r.GetUint8(); err != nil {
			return nil, err
		}
		return DecodeSubsetSumInstance(r)
	default:
		return nil, fmt.Errorf("problem: unknown problem kind %d", kind)
	}
}

// DecodeSolution reads a tagged-union Solution.
func DecodeSolution(r *codec.Reader) (Solution, error) {
	kind, err := peekKind(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSubsetSum:
		if _, err := r.GetUint8(); err != nil {
			return nil, err
		}
		return DecodeSubsetSumSolution(r)
	default:
		return nil, fmt.Errorf("problem: unknown solution kind %d", kind)
	}
}

// peekKind reads the tag byte without advancing the reader; this keeps
// the tag-dispatch logic in one place (registry.go), which also consumes
// the byte before handing off to a variant's body decoder,
// matching the tagged-union contract of spec section 4.1 (the codec
// rejects unknown tags; no duck-typed payloads reach callers).
func peekKind(r *codec.Reader) (Kind, error) {
	tag, err := r.PeekUint8()
	if err != nil {
		return 0, err
	}
	return Kind(tag), nil
}

// VerifyAny dispatches Verify to the correct variant after checking the
// problem and solution declare the same Kind -- a solution for a
// different variant can never validate, regardless of its contents
// (spec section 3.1: Solution variant must match Problem variant).
func VerifyAny(p Problem, s Solution, budget Budget) (Outcome, error) {
	if p.Kind() != s.Kind() {
		return Invalid, nil
	}
	switch inst := p.(type) {
	case *SubsetSumInstance:
		sol, ok := s.(*SubsetSumSolution)
		if !ok {
			return Invalid, nil
		}
		return Verify(inst, sol, budget)
	default:
		return Invalid, fmt.Errorf("problem: unsupported problem kind %v", p.Kind())
	}
}
