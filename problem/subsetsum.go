// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package problem

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/codec"
)

// Kind identifies a problem/solution variant in the open-ended registry
// (spec section 3.1). Subset-Sum is the only shipped variant.
type Kind uint8

const (
	// KindSubsetSum is the primary, shipped problem variant.
	KindSubsetSum Kind = 0
)

func (k Kind) String() string {
	switch k {
	case KindSubsetSum:
		return "SubsetSum"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// maxElements is a hard ceiling on instance size independent of tier,
// guarding the codec against a pathological decode before tier legality
// is even checked.
const maxElements = 4096

// SubsetSumInstance is the Problem variant: find a subset of elements
// summing to target (spec section 3.1).
type SubsetSumInstance struct {
	Elements []int64
	Target   int64
}

// Kind implements Problem.
func (s *SubsetSumInstance) Kind() Kind { return KindSubsetSum }

// Size returns the element count, the quantity tier legality is checked
// against (spec section 4.4).
func (s *SubsetSumInstance) Size() int { return len(s.Elements) }

// Encode writes the canonical encoding of the instance: element count
// prefix, each element as a big-endian int64, then the target.
func (s *SubsetSumInstance) Encode(w *codec.Writer) {
	w.PutUint8(uint8(KindSubsetSum))
	w.PutUint32(uint32(len(s.Elements)))
	for _, e := range s.Elements {
		w.PutInt64(e)
	}
	w.PutInt64(s.Target)
}

// DecodeSubsetSumInstance decodes a SubsetSumInstance assuming the kind
// tag has already been consumed by the caller (see DecodeProblem).
func DecodeSubsetSumInstance(r *codec.Reader) (*SubsetSumInstance, error) {
	n, err := r.GetUint32()
	if err != nil {
		return nil, err
	}
	if n > maxElements {
		return nil, fmt.Errorf("problem: element count %d exceeds hard ceiling %d", n, maxElements)
	}
	elements := make([]int64, n)
	for i := range elements {
		v, err := r.GetInt64()
		if err != nil {
			return nil, err
		}
		elements[i] = v
	}
	target, err := r.GetInt64()
	if err != nil {
		return nil, err
	}
	return &SubsetSumInstance{Elements: elements, Target: target}, nil
}

// Hash returns the canonical-encoding SHA-256 digest of the instance,
// the `hash(problem)` the commitment engine binds to (spec section 4.3).
func (s *SubsetSumInstance) Hash() chainhash.Hash {
	w := codec.NewWriter(16 + len(s.Elements)*8)
	s.Encode(w)
	sum := sha256.Sum256(w.Bytes())
	return chainhash.Hash(sum)
}

// SubsetSumSolution is the Solution variant: indices into the instance's
// Elements slice that sum to Target.
type SubsetSumSolution struct {
	Indices []uint32
}

// Kind implements Solution.
func (s *SubsetSumSolution) Kind() Kind { return KindSubsetSum }

// Encode writes the canonical encoding of the solution.
func (s *SubsetSumSolution) Encode(w *codec.Writer) {
	w.PutUint8(uint8(KindSubsetSum))
	w.PutUint32(uint32(len(s.Indices)))
	for _, idx := range s.Indices {
		w.PutUint32(idx)
	}
}

// DecodeSubsetSumSolution decodes a SubsetSumSolution assuming the kind
// tag has already been consumed by the caller.
func DecodeSubsetSumSolution(r *codec.Reader) (*SubsetSumSolution, error) {
	n, err := r.GetUint32()
	if err != nil {
		return nil, err
	}
	if n > maxElements {
		return nil, fmt.Errorf("problem: solution index count %d exceeds hard ceiling %d", n, maxElements)
	}
	indices := make([]uint32, n)
	for i := range indices {
		v, err := r.GetUint32()
		if err != nil {
			return nil, err
		}
		indices[i] = v
	}
	return &SubsetSumSolution{Indices: indices}, nil
}

// Hash returns the canonical-encoding SHA-256 digest of the solution,
// the `hash(solution)` the commitment engine binds to. Binding to
// H(solution) (rather than the solution itself) is what stops a miner
// from committing to a problem parameterization and then swapping in a
// different solution after the fact (spec section 4.3).
func (s *SubsetSumSolution) Hash() chainhash.Hash {
	w := codec.NewWriter(8 + len(s.Indices)*4)
	s.Encode(w)
	sum := sha256.Sum256(w.Bytes())
	return chainhash.Hash(sum)
}

// expand is the deterministic byte-stream generator backing Generate:
// expand(seed, i) = SHA256(seed || be64(i)). Built only from SHA-256, the
// one hash primitive spec section 1 permits, so instance generation is
// bit-for-bit identical across platforms without reaching for a
// general-purpose PRNG whose internals aren't specified at that level.
func expand(seed [32]byte, counter uint64) [32]byte {
	var buf [40]byte
	copy(buf[:32], seed[:])
	binary.BigEndian.PutUint64(buf[32:], counter)
	return sha256.Sum256(buf[:])
}

// elementBound scales with the difficulty target so that higher
// difficulty produces a wider, harder-to-search element range.
func elementBound(difficultyTarget uint64) int64 {
	bound := int64(1<<20) + int64(difficultyTarget%(1<<40))
	if bound < 2 {
		bound = 2
	}
	return bound
}

// Generate deterministically builds a Subset-Sum instance from seed,
// tier, and difficultyTarget (spec section 4.4): n is drawn from the
// seed's first expanded block within the tier's legal element-count
// range, element magnitudes scale with difficultyTarget, and
// a subset of the generated elements is planted so a solution is
// guaranteed to exist. Two nodes calling Generate with identical inputs
// produce byte-identical instances.
func Generate(seed [32]byte, tier Tier, difficultyTarget uint64, limits map[Tier]TierLimits) (*SubsetSumInstance, error) {
	tl, ok := limits[tier]
	if !ok {
		return nil, fmt.Errorf("problem: unknown tier %v", tier)
	}
	span := tl.MaxElements - tl.MinElements + 1
	stream0 := expand(seed, 0)
	n := tl.MinElements + int(binary.BigEndian.Uint32(stream0[:4])%uint32(span))

	bound := elementBound(difficultyTarget)
	elements := make([]int64, n)
	planted := make([]bool, n)
	var target int64
	anyPlanted := false

	for i := 0; i < n; i++ {
		s := expand(seed, uint64(i)+1)
		v := int64(binary.BigEndian.Uint64(s[:8])%uint64(bound)) + 1
		elements[i] = v

		bit := s[8] & 1
		if bit == 1 {
			planted[i] = true
			anyPlanted = true
			target += v
		}
	}
	if !anyPlanted {
		// Force at least one planted element so the instance is
		// solvable; index 0 is as good as any other deterministic
		// choice.
		planted[0] = true
		target += elements[0]
	}

	return &SubsetSumInstance{Elements: elements, Target: target}, nil
}

// Verify checks solution against instance within budget, per spec
// section 4.4: (i) index-count and uniqueness/range bound in O(n) ops,
// (ii) sum selected elements in big.Int (elements are full int64 range
// and CheckTier bounds count, never magnitude, so a plain int64
// accumulator can overflow), charging one op per element examined and
// per addition, (iii) compare to target. Verification is also bounded
// by wall-clock time, sampled every budget.CheckInterval ops, in
// addition to budget.MaxOps; exhausting either bound mid-verification
// returns BudgetExceeded, never Valid.
func Verify(instance *SubsetSumInstance, solution *SubsetSumSolution, budget Budget) (Outcome, error) {
	if instance == nil || solution == nil {
		return Invalid, fmt.Errorf("problem: nil instance or solution")
	}

	n := len(instance.Elements)
	if len(solution.Indices) > n {
		return Invalid, nil
	}

	start := time.Now()
	var ops uint64
	checkpoint := func() bool {
		ops++
		if ops > budget.MaxOps {
			return false
		}
		if budget.CheckInterval > 0 && ops%budget.CheckInterval == 0 {
			if budget.MaxDuration > 0 && time.Since(start) > budget.MaxDuration {
				return false
			}
		}
		return true
	}

	seen := make(map[uint32]struct{}, len(solution.Indices))
	for _, idx := range solution.Indices {
		if !checkpoint() {
			return BudgetExceeded, nil
		}
		if idx >= uint32(n) {
			return Invalid, nil
		}
		if _, dup := seen[idx]; dup {
			return Invalid, nil
		}
		seen[idx] = struct{}{}
	}

	sum := new(big.Int)
	for _, idx := range solution.Indices {
		if !checkpoint() {
			return BudgetExceeded, nil
		}
		sum.Add(sum, big.NewInt(instance.Elements[idx]))
	}

	if sum.Cmp(big.NewInt(instance.Target)) == 0 {
		return Valid, nil
	}
	return Invalid, nil
}

// Solve runs a meet-in-the-middle search for a subset of instance summing
// to target. This is the prover-side operation: real mining work, not a
// consensus rule. It is exposed for tests, simulation, and the reference
// miner, bounded to tier-legal instance sizes (<=32 elements) where
// meet-in-the-middle (2^(n/2) per half) is tractable.
func Solve(instance *SubsetSumInstance) (*SubsetSumSolution, bool) {
	n := len(instance.Elements)
	if n == 0 {
		if instance.Target == 0 {
			return &SubsetSumSolution{}, true
		}
		return nil, false
	}

	half := n / 2
	left := instance.Elements[:half]
	right := instance.Elements[half:]

	type sumIdx struct {
		sum     int64
		indices []uint32
	}
	enumerate := func(elems []int64, offset int) []sumIdx {
		out := make([]sumIdx, 0, 1<<uint(len(elems)))
		for mask := 0; mask < (1 << uint(len(elems))); mask++ {
			var s int64
			var idxs []uint32
			for i := 0; i < len(elems); i++ {
				if mask&(1<<uint(i)) != 0 {
					s += elems[i]
					idxs = append(idxs, uint32(offset+i))
				}
			}
			out = append(out, sumIdx{sum: s, indices: idxs})
		}
		return out
	}

	leftSums := enumerate(left, 0)
	rightSums := enumerate(right, half)

	sort.Slice(rightSums, func(i, j int) bool { return rightSums[i].sum < rightSums[j].sum })
	rightVals := make([]int64, len(rightSums))
	for i, rs := range rightSums {
		rightVals[i] = rs.sum
	}

	for _, ls := range leftSums {
		need := instance.Target - ls.sum
		i := sort.Search(len(rightVals), func(i int) bool { return rightVals[i] >= need })
		if i < len(rightVals) && rightVals[i] == need {
			indices := make([]uint32, 0, len(ls.indices)+len(rightSums[i].indices))
			indices = append(indices, ls.indices...)
			indices = append(indices, rightSums[i].indices...)
			return &SubsetSumSolution{Indices: indices}, true
		}
	}
	return nil, false
}
