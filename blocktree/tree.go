// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocktree

import (
	"time"

	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
)

// ChainTip identifies the node currently selected as this tree's head
// (spec section 3.1: ChainTip).
type ChainTip struct {
	HeaderHash     chainhash.Hash
	CumulativeWork float64
	Height         uint64
}

// ReorgEvent lists the blocks unwound and applied by a tip switch, in
// order, for idempotent downstream consumption (spec section 4.8).
type ReorgEvent struct {
	Unwound []chainhash.Hash
	Applied []chainhash.Hash
}

// FinalizedEvent lists nodes that newly transitioned to FINAL.
type FinalizedEvent struct {
	HeaderHashes []chainhash.Hash
}

// FinalityDepth is k, the default depth at which a block transitions to
// FINAL (spec section 3.2 invariant 11 / section 6.5).
const FinalityDepth = 32

// MaxReorgDepth is D, the default bound on how far a reorg may unwind
// below the current tip (spec section 3.2 invariant 10 / section 6.5).
const MaxReorgDepth = 100

// Tree is the single-actor-owned block DAG.
type Tree struct {
	nodes map[chainhash.Hash]*Node
	tip   chainhash.Hash

	finalityDepth uint64
	maxReorgDepth uint64

	finalHeight uint64 // height of the highest FINAL node; 0 at genesis-only
	arrivalSeq  uint64

	// pendingCumulative holds, per parent hash, the children that are
	// Revealed but whose cumulative work cannot yet be computed because
	// the parent's own cumulative work is not yet known.
	pendingCumulative map[chainhash.Hash][]chainhash.Hash
}

// NewTree seeds a Tree with genesisHeader, whose parent_hash must be the
// zero hash. Genesis is immediately Revealed with CumulativeWork 0 (spec
// section 4.8).
func NewTree(genesisHeader *block.Header) *Tree {
	t := &Tree{
		nodes:             make(map[chainhash.Hash]*Node),
		finalityDepth:     FinalityDepth,
		maxReorgDepth:     MaxReorgDepth,
		pendingCumulative: make(map[chainhash.Hash][]chainhash.Hash),
	}
	hash := genesisHeader.Hash()
	genesis := &Node{
		HeaderHash:      hash,
		Header:          genesisHeader,
		Height:          0,
		State:           Revealed,
		CumulativeWork:  0,
		cumulativeKnown: true,
		ArrivalTime:     time.Now(),
	}
	t.nodes[hash] = genesis
	t.tip = hash
	return t
}

// WithDepths overrides the default finality depth / max reorg depth,
// used by tests exercising spec section 8.4 scenarios 3 and 4 with
// smaller bounds.
func (t *Tree) WithDepths(finalityDepth, maxReorgDepth uint64) *Tree {
	t.finalityDepth = finalityDepth
	t.maxReorgDepth = maxReorgDepth
	return t
}

// Node looks up a node by header hash.
func (t *Tree) Node(hash chainhash.Hash) (*Node, bool) {
	n, ok := t.nodes[hash]
	return n, ok
}

// HasNode reports whether hash is a known node (spec section 3.2
// invariant 2: parent linkage check input).
func (t *Tree) HasNode(hash chainhash.Hash) bool {
	_, ok := t.nodes[hash]
	return ok
}

// Tip returns the currently selected chain tip.
func (t *Tree) Tip() ChainTip {
	n := t.nodes[t.tip]
	return ChainTip{HeaderHash: t.tip, CumulativeWork: n.CumulativeWork, Height: n.Height}
}

// AttachHeaderOnly admits h as a new HEADER_ONLY node. The parent must
// already be known (or h must be genesis-shaped with the zero parent
// hash, which NewTree already consumed, so in practice every call here
// requires a known parent).
func (t *Tree) AttachHeaderOnly(h *block.Header, now time.Time) (*Node, error) {
	hash := h.Hash()
	if _, exists := t.nodes[hash]; exists {
		return t.nodes[hash], nil
	}
	parent, ok := t.nodes[h.ParentHash]
	if !ok {
		return nil, admission.RuleError{ErrorCode: admission.ErrParentUnknown, Description: "parent_hash references an unknown node"}
	}

	t.arrivalSeq++
	n := &Node{
		HeaderHash:  hash,
		Header:      h,
		Height:      parent.Height + 1,
		State:       HeaderOnly,
		ArrivalSeq:  t.arrivalSeq,
		ArrivalTime: now,
	}
	t.nodes[hash] = n
	parent.Children = append(parent.Children, hash)
	return n, nil
}

// AttachReveal marks headerHash's node Revealed with the given reveal and
// work score, then recomputes fork choice (spec section 4.8: "Fork-choice
// recomputation occurs after each successful attachment; never
// partially"). It returns the reorg event, if the tip changed, and the
// finality event, if any node newly finalized.
func (t *Tree) AttachReveal(headerHash chainhash.Hash, reveal *block.Reveal, workScore float64) (*Node, *ReorgEvent, *FinalizedEvent, error) {
	n, ok := t.nodes[headerHash]
	if !ok {
		return nil, nil, nil, admission.RuleError{ErrorCode: admission.ErrParentUnknown, Description: "no header admitted for this hash yet"}
	}
	if n.State != HeaderOnly {
		// Idempotent re-submission (spec section 8.2: "idempotence of
		// admission"): leave tree state unchanged.
		return n, nil, nil, nil
	}
	if workScore <= 0 {
		return nil, nil, nil, admission.RuleError{ErrorCode: admission.ErrInternal, Description: "work score must be strictly positive"}
	}

	n.Reveal = reveal
	n.WorkScore = workScore
	n.State = Revealed

	t.resolveCumulative(n)

	reorg := t.recomputeForkChoice()
	finalized := t.advanceFinality()
	return n, reorg, finalized, nil
}

// resolveCumulative computes n's cumulative work if its parent's is
// already known, then recursively resolves any children that were
// waiting on n.
func (t *Tree) resolveCumulative(n *Node) {
	parent, ok := t.nodes[n.Header.ParentHash]
	if !ok || !parent.cumulativeKnown {
		t.pendingCumulative[n.Header.ParentHash] = append(t.pendingCumulative[n.Header.ParentHash], n.HeaderHash)
		return
	}
	n.CumulativeWork = parent.CumulativeWork + n.WorkScore
	n.cumulativeKnown = true

	waiting := t.pendingCumulative[n.HeaderHash]
	delete(t.pendingCumulative, n.HeaderHash)
	for _, childHash := range waiting {
		if child, ok := t.nodes[childHash]; ok && child.State != HeaderOnly {
			t.resolveCumulative(child)
		}
	}
}

// recomputeForkChoice selects the heaviest-work REVEALED/FINAL node as
// the new tip, breaking exact cumulative-work ties by (a) lowest
// header_hash lexicographically then (b) earliest local arrival time
// (spec section 4.8). Tie-break (b) only influences which of two
// already-accepted equal-work tips this node extends locally; it never
// changes what the node accepts from peers (that is governed entirely by
// cumulative_work and tie-break (a) applied identically everywhere).
func (t *Tree) recomputeForkChoice() *ReorgEvent {
	best := t.nodes[t.tip]
	for _, n := range t.nodes {
		if n.State == HeaderOnly || !n.cumulativeKnown {
			continue
		}
		if n.HeaderHash == best.HeaderHash {
			continue
		}
		if n.CumulativeWork > best.CumulativeWork {
			best = n
			continue
		}
		if n.CumulativeWork == best.CumulativeWork {
			switch {
			case n.HeaderHash.Less(best.HeaderHash):
				best = n
			case best.HeaderHash.Less(n.HeaderHash):
				// best already wins tie-break (a); keep it.
			case n.ArrivalTime.Before(best.ArrivalTime):
				best = n
			}
		}
	}

	if best.HeaderHash == t.tip {
		return nil
	}

	oldTip := t.tip
	ancestor, unwound, applied, ok := t.pathBetween(oldTip, best.HeaderHash)
	if !ok {
		return nil
	}

	oldDepth := t.nodes[oldTip].Height - t.nodes[ancestor].Height
	if oldDepth > t.maxReorgDepth || t.nodes[ancestor].Height < t.finalHeight {
		// Refuse: prune the offending branch instead of switching
		// (spec section 3.2 invariant 10, section 4.8 "Reorg"). A switch
		// whose common ancestor lies below the highest FINAL node would
		// unwind a FINAL node and is refused the same way.
		t.pruneBranch(best.HeaderHash)
		return nil
	}

	t.tip = best.HeaderHash
	log.Debugf("reorg: tip %v -> %v (unwound %d, applied %d)", oldTip, best.HeaderHash, len(unwound), len(applied))
	return &ReorgEvent{Unwound: unwound, Applied: applied}
}

// pathBetween finds the common ancestor of a and b by walking both back
// to equal height then together, and returns the unwound (a-side, tip to
// ancestor, exclusive) and applied (b-side, ancestor to tip, exclusive)
// hash lists in chain order.
func (t *Tree) pathBetween(a, b chainhash.Hash) (ancestor chainhash.Hash, unwound, applied []chainhash.Hash, ok bool) {
	an, aok := t.nodes[a]
	bn, bok := t.nodes[b]
	if !aok || !bok {
		return chainhash.Hash{}, nil, nil, false
	}

	var aPath, bPath []chainhash.Hash
	for an.Height > bn.Height {
		aPath = append(aPath, an.HeaderHash)
		an = t.nodes[an.Header.ParentHash]
	}
	for bn.Height > an.Height {
		bPath = append(bPath, bn.HeaderHash)
		bn = t.nodes[bn.Header.ParentHash]
	}
	for an.HeaderHash != bn.HeaderHash {
		aPath = append(aPath, an.HeaderHash)
		bPath = append(bPath, bn.HeaderHash)
		an = t.nodes[an.Header.ParentHash]
		bn = t.nodes[bn.Header.ParentHash]
	}

	// bPath was built tip-to-ancestor; reverse for ancestor-to-tip
	// "applied" order.
	for i, j := 0, len(bPath)-1; i < j; i, j = i+1, j-1 {
		bPath[i], bPath[j] = bPath[j], bPath[i]
	}

	return an.HeaderHash, aPath, bPath, true
}

// pruneBranch removes hash and every descendant of it from the tree, a
// refused reorg's branch never gets another chance to be selected.
func (t *Tree) pruneBranch(hash chainhash.Hash) {
	n, ok := t.nodes[hash]
	if !ok {
		return
	}
	for _, c := range n.Children {
		t.pruneBranch(c)
	}
	if parent, ok := t.nodes[n.Header.ParentHash]; ok {
		kept := parent.Children[:0]
		for _, c := range parent.Children {
			if c != hash {
				kept = append(kept, c)
			}
		}
		parent.Children = kept
	}
	delete(t.nodes, hash)
}

// advanceFinality marks every ancestor of the current tip at depth >= k
// FINAL, walking up from the tip and stopping at the first already-FINAL
// node (everything above it is already final, spec section 4.8
// "Finality").
func (t *Tree) advanceFinality() *FinalizedEvent {
	tip := t.nodes[t.tip]
	if tip.Height < t.finalityDepth {
		return nil
	}
	cutoffHeight := tip.Height - t.finalityDepth

	var newlyFinal []chainhash.Hash
	cur := tip
	for {
		if cur.State == Final {
			break
		}
		if cur.Height <= cutoffHeight {
			cur.State = Final
			newlyFinal = append(newlyFinal, cur.HeaderHash)
		}
		if cur.Header.ParentHash.IsZero() {
			break
		}
		parent, ok := t.nodes[cur.Header.ParentHash]
		if !ok {
			break
		}
		cur = parent
	}
	if len(newlyFinal) == 0 {
		return nil
	}
	if cutoffHeight > t.finalHeight {
		t.finalHeight = cutoffHeight
	}
	return &FinalizedEvent{HeaderHashes: newlyFinal}
}
