// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus implements the orchestrator of spec section 4.10:
// the single entry point that drives classify -> admit -> validate ->
// attach -> fork_choice -> pacer.enqueue for every inbound byte stream,
// runs epoch-rollover housekeeping, and exposes a read-only snapshot for
// downstream consumers.
//
// Per spec section 5's concurrency model, the tree actor is
// single-threaded and all of its mutations are serialized; here that
// serialization is a single mutex guarding the whole pipeline, the
// cooperative-tasks-on-one-goroutine variant the section explicitly
// allows ("a single-threaded cooperative implementation is acceptable
// provided actor serialization is preserved"). The verifier pool's
// parallelism (spec section 5) is left to the caller: problem.VerifyAny
// is a pure function safe to call from any goroutine, so a host that
// wants concurrent verification runs it ahead of Submit and passes in
// only already-verified reveals -- Submit itself still serializes the
// tree mutation that follows.
package consensus

import (
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/coinjecture/consensus/addresses"
	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/blocktree"
	"github.com/coinjecture/consensus/chaincfg"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/commitment"
	"github.com/coinjecture/consensus/difficulty"
	"github.com/coinjecture/consensus/gossip"
	"github.com/coinjecture/consensus/problem"
	"github.com/coinjecture/consensus/wire"
	"github.com/coinjecture/consensus/work"
)

// ancestryWindow bounds how many ancestor timestamps AdmitHeader's
// monotonicity check is given, matching admission.MedianTimeSpan.
const ancestryWindow = admission.MedianTimeSpan

// Orchestrator wires the block tree, admission gate, commitment/problem
// verification, difficulty adjuster, and gossip pacer into the single
// pipeline of spec section 4.10. A value must be constructed with New
// and is safe for concurrent use; every mutating call takes the internal
// lock, matching the tree actor's single-writer invariant (spec section
// 5).
type Orchestrator struct {
	mu sync.Mutex

	params chaincfg.Params
	tree   *blocktree.Tree
	gate   *admission.Gate
	adj    *difficulty.Adjuster
	pacer  *gossip.Pacer
	sink   EventSink

	workConstants map[problem.Tier]work.TierConstants
	reveals       *revealBuffer

	epoch    uint64
	safeMode bool
}

// New constructs an Orchestrator for params, seeding the block tree at
// params.GenesisHeader and the difficulty adjuster at
// params.InitialDifficultyTargets. pacer and sink may be nil; a nil
// pacer disables outbound re-gossip and a nil sink discards events
// (NoopSink).
func New(params chaincfg.Params, rateGate *admission.RateGate, pacer *gossip.Pacer, sink EventSink) *Orchestrator {
	if sink == nil {
		sink = NoopSink{}
	}

	gateCfg := admission.Config{
		EpochLength:  params.EpochLength,
		NetworkID:    params.NetworkID,
		TierLimits:   params.TierLimits,
		VerifyBudget: params.VerifyBudget,
	}
	revealWindow := time.Duration(params.EpochLength) * time.Second

	tree := blocktree.NewTree(params.GenesisHeader).WithDepths(params.FinalityDepth, params.MaxReorgDepth)

	return &Orchestrator{
		params:        params,
		tree:          tree,
		gate:          admission.NewGate(gateCfg, revealWindow, rateGate),
		adj:           difficulty.New(params.DifficultyParams, params.InitialDifficultyTargets),
		pacer:         pacer,
		sink:          sink,
		workConstants: work.DefaultTierConstants(),
		reveals:       newRevealBuffer(revealWindow),
	}
}

// Submit is the ingress HTTP shim's entry point (spec section 6.4):
// submit(bytes) -> AckOrReject. peerID is nil for locally-originated
// submissions (bypasses the rate gate).
func (o *Orchestrator) Submit(peerID []byte, raw []byte, now time.Time) (Ack, error) {
	return o.OnBytesIn(peerID, raw, now)
}

// OnBytesIn implements spec section 4.10's on_bytes_in: decode the outer
// envelope, classify by message type, and run the appropriate admission
// pipeline. Request/response message types answer read-only queries and
// never mutate the tree.
func (o *Orchestrator) OnBytesIn(peerID []byte, raw []byte, now time.Time) (Ack, error) {
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
	}

	switch env.Type {
	case wire.MsgHeader:
		h, err := block.DecodeHeader(env.Payload)
		if err != nil {
			return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
		}
		return o.submitHeader(h, peerID, now)

	case wire.MsgReveal:
		msg, err := wire.DecodeRevealMessage(env.Payload)
		if err != nil {
			return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
		}
		return o.submitReveal(msg.HeaderHash, msg.Reveal, peerID, now)

	case wire.MsgResponseBlock:
		resp, err := wire.DecodeResponseBlock(env.Payload)
		if err != nil {
			return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
		}
		if !resp.Present {
			return Ack{Kind: AckAcceptedDuplicate}, nil
		}
		ack, err := o.submitHeader(resp.Header, peerID, now)
		if err != nil || ack.Kind == AckRejected || !resp.HasReveal {
			return ack, err
		}
		return o.submitReveal(resp.Header.Hash(), resp.Reveal, peerID, now)

	case wire.MsgHeadersRangeResponse:
		resp, err := wire.DecodeHeadersRangeResponse(env.Payload)
		if err != nil {
			return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
		}
		last := Ack{Kind: AckAcceptedDuplicate}
		for _, h := range resp.Headers {
			ack, err := o.submitHeader(h, peerID, now)
			if err != nil {
				return ack, err
			}
			last = ack
		}
		return last, nil

	case wire.MsgRequestBlock, wire.MsgHeadersRangeRequest:
		// Pure read requests; never run through the admission pipeline.
		// Answering them is left to the caller (e.g. from Snapshot).
		return Ack{Kind: AckAcceptedDuplicate}, nil

	default:
		return Ack{Kind: AckRejected, Reason: admission.ErrCodec}, nil
	}
}

// submitHeader runs admission steps 1-4 and 7 (spec section 4.7) on a
// header, attaches it to the tree on success, and releases any buffered
// orphan children or pending reveals that were waiting on it.
func (o *Orchestrator) submitHeader(h *block.Header, peerID []byte, now time.Time) (Ack, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.safeMode {
		return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
	}

	hash := h.Hash()
	if o.tree.HasNode(hash) {
		return Ack{Kind: AckAcceptedDuplicate}, nil
	}

	parentKnown := o.tree.HasNode(h.ParentHash)
	derived := addresses.DeriveMinerAddress(ed25519.PublicKey(h.MinerPublicKey[:]))

	params := admission.AdmitHeaderParams{
		Now:            now,
		ParentKnown:    parentKnown,
		PrevTimestamps: o.ancestryTimestamps(h.ParentHash),
		PeerID:         peerID,
		DerivedAddress: derived,
	}
	if err := o.gate.AdmitHeader(h, params); err != nil {
		ruleErr, ok := err.(admission.RuleError)
		if !ok {
			o.enterSafeMode(fmt.Errorf("admit header: %w", err))
			return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
		}
		if ruleErr.ErrorCode == admission.ErrParentUnknown {
			o.gate.BufferOrphan(h, now)
		}
		return Ack{Kind: AckRejected, Reason: ruleErr.ErrorCode}, nil
	}

	node, err := o.tree.AttachHeaderOnly(h, now)
	if err != nil {
		ruleErr, ok := err.(admission.RuleError)
		if !ok {
			o.enterSafeMode(fmt.Errorf("attach header: %w", err))
			return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
		}
		return Ack{Kind: AckRejected, Reason: ruleErr.ErrorCode}, nil
	}

	o.maybeRolloverEpoch(h.BlockIndex)
	o.enqueueOut(gossip.KindHeader, h.Encode())

	log.Tracef("admitted header %v at height %d: %v", node.HeaderHash, node.Height, spew.Sdump(h))

	o.admitReadyChildrenLocked(node.HeaderHash, now)
	o.admitReadyRevealsLocked(node.HeaderHash, peerID, now)

	return Ack{Kind: AckAccepted}, nil
}

// submitReveal runs the reveal-side admission checks (spec section
// 4.7/3.2), the budget-limited problem verifier (spec section 4.4), and
// attaches the reveal to its header's node on success.
func (o *Orchestrator) submitReveal(headerHash chainhash.Hash, rv *block.Reveal, peerID []byte, now time.Time) (Ack, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.safeMode {
		return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
	}

	node, ok := o.tree.Node(headerHash)
	if !ok {
		// Header not yet known; buffer the reveal (spec section 8.3).
		o.reveals.add(headerHash, rv, now)
		return Ack{Kind: AckRejected, Reason: admission.ErrParentUnknown}, nil
	}
	if node.State != blocktree.HeaderOnly {
		return Ack{Kind: AckAcceptedDuplicate}, nil
	}

	epoch := commitment.EpochNumber(node.Header.BlockIndex, o.params.EpochLength)
	epochSalt := commitment.EpochSalt(epoch, o.params.NetworkID)

	if err := o.gate.AdmitReveal(node.Header, rv, epochSalt); err != nil {
		ruleErr, ok := err.(admission.RuleError)
		if !ok {
			o.enterSafeMode(fmt.Errorf("admit reveal: %w", err))
			return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
		}
		return Ack{Kind: AckRejected, Reason: ruleErr.ErrorCode}, nil
	}

	budget := o.params.VerifyBudget[node.Header.Tier]
	outcome, err := problem.VerifyAny(rv.Problem, rv.Solution, budget)
	if err != nil {
		o.enterSafeMode(fmt.Errorf("verify reveal: %w", err))
		return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
	}
	switch outcome {
	case problem.BudgetExceeded:
		return Ack{Kind: AckRejected, Reason: admission.ErrBudgetExceeded}, nil
	case problem.Invalid:
		return Ack{Kind: AckRejected, Reason: admission.ErrVerificationInvalid}, nil
	}

	score := work.Score(node.Header.Tier, rv.Problem.Size(), rv.Measured, o.workConstants)

	_, reorg, finalized, err := o.tree.AttachReveal(headerHash, rv, score)
	if err != nil {
		ruleErr, ok := err.(admission.RuleError)
		if !ok || ruleErr.ErrorCode == admission.ErrInternal {
			o.enterSafeMode(fmt.Errorf("attach reveal: %w", err))
			return Ack{Kind: AckRejected, Reason: admission.ErrInternal}, nil
		}
		return Ack{Kind: AckRejected, Reason: ruleErr.ErrorCode}, nil
	}

	o.adj.Observe(node.Header.Tier, node.Header.Timestamp)

	if reorg != nil {
		o.sink.Reorg(reorg)
	}
	if finalized != nil {
		o.sink.Finalized(finalized)
	}

	msg := &wire.RevealMessage{HeaderHash: headerHash, Reveal: rv}
	o.enqueueOut(gossip.KindReveal, msg.Encode())

	return Ack{Kind: AckAccepted}, nil
}

// admitReadyChildrenLocked re-runs admission for every header previously
// buffered as an orphan of parentHash, now that parentHash is known.
// Must be called with mu held.
func (o *Orchestrator) admitReadyChildrenLocked(parentHash chainhash.Hash, now time.Time) {
	for _, child := range o.gate.ReleaseChildren(parentHash, now) {
		o.mu.Unlock()
		o.submitHeader(child, nil, now)
		o.mu.Lock()
	}
}

// admitReadyRevealsLocked re-runs admission for every reveal previously
// buffered awaiting headerHash. Must be called with mu held.
func (o *Orchestrator) admitReadyRevealsLocked(headerHash chainhash.Hash, peerID []byte, now time.Time) {
	for _, rv := range o.reveals.take(headerHash, now) {
		o.mu.Unlock()
		o.submitReveal(headerHash, rv, peerID, now)
		o.mu.Lock()
	}
}

// ancestryTimestamps walks up to ancestryWindow ancestors of parentHash,
// oldest first, for admission's monotonicity check. Must be called with
// mu held.
func (o *Orchestrator) ancestryTimestamps(parentHash chainhash.Hash) []int64 {
	var out []int64
	cur, ok := o.tree.Node(parentHash)
	for ok && len(out) < ancestryWindow {
		out = append(out, cur.Header.Timestamp)
		cur, ok = o.tree.Node(cur.Header.ParentHash)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// maybeRolloverEpoch implements spec section 4.10's on_epoch_rollover:
// recompute salt (implicitly, via commitment.EpochSalt's pure function
// of epoch number), prune the nonce cache (the replay cache rotates
// itself on the first commitment of a later epoch), and run the difficulty
// adjuster, once per epoch boundary crossed by an admitted header's
// block_index. Must be called with mu held.
func (o *Orchestrator) maybeRolloverEpoch(blockIndex uint64) {
	if blockIndex == 0 || blockIndex%o.params.EpochLength != 0 {
		return
	}
	newEpoch := blockIndex / o.params.EpochLength
	if newEpoch <= o.epoch {
		return
	}
	o.epoch = newEpoch
	o.gate.EvictEpoch(newEpoch)
	for tier := range o.params.DifficultyParams {
		o.adj.RolloverEpoch(tier)
	}
	log.Infof("epoch rollover: now epoch %d", newEpoch)
}

// enqueueOut hands an accepted message to the gossip pacer for paced
// re-broadcast (spec section 4.9/4.10). A nil pacer (e.g. a
// non-broadcasting observer node) is a silent no-op.
func (o *Orchestrator) enqueueOut(kind gossip.Kind, payload []byte) {
	if o.pacer == nil {
		return
	}
	o.pacer.Enqueue(gossip.Item{Kind: kind, Payload: payload})
}

// enterSafeMode transitions the orchestrator to a read-only safe mode
// after an Internal invariant failure (spec section 7: "the core
// transitions to a safe read-only mode and signals the operator"). Must
// be called with mu held.
func (o *Orchestrator) enterSafeMode(cause error) {
	o.safeMode = true
	log.Criticalf("consensus: entering safe mode after internal invariant failure: %v", cause)
}

// SafeMode reports whether the orchestrator has entered read-only safe
// mode.
func (o *Orchestrator) SafeMode() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.safeMode
}

// ChainView is a read-only, point-in-time view of chain state for
// external consumers (spec section 4.10's snapshot() -> ChainView).
type ChainView struct {
	Tip               blocktree.ChainTip
	Epoch             uint64
	DifficultyTargets map[problem.Tier]uint64
	SafeMode          bool
}

// Snapshot implements spec section 4.10's snapshot() -> ChainView.
func (o *Orchestrator) Snapshot() ChainView {
	o.mu.Lock()
	defer o.mu.Unlock()

	targets := make(map[problem.Tier]uint64, len(o.params.DifficultyParams))
	for tier := range o.params.DifficultyParams {
		targets[tier] = o.adj.DifficultyTarget(tier)
	}

	return ChainView{
		Tip:               o.tree.Tip(),
		Epoch:             o.epoch,
		DifficultyTargets: targets,
		SafeMode:          o.safeMode,
	}
}
