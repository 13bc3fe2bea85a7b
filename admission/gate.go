// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package admission

import (
	"sort"
	"time"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/commitment"
	"github.com/coinjecture/consensus/problem"
)

// ClockSkewWindow is the +/-2h local-clock tolerance of spec section
// 3.1/4.7.
const ClockSkewWindow = 2 * time.Hour

// MedianTimeSpan is the number of previous same-chain timestamps the
// monotonicity check's median is taken over (spec section 3.2 invariant
// 8).
const MedianTimeSpan = 11

// Config bundles the process-configuration values admission checks need
// (spec section 6.5).
type Config struct {
	EpochLength  uint64
	NetworkID    string
	TierLimits   map[problem.Tier]problem.TierLimits
	VerifyBudget map[problem.Tier]problem.Budget
}

// Gate runs the full admission pipeline of spec section 4.7 ahead of the
// budget-limited problem verifier.
type Gate struct {
	cfg      Config
	replay   *ReplayCache
	orphans  *OrphanBuffer
	nonces   *NonceSequencer
	rateGate *RateGate
}

// NewGate constructs a Gate. revealWindow sets the orphan buffer TTL
// (default = EpochLength, per spec section 6.5).
func NewGate(cfg Config, revealWindow time.Duration, rateGate *RateGate) *Gate {
	return &Gate{
		cfg:      cfg,
		replay:   NewReplayCache(),
		orphans:  NewOrphanBuffer(revealWindow),
		nonces:   NewNonceSequencer(),
		rateGate: rateGate,
	}
}

// CheckTimestampWindow enforces the +/-2h clock-skew bound (spec section
// 3.1, boundary behavior in section 8.3: accepted on the inside edge,
// rejected on the outside edge).
func CheckTimestampWindow(timestamp int64, localNow time.Time) error {
	skew := localNow.Unix() - timestamp
	if skew > int64(ClockSkewWindow.Seconds()) || skew < -int64(ClockSkewWindow.Seconds()) {
		return ruleError(ErrTimestampOutOfWindow, "timestamp outside +/-2h clock skew window")
	}
	return nil
}

// CheckTimestampMonotone enforces spec section 3.2 invariant 8: timestamp
// must strictly exceed the median of the previous (up to) 11 timestamps
// on the same chain. Fewer than MedianTimeSpan ancestors (near genesis)
// is not an error; the median is simply taken over what exists.
func CheckTimestampMonotone(timestamp int64, prevTimestamps []int64) error {
	if len(prevTimestamps) == 0 {
		return nil
	}
	n := len(prevTimestamps)
	if n > MedianTimeSpan {
		prevTimestamps = prevTimestamps[n-MedianTimeSpan:]
	}
	sorted := append([]int64(nil), prevTimestamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	median := sorted[len(sorted)/2]
	if timestamp <= median {
		return ruleError(ErrTimestampNotMonotone, "timestamp does not exceed median of ancestry")
	}
	return nil
}

// CheckTier enforces spec section 4.4/4.7 step 3: the problem instance's
// size must lie within its declared tier's hard limits.
func CheckTier(tier problem.Tier, problemSize int, limits map[problem.Tier]problem.TierLimits) error {
	tl, ok := limits[tier]
	if !ok || !tl.Contains(problemSize) {
		return ruleError(ErrTierViolation, "problem size outside declared tier's limits")
	}
	return nil
}

// CheckSignature enforces spec section 4.7 step 2.
func CheckSignature(h *block.Header) error {
	if !h.VerifySignature() {
		return ruleError(ErrSignatureInvalid, "Ed25519 signature does not verify")
	}
	return nil
}

// AdmitHeaderParams carries the context a header admission decision
// needs beyond the header itself.
type AdmitHeaderParams struct {
	Now             time.Time
	ParentKnown     bool
	PrevTimestamps  []int64 // ancestry timestamps, oldest first
	PeerID          []byte
	DerivedAddress  chainhash.Hash // SHA-256(miner_public_key), computed by caller
}

// AdmitHeader runs the syntactic/signature/timestamp/rate checks on a
// header (spec section 4.7 steps 2-4 and 7; decode_strict, step 1, is
// assumed already done by the caller via block.DecodeHeader). It does
// not check tier legality (that needs the reveal's problem instance, not
// yet known for a HEADER_ONLY node) or replay/nonce (those bind to the
// commitment and are checked once the header is known to extend a known
// parent).
func (g *Gate) AdmitHeader(h *block.Header, p AdmitHeaderParams) error {
	if p.PeerID != nil && g.rateGate != nil && !g.rateGate.Allow(p.PeerID, p.Now) {
		return ruleError(ErrRateLimited, "peer exceeded token-bucket rate")
	}

	if h.MinerAddress != p.DerivedAddress {
		return ruleError(ErrSignatureInvalid, "miner_address is not the canonical derivation of miner_public_key")
	}
	if err := CheckSignature(h); err != nil {
		return err
	}
	if err := CheckTimestampWindow(h.Timestamp, p.Now); err != nil {
		return err
	}
	if err := CheckTimestampMonotone(h.Timestamp, p.PrevTimestamps); err != nil {
		return err
	}
	if !p.ParentKnown && !h.ParentHash.IsZero() {
		return ruleError(ErrParentUnknown, "parent_hash references an unknown node")
	}
	return nil
}

// AdmitReveal runs the reveal-side checks of spec section 4.7/3.2: tier
// legality, commitment binding, replay suppression, and nonce
// sequencing. Solution verification (the budget-limited step) is
// deliberately not performed here; it is the caller's (the orchestrator)
// responsibility to run problem.VerifyAny after these cheaper checks
// pass, per spec section 4.7's "none of these checks require expensive
// computation; they run before the budget-limited verifier."
func (g *Gate) AdmitReveal(h *block.Header, rv *block.Reveal, epochSalt chainhash.Hash) error {
	if err := CheckTier(h.Tier, rv.Problem.Size(), g.cfg.TierLimits); err != nil {
		return err
	}
	if !commitment.Verify(h, rv, epochSalt) {
		return ruleError(ErrCommitmentMismatch, "reveal does not bind header's commitment")
	}

	epoch := commitment.EpochNumber(h.BlockIndex, g.cfg.EpochLength)
	if g.replay.SeenOrAdd(h.Commitment, epoch) {
		return ruleError(ErrReplay, "commitment already admitted this epoch")
	}
	if !g.nonces.CheckAndAdvance(h.MinerAddress, epoch, h.BlockIndex) {
		return ruleError(ErrNonceOutOfSequence, "nonce does not monotonically follow miner's prior block_index this epoch")
	}
	return nil
}

// BufferOrphan stores h in the orphan buffer, keyed by its (currently
// unknown) parent.
func (g *Gate) BufferOrphan(h *block.Header, now time.Time) {
	g.orphans.Add(h, now)
}

// ReleaseChildren returns, in arrival order, every header buffered
// awaiting parentHash.
func (g *Gate) ReleaseChildren(parentHash chainhash.Hash, now time.Time) []*block.Header {
	return g.orphans.TakeChildrenOf(parentHash, now)
}

// EvictEpoch drops nonce state for epochs before newEpoch at an epoch
// rollover. The replay cache is not touched here; it rotates itself when
// SeenOrAdd first sees a later epoch.
func (g *Gate) EvictEpoch(newEpoch uint64) {
	g.nonces.EvictEpoch(newEpoch)
}
