// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/addresses"
	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/blocktree"
	"github.com/coinjecture/consensus/chaincfg"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/commitment"
	"github.com/coinjecture/consensus/merkle"
	"github.com/coinjecture/consensus/problem"
	"github.com/coinjecture/consensus/wire"
)

// recordingSink captures every event emitted by an Orchestrator for test
// assertions.
type recordingSink struct {
	mu         sync.Mutex
	reorgs     []*blocktree.ReorgEvent
	finalized  []*blocktree.FinalizedEvent
}

func (s *recordingSink) Reorg(ev *blocktree.ReorgEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorgs = append(s.reorgs, ev)
}

func (s *recordingSink) Finalized(ev *blocktree.FinalizedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = append(s.finalized, ev)
}

// testParams returns a copy of chaincfg.TestNetParams with a long epoch
// (so the small test chains never cross a rollover boundary) unless a
// test overrides it.
func testParams(t *testing.T) chaincfg.Params {
	t.Helper()
	p := chaincfg.TestNetParams
	p.EpochLength = 10000
	return p
}

// seedFor derives a deterministic 32-byte instance seed from the parent
// hash and block index, so every test miner produces byte-identical
// instances across runs.
func seedFor(parentHash chainhash.Hash, blockIndex uint64) [32]byte {
	var buf [40]byte
	copy(buf[:32], parentHash[:])
	binary.BigEndian.PutUint64(buf[32:], blockIndex)
	return sha256.Sum256(buf[:])
}

// mineHeader builds a fully valid, signed (header, reveal) pair
// extending parent at blockIndex for tier, with an explicit
// solveTimeMillis so tests can control relative work_score between
// competing blocks.
func mineHeader(
	t *testing.T,
	params chaincfg.Params,
	parent *block.Header,
	tier problem.Tier,
	priv ed25519.PrivateKey,
	blockIndex uint64,
	timestamp int64,
	solveTimeMillis uint64,
) (*block.Header, *block.Reveal) {
	t.Helper()

	parentHash := parent.Hash()
	difficultyTarget := params.InitialDifficultyTargets[tier]

	instance, err := problem.Generate(seedFor(parentHash, blockIndex), tier, difficultyTarget, params.TierLimits)
	require.NoError(t, err)
	solution, ok := problem.Solve(instance)
	require.True(t, ok)

	var minerSalt [32]byte
	binary.BigEndian.PutUint64(minerSalt[:8], blockIndex)
	// Mix in the miner's key so rival miners at the same parent and height
	// produce distinct commitments instead of tripping replay suppression.
	copy(minerSalt[8:], priv.Public().(ed25519.PublicKey))

	epoch := commitment.EpochNumber(blockIndex, params.EpochLength)
	epochSalt := commitment.EpochSalt(epoch, params.NetworkID)
	commit := commitment.Make(epochSalt, parentHash, minerSalt, instance.Hash(), solution.Hash())

	reveal := &block.Reveal{
		Problem:  instance,
		Solution: solution,
		MinerSalt: minerSalt,
		Measured: block.ComplexityRecord{
			SolveTimeMillis: solveTimeMillis,
			PeakMemoryClass: 1,
			AttemptCount:    1,
		},
	}

	root := merkle.Root([]chainhash.Hash{merkle.LeafHash(reveal.Encode())})
	pub := priv.Public().(ed25519.PublicKey)

	h := &block.Header{
		CodecVersion:     block.CodecVersion,
		BlockIndex:       blockIndex,
		Timestamp:        timestamp,
		ParentHash:       parentHash,
		MerkleRoot:       root,
		MinerAddress:     addresses.DeriveMinerAddress(pub),
		Commitment:       commit,
		DifficultyTarget: difficultyTarget,
		Tier:             tier,
	}
	h.Sign(priv)
	return h, reveal
}

func headerEnvelope(t *testing.T, h *block.Header) []byte {
	t.Helper()
	env := &wire.Envelope{Type: wire.MsgHeader, Payload: h.Encode()}
	return env.Encode()
}

func revealEnvelope(t *testing.T, headerHash chainhash.Hash, rv *block.Reveal) []byte {
	t.Helper()
	msg := &wire.RevealMessage{HeaderHash: headerHash, Reveal: rv}
	env := &wire.Envelope{Type: wire.MsgReveal, Payload: msg.Encode()}
	return env.Encode()
}

func submitBlock(t *testing.T, o *Orchestrator, h *block.Header, rv *block.Reveal, now time.Time) (Ack, Ack) {
	t.Helper()
	headerAck, err := o.Submit(nil, headerEnvelope(t, h), now)
	require.NoError(t, err)
	revealAck, err := o.Submit(nil, revealEnvelope(t, h.Hash(), rv), now)
	require.NoError(t, err)
	return headerAck, revealAck
}

func genKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

// Scenario 1 (spec section 8.4): two independently constructed nodes
// with identical network parameters agree on an identical genesis tip.
func TestGenesisOnlyIdenticalAcrossNodes(t *testing.T) {
	params := testParams(t)
	o1 := New(params, nil, nil, nil)
	o2 := New(params, nil, nil, nil)

	v1 := o1.Snapshot()
	v2 := o2.Snapshot()

	require.Equal(t, v1.Tip.HeaderHash, v2.Tip.HeaderHash)
	require.Equal(t, float64(0), v1.Tip.CumulativeWork)
	require.Equal(t, uint64(0), v1.Tip.Height)
}

// Scenario 2 (spec section 8.4): ten consecutive blocks from one miner
// all admit; tip height advances by 10 and cumulative work is the sum of
// each block's work score.
func TestLinearChainTenBlocks(t *testing.T) {
	params := testParams(t)
	params.FinalityDepth = 32 // spec section 8.4 scenario 2 assumes the default depth
	sink := &recordingSink{}
	o := New(params, nil, nil, sink)
	priv := genKey(t)

	parent := params.GenesisHeader
	now := time.Now()
	var wantWork float64

	for i := uint64(1); i <= 10; i++ {
		h, rv := mineHeader(t, params, parent, problem.TierDesktop, priv, i, now.Unix()+int64(i), 1)
		headerAck, revealAck := submitBlock(t, o, h, rv, now.Add(time.Duration(i)*time.Second))
		require.Equal(t, AckAccepted, headerAck.Kind)
		require.Equal(t, AckAccepted, revealAck.Kind)

		score := float64(rv.Problem.Size()) * 150 // TierDesktop's C constant floor dominates solveTimeMillis=1
		wantWork += score
		parent = h
	}

	view := o.Snapshot()
	require.Equal(t, uint64(10), view.Tip.Height)
	require.InDelta(t, wantWork, view.Tip.CumulativeWork, 1e-6)
	require.Empty(t, sink.finalized)
}

// Scenario 3 (spec section 8.4): a competing block with strictly greater
// work_score at the same height triggers a reorg to the heavier branch.
func TestForkThenResolve(t *testing.T) {
	params := testParams(t)
	sink := &recordingSink{}
	o := New(params, nil, nil, sink)

	minerMain := genKey(t)
	minerRival := genKey(t)
	now := time.Now()

	parent := params.GenesisHeader
	for i := uint64(1); i <= 4; i++ {
		h, rv := mineHeader(t, params, parent, problem.TierDesktop, minerMain, i, now.Unix()+int64(i), 1)
		headerAck, revealAck := submitBlock(t, o, h, rv, now.Add(time.Duration(i)*time.Second))
		require.Equal(t, AckAccepted, headerAck.Kind)
		require.Equal(t, AckAccepted, revealAck.Kind)
		parent = h
	}

	branchPoint := parent

	blockA, revealA := mineHeader(t, params, branchPoint, problem.TierDesktop, minerMain, 5, now.Unix()+5, 1)
	ackA, ackRA := submitBlock(t, o, blockA, revealA, now.Add(5*time.Second))
	require.Equal(t, AckAccepted, ackA.Kind)
	require.Equal(t, AckAccepted, ackRA.Kind)
	require.Equal(t, blockA.Hash(), o.Snapshot().Tip.HeaderHash)

	blockB, revealB := mineHeader(t, params, branchPoint, problem.TierDesktop, minerRival, 5, now.Unix()+5, 1_000_000)
	ackB, ackRB := submitBlock(t, o, blockB, revealB, now.Add(5*time.Second))
	require.Equal(t, AckAccepted, ackB.Kind)
	require.Equal(t, AckAccepted, ackRB.Kind)

	view := o.Snapshot()
	require.Equal(t, blockB.Hash(), view.Tip.HeaderHash)

	// Every tip change emits a reorg event: four linear extensions, then
	// A, then the switch from A to B.
	require.Len(t, sink.reorgs, 6)
	require.Equal(t, []chainhash.Hash{blockA.Hash()}, sink.reorgs[5].Unwound)
	require.Equal(t, []chainhash.Hash{blockB.Hash()}, sink.reorgs[5].Applied)
}

// Scenario 4 (spec section 8.4): a competing branch whose unwind depth
// exceeds MaxReorgDepth is refused even though it carries more
// cumulative work; the tip is unchanged.
func TestReorgBeyondMaxDepthIsRefused(t *testing.T) {
	params := testParams(t)
	params.MaxReorgDepth = 2
	o := New(params, nil, nil, nil)

	miner := genKey(t)
	now := time.Now()

	parent := params.GenesisHeader
	for i := uint64(1); i <= 4; i++ {
		h, rv := mineHeader(t, params, parent, problem.TierDesktop, miner, i, now.Unix()+int64(i), 1)
		headerAck, revealAck := submitBlock(t, o, h, rv, now.Add(time.Duration(i)*time.Second))
		require.Equal(t, AckAccepted, headerAck.Kind)
		require.Equal(t, AckAccepted, revealAck.Kind)
		parent = h
	}
	wantTip := parent.Hash()

	rivalMiner := genKey(t)
	rival, revealRival := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, rivalMiner, 1, now.Unix()+1, 10_000_000)
	ack, revealAck := submitBlock(t, o, rival, revealRival, now.Add(time.Second))
	require.Equal(t, AckAccepted, ack.Kind)
	require.Equal(t, AckAccepted, revealAck.Kind)

	require.Equal(t, wantTip, o.Snapshot().Tip.HeaderHash)
}

// Scenario 5 (spec section 8.4): a reveal whose recomputed commitment
// does not match the header's is rejected; the header stays HEADER_ONLY.
func TestCommitmentMismatchReveal(t *testing.T) {
	params := testParams(t)
	o := New(params, nil, nil, nil)
	miner := genKey(t)
	now := time.Now()

	h, _ := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, miner, 1, now.Unix()+1, 1)
	headerAck, err := o.Submit(nil, headerEnvelope(t, h), now)
	require.NoError(t, err)
	require.Equal(t, AckAccepted, headerAck.Kind)

	// A different reveal (different seed/blockIndex) whose commitment
	// will not bind this header's Commitment field.
	_, wrongReveal := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, miner, 2, now.Unix()+2, 1)

	revealAck, err := o.Submit(nil, revealEnvelope(t, h.Hash(), wrongReveal), now)
	require.NoError(t, err)
	require.Equal(t, AckRejected, revealAck.Kind)
	require.Equal(t, admission.ErrCommitmentMismatch, revealAck.Reason)

	node, ok := o.tree.Node(h.Hash())
	require.True(t, ok)
	require.Equal(t, blocktree.HeaderOnly, node.State)
}

// Scenario 6 (spec section 8.4): verification aborted by the op budget
// is rejected, never treated as valid.
func TestBudgetExceededVerify(t *testing.T) {
	params := testParams(t)
	tight := params.VerifyBudget[problem.TierDesktop]
	tight.MaxOps = 1
	params.VerifyBudget = map[problem.Tier]problem.Budget{
		problem.TierMobile:  params.VerifyBudget[problem.TierMobile],
		problem.TierDesktop: tight,
		problem.TierServer:  params.VerifyBudget[problem.TierServer],
	}
	o := New(params, nil, nil, nil)
	miner := genKey(t)
	now := time.Now()

	h, rv := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, miner, 1, now.Unix()+1, 1)
	headerAck, revealAck := submitBlock(t, o, h, rv, now)
	require.Equal(t, AckAccepted, headerAck.Kind)
	require.Equal(t, AckRejected, revealAck.Kind)
	require.Equal(t, admission.ErrBudgetExceeded, revealAck.Reason)
}

// Scenario 7 (spec section 8.4): resubmitting an already-admitted
// (header, reveal) pair is accepted as a duplicate; tree state does not
// change.
func TestReplayResubmissionIsIdempotent(t *testing.T) {
	params := testParams(t)
	o := New(params, nil, nil, nil)
	miner := genKey(t)
	now := time.Now()

	h, rv := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, miner, 1, now.Unix()+1, 1)
	headerAck, revealAck := submitBlock(t, o, h, rv, now)
	require.Equal(t, AckAccepted, headerAck.Kind)
	require.Equal(t, AckAccepted, revealAck.Kind)

	before := o.Snapshot()

	headerAck2, revealAck2 := submitBlock(t, o, h, rv, now)
	require.Equal(t, AckAcceptedDuplicate, headerAck2.Kind)
	require.Equal(t, AckAcceptedDuplicate, revealAck2.Kind)

	after := o.Snapshot()
	require.Equal(t, before, after)
}

// Reveal-before-header: a reveal for a not-yet-known header is buffered,
// then admitted once the header itself arrives (spec section 8.3).
func TestRevealBeforeHeaderIsBufferedThenAdmitted(t *testing.T) {
	params := testParams(t)
	o := New(params, nil, nil, nil)
	miner := genKey(t)
	now := time.Now()

	h, rv := mineHeader(t, params, params.GenesisHeader, problem.TierDesktop, miner, 1, now.Unix()+1, 1)

	revealAck, err := o.Submit(nil, revealEnvelope(t, h.Hash(), rv), now)
	require.NoError(t, err)
	require.Equal(t, AckRejected, revealAck.Kind)
	require.Equal(t, admission.ErrParentUnknown, revealAck.Reason)

	headerAck, err := o.Submit(nil, headerEnvelope(t, h), now)
	require.NoError(t, err)
	require.Equal(t, AckAccepted, headerAck.Kind)

	node, ok := o.tree.Node(h.Hash())
	require.True(t, ok)
	require.Equal(t, blocktree.Revealed, node.State)
}
