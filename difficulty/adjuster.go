// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty implements the per-tier EWMA difficulty adjuster of
// spec section 4.6: an exponentially-weighted moving average of
// inter-block intervals drives the problem-size target at each epoch
// boundary, deterministically from chain history visible at that
// boundary.
//
// Grounded on the version-bits deployment state machine shape in
// blockchain/versionbits.go from the teacher repo (per-chain-parameter
// state tracked across a fixed retarget window), adapted from a
// threshold-activation state machine to a continuous EWMA controller.
package difficulty

import (
	"github.com/coinjecture/consensus/problem"
)

// SampleWindow is N, the number of trailing inter-block intervals folded
// into the EWMA (spec section 4.6).
const SampleWindow = 64

// ewmaAlpha is the smoothing factor implied by averaging over
// SampleWindow samples: alpha = 2/(N+1), the standard EWMA-from-window
// conversion.
const ewmaAlpha = 2.0 / float64(SampleWindow+1)

// maxAdjustmentFactor bounds a single epoch's update to at most 2x in
// either direction (spec section 4.6).
const maxAdjustmentFactor = 2.0

// Params are the per-tier controller parameters.
type Params struct {
	TargetIntervalSeconds float64
	MinDifficultyTarget   uint64
	MaxDifficultyTarget   uint64
}

// DefaultParams returns illustrative per-tier target intervals: lower
// tiers target a faster cadence (more, cheaper blocks) and higher tiers a
// slower one (fewer, costlier blocks), consistent with spec section
// 4.4's increasing tier problem sizes.
func DefaultParams() map[problem.Tier]Params {
	return map[problem.Tier]Params{
		problem.TierMobile:  {TargetIntervalSeconds: 30, MinDifficultyTarget: 1, MaxDifficultyTarget: 1 << 40},
		problem.TierDesktop: {TargetIntervalSeconds: 60, MinDifficultyTarget: 1, MaxDifficultyTarget: 1 << 40},
		problem.TierServer:  {TargetIntervalSeconds: 120, MinDifficultyTarget: 1, MaxDifficultyTarget: 1 << 40},
	}
}

// TierState is one tier's mutable controller state.
type TierState struct {
	EWMAIntervalSeconds float64
	DifficultyTarget    uint64
	lastTimestamp       int64
	haveLast            bool
	samples             int
}

// Adjuster holds per-tier EWMA state. It is owned exclusively by the
// consensus orchestrator's epoch-rollover handler (spec section 4.10);
// all updates are deterministic from chain history, so independent nodes
// processing the same header stream converge on identical targets.
type Adjuster struct {
	params map[problem.Tier]Params
	states map[problem.Tier]*TierState
}

// New creates an Adjuster seeded with initialTargets per tier.
func New(params map[problem.Tier]Params, initialTargets map[problem.Tier]uint64) *Adjuster {
	states := make(map[problem.Tier]*TierState, len(params))
	for tier := range params {
		states[tier] = &TierState{DifficultyTarget: initialTargets[tier]}
	}
	return &Adjuster{params: params, states: states}
}

// DifficultyTarget returns the current problem-size target for tier.
func (a *Adjuster) DifficultyTarget(tier problem.Tier) uint64 {
	return a.states[tier].DifficultyTarget
}

// Observe folds one more inter-block interval into tier's EWMA. Called
// once per admitted, revealed block on that tier, in chain order.
func (a *Adjuster) Observe(tier problem.Tier, timestamp int64) {
	st := a.states[tier]
	if !st.haveLast {
		st.lastTimestamp = timestamp
		st.haveLast = true
		return
	}
	interval := float64(timestamp - st.lastTimestamp)
	st.lastTimestamp = timestamp
	if st.samples == 0 {
		st.EWMAIntervalSeconds = interval
	} else {
		st.EWMAIntervalSeconds = ewmaAlpha*interval + (1-ewmaAlpha)*st.EWMAIntervalSeconds
	}
	st.samples++
}

// clamp bounds v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RolloverEpoch recomputes tier's difficulty_target at an epoch boundary
// (spec section 4.6): `difficulty_target <- clamp(difficulty_target *
// (ewma_interval / target_interval), min, max)`, with the per-call ratio
// itself clamped to [1/2, 2] so no single epoch can move the target by
// more than 2x in either direction.
func (a *Adjuster) RolloverEpoch(tier problem.Tier) uint64 {
	st := a.states[tier]
	p := a.params[tier]

	if st.samples == 0 || p.TargetIntervalSeconds <= 0 {
		return st.DifficultyTarget
	}

	ratio := st.EWMAIntervalSeconds / p.TargetIntervalSeconds
	ratio = clamp(ratio, 1.0/maxAdjustmentFactor, maxAdjustmentFactor)

	next := float64(st.DifficultyTarget) * ratio
	next = clamp(next, float64(p.MinDifficultyTarget), float64(p.MaxDifficultyTarget))

	st.DifficultyTarget = uint64(next)
	return st.DifficultyTarget
}
