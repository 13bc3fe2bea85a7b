// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package work implements the work scorer of spec section 4.5: mapping a
// miner's measured solve complexity to the scalar that enters
// cumulative_work in fork choice.
//
// Grounded on mining/policy.go's per-tx fee/priority scoring shape from
// the teacher repo, generalized from a fee-rate scalar to a per-tier
// work scalar.
package work

import (
	"math"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/problem"
)

// TierConstants are the fixed-per-codec-version scaling constants C_tier
// (size-to-cost conversion) and S_tier (reward-compression scale) of
// spec section 4.5. Two blocks at different tiers are only comparable
// through these constants; they must never change without a codec
// version bump.
type TierConstants struct {
	C float64
	S float64
}

// DefaultTierConstants returns the codec-version-1 per-tier constants.
// Higher tiers get proportionally larger C (a SERVER-tier instance's
// minimum legal size already implies more baseline work than a
// MOBILE-tier one) so that work scores across tiers stay in a comparable
// order of magnitude even before any miner outperforms the floor.
func DefaultTierConstants() map[problem.Tier]TierConstants {
	return map[problem.Tier]TierConstants{
		problem.TierMobile:  {C: 50, S: 500},
		problem.TierDesktop: {C: 150, S: 1500},
		problem.TierServer:  {C: 400, S: 4000},
	}
}

// Score computes a block's work score: max(solve_time_ms, problem_size *
// C_tier), per spec section 4.5. This is the value that is summed into
// cumulative_work along a chain; it must be strictly positive for any
// admissible block (spec section 3.2, invariant 9), which holds here
// because problem_size * C_tier is > 0 for any tier-legal size, even when
// solve_time_ms is 0.
func Score(tier problem.Tier, problemSize int, measured block.ComplexityRecord, constants map[problem.Tier]TierConstants) float64 {
	c := constants[tier]
	floor := float64(problemSize) * c.C
	measuredScore := float64(measured.SolveTimeMillis)
	if measuredScore > floor {
		return measuredScore
	}
	return floor
}

// RewardContribution log-compresses a work score for reward computation
// (spec section 4.5): `log2(1 + score / S_tier)`. This value never
// enters fork choice -- only the pre-log Score does -- and is provided
// purely for the downstream reward layer spec section 1 treats as an
// external collaborator.
func RewardContribution(tier problem.Tier, score float64, constants map[problem.Tier]TierConstants) float64 {
	c := constants[tier]
	return math.Log2(1 + score/c.S)
}
