// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package work

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/problem"
)

func TestScoreUsesMeasuredTimeWhenAboveFloor(t *testing.T) {
	constants := DefaultTierConstants()
	measured := block.ComplexityRecord{SolveTimeMillis: 100000}
	score := Score(problem.TierMobile, 10, measured, constants)
	require.Equal(t, float64(100000), score)
}

func TestScoreFallsBackToSizeFloorWhenMeasuredIsLow(t *testing.T) {
	constants := DefaultTierConstants()
	measured := block.ComplexityRecord{SolveTimeMillis: 1}
	score := Score(problem.TierMobile, 10, measured, constants)
	require.Equal(t, 10*constants[problem.TierMobile].C, score)
}

func TestScoreIsAlwaysPositiveForAdmittedSizes(t *testing.T) {
	constants := DefaultTierConstants()
	for tier, limits := range problem.DefaultTierLimits() {
		score := Score(tier, limits.MinElements, block.ComplexityRecord{}, constants)
		require.Greater(t, score, 0.0)
	}
}

func TestRewardContributionIsMonotonicInScore(t *testing.T) {
	constants := DefaultTierConstants()
	low := RewardContribution(problem.TierDesktop, 100, constants)
	high := RewardContribution(problem.TierDesktop, 10000, constants)
	require.Less(t, low, high)
}

func TestRewardContributionOfZeroScoreIsZero(t *testing.T) {
	constants := DefaultTierConstants()
	require.Equal(t, 0.0, RewardContribution(problem.TierDesktop, 0, constants))
}
