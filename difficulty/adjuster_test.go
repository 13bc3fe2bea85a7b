// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/problem"
)

func newTestAdjuster(initial uint64) *Adjuster {
	params := map[problem.Tier]Params{
		problem.TierDesktop: {TargetIntervalSeconds: 60, MinDifficultyTarget: 1, MaxDifficultyTarget: 1 << 40},
	}
	initialTargets := map[problem.Tier]uint64{problem.TierDesktop: initial}
	return New(params, initialTargets)
}

func TestRolloverWithNoSamplesLeavesTargetUnchanged(t *testing.T) {
	a := newTestAdjuster(1000)
	require.Equal(t, uint64(1000), a.RolloverEpoch(problem.TierDesktop))
}

func TestRolloverDecreasesTargetWhenBlocksArriveFasterThanTarget(t *testing.T) {
	a := newTestAdjuster(1000)
	a.Observe(problem.TierDesktop, 0)
	a.Observe(problem.TierDesktop, 30) // interval 30s, below the 60s target

	next := a.RolloverEpoch(problem.TierDesktop)
	require.Less(t, next, uint64(1000))
}

func TestRolloverIncreasesTargetWhenBlocksArriveSlowerThanTarget(t *testing.T) {
	a := newTestAdjuster(1000)
	a.Observe(problem.TierDesktop, 0)
	a.Observe(problem.TierDesktop, 120) // interval 120s, above the 60s target

	next := a.RolloverEpoch(problem.TierDesktop)
	require.Greater(t, next, uint64(1000))
}

func TestRolloverClampsToAtMostDoubleOrHalf(t *testing.T) {
	a := newTestAdjuster(1000)
	a.Observe(problem.TierDesktop, 0)
	a.Observe(problem.TierDesktop, 6000) // wildly slow interval

	next := a.RolloverEpoch(problem.TierDesktop)
	require.Equal(t, uint64(2000), next) // clamped to 2x, not the raw 100x ratio
}

func TestRolloverRespectsMinAndMaxDifficultyTarget(t *testing.T) {
	params := map[problem.Tier]Params{
		problem.TierDesktop: {TargetIntervalSeconds: 60, MinDifficultyTarget: 500, MaxDifficultyTarget: 1500},
	}
	a := New(params, map[problem.Tier]uint64{problem.TierDesktop: 1000})
	a.Observe(problem.TierDesktop, 0)
	a.Observe(problem.TierDesktop, 6000)

	next := a.RolloverEpoch(problem.TierDesktop)
	require.Equal(t, uint64(1500), next)
}

func TestDifficultyTargetStartsAtInitialTarget(t *testing.T) {
	a := newTestAdjuster(1000)
	require.Equal(t, uint64(1000), a.DifficultyTarget(problem.TierDesktop))
}
