// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package problem

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func defaultBudget() Budget {
	return Budget{MaxOps: 1000, MaxDuration: time.Second, CheckInterval: 4}
}

func TestVerifyAcceptsCorrectSubset(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{10, 20, 30, 40}, Target: 50}
	solution := &SubsetSumSolution{Indices: []uint32{1, 2}}

	outcome, err := Verify(instance, solution, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Valid, outcome)
}

func TestVerifyRejectsWrongSum(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{10, 20, 30, 40}, Target: 999}
	solution := &SubsetSumSolution{Indices: []uint32{1, 2}}

	outcome, err := Verify(instance, solution, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Invalid, outcome)
}

func TestVerifyRejectsOutOfRangeIndex(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{10, 20}, Target: 30}
	solution := &SubsetSumSolution{Indices: []uint32{5}}

	outcome, err := Verify(instance, solution, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Invalid, outcome)
}

func TestVerifyRejectsDuplicateIndex(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{10, 20}, Target: 20}
	solution := &SubsetSumSolution{Indices: []uint32{0, 0}}

	outcome, err := Verify(instance, solution, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Invalid, outcome)
}

// TestVerifyHandlesSumNearInt64Overflow exercises spec.md's i128-sum
// requirement directly: a pair of elements near math.MaxInt64 whose true
// sum overflows a plain int64 accumulator must verify as Invalid, and a
// pair whose intermediate values are extreme but whose true sum equals
// Target must verify as Valid; neither case may return an error.
func TestVerifyHandlesSumNearInt64Overflow(t *testing.T) {
	// The true sum (2*MaxInt64 - 15) overflows a plain int64
	// accumulator and can never equal an int64 Target, so this must
	// verify as Invalid -- never error out via an overflow escape
	// hatch that would otherwise misclassify the comparison.
	overflowing := &SubsetSumInstance{
		Elements: []int64{math.MaxInt64 - 10, math.MaxInt64 - 5},
		Target:   math.MaxInt64,
	}
	outcome, err := Verify(overflowing, &SubsetSumSolution{Indices: []uint32{0, 1}}, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Invalid, outcome)

	// One element near MaxInt64, one large negative: the true sum
	// fits back into int64 range and must compare exactly equal.
	inRange := &SubsetSumInstance{
		Elements: []int64{math.MaxInt64 - 1, -(math.MaxInt64 - 3)},
		Target:   2,
	}
	outcome, err = Verify(inRange, &SubsetSumSolution{Indices: []uint32{0, 1}}, defaultBudget())
	require.NoError(t, err)
	require.Equal(t, Valid, outcome)
}

func TestVerifyReturnsBudgetExceededOnOpLimit(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{1, 2, 3, 4}, Target: 3}
	solution := &SubsetSumSolution{Indices: []uint32{0, 1}}

	outcome, err := Verify(instance, solution, Budget{MaxOps: 1, MaxDuration: time.Second, CheckInterval: 4})
	require.NoError(t, err)
	require.Equal(t, BudgetExceeded, outcome)
}

func TestVerifyReturnsBudgetExceededOnWallClockLimit(t *testing.T) {
	instance := &SubsetSumInstance{Elements: []int64{1, 2, 3, 4}, Target: 3}
	solution := &SubsetSumSolution{Indices: []uint32{0, 1}}

	outcome, err := Verify(instance, solution, Budget{MaxOps: 1000, MaxDuration: 1 * time.Nanosecond, CheckInterval: 1})
	require.NoError(t, err)
	require.Equal(t, BudgetExceeded, outcome)
}

func TestVerifyRejectsNilArguments(t *testing.T) {
	_, err := Verify(nil, &SubsetSumSolution{}, defaultBudget())
	require.Error(t, err)

	_, err = Verify(&SubsetSumInstance{}, nil, defaultBudget())
	require.Error(t, err)
}

func TestSolveRoundTripsThroughVerify(t *testing.T) {
	instance, err := Generate([32]byte{0x42}, TierDesktop, 1, DefaultTierLimits())
	require.NoError(t, err)

	solution, ok := Solve(instance)
	require.True(t, ok)

	outcome, err := Verify(instance, solution, DefaultBudgetForTier(TierDesktop, DefaultTierLimits()))
	require.NoError(t, err)
	require.Equal(t, Valid, outcome)
}
