// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenesisHeaderParentIsZero(t *testing.T) {
	require.True(t, MainNetParams.GenesisHeader.ParentHash.IsZero())
	require.True(t, TestNetParams.GenesisHeader.ParentHash.IsZero())
}

func TestGenesisHeaderIsDeterministic(t *testing.T) {
	a := genesisHeader()
	b := genesisHeader()
	require.Equal(t, a.Hash(), b.Hash())
}

func TestMainNetAndTestNetHaveDistinctNetworkIDs(t *testing.T) {
	require.NotEqual(t, MainNetParams.NetworkID, TestNetParams.NetworkID)
}

func TestResolveParamsRejectsUnknownNetwork(t *testing.T) {
	cfg := &ProcessConfig{Network: "bogus"}
	_, err := cfg.ResolveParams()
	require.Error(t, err)
}

func TestResolveParamsDefaultsToMainNet(t *testing.T) {
	cfg := &ProcessConfig{}
	params, err := cfg.ResolveParams()
	require.NoError(t, err)
	require.Equal(t, MainNetParams.NetworkID, params.NetworkID)
}
