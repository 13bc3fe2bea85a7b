// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"fmt"
	"os"
	"time"

	flags "github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/coinjecture/consensus/problem"
)

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// ProcessConfig holds the scalar process configuration flags a
// coinjectured node is launched with, parsed with go-flags the way
// Shell's node entrypoint parses its daemon options.
type ProcessConfig struct {
	Network       string `long:"network" description:"network to connect to (mainnet, testnet)" default:"mainnet"`
	DataDir       string `long:"datadir" description:"directory to store block/reveal/tree state" default:"./data"`
	LogDir        string `long:"logdir" description:"directory for rotated log files" default:"./logs"`
	LogLevel      string `long:"loglevel" description:"logging level for all subsystems" default:"info"`
	ListenAddr    string `long:"listen" description:"peer listen address" default:"0.0.0.0:8633"`
	RateLimitRPS  float64 `long:"ratelimit" description:"per-peer admitted messages per second" default:"50"`
	TierOverrides string `long:"tier-config" description:"optional YAML file overriding tier limits and verify budgets"`
	Peers         []string `long:"peer" description:"submit endpoint of a peer to re-gossip accepted headers/reveals to (repeatable)"`
}

// TierOverrides is the YAML-decoded shape of the optional --tier-config
// file: a per-tier override of the hard element-count limits and/or
// verify budgets, for operators who want to run a private network with
// different tier economics without a code change.
type TierOverrides struct {
	Tiers map[string]struct {
		MinElements   *int    `yaml:"min_elements"`
		MaxElements   *int    `yaml:"max_elements"`
		MaxOps        *uint64 `yaml:"max_ops"`
		MaxDurationMs *int64  `yaml:"max_duration_ms"`
	} `yaml:"tiers"`
}

// ParseProcessConfig parses CLI arguments into a ProcessConfig. No field
// declares an environment variable, so the environment is not read.
func ParseProcessConfig(args []string) (*ProcessConfig, error) {
	cfg := &ProcessConfig{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveParams selects MainNetParams or TestNetParams by the config's
// Network field and applies any --tier-config overrides on top.
func (c *ProcessConfig) ResolveParams() (Params, error) {
	var params Params
	switch c.Network {
	case "mainnet", "":
		params = MainNetParams
	case "testnet":
		params = TestNetParams
	default:
		return Params{}, fmt.Errorf("chaincfg: unknown network %q", c.Network)
	}

	if c.TierOverrides == "" {
		return params, nil
	}
	overrides, err := loadTierOverrides(c.TierOverrides)
	if err != nil {
		return Params{}, err
	}
	applyTierOverrides(&params, overrides)
	return params, nil
}

func loadTierOverrides(path string) (*TierOverrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chaincfg: read tier-config: %w", err)
	}
	var out TierOverrides
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("chaincfg: parse tier-config: %w", err)
	}
	return &out, nil
}

func tierFromName(name string) (problem.Tier, bool) {
	switch name {
	case "mobile":
		return problem.TierMobile, true
	case "desktop":
		return problem.TierDesktop, true
	case "server":
		return problem.TierServer, true
	default:
		return 0, false
	}
}

func applyTierOverrides(params *Params, overrides *TierOverrides) {
	for name, o := range overrides.Tiers {
		tier, ok := tierFromName(name)
		if !ok {
			continue
		}
		limits := params.TierLimits[tier]
		if o.MinElements != nil {
			limits.MinElements = *o.MinElements
		}
		if o.MaxElements != nil {
			limits.MaxElements = *o.MaxElements
		}
		params.TierLimits[tier] = limits

		budget := params.VerifyBudget[tier]
		if o.MaxOps != nil {
			budget.MaxOps = *o.MaxOps
		}
		if o.MaxDurationMs != nil {
			budget.MaxDuration = msToDuration(*o.MaxDurationMs)
		}
		params.VerifyBudget[tier] = budget
	}
}
