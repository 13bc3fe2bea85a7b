// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package clog centralizes subsystem logger registration for every
// consensus package (blocktree, admission, problem, commitment, gossip,
// consensus, difficulty), wiring each to a shared rotating backend.
//
// Grounded on the UseLogger/DisableLog package-logger idiom used
// throughout the teacher repo (e.g. mining/randomx/miner.go), lifted one
// level up into a single subsystem registry the way btcd-family nodes
// wire logging at the daemon's entry point.
package clog

import (
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate"

	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/blocktree"
	"github.com/coinjecture/consensus/commitment"
	"github.com/coinjecture/consensus/consensus"
	"github.com/coinjecture/consensus/difficulty"
	"github.com/coinjecture/consensus/gossip"
	"github.com/coinjecture/consensus/problem"
)

// backendLog is the backend all subsystem loggers are created from. It
// writes to stdout until InitLogRotator redirects it to a rotating file.
var backendLog = btclog.NewBackend(os.Stdout)

// subsystemLoggers maps each four-letter subsystem tag to the logger
// instance handed to its package via UseLogger.
var subsystemLoggers = map[string]btclog.Logger{
	"BLKT": backendLog.Logger("BLKT"), // blocktree
	"ADMC": backendLog.Logger("ADMC"), // admission
	"PRBM": backendLog.Logger("PRBM"), // problem
	"CMMT": backendLog.Logger("CMMT"), // commitment
	"GSIP": backendLog.Logger("GSIP"), // gossip
	"CNSO": backendLog.Logger("CNSO"), // consensus
	"DIFF": backendLog.Logger("DIFF"), // difficulty
	"DAEM": backendLog.Logger("DAEM"), // coinjectured daemon entrypoint
}

func init() {
	blocktree.UseLogger(subsystemLoggers["BLKT"])
	admission.UseLogger(subsystemLoggers["ADMC"])
	problem.UseLogger(subsystemLoggers["PRBM"])
	commitment.UseLogger(subsystemLoggers["CMMT"])
	gossip.UseLogger(subsystemLoggers["GSIP"])
	difficulty.UseLogger(subsystemLoggers["DIFF"])
	consensus.UseLogger(subsystemLoggers["CNSO"])
}

// Logger returns the subsystem logger for tag, or btclog.Disabled if tag
// is unrecognized so callers never receive a nil logger. Unknown tags are
// not registered.
func Logger(tag string) btclog.Logger {
	if l, ok := subsystemLoggers[tag]; ok {
		return l
	}
	return btclog.Disabled
}

// SetLogLevel sets the logging level for a specific subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are ignored too.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for every registered subsystem.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}

// InitLogRotator initializes the rotating file logger, writing both to
// the given file and to stdout. logFile is rolled over at maxRollSizeMB.
func InitLogRotator(logFile string, maxRollSizeMB int64) error {
	r, err := logrotate.NewRotator(logFile, maxRollSizeMB<<20)
	if err != nil {
		return fmt.Errorf("clog: failed to create log rotator: %w", err)
	}
	backendLog = btclog.NewBackend(io.MultiWriter(os.Stdout, r))
	for tag := range subsystemLoggers {
		subsystemLoggers[tag] = backendLog.Logger(tag)
	}
	blocktree.UseLogger(subsystemLoggers["BLKT"])
	admission.UseLogger(subsystemLoggers["ADMC"])
	problem.UseLogger(subsystemLoggers["PRBM"])
	commitment.UseLogger(subsystemLoggers["CMMT"])
	gossip.UseLogger(subsystemLoggers["GSIP"])
	difficulty.UseLogger(subsystemLoggers["DIFF"])
	consensus.UseLogger(subsystemLoggers["CNSO"])
	return nil
}
