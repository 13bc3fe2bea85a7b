// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command coinjectured is the consensus-core node daemon: it parses
// process configuration, wires the LevelDB-backed storage adapter,
// rotating subsystem logging, and the gossip pacer into a
// consensus.Orchestrator, and exposes the ingress HTTP shim of spec
// section 6.4 (submit(bytes) -> AckOrReject) on the configured listen
// address.
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btclog"

	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/chaincfg"
	"github.com/coinjecture/consensus/clog"
	"github.com/coinjecture/consensus/consensus"
	"github.com/coinjecture/consensus/gossip"
	"github.com/coinjecture/consensus/storage/leveldbkv"
)

var log btclog.Logger

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "coinjectured: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := chaincfg.ParseProcessConfig(args)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("create logdir: %w", err)
	}
	if err := clog.InitLogRotator(filepath.Join(cfg.LogDir, "coinjectured.log"), 10); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	clog.SetLogLevels(cfg.LogLevel)
	log = clog.Logger("DAEM")

	params, err := cfg.ResolveParams()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create datadir: %w", err)
	}
	store, err := leveldbkv.Open(filepath.Join(cfg.DataDir, "chainstate"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var siphashKey [16]byte
	if _, err := rand.Read(siphashKey[:]); err != nil {
		return fmt.Errorf("generate rate-gate key: %w", err)
	}
	rateGate := admission.NewRateGate(siphashKey, cfg.RateLimitRPS*10, cfg.RateLimitRPS)

	broadcaster := newPeerBroadcaster(cfg.Peers)
	pacer := gossip.New(broadcaster)
	go pacer.Run()
	defer pacer.Stop()

	orch := consensus.New(params, rateGate, pacer, consensus.NoopSink{})

	mux := http.NewServeMux()
	mux.HandleFunc("/submit", submitHandler(orch))
	mux.HandleFunc("/snapshot", snapshotHandler(orch))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Infof("coinjectured listening on %s (network=%s, datadir=%s)", cfg.ListenAddr, cfg.Network, cfg.DataDir)
	return server.ListenAndServe()
}

// submitHandler answers spec section 6.4's submit(bytes) -> AckOrReject
// ingress call: the request body is a wire-encoded Envelope, the
// response body is the JSON-rendered Ack.
func submitHandler(orch *consensus.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		peerID := []byte(r.RemoteAddr)
		ack, err := orch.Submit(peerID, raw, time.Now())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var reason string
		if ack.Kind == consensus.AckRejected {
			reason = ack.Reason.String()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Kind   string `json:"kind"`
			Reason string `json:"reason,omitempty"`
		}{
			Kind:   ack.Kind.String(),
			Reason: reason,
		})
	}
}

// snapshotHandler answers a read-only ChainView query (spec section
// 4.10's snapshot()).
func snapshotHandler(orch *consensus.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orch.Snapshot())
	}
}
