// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/coinjecture/consensus/gossip"
	"github.com/coinjecture/consensus/wire"
)

var errUnknownGossipKind = errors.New("broadcaster: unknown gossip item kind")

// peerBroadcaster implements gossip.Sender by POSTing each paced batch's
// items, envelope-wrapped, to every configured peer's submit endpoint.
// Grounded on liquidity/attestor.go's http.Client request pattern, the
// only outbound-HTTP style the teacher repo itself uses.
type peerBroadcaster struct {
	client *http.Client
	peers  []string
}

func newPeerBroadcaster(peers []string) *peerBroadcaster {
	return &peerBroadcaster{
		client: &http.Client{Timeout: 10 * time.Second},
		peers:  peers,
	}
}

var _ gossip.Sender = (*peerBroadcaster)(nil)

// SendBatch implements gossip.Sender. A peer that is unreachable is
// logged and skipped; gossip pacing never blocks on a single slow peer.
func (b *peerBroadcaster) SendBatch(items []gossip.Item) {
	for _, item := range items {
		env, err := envelopeFor(item)
		if err != nil {
			log.Warnf("broadcaster: skipping item: %v", err)
			continue
		}
		raw := env.Encode()
		for _, peer := range b.peers {
			if err := b.post(peer, raw); err != nil {
				log.Debugf("broadcaster: peer %s: %v", peer, err)
			}
		}
	}
}

func (b *peerBroadcaster) post(peer string, raw []byte) error {
	resp, err := b.client.Post(peer, "application/octet-stream", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

func envelopeFor(item gossip.Item) (*wire.Envelope, error) {
	switch item.Kind {
	case gossip.KindHeader:
		return &wire.Envelope{Type: wire.MsgHeader, Payload: item.Payload}, nil
	case gossip.KindReveal:
		return &wire.Envelope{Type: wire.MsgReveal, Payload: item.Payload}, nil
	default:
		return nil, errUnknownGossipKind
	}
}
