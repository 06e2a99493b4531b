// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// PeerLayer is the external-collaborator contract this core hands off to
// the P2P wire protocol, IRC peer discovery, and the rest of the network
// stack — all out of scope here. It is the boundary where an inbound
// message becomes a chain/mempool operation and where the chain calls back
// out to announce what it has accepted.
type PeerLayer interface {
	// ProcessMessage handles one raw inbound message received from the
	// peer identified by peerID.
	ProcessMessage(peerID string, payload []byte) error

	// SendMessages flushes any messages queued for delivery to peerID.
	SendMessages(peerID string) error

	// OnNewBlock is called for each block the chain connects to the main
	// chain, in connection order, so it can be announced to connected peers.
	OnNewBlock(block *wire.MsgBlock, height int32)

	// OnNewTransaction is called once the mempool admits tx, so it can
	// be relayed to connected peers.
	OnNewTransaction(tx *wire.MsgTx)

	// RequestBlock asks the peer layer to fetch hash from some peer, as
	// part of orphan-parent resolution.
	RequestBlock(hash chainhash.Hash) error
}

// noopPeerLayer is a PeerLayer that does nothing, standing in for the wire
// protocol this repository does not implement.
type noopPeerLayer struct{}

func (noopPeerLayer) ProcessMessage(peerID string, payload []byte) error { return nil }
func (noopPeerLayer) SendMessages(peerID string) error                  { return nil }
func (noopPeerLayer) OnNewBlock(block *wire.MsgBlock, height int32)     {}
func (noopPeerLayer) OnNewTransaction(tx *wire.MsgTx)                   {}
func (noopPeerLayer) RequestBlock(hash chainhash.Hash) error            { return nil }
