// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the parameters that distinguish one instance of
// the network from another: genesis block, proof-of-work limit, subsidy
// schedule, and the handful of peer-bootstrap constants the core hands off
// to the (out of scope) peer layer unchanged.
package chaincfg

import (
	"time"

	"github.com/Rust-Boy/btc-sotamo/wire"
)

// DNSSeed is a hostname the peer layer may resolve to find bootstrap peers.
// The core never dials it itself; it is carried here only so a single
// Params value is everything main.go needs to hand the peer layer.
type DNSSeed struct {
	Host string
}

// Params holds every network-specific constant the chain state machine and
// its collaborators need.
type Params struct {
	Name        string
	Net         [4]byte
	DefaultPort string
	DNSSeeds    []DNSSeed

	GenesisBlock *wire.MsgBlock
	GenesisHash  [32]byte

	// PowLimitBits is the compact-encoded proof-of-work target no block
	// may exceed (the easiest allowed difficulty).
	PowLimitBits uint32

	// TargetTimePerBlock is the intended spacing between blocks; multiplied
	// by the retarget window size it gives the intended span covered by one
	// retarget period.
	TargetTimePerBlock time.Duration

	// RetargetWindow is the number of blocks between difficulty
	// retargets.
	RetargetWindow int64

	// SubsidyHalvingInterval is the number of blocks between halvings of
	// the block subsidy.
	SubsidyHalvingInterval int64

	// BaseSubsidy is the block subsidy paid by the genesis era's first
	// halving interval, denominated in the smallest unit.
	BaseSubsidy int64

	// CoinbaseMaturity is the number of confirmations a coinbase output
	// must have before it may be spent.
	CoinbaseMaturity int64
}

const (
	// oneCoin is 10^8 of the smallest unit, the base of the currency's
	// 8-decimal-place divisibility.
	oneCoin = 100000000
)

// MainNetParams returns the parameters for the production network.
func MainNetParams() *Params {
	genesis := genesisBlock()
	hash := genesis.BlockHash()

	return &Params{
		Name:        "mainnet",
		Net:         [4]byte{0xf9, 0xbe, 0xb4, 0xd9},
		DefaultPort: "8333",
		DNSSeeds: []DNSSeed{
			{Host: "seed.bitcoin.sipa.be"},
			{Host: "dnsseed.bluematt.me"},
		},

		GenesisBlock: genesis,
		GenesisHash:  [32]byte(hash),

		PowLimitBits: 0x1d00ffff,

		TargetTimePerBlock:     10 * time.Minute,
		RetargetWindow:         2016,
		SubsidyHalvingInterval: 210000,
		BaseSubsidy:            50 * oneCoin,
		CoinbaseMaturity:       100,
	}
}

// RegressionNetParams returns parameters for a low-difficulty network
// suitable for local testing: an always-minimum-difficulty genesis block
// and the same subsidy schedule as MainNetParams.
func RegressionNetParams() *Params {
	p := MainNetParams()
	p.Name = "regtest"
	p.Net = [4]byte{0xfa, 0xbf, 0xb5, 0xda}
	p.PowLimitBits = 0x207fffff
	p.CoinbaseMaturity = 100
	genesis := genesisBlock()
	genesis.Header.Bits = p.PowLimitBits
	genesis.Header.Timestamp = time.Unix(1296688602, 0)
	hash := genesis.BlockHash()
	p.GenesisBlock = genesis
	p.GenesisHash = [32]byte(hash)
	return p
}

// genesisCoinbaseScriptSig is the arbitrary signature script embedded in
// the genesis coinbase input, in the tradition of the original genesis
// block's embedded headline.
var genesisCoinbaseScriptSig = []byte("The Times 03/Jan/2009 Chancellor on brink of second bailout for banks")

func genesisBlock() *wire.MsgBlock {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex},
		SignatureScript:  genesisCoinbaseScriptSig,
		Sequence:         wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(&wire.TxOut{
		Value: 50 * oneCoin,
		// An unspendable placeholder scriptPubKey: the genesis
		// coinbase's reward is permanently unspendable by policy
		// regardless of what script locks it, so the exact template
		// here is not load-bearing.
		ScriptPubKey: append([]byte{0x41}, make([]byte, 65)...),
	})

	block := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			Timestamp: time.Unix(1231006505, 0),
			Bits:      0x1d00ffff,
			Nonce:     2083236893,
		},
	}
	block.AddTransaction(coinbase)
	block.Header.MerkleRoot = block.Transactions[0].TxHash()
	return block
}
