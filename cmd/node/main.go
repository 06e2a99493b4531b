// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command node wires together the chain state machine, wallet, and peer
// address book into a runnable process. It does not speak the P2P wire
// protocol itself; PeerLayer stands in for that external collaborator.
package main

import (
	"fmt"
	"os"

	"github.com/Rust-Boy/btc-sotamo/addrmgr"
	"github.com/Rust-Boy/btc-sotamo/blockchain"
	"github.com/Rust-Boy/btc-sotamo/blockstore"
	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/config"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/database/ldb"
	"github.com/Rust-Boy/btc-sotamo/logs"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wallet"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// node owns every long-lived subsystem the process needs: the chain state
// machine, the wallet, the peer address book, and the handful of KV/file
// stores backing them.
type node struct {
	cfg *config.Config

	env *database.Environment

	chainDB  database.Database
	walletDB database.Database
	addrDB   database.Database

	chain   *blockchain.Chain
	wallet  *wallet.Wallet
	addrMgr *addrmgr.AddrManager

	peerLayer PeerLayer
}

// blockNotifier fans a chain.BlockNotifier callback out to the wallet (for
// reorg reconciliation) and the peer layer (for block announcement), since
// blockchain.Chain only holds a single notifier slot.
type blockNotifier struct {
	wallet    *wallet.Wallet
	peerLayer PeerLayer
}

func (n blockNotifier) BlockConnected(block *wire.MsgBlock, height int32) {
	n.wallet.BlockConnected(block, height)
	n.peerLayer.OnNewBlock(block, height)
}

func (n blockNotifier) BlockDisconnected(block *wire.MsgBlock) {
	n.wallet.BlockDisconnected(block)
}

// newNode opens every on-disk store cfg names and constructs the chain,
// wallet, and address manager atop them. Each gets its own store file: the
// wallet's and chain index's on-disk key tags collide (both tag their
// per-transaction records "tx"), so one shared goleveldb instance cannot
// safely back both.
func newNode(cfg *config.Config) (*node, error) {
	params, err := networkParams(cfg.Network)
	if err != nil {
		return nil, err
	}

	env := database.NewEnvironment()

	chainDB, err := ldb.Open(cfg.DatabasePath(), env)
	if err != nil {
		return nil, fmt.Errorf("opening chain database: %w", err)
	}

	walletDB, err := ldb.Open(cfg.WalletDatabasePath(), env)
	if err != nil {
		return nil, fmt.Errorf("opening wallet database: %w", err)
	}

	addrDB, err := ldb.Open(cfg.AddrManagerDatabasePath(), env)
	if err != nil {
		return nil, fmt.Errorf("opening address book database: %w", err)
	}

	store, err := blockstore.New(cfg.BlockStorePath(), params.Net)
	if err != nil {
		return nil, fmt.Errorf("opening block store: %w", err)
	}

	sigCache := txscript.NewSigCache(50000)

	chain, err := blockchain.New(params, chainDB, store, sigCache)
	if err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	w, err := wallet.New(walletDB, params)
	if err != nil {
		return nil, fmt.Errorf("loading wallet: %w", err)
	}

	am, err := addrmgr.New(addrDB)
	if err != nil {
		return nil, fmt.Errorf("loading address book: %w", err)
	}

	peerLayer := noopPeerLayer{}
	chain.SetNotifier(blockNotifier{wallet: w, peerLayer: peerLayer})

	if imported, err := am.ImportAddrTxt(cfg.AddrBookPath()); err != nil {
		logs.AddrLog().Warnf("importing address book %s: %v", cfg.AddrBookPath(), err)
	} else if imported > 0 {
		logs.AddrLog().Infof("imported %d addresses from %s", imported, cfg.AddrBookPath())
	}

	return &node{
		cfg:       cfg,
		env:       env,
		chainDB:   chainDB,
		walletDB:  walletDB,
		addrDB:    addrDB,
		chain:     chain,
		wallet:    w,
		addrMgr:   am,
		peerLayer: peerLayer,
	}, nil
}

// networkParams resolves the chaincfg.Params for a network name already
// validated by config.Load.
func networkParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return chaincfg.MainNetParams(), nil
	case "regtest":
		return chaincfg.RegressionNetParams(), nil
	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}

// stop flushes and closes every store the node opened.
func (n *node) stop() {
	if err := n.env.Flush(true, nil); err != nil {
		logs.NodeLog().Errorf("flushing database environment: %v", err)
	}
	if err := n.chainDB.Close(); err != nil {
		logs.NodeLog().Errorf("closing chain database: %v", err)
	}
	if err := n.walletDB.Close(); err != nil {
		logs.NodeLog().Errorf("closing wallet database: %v", err)
	}
	if err := n.addrDB.Close(); err != nil {
		logs.NodeLog().Errorf("closing address book database: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logs.InitLogRotator(cfg.LogFile()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	n, err := newNode(cfg)
	if err != nil {
		logs.NodeLog().Errorf("starting node: %v", err)
		os.Exit(1)
	}
	defer n.stop()

	tip := n.chain.BestSnapshot()
	logs.NodeLog().Infof("chain ready at height %d, tip %s", tip.Height, tip.Hash)
}
