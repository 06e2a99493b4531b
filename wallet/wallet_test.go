// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"path/filepath"
	"testing"

	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/database/ldb"
	"github.com/Rust-Boy/btc-sotamo/ecc"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()
	env := database.NewEnvironment()
	db, err := ldb.Open(filepath.Join(t.TempDir(), "wallet.ldb"), env)
	if err != nil {
		t.Fatalf("ldb.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// payToKeyTx builds a coinbase-shaped transaction paying addrHash.
func payToKeyTx(addrHash []byte, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex},
		SignatureScript:  []byte{0x01, 0x02},
	})
	tx.AddTxOut(&wire.TxOut{
		Value:        value,
		ScriptPubKey: txscript.PayToPubKeyHashScript(addrHash),
	})
	return tx
}

func blockWith(txs ...*wire.MsgTx) *wire.MsgBlock {
	return &wire.MsgBlock{Transactions: txs}
}

func TestBlockConnectedTracksOwnedOutput(t *testing.T) {
	db := newTestDB(t)
	w, err := New(db, chaincfg.RegressionNetParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	priv, err := w.keyStore.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	addrHash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	tx := payToKeyTx(addrHash, 5000)
	w.BlockConnected(blockWith(tx), 1)

	wt, ok := w.txs[tx.TxHash()]
	if !ok {
		t.Fatalf("expected transaction paying an owned key to be tracked")
	}
	if !wt.InBlock {
		t.Fatalf("expected tracked transaction to be marked in-block")
	}
	if wt.Height != 1 {
		t.Fatalf("expected height 1, got %d", wt.Height)
	}
}

func TestBlockConnectedIgnoresUnrelatedTransaction(t *testing.T) {
	db := newTestDB(t)
	w, err := New(db, chaincfg.RegressionNetParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stranger, err := ecc.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	strangerHash := chainhash.Hash160(stranger.PubKey().SerializeUncompressed())

	tx := payToKeyTx(strangerHash, 5000)
	w.BlockConnected(blockWith(tx), 1)

	if _, ok := w.txs[tx.TxHash()]; ok {
		t.Fatalf("expected a transaction touching no owned key to be ignored")
	}
}

func TestBlockDisconnectedUnconfirmsTrackedTransaction(t *testing.T) {
	db := newTestDB(t)
	w, err := New(db, chaincfg.RegressionNetParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	priv, err := w.keyStore.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	addrHash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	tx := payToKeyTx(addrHash, 5000)
	block := blockWith(tx)
	w.BlockConnected(block, 1)
	w.BlockDisconnected(block)

	wt := w.txs[tx.TxHash()]
	if wt.InBlock {
		t.Fatalf("expected a disconnected transaction to be unconfirmed")
	}
	if wt.Height != 0 {
		t.Fatalf("expected height reset to 0, got %d", wt.Height)
	}
}

func TestBalanceExcludesImmatureCoinbase(t *testing.T) {
	db := newTestDB(t)
	params := chaincfg.RegressionNetParams()
	w, err := New(db, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	priv, err := w.keyStore.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	addrHash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	tx := payToKeyTx(addrHash, 5000)
	w.BlockConnected(blockWith(tx), 1)

	if got := w.Balance(1); got != 0 {
		t.Fatalf("expected 0 balance before maturity, got %d", got)
	}

	matureHeight := int32(1) + int32(params.CoinbaseMaturity) - 1
	if got := w.Balance(matureHeight); got != 5000 {
		t.Fatalf("expected 5000 balance once matured, got %d", got)
	}
}

func TestBalancePersistsAcrossReload(t *testing.T) {
	db := newTestDB(t)
	params := chaincfg.RegressionNetParams()
	w, err := New(db, params)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	priv, err := w.keyStore.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	addrHash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	tx := payToKeyTx(addrHash, 7000)
	w.BlockConnected(blockWith(tx), 1)

	w2, err := New(db, params)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	matureHeight := int32(1) + int32(params.CoinbaseMaturity) - 1
	if got := w2.Balance(matureHeight); got != 7000 {
		t.Fatalf("expected 7000 balance after reload, got %d", got)
	}
}
