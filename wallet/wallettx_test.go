// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

func TestWalletTxCreditSkipsSpentOutputsWhenAsked(t *testing.T) {
	hash := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	owns := func(h []byte) bool { return string(h) == string(hash) }

	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: 1000, ScriptPubKey: txscript.PayToPubKeyHashScript(hash)})
	tx.AddTxOut(&wire.TxOut{Value: 2000, ScriptPubKey: txscript.PayToPubKeyHashScript(hash)})

	wt := newWalletTx(tx, false, nil)
	wt.Spent[0] = true

	if got := wt.credit(owns, true); got != 2000 {
		t.Fatalf("expected 2000 counting only the unspent output, got %d", got)
	}
	if got := wt.credit(owns, false); got != 3000 {
		t.Fatalf("expected 3000 counting both outputs, got %d", got)
	}
}

func TestWalletTxCreditIgnoresUnownedOutput(t *testing.T) {
	ownedHash := []byte{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	otherHash := []byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	owns := func(h []byte) bool { return string(h) == string(ownedHash) }

	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: 1000, ScriptPubKey: txscript.PayToPubKeyHashScript(otherHash)})

	wt := newWalletTx(tx, false, nil)
	if got := wt.credit(owns, true); got != 0 {
		t.Fatalf("expected 0 credit for an output paying an unowned address, got %d", got)
	}
}

func TestWalletTxConfirmAndUnconfirm(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: 100, ScriptPubKey: []byte{0x6a}})
	wt := newWalletTx(tx, false, nil)

	if wt.InBlock {
		t.Fatalf("expected a freshly-built WalletTx to not be in a block")
	}

	blockHash := chainhash.Hash{0xaa}
	wt.confirm(blockHash, 42, 1, []chainhash.Hash{{0xbb}})
	if !wt.InBlock || wt.Height != 42 || wt.IndexInBlock != 1 {
		t.Fatalf("confirm did not record block membership correctly: %+v", wt)
	}

	wt.unconfirm()
	if wt.InBlock || wt.Height != 0 || wt.MerkleBranch != nil {
		t.Fatalf("unconfirm did not revert block membership: %+v", wt)
	}
}

func TestWalletTxMaturedAt(t *testing.T) {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex}})
	coinbase.AddTxOut(&wire.TxOut{Value: 5000, ScriptPubKey: []byte{0x6a}})

	wt := newWalletTx(coinbase, false, nil)
	wt.confirm(chainhash.Hash{}, 10, 0, nil)

	if wt.maturedAt(10, 100) {
		t.Fatalf("expected a just-mined coinbase to be immature")
	}
	if !wt.maturedAt(109, 100) {
		t.Fatalf("expected a coinbase with exactly 100 confirmations to be mature")
	}

	regular := wire.NewMsgTx(1)
	regular.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}}})
	regular.AddTxOut(&wire.TxOut{Value: 100, ScriptPubKey: []byte{0x6a}})
	wtRegular := newWalletTx(regular, false, nil)
	if !wtRegular.maturedAt(0, 100) {
		t.Fatalf("expected a non-coinbase transaction to always be considered mature")
	}
}

func TestWalletTxSerializeRoundTrip(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: wire.MaxPrevOutIndex}, SignatureScript: []byte{0x01}})
	tx.AddTxOut(&wire.TxOut{Value: 1234, ScriptPubKey: []byte{0x6a, 0x01, 0x02}})

	supporting := wire.NewMsgTx(1)
	supporting.AddTxOut(&wire.TxOut{Value: 99, ScriptPubKey: []byte{0x51}})

	wt := newWalletTx(tx, true, []*wire.MsgTx{supporting})
	wt.confirm(chainhash.Hash{0x42}, 7, 3, []chainhash.Hash{{0x01}, {0x02}})
	wt.Spent[0] = true

	enc, err := wt.serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, err := deserializeWalletTx(enc)
	if err != nil {
		t.Fatalf("deserializeWalletTx: %v", err)
	}

	if got.Tx.TxHash() != wt.Tx.TxHash() {
		t.Fatalf("round-tripped transaction hash mismatch")
	}
	if !got.InBlock || got.Height != 7 || got.IndexInBlock != 3 {
		t.Fatalf("round-tripped block membership mismatch: %+v", got)
	}
	if len(got.MerkleBranch) != 2 {
		t.Fatalf("expected 2 merkle branch entries, got %d", len(got.MerkleBranch))
	}
	if !got.FromMe {
		t.Fatalf("expected FromMe to round-trip true")
	}
	if len(got.Spent) != 1 || !got.Spent[0] {
		t.Fatalf("expected spent vector to round-trip, got %+v", got.Spent)
	}
	if len(got.SupportingTxs) != 1 || got.SupportingTxs[0].TxHash() != supporting.TxHash() {
		t.Fatalf("expected supporting transaction to round-trip")
	}
}
