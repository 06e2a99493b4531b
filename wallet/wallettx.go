// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"time"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// WalletTx is a transaction the wallet cares about: one with at least one
// output paying an owned address, or one spending an owned output. It
// carries enough of the containing block's proof to be independently
// verified without trusting the node that reports it, per spec §4.8.
type WalletTx struct {
	Tx *wire.MsgTx

	// InBlock is false for a transaction still only in the mempool.
	InBlock bool

	HashBlock    chainhash.Hash
	Height       int32
	MerkleBranch []chainhash.Hash
	IndexInBlock int

	ReceivedTime time.Time

	// FromMe is true if any of Tx's inputs spend an owned output.
	FromMe bool

	// Spent marks, per output index, whether that output has since been
	// spent by a transaction the wallet has also recorded.
	Spent []bool

	// SupportingTxs holds the previous transactions Tx's inputs spend,
	// sufficient for an external verifier to check Tx's signatures and
	// values without a copy of the whole chain.
	SupportingTxs []*wire.MsgTx
}

// newWalletTx builds a mempool-resident WalletTx (no block membership yet).
func newWalletTx(tx *wire.MsgTx, fromMe bool, supporting []*wire.MsgTx) *WalletTx {
	return &WalletTx{
		Tx:            tx,
		ReceivedTime:  time.Now(),
		FromMe:        fromMe,
		Spent:         make([]bool, len(tx.TxOut)),
		SupportingTxs: supporting,
	}
}

// confirm records that Tx has been mined into the block identified by
// hashBlock at height, at position indexInBlock, with the given merkle
// branch.
func (wt *WalletTx) confirm(hashBlock chainhash.Hash, height int32, indexInBlock int, branch []chainhash.Hash) {
	wt.InBlock = true
	wt.HashBlock = hashBlock
	wt.Height = height
	wt.IndexInBlock = indexInBlock
	wt.MerkleBranch = branch
}

// unconfirm reverts Tx to mempool-resident status, the state a reorg
// disconnect puts a wallet transaction back into per spec §4.8.
func (wt *WalletTx) unconfirm() {
	wt.InBlock = false
	wt.HashBlock = chainhash.Hash{}
	wt.Height = 0
	wt.IndexInBlock = 0
	wt.MerkleBranch = nil
}

// maturedAt reports whether a coinbase transaction confirmed at wt.Height
// has accumulated at least coinbaseMaturity confirmations as of tipHeight.
// Non-coinbase transactions are always considered mature.
func (wt *WalletTx) maturedAt(tipHeight int32, coinbaseMaturity int64) bool {
	if !wt.Tx.IsCoinBase() {
		return true
	}
	if !wt.InBlock {
		return false
	}
	confirmations := int64(tipHeight-wt.Height) + 1
	return confirmations >= coinbaseMaturity
}

// credit returns the total value of Tx's outputs whose pubkey hash owns
// accepts, counting only those still unspent if onlyUnspent is set.
func (wt *WalletTx) credit(owns func([]byte) bool, onlyUnspent bool) int64 {
	var total int64
	for i, out := range wt.Tx.TxOut {
		if onlyUnspent && wt.Spent[i] {
			continue
		}
		hash := txscript.ExtractPubKeyHash(out.ScriptPubKey)
		if hash != nil && owns(hash) {
			total += out.Value
		}
	}
	return total
}
