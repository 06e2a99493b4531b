// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// Mempool holds loose transactions admitted but not yet mined: stateless-
// valid, and whose inputs all resolve against the current best chain's
// transaction index. An input spending an output of another mempool
// transaction does not resolve, so a transaction that depends on an unmined
// one is rejected.
type Mempool struct {
	mu sync.RWMutex

	txs map[chainhash.Hash]*wire.MsgTx

	// spentBy indexes every outpoint a mempool transaction consumes back
	// to the spending txid, so a conflicting double-spend is a map
	// lookup rather than a scan.
	spentBy map[wire.OutPoint]chainhash.Hash
}

func newMempool() *Mempool {
	return &Mempool{
		txs:     make(map[chainhash.Hash]*wire.MsgTx),
		spentBy: make(map[wire.OutPoint]chainhash.Hash),
	}
}

// Have reports whether txid is currently admitted.
func (mp *Mempool) Have(txid chainhash.Hash) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	_, ok := mp.txs[txid]
	return ok
}

// add admits tx unconditionally, indexing every outpoint it spends. It is
// used both by ProcessTransaction (after full admission checks) and by
// reorg disconnect (re-admitting a transaction whose block left the main
// chain), where the transaction is already known-valid.
func (mp *Mempool) add(tx *wire.MsgTx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	txid := tx.TxHash()
	mp.txs[txid] = tx
	for _, in := range tx.TxIn {
		mp.spentBy[in.PreviousOutPoint] = txid
	}
}

// remove drops txid from the pool, freeing the outpoints it held.
func (mp *Mempool) remove(txid chainhash.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	tx, ok := mp.txs[txid]
	if !ok {
		return
	}
	delete(mp.txs, txid)
	for _, in := range tx.TxIn {
		if mp.spentBy[in.PreviousOutPoint] == txid {
			delete(mp.spentBy, in.PreviousOutPoint)
		}
	}
}

// conflict returns the txid already spending outpoint, if any.
func (mp *Mempool) conflict(outpoint wire.OutPoint) (chainhash.Hash, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	txid, ok := mp.spentBy[outpoint]
	return txid, ok
}

// ProcessTransaction runs mempool admission for a loose transaction per
// spec §4.7: stateless checks, then every input must resolve against the
// current UTXO view and not conflict with an outpoint a pool transaction
// already spends.
func (c *Chain) ProcessTransaction(tx *wire.MsgTx) error {
	if err := CheckTransaction(tx); err != nil {
		return err
	}
	if tx.IsCoinBase() {
		return ruleError(ErrNoTransactions, "a coinbase may not be relayed as a loose transaction")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	txid := tx.TxHash()
	if c.mempool.Have(txid) {
		return ruleError(ErrDuplicateTx, "transaction is already in the mempool")
	}

	for _, in := range tx.TxIn {
		if spender, conflicted := c.mempool.conflict(in.PreviousOutPoint); conflicted && spender != txid {
			return ruleError(ErrTxnMempoolConflict, "transaction conflicts with one already in the mempool")
		}
	}

	tip := c.index.bestTip()
	height := int32(0)
	if tip != nil {
		height = tip.height + 1
	}
	fee, err := CheckTransactionInputs(c.db, c.store, tx, height, c.params.CoinbaseMaturity)
	if err != nil {
		return err
	}
	if err := checkFeePolicy(tx, fee, int64(tx.SerializeSize())); err != nil {
		return err
	}
	if err := ValidateTransactionScripts(c.db, c.store, tx, c.sigCache); err != nil {
		return err
	}

	c.mempool.add(tx)
	return nil
}
