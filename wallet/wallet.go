// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/Rust-Boy/btc-sotamo/chaincfg"
	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/txscript"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// pubKeyHashAddrID returns the base58check version byte this network uses
// for a pay-to-pubkey-hash address. The original client ties this to the
// network's wire magic; params carries no such field of its own, so it is
// derived here from the network name instead.
func pubKeyHashAddrID(params *chaincfg.Params) byte {
	if params.Name == "mainnet" {
		return 0x00
	}
	return 0x6f
}

// Wallet is a reconciled view of which chain transactions pay one of the
// node's own keys: a key store, an address book, and the set of
// transactions the node has observed touching those keys, kept in sync with
// the best chain via BlockConnected/BlockDisconnected (spec §4.8).
type Wallet struct {
	mu sync.RWMutex

	db     database.Database
	params *chaincfg.Params

	keyStore    *KeyStore
	addressBook *AddressBook

	txs map[chainhash.Hash]*WalletTx
}

// New constructs a Wallet backed by db, loading any keys, labels, and
// transactions already persisted there.
func New(db database.Database, params *chaincfg.Params) (*Wallet, error) {
	w := &Wallet{
		db:          db,
		params:      params,
		keyStore:    newKeyStore(db),
		addressBook: newAddressBook(db),
		txs:         make(map[chainhash.Hash]*WalletTx),
	}

	if err := w.keyStore.load(); err != nil {
		return nil, errors.Wrap(err, "loading wallet keys")
	}
	if err := w.addressBook.load(); err != nil {
		return nil, errors.Wrap(err, "loading address book")
	}
	if err := w.load(); err != nil {
		return nil, errors.Wrap(err, "loading wallet transactions")
	}
	return w, nil
}

func (w *Wallet) load() error {
	cur, err := w.db.Cursor(database.WalletTxPrefix())
	if err != nil {
		return err
	}
	defer cur.Close()

	for ok := cur.First(); ok; ok = cur.Next() {
		val, err := cur.Value()
		if err != nil {
			return err
		}
		wt, err := deserializeWalletTx(val)
		if err != nil {
			return err
		}
		w.txs[wt.Tx.TxHash()] = wt
	}
	return nil
}

func (w *Wallet) store(wt *WalletTx) error {
	enc, err := wt.serialize()
	if err != nil {
		return err
	}
	txid := wt.Tx.TxHash()
	return w.db.Put(database.WalletTxKey(txid[:]), enc)
}

// Keys returns the wallet's key store.
func (w *Wallet) Keys() *KeyStore { return w.keyStore }

// AddressBook returns the wallet's address label book.
func (w *Wallet) AddressBook() *AddressBook { return w.addressBook }

// NewAddress generates a fresh key and returns its base58check address.
func (w *Wallet) NewAddress() (string, error) {
	priv, err := w.keyStore.AddKey()
	if err != nil {
		return "", err
	}
	pubHash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())
	return EncodeAddress(pubHash, pubKeyHashAddrID(w.params)), nil
}

// owns reports whether addrHash belongs to a key this wallet holds.
func (w *Wallet) owns(addrHash []byte) bool {
	return w.keyStore.Owns(addrHash)
}

// relevant reports whether tx pays an owned address or spends an owned
// output already tracked by the wallet, and whether any of its inputs spend
// one of the wallet's own outputs (FromMe).
func (w *Wallet) relevant(tx *wire.MsgTx) (isRelevant, fromMe bool) {
	for _, out := range tx.TxOut {
		if hash := txscript.ExtractPubKeyHash(out.ScriptPubKey); hash != nil && w.owns(hash) {
			isRelevant = true
		}
	}
	for _, in := range tx.TxIn {
		prevID := in.PreviousOutPoint.Hash
		if prev, ok := w.txs[prevID]; ok {
			idx := int(in.PreviousOutPoint.Index)
			if idx >= 0 && idx < len(prev.Tx.TxOut) {
				if hash := txscript.ExtractPubKeyHash(prev.Tx.TxOut[idx].ScriptPubKey); hash != nil && w.owns(hash) {
					isRelevant = true
					fromMe = true
				}
			}
		}
	}
	return isRelevant, fromMe
}

// markSpent flags, across every tracked transaction, whichever output each
// of tx's inputs consumes.
func (w *Wallet) markSpent(tx *wire.MsgTx) {
	for _, in := range tx.TxIn {
		prev, ok := w.txs[in.PreviousOutPoint.Hash]
		if !ok {
			continue
		}
		idx := int(in.PreviousOutPoint.Index)
		if idx >= 0 && idx < len(prev.Spent) {
			prev.Spent[idx] = true
		}
	}
}

// unmarkSpent reverses markSpent, for when a spending transaction leaves the
// main chain during a reorg.
func (w *Wallet) unmarkSpent(tx *wire.MsgTx) {
	for _, in := range tx.TxIn {
		prev, ok := w.txs[in.PreviousOutPoint.Hash]
		if !ok {
			continue
		}
		idx := int(in.PreviousOutPoint.Index)
		if idx >= 0 && idx < len(prev.Spent) {
			prev.Spent[idx] = false
		}
	}
}

// BlockConnected scans block's transactions for anything touching an owned
// key, records or confirms the corresponding WalletTx, and marks whichever
// tracked outputs those transactions spend. It satisfies
// blockchain.BlockNotifier.
func (w *Wallet) BlockConnected(block *wire.MsgBlock, height int32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hashBlock := block.BlockHash()
	leaves := make([]chainhash.Hash, len(block.Transactions))
	for i, tx := range block.Transactions {
		leaves[i] = tx.TxHash()
	}

	for i, tx := range block.Transactions {
		isRelevant, fromMe := w.relevant(tx)
		txid := leaves[i]
		wt, tracked := w.txs[txid]

		if !isRelevant && !tracked {
			continue
		}
		if !tracked {
			wt = newWalletTx(tx, fromMe, nil)
			w.txs[txid] = wt
		}
		wt.confirm(hashBlock, height, i, wire.MerkleBranch(leaves, i))
		w.markSpent(tx)

		if err := w.store(wt); err != nil {
			continue
		}
	}
}

// BlockDisconnected reverts every tracked transaction belonging to block
// back to mempool-resident status and un-marks whichever tracked outputs it
// had spent, per spec §4.8's reorg reconciliation rule: a transaction whose
// block leaves the main chain is re-admitted to the mempool, a step the
// chain's own reorganize handles for non-coinbase transactions directly.
func (w *Wallet) BlockDisconnected(block *wire.MsgBlock) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, tx := range block.Transactions {
		txid := tx.TxHash()
		wt, ok := w.txs[txid]
		if !ok {
			continue
		}
		wt.unconfirm()
		w.unmarkSpent(tx)
		if err := w.store(wt); err != nil {
			continue
		}
	}
}

// Balance returns the total value of every unspent output this wallet owns,
// across all tracked transactions confirmed in the main chain or still
// pending in the mempool. A coinbase transaction's outputs are excluded
// until they have reached the chain's coinbase maturity at tipHeight.
func (w *Wallet) Balance(tipHeight int32) int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var total int64
	for _, wt := range w.txs {
		if !wt.maturedAt(tipHeight, w.params.CoinbaseMaturity) {
			continue
		}
		total += wt.credit(w.owns, true)
	}
	return total
}
