// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/Rust-Boy/btc-sotamo/blockstore"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

// SpendableOutput is everything the validation pipeline needs about a
// prevout it is about to consume: the output itself plus the provenance
// (height, coinbase-ness) maturity and fee accounting depend on.
type SpendableOutput struct {
	TxOut      *wire.TxOut
	Height     int32
	IsCoinbase bool
}

// fetchBlockTx re-reads the block at loc.fileNum/loc.offset from store and
// returns the transaction at loc.txIndex.
func fetchBlockTx(store *blockstore.Store, loc txLocation) (*wire.MsgTx, error) {
	raw, err := store.ReadBlock(blockstore.Location{FileNum: loc.fileNum, Offset: loc.offset})
	if err != nil {
		return nil, errors.Wrap(err, "reading block for tx lookup")
	}
	var block wire.MsgBlock
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, errors.Wrap(err, "deserializing block for tx lookup")
	}
	if int(loc.txIndex) >= len(block.Transactions) {
		return nil, errors.New("tx index out of range for its recorded block")
	}
	return block.Transactions[loc.txIndex], nil
}

// FetchSpendableOutput resolves outpoint against the current UTXO view: the
// producing transaction must be indexed, its vout must be in range, and the
// marked spend state must be unspent.
func FetchSpendableOutput(db database.DataAccessor, store *blockstore.Store, outpoint wire.OutPoint) (*SpendableOutput, error) {
	rec, found, err := fetchTxIndexRecord(db, outpoint.Hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ruleError(ErrMissingTxOut, "prevout transaction is not indexed")
	}
	if int(outpoint.Index) >= len(rec.spent) {
		return nil, ruleError(ErrMissingTxOut, "prevout index exceeds the producing transaction's outputs")
	}
	if rec.spent[outpoint.Index].spent {
		return nil, ruleError(ErrDoubleSpend, "prevout has already been spent")
	}

	tx, err := fetchBlockTx(store, rec.location)
	if err != nil {
		return nil, err
	}
	return &SpendableOutput{
		TxOut:      tx.TxOut[outpoint.Index],
		Height:     rec.height,
		IsCoinbase: rec.isCoinbase,
	}, nil
}

// ConnectTransaction applies tx's effect on the UTXO set: every non-
// coinbase input's prevout is marked spent by (blockLoc, txIndexInBlock),
// and a fresh, all-unspent record is seeded for tx's own outputs. Callers
// are expected to have already run the stateless and contextual checks in
// validate.go; this function does not re-verify maturity or double-spend,
// it only applies the mutation.
func ConnectTransaction(db database.DataAccessor, tx *wire.MsgTx, height int32, fileNum, offset uint32, txIndex uint32) error {
	loc := txLocation{fileNum: fileNum, offset: offset, txIndex: txIndex}
	txid := tx.TxHash()

	if !tx.IsCoinBase() {
		for _, in := range tx.TxIn {
			rec, found, err := fetchTxIndexRecord(db, in.PreviousOutPoint.Hash)
			if err != nil {
				return err
			}
			if !found || int(in.PreviousOutPoint.Index) >= len(rec.spent) {
				return ruleError(ErrMissingTxOut, "prevout transaction is not indexed")
			}
			rec.spent[in.PreviousOutPoint.Index] = spentMarker{spent: true, spender: loc}
			if err := storeTxIndexRecord(db, in.PreviousOutPoint.Hash, rec); err != nil {
				return err
			}
		}
	}

	newRec := newTxIndexRecord(height, tx.IsCoinBase(), loc, len(tx.TxOut))
	return storeTxIndexRecord(db, txid, newRec)
}

// DisconnectTransaction reverses ConnectTransaction: tx's own record is
// removed, and every non-coinbase input's prevout is marked unspent again.
func DisconnectTransaction(db database.DataAccessor, tx *wire.MsgTx) error {
	txid := tx.TxHash()
	if err := deleteTxIndexRecord(db, txid); err != nil {
		return err
	}

	if tx.IsCoinBase() {
		return nil
	}

	for _, in := range tx.TxIn {
		rec, found, err := fetchTxIndexRecord(db, in.PreviousOutPoint.Hash)
		if err != nil {
			return err
		}
		if !found || int(in.PreviousOutPoint.Index) >= len(rec.spent) {
			// The producing transaction's own block has already been
			// disconnected ahead of this one; nothing to revert.
			continue
		}
		rec.spent[in.PreviousOutPoint.Index] = spentMarker{}
		if err := storeTxIndexRecord(db, in.PreviousOutPoint.Hash, rec); err != nil {
			return err
		}
	}
	return nil
}

// sumInputs returns the total value of tx's inputs by resolving each
// prevout's output under db/store. It fails with ErrImmatureSpend if a
// coinbase input has fewer than coinbaseMaturity confirmations as of height.
func sumInputs(db database.DataAccessor, store *blockstore.Store, tx *wire.MsgTx, height int32, coinbaseMaturity int64) (total int64, err error) {
	for _, in := range tx.TxIn {
		out, err := FetchSpendableOutput(db, store, in.PreviousOutPoint)
		if err != nil {
			return 0, err
		}
		if out.IsCoinbase {
			confirmations := int64(height) - int64(out.Height)
			if confirmations < coinbaseMaturity {
				return 0, ruleError(ErrImmatureSpend, "tried to spend coinbase output before maturity")
			}
		}
		total += out.TxOut.Value
	}
	return total, nil
}
