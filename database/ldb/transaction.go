// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Rust-Boy/btc-sotamo/database"
)

// transaction is a top-level transaction backed directly by a native
// goleveldb transaction. A nested Begin on top of it returns an
// overlay instead, so only one native leveldb.Transaction is ever
// open per Database at a time no matter how deeply callers nest scopes.
type transaction struct {
	ldbTxn   *leveldb.Transaction
	isClosed bool
}

func (tx *transaction) Put(key, value []byte) error {
	if tx.isClosed {
		return database.ErrTransactionClosed
	}
	return tx.ldbTxn.Put(key, value, nil)
}

func (tx *transaction) Get(key []byte) ([]byte, bool, error) {
	if tx.isClosed {
		return nil, false, database.ErrTransactionClosed
	}
	value, err := tx.ldbTxn.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (tx *transaction) Has(key []byte) (bool, error) {
	if tx.isClosed {
		return false, database.ErrTransactionClosed
	}
	return tx.ldbTxn.Has(key, nil)
}

func (tx *transaction) Delete(key []byte) error {
	if tx.isClosed {
		return database.ErrTransactionClosed
	}
	return tx.ldbTxn.Delete(key, nil)
}

func (tx *transaction) Cursor(prefix []byte) (database.Cursor, error) {
	if tx.isClosed {
		return nil, database.ErrTransactionClosed
	}
	it := tx.ldbTxn.NewIterator(util.BytesPrefix(prefix), nil)
	return newCursor(it, prefix), nil
}

// Begin starts a nested, in-memory transaction scoped to tx: its commit
// folds pending writes into tx without touching the underlying store, and
// its rollback discards them, leaving tx untouched either way.
func (tx *transaction) Begin() (database.Transaction, error) {
	if tx.isClosed {
		return nil, database.ErrTransactionClosed
	}
	return newOverlay(tx), nil
}

func (tx *transaction) Commit() error {
	if tx.isClosed {
		return database.ErrTransactionClosed
	}
	tx.isClosed = true
	return tx.ldbTxn.Commit()
}

func (tx *transaction) Rollback() error {
	if tx.isClosed {
		return database.ErrTransactionClosed
	}
	tx.isClosed = true
	tx.ldbTxn.Discard()
	return nil
}

func (tx *transaction) RollbackUnlessClosed() error {
	if tx.isClosed {
		return nil
	}
	return tx.Rollback()
}

var _ database.Transaction = (*transaction)(nil)
