// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ldb is the goleveldb-backed driver for the database package:
// every table (block index, UTXO index, wallet, address book) is a key
// prefix within one shared goleveldb instance per store file.
package ldb

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Rust-Boy/btc-sotamo/database"
)

// LevelDB is a database.Database backed by a single goleveldb instance.
// Reads and writes made directly against it (outside of any Begin'd
// transaction) are auto-committed one at a time, matching the original
// client's CDB behavior when DB_AUTO_COMMIT is in effect.
type LevelDB struct {
	path string
	ldb  *leveldb.DB
	env  *database.Environment
}

// Open opens (creating if necessary) the goleveldb store at path and
// registers it with env so Environment.Flush can checkpoint it once
// unreferenced.
func Open(path string, env *database.Environment) (*LevelDB, error) {
	opts := &opt.Options{
		Compression: opt.NoCompression,
	}
	ldbInst, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}
	env.Acquire(path)
	return &LevelDB{path: path, ldb: ldbInst, env: env}, nil
}

func (db *LevelDB) Put(key, value []byte) error {
	return db.ldb.Put(key, value, nil)
}

func (db *LevelDB) Get(key []byte) ([]byte, bool, error) {
	value, err := db.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (db *LevelDB) Has(key []byte) (bool, error) {
	return db.ldb.Has(key, nil)
}

func (db *LevelDB) Delete(key []byte) error {
	return db.ldb.Delete(key, nil)
}

func (db *LevelDB) Cursor(prefix []byte) (database.Cursor, error) {
	it := db.ldb.NewIterator(util.BytesPrefix(prefix), nil)
	return newCursor(it, prefix), nil
}

// Begin opens a new top-level transaction backed by a native goleveldb
// transaction.
func (db *LevelDB) Begin() (database.Transaction, error) {
	ldbTxn, err := db.ldb.OpenTransaction()
	if err != nil {
		return nil, err
	}
	return &transaction{ldbTxn: ldbTxn}, nil
}

// Close closes the underlying goleveldb instance and releases this store's
// reference in env.
func (db *LevelDB) Close() error {
	db.env.Release(db.path)
	return db.ldb.Close()
}

var _ database.Database = (*LevelDB)(nil)
