// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database defines the transactional key/value store every other
// package persists through: the block index, the UTXO set, the wallet, and
// the peer address book all read and write through a Database handle rather
// than touching a storage engine directly.
package database

// DataAccessor is the set of operations any handle into the store supports,
// whether that handle is the store itself or a transaction opened against
// it.
type DataAccessor interface {
	// Put sets the value for key, overwriting any previous value.
	Put(key []byte, value []byte) error

	// Get returns the value for key. found is false if key does not
	// exist.
	Get(key []byte) (value []byte, found bool, err error)

	// Has reports whether key exists.
	Has(key []byte) (bool, error)

	// Delete removes key. It is not an error for key to not exist.
	Delete(key []byte) error

	// Cursor opens an iterator over every key sharing the given prefix.
	Cursor(prefix []byte) (Cursor, error)
}

// Transaction is a database transaction: a consistent view of the store as
// of the moment it began, whose writes are invisible to anyone else until
// Commit succeeds.
//
// Transactions may be nested: a transaction begun from within another
// transaction commits its writes into the parent rather than the store,
// mirroring the original client's CDB TxnBegin/TxnCommit scoping so a
// caller can wrap several related writes (e.g. a wallet transaction plus
// its address-book label) in one all-or-nothing unit without knowing
// whether it is already inside an outer transaction.
type Transaction interface {
	DataAccessor

	// Begin starts a nested transaction scoped to this one: its commit
	// folds into the parent rather than the store, and its rollback
	// undoes only the nested writes.
	Begin() (Transaction, error)

	// Commit makes this transaction's writes visible and durable.
	Commit() error

	// Rollback discards this transaction's writes.
	Rollback() error

	// RollbackUnlessClosed rolls back unless the transaction has already
	// been committed or rolled back. Safe to call from a defer.
	RollbackUnlessClosed() error
}

// Database is a handle to the store capable of beginning transactions.
type Database interface {
	DataAccessor

	// Begin starts a new transaction. If called on a Transaction rather
	// than the top-level Database, it begins a nested transaction.
	Begin() (Transaction, error)

	// Close closes the database, flushing any unwritten data.
	Close() error
}
