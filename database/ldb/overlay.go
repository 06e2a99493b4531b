// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"bytes"
	"sort"

	"github.com/Rust-Boy/btc-sotamo/database"
)

// overlay is a nested transaction: an in-memory set of pending writes and
// deletions layered over a parent DataAccessor (either the single native
// leveldb transaction a Database opens, or another overlay). Reads fall
// through to the parent when the key has no pending write of its own.
// Commit folds the overlay's writes into the parent without ever touching
// the store directly; only the outermost (native) transaction's Commit
// does that.
type overlay struct {
	parent   database.Transaction
	puts     map[string][]byte
	deletes  map[string]bool
	isClosed bool
}

func newOverlay(parent database.Transaction) *overlay {
	return &overlay{
		parent:  parent,
		puts:    make(map[string][]byte),
		deletes: make(map[string]bool),
	}
}

func (o *overlay) Put(key, value []byte) error {
	if o.isClosed {
		return database.ErrTransactionClosed
	}
	k := string(key)
	delete(o.deletes, k)
	o.puts[k] = value
	return nil
}

func (o *overlay) Get(key []byte) ([]byte, bool, error) {
	if o.isClosed {
		return nil, false, database.ErrTransactionClosed
	}
	k := string(key)
	if v, ok := o.puts[k]; ok {
		return v, true, nil
	}
	if o.deletes[k] {
		return nil, false, nil
	}
	return o.parent.Get(key)
}

func (o *overlay) Has(key []byte) (bool, error) {
	_, found, err := o.Get(key)
	return found, err
}

func (o *overlay) Delete(key []byte) error {
	if o.isClosed {
		return database.ErrTransactionClosed
	}
	k := string(key)
	delete(o.puts, k)
	o.deletes[k] = true
	return nil
}

// Cursor merges the overlay's pending writes for prefix with whatever the
// parent already has, materializing the merged view up front rather than
// iterating live: the bucket sizes this store deals with (a block's worth
// of index entries) make that entirely affordable, and it sidesteps having
// to keep a live parent iterator and an in-memory overlay consistent with
// each other as the cursor advances.
func (o *overlay) Cursor(prefix []byte) (database.Cursor, error) {
	if o.isClosed {
		return nil, database.ErrTransactionClosed
	}

	merged := make(map[string][]byte)

	parentCur, err := o.parent.Cursor(prefix)
	if err != nil {
		return nil, err
	}
	defer parentCur.Close()
	for ok := parentCur.First(); ok; ok = parentCur.Next() {
		k, err := parentCur.Key()
		if err != nil {
			return nil, err
		}
		v, err := parentCur.Value()
		if err != nil {
			return nil, err
		}
		merged[string(k)] = append([]byte{}, v...)
	}

	for k, v := range o.puts {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		merged[string([]byte(k)[len(prefix):])] = v
	}
	for k := range o.deletes {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		delete(merged, string([]byte(k)[len(prefix):]))
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &memCursor{keys: keys, values: merged}, nil
}

// Begin opens a further nested transaction scoped to this overlay.
func (o *overlay) Begin() (database.Transaction, error) {
	if o.isClosed {
		return nil, database.ErrTransactionClosed
	}
	return newOverlay(o), nil
}

// Commit folds every pending write and delete into the parent. The parent
// itself is not committed: only the outermost native transaction persists
// anything to disk.
func (o *overlay) Commit() error {
	if o.isClosed {
		return database.ErrTransactionClosed
	}
	o.isClosed = true
	for k := range o.deletes {
		if err := o.parent.Delete([]byte(k)); err != nil {
			return err
		}
	}
	for k, v := range o.puts {
		if err := o.parent.Put([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

// Rollback discards the overlay's pending writes without touching the
// parent.
func (o *overlay) Rollback() error {
	if o.isClosed {
		return database.ErrTransactionClosed
	}
	o.isClosed = true
	o.puts = nil
	o.deletes = nil
	return nil
}

func (o *overlay) RollbackUnlessClosed() error {
	if o.isClosed {
		return nil
	}
	return o.Rollback()
}

var _ database.Transaction = (*overlay)(nil)

// memCursor is a read-only cursor over an already-materialized, sorted set
// of keys, used by overlay.Cursor's merged view.
type memCursor struct {
	keys     []string
	values   map[string][]byte
	pos      int
	started  bool
	isClosed bool
}

func (c *memCursor) First() bool {
	if c.isClosed || len(c.keys) == 0 {
		return false
	}
	c.pos = 0
	c.started = true
	return true
}

func (c *memCursor) Next() bool {
	if c.isClosed {
		return false
	}
	if !c.started {
		return c.First()
	}
	c.pos++
	return c.pos < len(c.keys)
}

func (c *memCursor) Seek(key []byte) (bool, error) {
	if c.isClosed {
		return false, database.ErrTransactionClosed
	}
	idx := sort.SearchStrings(c.keys, string(key))
	if idx >= len(c.keys) {
		return false, nil
	}
	c.pos = idx
	c.started = true
	return c.keys[idx] == string(key), nil
}

func (c *memCursor) Key() ([]byte, error) {
	if c.isClosed || c.pos >= len(c.keys) {
		return nil, database.ErrNotFound
	}
	return []byte(c.keys[c.pos]), nil
}

func (c *memCursor) Value() ([]byte, error) {
	if c.isClosed || c.pos >= len(c.keys) {
		return nil, database.ErrNotFound
	}
	return c.values[c.keys[c.pos]], nil
}

func (c *memCursor) Close() error {
	c.isClosed = true
	return nil
}

var _ database.Cursor = (*memCursor)(nil)
