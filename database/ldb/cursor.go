// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"

	"github.com/Rust-Boy/btc-sotamo/database"
)

// cursor is a thin wrapper around a native goleveldb iterator scoped to a
// single key prefix.
type cursor struct {
	it       iterator.Iterator
	prefix   []byte
	isClosed bool
}

func newCursor(it iterator.Iterator, prefix []byte) *cursor {
	return &cursor{it: it, prefix: prefix}
}

// Next is a method of the database.Cursor interface.
func (c *cursor) Next() bool {
	if c.isClosed {
		return false
	}
	return c.it.Next()
}

// First is a method of the database.Cursor interface.
func (c *cursor) First() bool {
	if c.isClosed {
		return false
	}
	return c.it.First()
}

// Seek is a method of the database.Cursor interface.
func (c *cursor) Seek(key []byte) (bool, error) {
	if c.isClosed {
		return false, errors.New("cannot seek a closed cursor")
	}
	fullKey := append(append([]byte{}, c.prefix...), key...)
	if !c.it.Seek(fullKey) {
		return false, nil
	}
	return bytes.Equal(c.it.Key(), fullKey), nil
}

// Key is a method of the database.Cursor interface. The prefix the cursor
// was opened with is trimmed from the returned key.
func (c *cursor) Key() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the key of a closed cursor")
	}
	full := c.it.Key()
	if full == nil {
		return nil, errors.Wrap(database.ErrNotFound, "cursor is exhausted")
	}
	return bytes.TrimPrefix(full, c.prefix), nil
}

// Value is a method of the database.Cursor interface.
func (c *cursor) Value() ([]byte, error) {
	if c.isClosed {
		return nil, errors.New("cannot get the value of a closed cursor")
	}
	val := c.it.Value()
	if val == nil {
		return nil, errors.Wrap(database.ErrNotFound, "cursor is exhausted")
	}
	return val, nil
}

// Close is a method of the database.Cursor interface.
func (c *cursor) Close() error {
	if c.isClosed {
		return errors.New("cursor is already closed")
	}
	c.isClosed = true
	c.it.Release()
	return nil
}
