// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"fmt"
	"sync"

	"github.com/decred/base58"

	"github.com/Rust-Boy/btc-sotamo/database"
)

// stripLengthPrefix removes the single-byte length prefix database/keys.go's
// compositeKey wraps around a component, returning the bare component bytes.
func stripLengthPrefix(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty key component")
	}
	n := int(b[0])
	if len(b) < 1+n {
		return nil, fmt.Errorf("truncated key component")
	}
	return b[1 : 1+n], nil
}

// AddressBook maps a base58check address to a human-readable label, per
// spec §6's wallet.dat ("name", address) table.
type AddressBook struct {
	mu     sync.RWMutex
	db     database.DataAccessor
	labels map[string]string
}

func newAddressBook(db database.DataAccessor) *AddressBook {
	return &AddressBook{db: db, labels: make(map[string]string)}
}

func (ab *AddressBook) load() error {
	cur, err := ab.db.Cursor(database.WalletNamePrefix())
	if err != nil {
		return err
	}
	defer cur.Close()

	for ok := cur.First(); ok; ok = cur.Next() {
		key, err := cur.Key()
		if err != nil {
			return err
		}
		val, err := cur.Value()
		if err != nil {
			return err
		}
		// The cursor trims off the ("name") tag component we opened it
		// with, but the address itself is still wrapped in its own
		// single-byte length prefix (see database/keys.go's
		// compositeKey), so that prefix byte must come off too before
		// the address matches the bare string SetLabel indexes by.
		address, err := stripLengthPrefix(key)
		if err != nil {
			return err
		}
		ab.labels[string(address)] = string(val)
	}
	return nil
}

// SetLabel records label for address, overwriting any prior label.
func (ab *AddressBook) SetLabel(address, label string) error {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.labels[address] = label
	return ab.db.Put(database.WalletNameKey([]byte(address)), []byte(label))
}

// Label returns the label recorded for address, if any.
func (ab *AddressBook) Label(address string) (string, bool) {
	ab.mu.RLock()
	defer ab.mu.RUnlock()
	label, ok := ab.labels[address]
	return label, ok
}

// EncodeAddress renders a 160-bit public key hash as a base58check address
// under the network's version byte, per spec §1's
// "base58check(RIPEMD160(SHA256(pubkey)))".
func EncodeAddress(pubKeyHash []byte, version byte) string {
	return base58.CheckEncode(pubKeyHash, version)
}

// DecodeAddress recovers the public key hash and version byte from a
// base58check-encoded address.
func DecodeAddress(address string) (pubKeyHash []byte, version byte, err error) {
	return base58.CheckDecode(address)
}
