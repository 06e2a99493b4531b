// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet implements the key store, address book, and owned-output
// tracking spec §4.8 names: a wallet is a reconciled view of which chain
// transactions pay one of the node's own keys.
package wallet

import (
	"sync"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/ecc"
)

// KeyStore maps a public key to its private key, plus a reverse index by
// 160-bit address hash so an incoming output's scriptPubKey can be matched
// back to an owned key without scanning every entry.
type KeyStore struct {
	mu sync.RWMutex
	db database.DataAccessor

	byPubKey   map[string]*ecc.PrivateKey
	byAddrHash map[string]*ecc.PrivateKey
	defaultKey *ecc.PublicKey
}

func newKeyStore(db database.DataAccessor) *KeyStore {
	return &KeyStore{
		db:         db,
		byPubKey:   make(map[string]*ecc.PrivateKey),
		byAddrHash: make(map[string]*ecc.PrivateKey),
	}
}

// addrHashKey returns the map key this store uses for a 160-bit address
// hash, distinct from a raw serialized public key's map key so the two
// indexes never collide even though both are byte strings.
func addrHashKey(hash []byte) string {
	return "h:" + string(hash)
}

func pubKeyMapKey(pubKey []byte) string {
	return "p:" + string(pubKey)
}

// AddKey generates a fresh private key, persists it, and indexes it by both
// its serialized public key and its 160-bit address hash. If the store has
// no default key yet, the new key becomes the default.
func (ks *KeyStore) AddKey() (*ecc.PrivateKey, error) {
	priv, err := ecc.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	if err := ks.addKey(priv); err != nil {
		return nil, err
	}
	return priv, nil
}

func (ks *KeyStore) addKey(priv *ecc.PrivateKey) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	pub := priv.PubKey()
	pubBytes := pub.SerializeUncompressed()
	addrHash := chainhash.Hash160(pubBytes)

	ks.byPubKey[pubKeyMapKey(pubBytes)] = priv
	ks.byAddrHash[addrHashKey(addrHash)] = priv

	if err := ks.db.Put(database.WalletKeyKey(pubBytes), priv.Serialize()); err != nil {
		return err
	}

	if ks.defaultKey == nil {
		ks.defaultKey = pub
		if err := ks.db.Put(database.DefaultKeyKey, pubBytes); err != nil {
			return err
		}
	}
	return nil
}

// LookupByAddressHash returns the private key owning addrHash, if any.
func (ks *KeyStore) LookupByAddressHash(addrHash []byte) (*ecc.PrivateKey, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	priv, ok := ks.byAddrHash[addrHashKey(addrHash)]
	return priv, ok
}

// DefaultKey returns the store's default receive key (used for change
// outputs), or nil if no key has ever been added.
func (ks *KeyStore) DefaultKey() *ecc.PublicKey {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.defaultKey
}

// Owns reports whether addrHash belongs to a key in this store.
func (ks *KeyStore) Owns(addrHash []byte) bool {
	_, ok := ks.LookupByAddressHash(addrHash)
	return ok
}

// load reads every persisted key back into memory. Called once at wallet
// construction.
func (ks *KeyStore) load() error {
	cur, err := ks.db.Cursor(database.WalletKeyPrefix())
	if err != nil {
		return err
	}
	defer cur.Close()

	for ok := cur.First(); ok; ok = cur.Next() {
		val, err := cur.Value()
		if err != nil {
			return err
		}
		priv := ecc.PrivKeyFromBytes(val)
		if err := ks.addKey(priv); err != nil {
			return err
		}
	}

	if defBytes, found, err := ks.db.Get(database.DefaultKeyKey); err != nil {
		return err
	} else if found {
		pub, err := ecc.ParsePubKeySEC(defBytes)
		if err != nil {
			return err
		}
		ks.defaultKey = pub
	}
	return nil
}
