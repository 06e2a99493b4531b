// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"testing"

	"github.com/Rust-Boy/btc-sotamo/chainhash"
)

func TestKeyStoreAddKeySetsDefault(t *testing.T) {
	db := newTestDB(t)
	ks := newKeyStore(db)

	priv1, err := ks.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	if ks.DefaultKey() == nil || !ks.DefaultKey().IsEqual(priv1.PubKey()) {
		t.Fatalf("expected the first key added to become the default")
	}

	priv2, err := ks.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	if ks.DefaultKey().IsEqual(priv2.PubKey()) {
		t.Fatalf("expected the default key to stay fixed after a second key is added")
	}
}

func TestKeyStoreOwnsByAddressHash(t *testing.T) {
	db := newTestDB(t)
	ks := newKeyStore(db)

	priv, err := ks.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	hash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	if !ks.Owns(hash) {
		t.Fatalf("expected the store to own the hash of a key it generated")
	}
	other := chainhash.Hash160([]byte("not a real pubkey"))
	if ks.Owns(other) {
		t.Fatalf("expected the store to not own an unrelated hash")
	}
}

func TestKeyStorePersistsAcrossReload(t *testing.T) {
	db := newTestDB(t)
	ks := newKeyStore(db)

	priv, err := ks.AddKey()
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	hash := chainhash.Hash160(priv.PubKey().SerializeUncompressed())

	ks2 := newKeyStore(db)
	if err := ks2.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ks2.Owns(hash) {
		t.Fatalf("expected a reloaded key store to still own the persisted key")
	}
	if ks2.DefaultKey() == nil || !ks2.DefaultKey().IsEqual(priv.PubKey()) {
		t.Fatalf("expected the default key to survive a reload")
	}
}
