// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import "testing"

func TestAddressBookSetAndGetLabel(t *testing.T) {
	db := newTestDB(t)
	ab := newAddressBook(db)

	if err := ab.SetLabel("1SomeAddress", "savings"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}
	label, ok := ab.Label("1SomeAddress")
	if !ok || label != "savings" {
		t.Fatalf("expected label %q, got %q (found=%v)", "savings", label, ok)
	}
}

func TestAddressBookPersistsAcrossReload(t *testing.T) {
	db := newTestDB(t)
	ab := newAddressBook(db)
	if err := ab.SetLabel("1AnotherAddress", "donations"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}

	ab2 := newAddressBook(db)
	if err := ab2.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	label, ok := ab2.Label("1AnotherAddress")
	if !ok || label != "donations" {
		t.Fatalf("expected reloaded label %q, got %q (found=%v)", "donations", label, ok)
	}
}

func TestAddressEncodeDecodeRoundTrip(t *testing.T) {
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = byte(i)
	}
	addr := EncodeAddress(hash, 0x00)

	gotHash, version, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if version != 0x00 {
		t.Fatalf("expected version 0x00, got %#x", version)
	}
	if string(gotHash) != string(hash) {
		t.Fatalf("round-tripped hash mismatch")
	}
}
