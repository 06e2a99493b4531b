package addrmgr

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rust-Boy/btc-sotamo/database"
	"github.com/Rust-Boy/btc-sotamo/database/ldb"
	"github.com/Rust-Boy/btc-sotamo/wire"
)

func newTestDB(t *testing.T) database.Database {
	t.Helper()
	env := database.NewEnvironment()
	db, err := ldb.Open(filepath.Join(t.TempDir(), "addr.ldb"), env)
	if err != nil {
		t.Fatalf("ldb.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddAddressPersistsAndReloads(t *testing.T) {
	db := newTestDB(t)

	am, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	na, err := parseNetAddress("127.0.0.1:8333")
	if err != nil {
		t.Fatalf("parseNetAddress: %v", err)
	}
	if err := am.AddAddress(na); err != nil {
		t.Fatalf("AddAddress: %v", err)
	}

	am2, err := New(db)
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	if len(am2.GoodAddresses()) != 1 {
		t.Fatalf("expected 1 address after reload, got %d", len(am2.GoodAddresses()))
	}
}

func TestKnownAddressIsBadNeverSucceededAfterRetries(t *testing.T) {
	ka := &KnownAddress{
		netAddress:  &wire.NetAddress{Timestamp: time.Now()},
		lastAttempt: time.Now().Add(-2 * time.Minute),
		attempts:    numRetries,
	}
	if !ka.isBad() {
		t.Fatalf("expected an address with %d failed attempts and no success to be bad", numRetries)
	}
}

func TestKnownAddressNotBadRightAfterAttempt(t *testing.T) {
	ka := &KnownAddress{
		netAddress:  &wire.NetAddress{Timestamp: time.Now()},
		lastAttempt: time.Now(),
		attempts:    numRetries + 5,
	}
	if ka.isBad() {
		t.Fatalf("an address attempted moments ago should get a chance before being marked bad")
	}
}

func TestImportAddrTxtSkipsMissingFile(t *testing.T) {
	db := newTestDB(t)
	am, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n, err := am.ImportAddrTxt(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatalf("ImportAddrTxt: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 imported addresses for a missing file, got %d", n)
	}
}

func TestImportAddrTxtAddsEachLine(t *testing.T) {
	db := newTestDB(t)
	am, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(t.TempDir(), "addr.txt")
	content := "# comment\n127.0.0.1:8333\n10.0.0.1:8333\n\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	n, err := am.ImportAddrTxt(path)
	if err != nil {
		t.Fatalf("ImportAddrTxt: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imported addresses, got %d", n)
	}
	if len(am.GoodAddresses()) != 2 {
		t.Fatalf("expected 2 addresses in the book, got %d", len(am.GoodAddresses()))
	}
}
