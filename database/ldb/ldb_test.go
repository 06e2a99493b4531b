package ldb

import (
	"path/filepath"
	"testing"

	"github.com/Rust-Boy/btc-sotamo/database"
)

func newTestDB(t *testing.T) (*LevelDB, *database.Environment) {
	t.Helper()
	dir := t.TempDir()
	env := database.NewEnvironment()
	db, err := Open(filepath.Join(dir, "test.ldb"), env)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, env
}

func TestAutoCommitPutGet(t *testing.T) {
	db, _ := newTestDB(t)

	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, found, err := db.Get([]byte("k"))
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}
}

func TestTransactionRollback(t *testing.T) {
	db, _ := newTestDB(t)
	_ = db.Put([]byte("k"), []byte("before"))

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tx.Put([]byte("k"), []byte("after")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	got, found, err := db.Get([]byte("k"))
	if err != nil || !found || string(got) != "before" {
		t.Fatalf("expected rolled-back value 'before', got %q found=%v err=%v", got, found, err)
	}
}

func TestNestedTransactionCommit(t *testing.T) {
	db, _ := newTestDB(t)

	outer, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := outer.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	inner, err := outer.Begin()
	if err != nil {
		t.Fatalf("nested Begin: %v", err)
	}
	if err := inner.Put([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := inner.Commit(); err != nil {
		t.Fatalf("inner Commit: %v", err)
	}

	// The store must not see either write until the outer transaction
	// commits.
	if _, found, _ := db.Get([]byte("a")); found {
		t.Fatalf("outer write leaked before commit")
	}

	if err := outer.Commit(); err != nil {
		t.Fatalf("outer Commit: %v", err)
	}

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		got, found, err := db.Get([]byte(key))
		if err != nil || !found || string(got) != want {
			t.Fatalf("key %q: got %q found=%v err=%v, want %q", key, got, found, err, want)
		}
	}
}

func TestNestedTransactionRollbackDoesNotAffectParent(t *testing.T) {
	db, _ := newTestDB(t)

	outer, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_ = outer.Put([]byte("a"), []byte("1"))

	inner, err := outer.Begin()
	if err != nil {
		t.Fatalf("nested Begin: %v", err)
	}
	_ = inner.Put([]byte("b"), []byte("2"))
	if err := inner.Rollback(); err != nil {
		t.Fatalf("inner Rollback: %v", err)
	}

	if err := outer.Commit(); err != nil {
		t.Fatalf("outer Commit: %v", err)
	}

	if _, found, _ := db.Get([]byte("b")); found {
		t.Fatalf("rolled-back nested write should not be visible")
	}
	got, found, _ := db.Get([]byte("a"))
	if !found || string(got) != "1" {
		t.Fatalf("expected outer write to survive, got %q found=%v", got, found)
	}
}

func TestCursorPrefixScan(t *testing.T) {
	db, _ := newTestDB(t)
	_ = db.Put(database.TxIndexKey([]byte("txid-a")), []byte("A"))
	_ = db.Put(database.TxIndexKey([]byte("txid-b")), []byte("B"))
	_ = db.Put(database.BlockIndexKey([]byte("blockhash")), []byte("ignored"))

	cur, err := db.Cursor([]byte{2, 't', 'x'})
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	defer cur.Close()

	count := 0
	for ok := cur.First(); ok; ok = cur.Next() {
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 entries under the tx prefix, got %d", count)
	}
}

func TestEnvironmentFlushChecksOnlyUnreferenced(t *testing.T) {
	env := database.NewEnvironment()
	env.Acquire("a")
	env.Acquire("b")
	env.Release("b")

	var checkpointed []string
	if err := env.Flush(false, func(file string) error {
		checkpointed = append(checkpointed, file)
		return nil
	}); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(checkpointed) != 1 || checkpointed[0] != "b" {
		t.Fatalf("expected only 'b' to be checkpointed, got %v", checkpointed)
	}
	if !env.InUse("a") {
		t.Fatalf("'a' should still be in use")
	}
}
