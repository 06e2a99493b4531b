package blockstore

import (
	"bytes"
	"testing"
)

var testMagic = [4]byte{0xf9, 0xbe, 0xb4, 0xd9}

func TestAppendAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testMagic)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	data := []byte("a serialized block goes here")
	loc, err := s.AppendBlock(data)
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if loc.FileNum != 0 || loc.Offset != 0 {
		t.Fatalf("unexpected first location: %+v", loc)
	}

	got, err := s.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, data)
	}
}

func TestEraseBlockZeroesData(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testMagic)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	loc, err := s.AppendBlock([]byte("erase me"))
	if err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := s.EraseBlock(loc); err != nil {
		t.Fatalf("EraseBlock: %v", err)
	}

	got, err := s.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock after erase: %v", err)
	}
	for _, b := range got {
		if b != 0 {
			t.Fatalf("expected all-zero bytes after erase, got %x", got)
		}
	}
}

func TestLocationSerializeRoundTrip(t *testing.T) {
	loc := Location{FileNum: 7, Offset: 4096}
	got, err := DeserializeLocation(loc.Serialize())
	if err != nil {
		t.Fatalf("DeserializeLocation: %v", err)
	}
	if got != loc {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, loc)
	}
}

func TestFileRotationOnMaxSize(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testMagic)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	s.maxFileSize = recordHeaderSize + 10

	first, err := s.AppendBlock(make([]byte, 10))
	if err != nil {
		t.Fatalf("AppendBlock 1: %v", err)
	}
	second, err := s.AppendBlock(make([]byte, 10))
	if err != nil {
		t.Fatalf("AppendBlock 2: %v", err)
	}
	if second.FileNum != first.FileNum+1 {
		t.Fatalf("expected rotation to the next file, got %+v then %+v", first, second)
	}
	if second.Offset != 0 {
		t.Fatalf("expected rotated file to start at offset 0, got %d", second.Offset)
	}
}

func TestRecoverWriteCursorAfterReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, testMagic)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.AppendBlock([]byte("first block")); err != nil {
		t.Fatalf("AppendBlock: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(dir, testMagic)
	if err != nil {
		t.Fatalf("re-New: %v", err)
	}
	defer reopened.Close()

	loc, err := reopened.AppendBlock([]byte("second block"))
	if err != nil {
		t.Fatalf("AppendBlock after reopen: %v", err)
	}
	if loc.Offset == 0 {
		t.Fatalf("expected the second block to be appended after the first, not overwrite it")
	}

	got, err := reopened.ReadBlock(loc)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if string(got) != "second block" {
		t.Fatalf("got %q", got)
	}
}
