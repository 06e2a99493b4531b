package chainhash

import (
	"bytes"
	"testing"
)

func TestHashRoundTrip(t *testing.T) {
	b := []byte("the quick brown fox jumps over the lazy dog")
	h := DoubleHashH(b)

	s := h.String()
	got, err := NewHashFromStr(s)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	if !h.IsEqual(got) {
		t.Fatalf("round trip mismatch: %v != %v", h, got)
	}
}

func TestDoubleHashStability(t *testing.T) {
	b := []byte("stability")
	h1 := DoubleHashH(b)
	h2 := DoubleHashH(b)
	if h1 != h2 {
		t.Fatalf("DoubleHashH is not deterministic")
	}

	raw := DoubleHashB(b)
	if !bytes.Equal(raw, h1[:]) {
		t.Fatalf("DoubleHashB and DoubleHashH disagree")
	}
}

func TestHash160(t *testing.T) {
	pub := bytes.Repeat([]byte{0x04}, 65)
	out := Hash160(pub)
	if len(out) != 20 {
		t.Fatalf("Hash160 length = %d, want 20", len(out))
	}
	// deterministic
	if !bytes.Equal(out, Hash160(pub)) {
		t.Fatalf("Hash160 not deterministic")
	}
}

func TestSetBytesInvalidLength(t *testing.T) {
	var h Hash
	if err := h.SetBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short byte slice")
	}
}
