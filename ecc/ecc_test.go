package ecc

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	pub := priv.PubKey()

	hash := make([]byte, 32)
	for i := range hash {
		hash[i] = byte(i)
	}

	sig := priv.Sign(hash)
	if !sig.Verify(hash, pub) {
		t.Fatalf("signature failed to verify")
	}

	der := sig.Serialize()
	parsed, err := ParseDERSignature(der)
	if err != nil {
		t.Fatalf("ParseDERSignature: %v", err)
	}
	if !parsed.Verify(hash, pub) {
		t.Fatalf("parsed signature failed to verify")
	}
}

func TestFlippedBitFailsVerify(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()
	hash := make([]byte, 32)
	sig := priv.Sign(hash)

	der := sig.Serialize()
	der[len(der)-1] ^= 0x01
	parsed, err := ParseDERSignature(der)
	if err != nil {
		// A corrupted DER may fail to parse at all, which is an
		// acceptable failure mode too.
		return
	}
	if parsed.Verify(hash, pub) {
		t.Fatalf("corrupted signature unexpectedly verified")
	}
}

func TestPubKeySECRoundTrip(t *testing.T) {
	priv, _ := GeneratePrivateKey()
	pub := priv.PubKey()

	uncompressed := pub.SerializeUncompressed()
	if len(uncompressed) != 65 {
		t.Fatalf("uncompressed pubkey length = %d, want 65", len(uncompressed))
	}

	parsed, err := ParsePubKeySEC(uncompressed)
	if err != nil {
		t.Fatalf("ParsePubKeySEC: %v", err)
	}
	if !parsed.IsEqual(pub) {
		t.Fatalf("parsed pubkey does not match original")
	}
}
